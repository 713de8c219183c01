package utils

import (
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// RuntimeFileResolver finds support files on a colon separated search path
// followed by the working directory and the executable's directory.
type RuntimeFileResolver struct {
	DataDirs   []string
	fileLookup map[string]string
}

func NewRuntimeFileResolver(searchPath string) *RuntimeFileResolver {
	resolver := &RuntimeFileResolver{
		fileLookup: make(map[string]string),
	}

	for _, dataDir := range strings.Split(searchPath, ":") {
		dataDir = strings.TrimSpace(dataDir)
		if len(dataDir) == 0 {
			continue
		}
		resolver.DataDirs = append(resolver.DataDirs, dataDir)
	}

	cwd, err := os.Getwd()
	if err == nil {
		resolver.DataDirs = append(resolver.DataDirs, cwd)
	} else {
		log.Printf("Failed to get CWD: %v", err)
	}

	resolver.DataDirs = append(resolver.DataDirs, filepath.Dir(os.Args[0]))
	return resolver
}

func (r *RuntimeFileResolver) Resolve(filePath string) (string, error) {
	if strings.HasPrefix(filePath, "/") {
		return filePath, checkFile(filePath)
	}

	for _, dataDir := range r.DataDirs {
		p := path.Clean(path.Join(dataDir, filePath))
		if checkFile(p) == nil {
			return p, nil
		}
	}

	return filePath, fmt.Errorf("Failed to resolve %v", filePath)
}

func (r *RuntimeFileResolver) Lookup(filePath string) (string, error) {
	if p, found := r.fileLookup[filePath]; found {
		return p, nil
	}

	p, err := r.Resolve(filePath)
	if err != nil {
		return "", err
	}
	r.fileLookup[filePath] = p
	return p, nil
}

func checkFile(filePath string) error {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return err
	}
	return nil
}

// gdalDataMarker is shipped in the data directory of every GDAL 2.x/3.x
// installation.
const gdalDataMarker = "gdalvrt.xsd"

var gdalDataPrefixes = []string{
	"/usr/share/gdal",
	"/usr/local/share/gdal",
	"/opt/homebrew/share/gdal",
	"/opt/conda/share/gdal",
}

// LocateGDALData picks the GDAL support directory: the configured one, then
// $GDAL_DATA, then well-known install prefixes. A non-empty warning means
// no usable directory was found; GDAL may still work but EPSG lookups for
// the layer SRS can fail with "Unable to open EPSG support file".
func LocateGDALData(configured string) (dir string, warning string) {
	if len(configured) > 0 {
		if checkFile(path.Join(configured, gdalDataMarker)) == nil {
			return configured, ""
		}
		return configured, fmt.Sprintf("gdal_data '%s' does not contain %s", configured, gdalDataMarker)
	}

	if env, ok := os.LookupEnv("GDAL_DATA"); ok && len(env) > 0 {
		return env, ""
	}

	resolver := NewRuntimeFileResolver(strings.Join(gdalDataPrefixes, ":"))
	if p, err := resolver.Lookup(gdalDataMarker); err == nil {
		return filepath.Dir(p), ""
	}

	return "", "GDAL_DATA is not set and no GDAL data directory was found. " +
		"If you get an error similar to 'Unable to open EPSG support file gcs.csv.' " +
		"set gdal_data or the GDAL_DATA environment variable."
}
