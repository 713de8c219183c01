package processor

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/nci/csvgrid/utils"
)

// BuildDescriptor fills a descriptor template for one input file. The
// replacement is literal: every occurrence of each token is replaced and
// the result is not checked for well-formedness.
func BuildDescriptor(template, inputPath, inputFilename string) string {
	name := strings.TrimSuffix(inputFilename, filepath.Ext(inputFilename))
	r := strings.NewReplacer(
		utils.TokenName, name,
		utils.TokenFilename, inputFilename,
		utils.TokenPath, inputPath,
	)
	return r.Replace(template)
}

// DescriptorFile is the transient on-disk form of a descriptor. It exists
// from WriteDescriptor until Close.
type DescriptorFile struct {
	Path string
}

// DescriptorPath is where the descriptor for inputFilename is written.
func DescriptorPath(outputDir, inputFilename string) string {
	return filepath.Join(outputDir, inputFilename+".vrt")
}

func WriteDescriptor(outputDir, inputFilename, descriptor string) (*DescriptorFile, error) {
	df := &DescriptorFile{Path: DescriptorPath(outputDir, inputFilename)}
	if err := ioutil.WriteFile(df.Path, []byte(descriptor), 0644); err != nil {
		os.Remove(df.Path)
		return nil, fmt.Errorf("writing descriptor %s: %v", df.Path, err)
	}
	return df, nil
}

// Close removes the descriptor. It is safe to call more than once.
func (df *DescriptorFile) Close() {
	if len(df.Path) == 0 {
		return
	}
	if err := os.Remove(df.Path); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to remove descriptor %s: %v", df.Path, err)
	}
	df.Path = ""
}
