package processor

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/nci/csvgrid/utils"
)

// PartialSuffix marks a raster that is still being written. It is renamed
// onto its final name only once complete.
const PartialSuffix = ".partial"

// RasterPath is the raster derived from an input file.
func RasterPath(outputDir, inputFilename string) string {
	return filepath.Join(outputDir, inputFilename+".tif")
}

// Rasterizer grids one point file into one GeoTIFF.
type Rasterizer struct {
	Gridder   Gridder
	Algorithm GridAlgorithm
	OutputDir string
}

func NewRasterizer(gridder Gridder, alg GridAlgorithm, outputDir string) *Rasterizer {
	return &Rasterizer{
		Gridder:   gridder,
		Algorithm: alg,
		OutputDir: outputDir,
	}
}

// Rasterize writes descriptorText to a transient descriptor, grids it into
// <OutputDir>/<inputFilename>.tif and returns that path. The descriptor is
// removed on every exit path and a failed grid leaves no raster behind.
func (r *Rasterizer) Rasterize(descriptorText, inputFilename string) (string, error) {
	desc, err := WriteDescriptor(r.OutputDir, inputFilename, descriptorText)
	if err != nil {
		return "", &utils.InterpolationError{Input: inputFilename, Err: err}
	}
	defer desc.Close()

	dest := RasterPath(r.OutputDir, inputFilename)
	partial := dest + PartialSuffix
	if err = r.Gridder.Grid(desc.Path, partial, r.Algorithm); err != nil {
		removePartial(partial)
		return "", &utils.InterpolationError{Input: inputFilename, Err: err}
	}

	if err = os.Rename(partial, dest); err != nil {
		removePartial(partial)
		return "", &utils.InterpolationError{Input: inputFilename, Err: fmt.Errorf("finalising %s: %v", dest, err)}
	}
	return dest, nil
}

func removePartial(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to remove partial raster %s: %v", path, err)
	}
}
