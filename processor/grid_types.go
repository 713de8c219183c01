package processor

import (
	"time"
)

// RasterInfo is the georeferencing of a single band raster.
type RasterInfo struct {
	Width, Height int
	GeoTransform  GeoTransform
	ProjWKT       string
	NoData        float64
	HasNoData     bool
}

// RasterGrid is a single band float64 raster held in memory, row major.
type RasterGrid struct {
	RasterInfo
	Data []float64
}

// RasterIO is the raster library surface the core needs. Paths name
// GeoTIFF files; only band 1 is ever touched.
type RasterIO interface {
	Info(path string) (*RasterInfo, error)
	ReadBand(path string) (*RasterGrid, error)
	ReadPixel(path string, col, row int) (float64, error)
	WriteBand(path string, grid *RasterGrid) error
}

// Gridder interpolates the points described by an OGR VRT descriptor into
// a float64 GeoTIFF at destPath.
type Gridder interface {
	Grid(descriptorPath string, destPath string, alg GridAlgorithm) error
}

// SeriesInput is one file of a time series. HasTime is false when the
// name did not have to be parsed.
type SeriesInput struct {
	Name    string
	Time    time.Time
	HasTime bool
}

// SeriesReport records what a gap filled run produced, in order.
type SeriesReport struct {
	Rasterized  []string
	Synthesized []string
	Skipped     []string
}
