package processor

import (
	"fmt"
	"math"

	"github.com/nci/csvgrid/utils"
)

// GeoTransform is GDAL's affine pixel to coordinate mapping:
// originX, pixelWidth, rowRotation, originY, columnRotation, pixelHeight.
type GeoTransform [6]float64

// Validate rejects transforms the pixel math does not support.
func (g GeoTransform) Validate(path string) error {
	if g[2] != 0 || g[4] != 0 {
		return &utils.UnsupportedGeometryError{Path: path, GeoTransform: g, Reason: "rotated grids are not supported"}
	}
	if g[1] == 0 || g[5] == 0 {
		return &utils.UnsupportedGeometryError{Path: path, GeoTransform: g, Reason: "zero pixel size"}
	}
	for _, v := range g {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &utils.UnsupportedGeometryError{Path: path, GeoTransform: g, Reason: "non-finite coefficient"}
		}
	}
	return nil
}

// Pixel maps a coordinate on the X axis and one on the Y axis to the
// column and row containing it.
func (g GeoTransform) Pixel(x, y float64) (col, row int) {
	col = int(math.Floor((x - g[0]) / g[1]))
	row = int(math.Floor((y - g[3]) / g[5]))
	return col, row
}

// Coord is the upper left corner of a pixel.
func (g GeoTransform) Coord(col, row int) (x, y float64) {
	return g[0] + float64(col)*g[1], g[3] + float64(row)*g[5]
}

func (g GeoTransform) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g, %g, %g)", g[0], g[1], g[2], g[3], g[4], g[5])
}
