package processor

import (
	"errors"
	"math"
	"testing"

	"github.com/nci/csvgrid/utils"
	"github.com/stretchr/testify/assert"
)

func TestGeoTransformPixel(t *testing.T) {
	gt := GeoTransform{100, 10, 0, 500, 0, -10}

	col, row := gt.Pixel(100, 500)
	assert.Equal(t, 0, col)
	assert.Equal(t, 0, row)

	col, row = gt.Pixel(125, 455)
	assert.Equal(t, 2, col)
	assert.Equal(t, 4, row)

	// floor, not truncation towards zero
	col, row = gt.Pixel(95, 505)
	assert.Equal(t, -1, col)
	assert.Equal(t, -1, row)

	x, y := gt.Coord(2, 4)
	assert.Equal(t, 120.0, x)
	assert.Equal(t, 460.0, y)
}

func TestGeoTransformValidate(t *testing.T) {
	assert.NoError(t, GeoTransform{0, 1, 0, 0, 0, -1}.Validate("a.tif"))

	var geomErr *utils.UnsupportedGeometryError
	err := GeoTransform{0, 1, 0.1, 0, 0, -1}.Validate("a.tif")
	assert.True(t, errors.As(err, &geomErr))

	err = GeoTransform{0, 1, 0, 0, 0.2, -1}.Validate("a.tif")
	assert.True(t, errors.As(err, &geomErr))

	err = GeoTransform{0, 0, 0, 0, 0, -1}.Validate("a.tif")
	assert.True(t, errors.As(err, &geomErr))

	err = GeoTransform{math.NaN(), 1, 0, 0, 0, -1}.Validate("a.tif")
	assert.True(t, errors.As(err, &geomErr))
}
