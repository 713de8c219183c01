package processor

import (
	"fmt"
	"math"
	"os"

	"github.com/nci/csvgrid/utils"
)

// Reading is one sampled cell. Missing is set instead of Value when the
// cell held the declared no data value and the caller asked for absence.
type Reading struct {
	Value   float64
	Missing bool
}

func (r Reading) String() string {
	return FormatValue(r)
}

// SampleCache memoises readings. Keys identify the raster file version,
// the coordinate and the policy, so a rewritten raster never hits.
type SampleCache interface {
	Get(key string) (Reading, bool)
	Set(key string, r Reading)
}

// Sampler reads the value of one coordinate out of a raster.
type Sampler struct {
	IO RasterIO

	// Axis is utils.AxisLegacy, which puts latitude on the raster's X
	// axis and longitude on its Y axis, or utils.AxisLonLat.
	Axis  string
	Cache SampleCache
}

func NewSampler(rio RasterIO, axis string, cache SampleCache) *Sampler {
	return &Sampler{IO: rio, Axis: axis, Cache: cache}
}

// SampleValue maps (lat, lon) through the raster's geotransform and reads
// that pixel from band 1.
func (s *Sampler) SampleValue(path string, lat, lon float64, noDataAsNone bool) (Reading, error) {
	var key string
	if s.Cache != nil {
		if st, err := os.Stat(path); err == nil {
			key = fmt.Sprintf("%s|%d|%d|%s|%v|%v|%t", path, st.Size(), st.ModTime().UnixNano(), s.axis(), lat, lon, noDataAsNone)
			if r, found := s.Cache.Get(key); found {
				return r, nil
			}
		}
	}

	info, err := s.IO.Info(path)
	if err != nil {
		return Reading{}, asRasterIOError("open", path, err)
	}
	if err = info.GeoTransform.Validate(path); err != nil {
		return Reading{}, err
	}

	x, y := lat, lon
	if s.axis() == utils.AxisLonLat {
		x, y = lon, lat
	}
	col, row := info.GeoTransform.Pixel(x, y)
	if col < 0 || row < 0 || col >= info.Width || row >= info.Height {
		return Reading{}, &utils.OutOfBoundsError{Path: path, Col: col, Row: row, Width: info.Width, Height: info.Height}
	}

	v, err := s.IO.ReadPixel(path, col, row)
	if err != nil {
		return Reading{}, asRasterIOError("read", path, err)
	}

	r := Reading{Value: v}
	if noDataAsNone && info.HasNoData && sameValue(v, info.NoData) {
		r = Reading{Missing: true}
	}

	if len(key) > 0 {
		s.Cache.Set(key, r)
	}
	return r, nil
}

func (s *Sampler) axis() string {
	if len(s.Axis) == 0 {
		return utils.AxisLegacy
	}
	return s.Axis
}

// sameValue treats a NaN sentinel as matching NaN cells.
func sameValue(v, noData float64) bool {
	if math.IsNaN(noData) {
		return math.IsNaN(v)
	}
	return v == noData
}
