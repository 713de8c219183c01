package utils

import "fmt"

// ConfigError reports bad or missing options and file names that do not
// match the configured timestamp format. It is fatal and raised before any
// output is written.
type ConfigError struct {
	Option string
	Msg    string
	Err    error
}

func (e *ConfigError) Error() string {
	msg := e.Msg
	if len(e.Option) > 0 {
		msg = fmt.Sprintf("%s: %s", e.Option, e.Msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", msg, e.Err)
	}
	return fmt.Sprintf("configuration error: %s", msg)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// InterpolationError reports a failed grid operation for one input file.
type InterpolationError struct {
	Input string
	Err   error
}

func (e *InterpolationError) Error() string {
	return fmt.Sprintf("interpolation of %s failed: %v", e.Input, e.Err)
}

func (e *InterpolationError) Unwrap() error {
	return e.Err
}

// RasterIOError reports a raster that could not be opened, read or written.
type RasterIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *RasterIOError) Error() string {
	return fmt.Sprintf("raster %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *RasterIOError) Unwrap() error {
	return e.Err
}

// OutOfBoundsError reports a coordinate that maps outside the pixel grid.
type OutOfBoundsError struct {
	Path          string
	Col, Row      int
	Width, Height int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("pixel (%d,%d) is outside the %dx%d grid of %s", e.Col, e.Row, e.Width, e.Height, e.Path)
}

// UnsupportedGeometryError reports a geotransform the pixel math cannot
// handle, such as a rotated grid.
type UnsupportedGeometryError struct {
	Path         string
	GeoTransform [6]float64
	Reason       string
}

func (e *UnsupportedGeometryError) Error() string {
	return fmt.Sprintf("unsupported geotransform %v in %s: %s", e.GeoTransform, e.Path, e.Reason)
}
