package processor

import (
	"fmt"
	"os"

	"github.com/nci/csvgrid/utils"
)

// NoDataSynthesizer writes rasters that stand in for missing time steps:
// the geometry of a reference raster with every cell set to no data.
type NoDataSynthesizer struct {
	IO RasterIO
}

func NewNoDataSynthesizer(rio RasterIO) *NoDataSynthesizer {
	return &NoDataSynthesizer{IO: rio}
}

// Synthesize copies width, height, geotransform and projection of
// referencePath into outputPath and fills the band with the reference's
// declared no data value, or utils.DefaultNoData when it declares none.
func (s *NoDataSynthesizer) Synthesize(referencePath, outputPath string) error {
	ref, err := s.IO.ReadBand(referencePath)
	if err != nil {
		return asRasterIOError("read", referencePath, err)
	}

	if len(ref.Data) != ref.Width*ref.Height {
		return &utils.RasterIOError{Op: "read", Path: referencePath,
			Err: fmt.Errorf("band holds %d cells, expected %dx%d", len(ref.Data), ref.Width, ref.Height)}
	}

	noData := utils.DefaultNoData
	if ref.HasNoData {
		noData = ref.NoData
	}

	out := &RasterGrid{
		RasterInfo: ref.RasterInfo,
		Data:       make([]float64, len(ref.Data)),
	}
	out.NoData = noData
	out.HasNoData = true
	for i := range out.Data {
		out.Data[i] = noData
	}

	partial := outputPath + PartialSuffix
	if err = s.IO.WriteBand(partial, out); err != nil {
		removePartial(partial)
		return asRasterIOError("write", outputPath, err)
	}
	if err = os.Rename(partial, outputPath); err != nil {
		removePartial(partial)
		return &utils.RasterIOError{Op: "write", Path: outputPath, Err: err}
	}
	return nil
}

func asRasterIOError(op, path string, err error) error {
	if _, ok := err.(*utils.RasterIOError); ok {
		return err
	}
	return &utils.RasterIOError{Op: op, Path: path, Err: err}
}
