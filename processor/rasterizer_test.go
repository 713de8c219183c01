package processor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nci/csvgrid/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTemplate(t *testing.T) string {
	settings := utils.DescriptorSettings{SRS: "EPSG:31258", Separator: ";", XField: "field_2", YField: "field_1", ZField: "field_3"}
	tmpl, err := utils.RenderVRTTemplate(utils.DefaultVRTTemplate, settings)
	require.NoError(t, err)
	return tmpl
}

func TestRasterize(t *testing.T) {
	inDir, outDir := t.TempDir(), t.TempDir()
	writeInput(t, inDir, "a.csv", "48.1;16.3;5.0\n")

	gridder := &fakeGridder{}
	r := NewRasterizer(gridder, NearestNeighbour(utils.DefaultNoData), outDir)

	raster, err := r.Rasterize(BuildDescriptor(testTemplate(t), inDir, "a.csv"), "a.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "a.csv.tif"), raster)
	assert.Equal(t, []string{"a.csv.tif"}, listDir(outDir))

	require.Len(t, gridder.descriptors, 1)
	assert.Contains(t, gridder.descriptors[0], filepath.Join(inDir, "a.csv"))

	grid, err := (&fakeRasterIO{}).ReadBand(raster)
	require.NoError(t, err)
	assert.Equal(t, []float64{5.0, 9999, 9999, 9999}, grid.Data)
}

func TestRasterizeFailureLeavesNothing(t *testing.T) {
	inDir, outDir := t.TempDir(), t.TempDir()
	writeInput(t, inDir, "bad.csv", "48.1;16.3;5.0\n")

	gridder := &fakeGridder{fail: map[string]bool{"bad.csv": true}}
	r := NewRasterizer(gridder, NearestNeighbour(utils.DefaultNoData), outDir)

	_, err := r.Rasterize(BuildDescriptor(testTemplate(t), inDir, "bad.csv"), "bad.csv")
	var interpErr *utils.InterpolationError
	require.True(t, errors.As(err, &interpErr))
	assert.Equal(t, "bad.csv", interpErr.Input)
	assert.Empty(t, listDir(outDir))
}

func TestRasterizeMalformedDescriptor(t *testing.T) {
	outDir := t.TempDir()
	r := NewRasterizer(&fakeGridder{}, NearestNeighbour(utils.DefaultNoData), outDir)

	_, err := r.Rasterize("<OGRVRTDataSource>", "a.csv")
	var interpErr *utils.InterpolationError
	assert.True(t, errors.As(err, &interpErr))

	_, err = os.Stat(DescriptorPath(outDir, "a.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestRasterizeMissingOutputDir(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "missing")
	r := NewRasterizer(&fakeGridder{}, NearestNeighbour(utils.DefaultNoData), outDir)

	_, err := r.Rasterize("<OGRVRTDataSource/>", "a.csv")
	var interpErr *utils.InterpolationError
	assert.True(t, errors.As(err, &interpErr))
}
