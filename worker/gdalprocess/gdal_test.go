package gdalprocess

import (
	"errors"
	"io/ioutil"
	"path/filepath"
	"sync"
	"testing"

	"github.com/nci/csvgrid/processor"
	"github.com/nci/csvgrid/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWGS84WKT = `GEOGCS["WGS 84",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563,AUTHORITY["EPSG","7030"]],AUTHORITY["EPSG","6326"]],PRIMEM["Greenwich",0,AUTHORITY["EPSG","8901"]],UNIT["degree",0.01745329251994328,AUTHORITY["EPSG","9122"]],AUTHORITY["EPSG","4326"]]`

var (
	initOnce sync.Once
	initErr  error
)

func initGdal(t *testing.T) {
	initOnce.Do(func() {
		dir, _ := utils.LocateGDALData("")
		initErr = InitGdal(dir)
	})
	if initErr != nil {
		t.Skipf("GDAL is unavailable: %v. Skipping tests", initErr)
	}
}

func testGrid() *processor.RasterGrid {
	return &processor.RasterGrid{
		RasterInfo: processor.RasterInfo{
			Width:        3,
			Height:       2,
			GeoTransform: processor.GeoTransform{16.0, 0.5, 0, 48.5, 0, -0.5},
			ProjWKT:      testWGS84WKT,
			NoData:       9999,
			HasNoData:    true,
		},
		Data: []float64{1, 2, 3, 4, 5, 9999},
	}
}

func TestRasterRoundTrip(t *testing.T) {
	initGdal(t)
	path := filepath.Join(t.TempDir(), "grid.tif")
	rio := NewRasterIO()

	require.NoError(t, rio.WriteBand(path, testGrid()))

	info, err := rio.Info(path)
	require.NoError(t, err)
	assert.Equal(t, 3, info.Width)
	assert.Equal(t, 2, info.Height)
	assert.Equal(t, processor.GeoTransform{16.0, 0.5, 0, 48.5, 0, -0.5}, info.GeoTransform)
	assert.True(t, info.HasNoData)
	assert.Equal(t, 9999.0, info.NoData)
	assert.Contains(t, info.ProjWKT, "WGS 84")

	grid, err := rio.ReadBand(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 9999}, grid.Data)

	v, err := rio.ReadPixel(path, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 5.0, v)

	_, err = rio.ReadPixel(path, 3, 0)
	var oobErr *utils.OutOfBoundsError
	assert.True(t, errors.As(err, &oobErr))
}

func TestRasterIOErrors(t *testing.T) {
	initGdal(t)
	rio := NewRasterIO()
	var ioErr *utils.RasterIOError

	_, err := rio.Info(filepath.Join(t.TempDir(), "missing.tif"))
	assert.True(t, errors.As(err, &ioErr))

	err = rio.WriteBand(filepath.Join(t.TempDir(), "missing", "out.tif"), testGrid())
	assert.True(t, errors.As(err, &ioErr))

	bad := testGrid()
	bad.Data = bad.Data[:2]
	err = rio.WriteBand(filepath.Join(t.TempDir(), "bad.tif"), bad)
	assert.True(t, errors.As(err, &ioErr))
}

func TestSynthesizeWithGDAL(t *testing.T) {
	initGdal(t)
	dir := t.TempDir()
	ref := filepath.Join(dir, "ref.tif")
	out := filepath.Join(dir, "gap.tif")
	rio := NewRasterIO()

	src := testGrid()
	src.NoData = -1
	require.NoError(t, rio.WriteBand(ref, src))
	require.NoError(t, processor.NewNoDataSynthesizer(rio).Synthesize(ref, out))

	refInfo, err := rio.Info(ref)
	require.NoError(t, err)
	gap, err := rio.ReadBand(out)
	require.NoError(t, err)

	assert.Equal(t, refInfo.Width, gap.Width)
	assert.Equal(t, refInfo.Height, gap.Height)
	assert.Equal(t, refInfo.GeoTransform, gap.GeoTransform)
	assert.Equal(t, -1.0, gap.NoData)
	assert.Equal(t, []float64{-1, -1, -1, -1, -1, -1}, gap.Data)

	r, err := processor.NewSampler(rio, utils.AxisLonLat, nil).SampleValue(out, 48.2, 16.7, true)
	require.NoError(t, err)
	assert.True(t, r.Missing)
}

func writeDescriptor(t *testing.T, dir, csvName, content string) string {
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, csvName), []byte(content), 0644))
	settings := utils.DescriptorSettings{SRS: testWGS84WKT, Separator: ";", XField: "field_2", YField: "field_1", ZField: "field_3"}
	tmpl, err := utils.RenderVRTTemplate(utils.DefaultVRTTemplate, settings)
	require.NoError(t, err)
	return processor.BuildDescriptor(tmpl, dir, csvName)
}

func TestGridNearest(t *testing.T) {
	initGdal(t)
	inDir, outDir := t.TempDir(), t.TempDir()
	descriptor := writeDescriptor(t, inDir, "points.csv", "48.0;16.0;1.0\n48.0;17.0;2.0\n49.0;16.0;3.0\n49.0;17.0;4.0\n")

	r := processor.NewRasterizer(NewGridder(), processor.NearestNeighbour(utils.DefaultNoData), outDir)
	raster, err := r.Rasterize(descriptor, "points.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "points.csv.tif"), raster)

	grid, err := NewRasterIO().ReadBand(raster)
	require.NoError(t, err)
	require.NoError(t, grid.GeoTransform.Validate(raster))
	require.NotEmpty(t, grid.Data)

	// nearest neighbour never invents values
	source := map[float64]bool{1: true, 2: true, 3: true, 4: true, utils.DefaultNoData: true}
	for _, v := range grid.Data {
		if !source[v] {
			t.Fatalf("unexpected cell value %v", v)
		}
	}

	entries, err := ioutil.ReadDir(outDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "points.csv.tif", entries[0].Name())
}

func TestGridFailure(t *testing.T) {
	initGdal(t)
	inDir, outDir := t.TempDir(), t.TempDir()
	descriptor := writeDescriptor(t, inDir, "points.csv", "48.0;16.0;1.0\n49.0;17.0;4.0\n")

	alg := processor.GridAlgorithm{Name: "no_such_algorithm"}
	_, err := processor.NewRasterizer(NewGridder(), alg, outDir).Rasterize(descriptor, "points.csv")
	var interpErr *utils.InterpolationError
	assert.True(t, errors.As(err, &interpErr))

	_, err = processor.NewRasterizer(NewGridder(), processor.NearestNeighbour(utils.DefaultNoData), outDir).Rasterize("<OGRVRTDataSource>", "points.csv")
	assert.True(t, errors.As(err, &interpErr))

	entries, err := ioutil.ReadDir(outDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
