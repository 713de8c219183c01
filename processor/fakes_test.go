package processor

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
)

// fakeRasterIO keeps rasters as JSON files so that renames and removals
// behave as they do for GeoTIFFs.
type fakeRasterIO struct {
	writes int
	failOn map[string]bool
}

func (f *fakeRasterIO) Info(path string) (*RasterInfo, error) {
	grid, err := f.ReadBand(path)
	if err != nil {
		return nil, err
	}
	return &grid.RasterInfo, nil
}

func (f *fakeRasterIO) ReadBand(path string) (*RasterGrid, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var grid RasterGrid
	if err = json.Unmarshal(raw, &grid); err != nil {
		return nil, err
	}
	return &grid, nil
}

func (f *fakeRasterIO) ReadPixel(path string, col, row int) (float64, error) {
	grid, err := f.ReadBand(path)
	if err != nil {
		return 0, err
	}
	return grid.Data[row*grid.Width+col], nil
}

func (f *fakeRasterIO) WriteBand(path string, grid *RasterGrid) error {
	f.writes++
	if f.failOn[path] {
		ioutil.WriteFile(path, []byte("{"), 0644)
		return fmt.Errorf("disk full")
	}
	return writeFakeRaster(path, grid)
}

func writeFakeRaster(path string, grid *RasterGrid) error {
	raw, err := json.Marshal(grid)
	if err != nil {
		return err
	}
	return ioutil.WriteFile(path, raw, 0644)
}

var srcDataSourceRe = regexp.MustCompile(`<SrcDataSource>([^<]*)</SrcDataSource>`)

// fakeGridder drops every "y;x;z" point of the descriptor's source file
// into a 2x2 grid covering x 16.0-17.0 and y 47.5-48.5.
type fakeGridder struct {
	descriptors []string
	fail        map[string]bool
}

var fakeGeoTransform = GeoTransform{16.0, 0.5, 0, 48.5, 0, -0.5}

const fakeWKT = `PROJCS["MGI / Austria Lambert"]`

func (g *fakeGridder) Grid(descriptorPath, destPath string, alg GridAlgorithm) error {
	raw, err := ioutil.ReadFile(descriptorPath)
	if err != nil {
		return err
	}
	g.descriptors = append(g.descriptors, string(raw))

	m := srcDataSourceRe.FindStringSubmatch(string(raw))
	if m == nil {
		return fmt.Errorf("no SrcDataSource in descriptor")
	}
	if g.fail[filepath.Base(m[1])] {
		ioutil.WriteFile(destPath, []byte("half written"), 0644)
		return fmt.Errorf("ERROR 1: failed to open %s", m[1])
	}

	noData, _ := alg.NoData()
	grid := &RasterGrid{
		RasterInfo: RasterInfo{
			Width:        2,
			Height:       2,
			GeoTransform: fakeGeoTransform,
			ProjWKT:      fakeWKT,
			NoData:       noData,
			HasNoData:    true,
		},
		Data: []float64{noData, noData, noData, noData},
	}

	csv, err := ioutil.ReadFile(m[1])
	if err != nil {
		return err
	}
	for _, line := range strings.Split(strings.TrimSpace(string(csv)), "\n") {
		fields := strings.Split(line, ";")
		if len(fields) != 3 {
			return fmt.Errorf("bad record %q", line)
		}
		var v [3]float64
		for i, fld := range fields {
			if v[i], err = strconv.ParseFloat(strings.TrimSpace(fld), 64); err != nil {
				return err
			}
		}
		col, row := grid.GeoTransform.Pixel(v[1], v[0])
		if col >= 0 && row >= 0 && col < grid.Width && row < grid.Height {
			grid.Data[row*grid.Width+col] = v[2]
		}
	}
	return writeFakeRaster(destPath, grid)
}

func writeInput(t *testing.T, dir, name, content string) {
	if err := ioutil.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func listDir(dir string) []string {
	entries, _ := os.ReadDir(dir)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
