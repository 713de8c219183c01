package main

import (
	"context"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/nci/csvgrid/processor"
	"github.com/nci/csvgrid/store"
	"github.com/nci/csvgrid/utils"
	gp "github.com/nci/csvgrid/worker/gdalprocess"
)

var passed, failed string

const nameFormat = "stationA_%Y%m%d-%H%M.csv"

// The stations sit on a small lattice so that the grid has a non
// degenerate extent. All stations of one file report the same value.
var stationCSV = map[string]string{
	"stationA_20200101-0000.csv": "48.1;16.3;5.0\n48.1;16.5;5.0\n48.3;16.3;5.0\n48.3;16.5;5.0\n",
	"stationA_20200101-0020.csv": "48.1;16.3;7.0\n48.1;16.5;7.0\n48.3;16.3;7.0\n48.3;16.5;7.0\n",
}

func writeInputs(dir string) error {
	for name, content := range stationCSV {
		if err := ioutil.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			return err
		}
	}
	return nil
}

func Rasterize(inDir, outDir, srs string) (bool, time.Duration) {
	start := time.Now()

	config := utils.DefaultConfig()
	config.Grid.InputDir = inDir
	config.Grid.OutputDir = outDir
	config.Grid.NameFormat = nameFormat
	config.Grid.FillInterval = 10
	config.Grid.SRS = srs

	report, err := processor.InitRasterPipeline(&config.Grid, gp.NewGridder(), gp.NewRasterIO(), nil, false).Process(context.Background())
	if err != nil {
		log.Printf("%v", err)
		return false, time.Since(start)
	}

	want := []string{
		"stationA_20200101-0000.csv.tif",
		"stationA_20200101-0010.csv.tif",
		"stationA_20200101-0020.csv.tif",
	}
	entries, _ := ioutil.ReadDir(outDir)
	if len(entries) != len(want) || len(report.Synthesized) != 1 {
		log.Printf("unexpected outputs: %v", entries)
		return false, time.Since(start)
	}
	for i, e := range entries {
		if e.Name() != want[i] {
			log.Printf("unexpected output %s, want %s", e.Name(), want[i])
			return false, time.Since(start)
		}
	}
	return true, time.Since(start)
}

func Drill(outDir, seriesFile string) (bool, time.Duration) {
	start := time.Now()

	lat, lon := 48.2, 16.4
	config := utils.DefaultConfig()
	config.Drill.InputDir = outDir
	config.Drill.OutputFile = seriesFile
	config.Drill.NameFormat = nameFormat + ".tif"
	config.Drill.Latitude = &lat
	config.Drill.Longitude = &lon
	config.Drill.NoDataAsNone = true
	config.Drill.AxisOrder = utils.AxisLonLat

	sinks := []processor.SeriesSink{store.NewCSVSink(seriesFile)}
	_, err := processor.InitDrillPipeline(&config.Drill, gp.NewRasterIO(), nil, sinks, nil, false).Process(context.Background())
	if err != nil {
		log.Printf("%v", err)
		return false, time.Since(start)
	}

	raw, err := ioutil.ReadFile(seriesFile)
	if err != nil {
		log.Printf("%v", err)
		return false, time.Since(start)
	}
	want := `timestamp,"value at (16.4,48.2)"
2020-01-01 00:00:00,5.0
2020-01-01 00:10:00,
2020-01-01 00:20:00,7.0
`
	if string(raw) != want {
		fmt.Println(string(raw))
		return false, time.Since(start)
	}
	return true, time.Since(start)
}

func main() {
	srs := flag.String("srs", "EPSG:4326", "spatial reference of the test points")
	gdalData := flag.String("gdal_data", "", "GDAL support files directory")
	keep := flag.Bool("keep", false, "keep the working directory")
	flag.Parse()

	passed, failed = utils.StatusLabels()

	dir, warning := utils.LocateGDALData(*gdalData)
	if len(warning) > 0 {
		log.Printf("%s", warning)
	}
	if err := gp.InitGdal(dir); err != nil {
		log.Fatal(err)
	}

	workDir, err := ioutil.TempDir("", "csvgrid_accept_")
	if err != nil {
		log.Fatal(err)
	}
	if *keep {
		log.Printf("Working directory: %s", workDir)
	} else {
		defer os.RemoveAll(workDir)
	}

	inDir := filepath.Join(workDir, "csv")
	outDir := filepath.Join(workDir, "tif")
	if err = os.MkdirAll(inDir, 0755); err != nil {
		log.Fatal(err)
	}
	if err = writeInputs(inDir); err != nil {
		log.Fatal(err)
	}

	allOK := true
	fmt.Printf("Testing CSV rasterization with gap filling: ")
	ok, t := Rasterize(inDir, outDir, *srs)
	if ok {
		fmt.Printf("%s %v\n", passed, t)
	} else {
		fmt.Printf("%s\n", failed)
		allOK = false
	}

	fmt.Printf("Testing point drill: ")
	ok, t = Drill(outDir, filepath.Join(workDir, "series", "point.csv"))
	if ok {
		fmt.Printf("%s %v\n", passed, t)
	} else {
		fmt.Printf("%s\n", failed)
		allOK = false
	}

	if !allOK {
		os.RemoveAll(workDir)
		os.Exit(1)
	}
}
