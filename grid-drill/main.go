package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/nci/csvgrid/metrics"
	"github.com/nci/csvgrid/processor"
	"github.com/nci/csvgrid/store"
	"github.com/nci/csvgrid/utils"
	gp "github.com/nci/csvgrid/worker/gdalprocess"
)

func main() {
	os.Exit(run())
}

func run() int {
	configFile := flag.String("config", "", "YAML run configuration file")
	inputDir := flag.String("input_dir", "", "directory that contains the series GeoTIFFs")
	outputFile := flag.String("output_file", "", "CSV file to be written; truncated if it exists")
	latitude := flag.Float64("latitude", 0, "latitude of the drill point")
	longitude := flag.Float64("longitude", 0, "longitude of the drill point")
	points := flag.String("points", "", "GeoJSON FeatureCollection of drill points, instead of latitude and longitude")
	nameFormat := flag.String("name_format", utils.DefaultDrillNameFormat, "format of input file names, used to get timestamps")
	pattern := flag.String("pattern", utils.DefaultDrillPattern, "input file filter expression over path, name and type")
	noDataAsNone := flag.Bool("no_data_as_none", false, "write an empty cell instead of the band's no data value")
	axisOrder := flag.String("axis_order", utils.AxisLegacy, "legacy puts latitude on the raster X axis, lonlat on the Y axis")
	databaseURL := flag.String("database_url", "", "PostgreSQL connection string to also store the series in")
	memcacheAddr := flag.String("memcache", "", "memcache host:port caching drilled values")
	gdalData := flag.String("gdal_data", "", "GDAL support files directory")
	metricsDir := flag.String("metrics_dir", "", "directory for the JSON metrics log")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [options] [input_dir output_file latitude longitude]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	config, err := utils.Load(*configFile)
	if err != nil {
		log.Printf("%v", err)
		return 2
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input_dir":
			config.Drill.InputDir = *inputDir
		case "output_file":
			config.Drill.OutputFile = *outputFile
		case "latitude":
			config.Drill.Latitude = latitude
		case "longitude":
			config.Drill.Longitude = longitude
		case "points":
			config.Drill.Points = *points
		case "name_format":
			config.Drill.NameFormat = *nameFormat
		case "pattern":
			config.Drill.Pattern = *pattern
		case "no_data_as_none":
			config.Drill.NoDataAsNone = *noDataAsNone
		case "axis_order":
			config.Drill.AxisOrder = *axisOrder
		case "database_url":
			config.Drill.DatabaseURL = *databaseURL
		case "memcache":
			config.Drill.Memcache = *memcacheAddr
		case "gdal_data":
			config.GDALData = *gdalData
		case "metrics_dir":
			config.MetricsDir = *metricsDir
		case "v":
			config.Verbose = *verbose
		}
	})

	switch flag.NArg() {
	case 0:
	case 4:
		lat, err1 := strconv.ParseFloat(flag.Arg(2), 64)
		lon, err2 := strconv.ParseFloat(flag.Arg(3), 64)
		if err1 != nil || err2 != nil {
			log.Printf("latitude and longitude must be numbers: %s %s", flag.Arg(2), flag.Arg(3))
			return 2
		}
		config.Drill.InputDir = flag.Arg(0)
		config.Drill.OutputFile = flag.Arg(1)
		config.Drill.Latitude = &lat
		config.Drill.Longitude = &lon
	default:
		flag.Usage()
		return 2
	}

	if err = config.ValidateDrill(); err != nil {
		log.Printf("%v", err)
		return 2
	}

	dir, warning := utils.LocateGDALData(config.GDALData)
	if len(warning) > 0 {
		log.Printf("%s", warning)
	}
	if err = gp.InitGdal(dir); err != nil {
		log.Printf("%v", err)
		return 1
	}

	logger, err := metrics.NewRunLogger(config.MetricsDir, config.Verbose)
	if err != nil {
		log.Printf("Failed to open metrics log: %v", err)
		return 1
	}
	if c, ok := logger.(io.Closer); ok {
		defer c.Close()
	}

	sinks := []processor.SeriesSink{store.NewCSVSink(config.Drill.OutputFile)}
	if len(config.Drill.DatabaseURL) > 0 {
		pgSink, err := store.NewPostgresSink(config.Drill.DatabaseURL, "")
		if err != nil {
			log.Printf("%v", err)
			return 1
		}
		defer pgSink.Close()
		sinks = append(sinks, pgSink)
	}

	var cache processor.SampleCache
	if len(config.Drill.Memcache) > 0 {
		// lazy connection; errors surface as misses
		mc := store.NewSampleCache(config.Drill.Memcache)
		mc.Verbose = config.Verbose
		cache = mc
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if config.Verbose {
		log.Printf("Opening '%s' for writing. Truncating if it already exists.", config.Drill.OutputFile)
	}
	pipeline := processor.InitDrillPipeline(&config.Drill, gp.NewRasterIO(), cache, sinks, logger, config.Verbose)
	series, err := pipeline.Process(ctx)

	passed, failed := utils.StatusLabels()
	if err != nil {
		fmt.Printf("Drill: %s\n", failed)
		log.Printf("%v", err)
		var cfgErr *utils.ConfigError
		if errors.As(err, &cfgErr) {
			return 2
		}
		return 1
	}
	fmt.Printf("Drilled %d rasters at %d points: %s\n", len(series.Rows), len(series.Points), passed)
	return 0
}
