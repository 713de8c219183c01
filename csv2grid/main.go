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
	"syscall"

	"github.com/nci/csvgrid/metrics"
	"github.com/nci/csvgrid/processor"
	"github.com/nci/csvgrid/utils"
	gp "github.com/nci/csvgrid/worker/gdalprocess"
)

func main() {
	os.Exit(run())
}

func run() int {
	configFile := flag.String("config", "", "YAML run configuration file")
	inputDir := flag.String("input_dir", "", "directory that contains the CSV files")
	outputDir := flag.String("output_dir", "", "directory the GeoTIFFs are written to")
	vrtTemplate := flag.String("vrt_template", "", "OGR VRT template file; $NAME$, $FILENAME$ and $PATH$ are substituted")
	fillInterval := flag.Int("fill_interval", 0, "expected interval between files in minutes; missing steps get no data rasters. 0 disables gap filling")
	nameFormat := flag.String("name_format", utils.DefaultNameFormat, "format of input file names, used to get timestamps")
	pattern := flag.String("pattern", utils.DefaultRasterPattern, "input file filter expression over path, name and type")
	srs := flag.String("srs", utils.DefaultSRS, "spatial reference of the points")
	algorithm := flag.String("algorithm", "nearest", "nearest, invdist or a GDAL grid algorithm string")
	nodata := flag.Float64("nodata", utils.DefaultNoData, "no data value of the generated rasters")
	gapReference := flag.String("gap_reference", utils.GapReferenceFirst, "geometry of gap rasters: first or preceding real raster")
	skipFailed := flag.Bool("skip_failed", false, "log and skip files that fail to grid instead of aborting")
	gdalData := flag.String("gdal_data", "", "GDAL support files directory")
	metricsDir := flag.String("metrics_dir", "", "directory for the JSON metrics log")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [options] [input_dir output_dir]\n", os.Args[0])
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
			config.Grid.InputDir = *inputDir
		case "output_dir":
			config.Grid.OutputDir = *outputDir
		case "vrt_template":
			config.Grid.VRTTemplate = *vrtTemplate
		case "fill_interval":
			config.Grid.FillInterval = *fillInterval
		case "name_format":
			config.Grid.NameFormat = *nameFormat
		case "pattern":
			config.Grid.Pattern = *pattern
		case "srs":
			config.Grid.SRS = *srs
		case "algorithm":
			config.Grid.Algorithm = *algorithm
		case "nodata":
			config.Grid.NoData = *nodata
		case "gap_reference":
			config.Grid.GapReference = *gapReference
		case "skip_failed":
			config.Grid.SkipFailed = *skipFailed
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
	case 2:
		config.Grid.InputDir = flag.Arg(0)
		config.Grid.OutputDir = flag.Arg(1)
	default:
		flag.Usage()
		return 2
	}

	if err = config.ValidateGrid(); err != nil {
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline := processor.InitRasterPipeline(&config.Grid, gp.NewGridder(), gp.NewRasterIO(), logger, config.Verbose)
	report, err := pipeline.Process(ctx)

	passed, failed := utils.StatusLabels()
	if report != nil {
		status := passed
		if err != nil || len(report.Skipped) > 0 {
			status = failed
		}
		fmt.Printf("Rasterized %d, synthesized %d, skipped %d: %s\n", len(report.Rasterized), len(report.Synthesized), len(report.Skipped), status)
	}
	if err != nil {
		log.Printf("%v", err)
		var cfgErr *utils.ConfigError
		if errors.As(err, &cfgErr) {
			return 2
		}
		return 1
	}
	return 0
}
