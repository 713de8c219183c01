package processor

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/nci/csvgrid/metrics"
	"github.com/nci/csvgrid/utils"
)

// DrillPipeline samples every raster of a directory at one or more points
// and hands the resulting series to its sinks.
type DrillPipeline struct {
	Config  *utils.DrillConfig
	Sampler *Sampler
	Sinks   []SeriesSink
	Metrics metrics.Logger
	Verbose bool
}

func InitDrillPipeline(config *utils.DrillConfig, rio RasterIO, cache SampleCache, sinks []SeriesSink, logger metrics.Logger, verbose bool) *DrillPipeline {
	return &DrillPipeline{
		Config:  config,
		Sampler: NewSampler(rio, config.AxisOrder, cache),
		Sinks:   sinks,
		Metrics: logger,
		Verbose: verbose,
	}
}

// Points returns the drill targets: the configured coordinate or the
// points of the GeoJSON file.
func (dp *DrillPipeline) Points() ([]DrillPoint, error) {
	cfg := dp.Config
	if len(cfg.Points) > 0 {
		return LoadDrillPoints(cfg.Points)
	}
	if cfg.Latitude == nil || cfg.Longitude == nil {
		return nil, &utils.ConfigError{Option: "latitude/longitude", Msg: "no drill target"}
	}
	return []DrillPoint{{Lat: *cfg.Latitude, Lon: *cfg.Longitude}}, nil
}

func (dp *DrillPipeline) Process(ctx context.Context) (*DrillSeries, error) {
	cfg := dp.Config

	points, err := dp.Points()
	if err != nil {
		return nil, err
	}

	format, err := utils.NewNameFormat(cfg.NameFormat)
	if err != nil {
		return nil, err
	}

	pattern, err := ParseFilePattern(cfg.Pattern)
	if err != nil {
		return nil, err
	}

	inputs, err := Discover(cfg.InputDir, pattern, format, true)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		log.Printf("No rasters found in %s", cfg.InputDir)
	}

	series := &DrillSeries{Points: points}
	for _, in := range inputs {
		if err = ctx.Err(); err != nil {
			return nil, err
		}

		row, err := dp.drillRaster(in, points)
		if err != nil {
			return nil, err
		}

		series.Rows = append(series.Rows, row)
	}

	for _, sink := range dp.Sinks {
		if err = sink.WriteSeries(series); err != nil {
			return series, err
		}
	}
	return series, nil
}

func (dp *DrillPipeline) drillRaster(in SeriesInput, points []DrillPoint) (SeriesRow, error) {
	rasterPath := filepath.Join(dp.Config.InputDir, in.Name)
	row := SeriesRow{Raster: rasterPath, Time: in.Time}

	for _, pt := range points {
		mc := metrics.NewMetricsCollector(dp.Metrics, metrics.OpDrill, rasterPath)
		mc.Info.Timestamp = in.Time.Format(time.RFC3339)

		r, err := dp.Sampler.SampleValue(rasterPath, pt.Lat, pt.Lon, dp.Config.NoDataAsNone)
		if err != nil {
			mc.Log("", err)
			return row, err
		}
		mc.Log(fmt.Sprintf("%v,%v=%s", pt.Lon, pt.Lat, FormatValue(r)), nil)
		if dp.Verbose {
			log.Printf("Value at %v: %s", in.Time.Format(SeriesTimeLayout), FormatValue(r))
		}
		row.Readings = append(row.Readings, r)
	}
	return row, nil
}
