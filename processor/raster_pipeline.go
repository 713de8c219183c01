package processor

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/nci/csvgrid/metrics"
	"github.com/nci/csvgrid/utils"
)

// RasterPipeline converts a directory of point CSV files into a gap
// filled GeoTIFF series.
type RasterPipeline struct {
	Config  *utils.GridConfig
	Gridder Gridder
	IO      RasterIO
	Metrics metrics.Logger
	Verbose bool
}

func InitRasterPipeline(config *utils.GridConfig, gridder Gridder, rio RasterIO, logger metrics.Logger, verbose bool) *RasterPipeline {
	return &RasterPipeline{
		Config:  config,
		Gridder: gridder,
		IO:      rio,
		Metrics: logger,
		Verbose: verbose,
	}
}

// Prepare resolves everything a run needs from the configuration. It
// writes nothing, so configuration errors surface before any output.
func (p *RasterPipeline) Prepare() (*GapFiller, []SeriesInput, error) {
	cfg := p.Config

	template, err := utils.LoadVRTTemplate(cfg.VRTTemplate, cfg.DescriptorSettings())
	if err != nil {
		return nil, nil, err
	}

	alg, err := ParseAlgorithm(cfg.Algorithm, cfg.NoData)
	if err != nil {
		return nil, nil, &utils.ConfigError{Option: "algorithm", Msg: cfg.Algorithm, Err: err}
	}

	format, err := utils.NewNameFormat(cfg.NameFormat)
	if err != nil {
		return nil, nil, err
	}

	pattern, err := ParseFilePattern(cfg.Pattern)
	if err != nil {
		return nil, nil, err
	}

	inputs, err := Discover(cfg.InputDir, pattern, format, cfg.Interval() > 0)
	if err != nil {
		return nil, nil, err
	}

	filler := &GapFiller{
		Template:    template,
		InputDir:    cfg.InputDir,
		OutputDir:   cfg.OutputDir,
		Rasterizer:  NewRasterizer(p.Gridder, alg, cfg.OutputDir),
		Synthesizer: NewNoDataSynthesizer(p.IO),
		Format:      format,
		Interval:    cfg.Interval(),
		Reference:   cfg.GapReference,
		SkipFailed:  cfg.SkipFailed,
		Metrics:     p.Metrics,
		Verbose:     p.Verbose,
	}
	return filler, inputs, nil
}

func (p *RasterPipeline) Process(ctx context.Context) (*SeriesReport, error) {
	filler, inputs, err := p.Prepare()
	if err != nil {
		return nil, err
	}

	if len(inputs) == 0 {
		log.Printf("No input files found in %s", p.Config.InputDir)
		return &SeriesReport{}, nil
	}
	if p.Verbose {
		log.Printf("Found %d input files in %s, algorithm %s", len(inputs), p.Config.InputDir, filler.Rasterizer.Algorithm)
	}

	if _, err = os.Stat(p.Config.OutputDir); os.IsNotExist(err) {
		log.Printf("Creating target directory %s", p.Config.OutputDir)
	}
	if err = os.MkdirAll(p.Config.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %v", err)
	}

	return filler.ProcessSeries(ctx, inputs)
}
