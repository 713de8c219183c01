package processor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/nci/csvgrid/metrics"
	"github.com/nci/csvgrid/utils"
)

// GapFiller rasterizes a chronologically ordered series of point files and
// backfills missing time steps with no data rasters so that the output
// series has one raster per Interval.
type GapFiller struct {
	Template    string
	InputDir    string
	OutputDir   string
	Rasterizer  *Rasterizer
	Synthesizer *NoDataSynthesizer
	Format      *utils.NameFormat

	// Interval of zero disables gap detection.
	Interval time.Duration

	// Reference selects the geometry of synthesized rasters:
	// utils.GapReferenceFirst uses the first real raster of the run,
	// utils.GapReferencePreceding the latest real raster before the gap.
	Reference string

	// SkipFailed logs and skips inputs that fail to grid instead of
	// aborting. A skipped input is not a real time step.
	SkipFailed bool

	Metrics metrics.Logger
	Verbose bool
}

// ProcessSeries handles inputs in the order given. It does not sort.
// Cancelling ctx stops the run between files.
func (g *GapFiller) ProcessSeries(ctx context.Context, inputs []SeriesInput) (*SeriesReport, error) {
	if g.Interval > 0 {
		if g.Format == nil {
			return nil, &utils.ConfigError{Option: "name_format", Msg: "gap filling requires a name format"}
		}
		for _, in := range inputs {
			if !in.HasTime {
				return nil, &utils.ConfigError{Option: "name_format", Msg: fmt.Sprintf("no timestamp for %s", in.Name)}
			}
		}
	}

	report := &SeriesReport{}
	var lastTime time.Time
	hasLast := false
	firstRaster := ""
	prevRaster := ""

	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if g.Interval > 0 && hasLast {
			ref := firstRaster
			if g.Reference == utils.GapReferencePreceding {
				ref = prevRaster
			}
			for lastTime.Add(g.Interval).Before(in.Time) {
				lastTime = lastTime.Add(g.Interval)
				out, err := g.synthesize(ref, lastTime)
				if err != nil {
					return report, err
				}
				report.Synthesized = append(report.Synthesized, out)
			}
		}

		raster, err := g.rasterize(in)
		if err != nil {
			var interpErr *utils.InterpolationError
			if g.SkipFailed && errors.As(err, &interpErr) {
				log.Printf("Skipping %s: %v", in.Name, err)
				report.Skipped = append(report.Skipped, in.Name)
				continue
			}
			return report, err
		}
		report.Rasterized = append(report.Rasterized, raster)

		if len(firstRaster) == 0 {
			firstRaster = raster
		}
		prevRaster = raster
		lastTime = in.Time
		hasLast = true
	}

	return report, nil
}

func (g *GapFiller) rasterize(in SeriesInput) (string, error) {
	mc := metrics.NewMetricsCollector(g.Metrics, metrics.OpRasterize, filepath.Join(g.InputDir, in.Name))
	if in.HasTime {
		mc.Info.Timestamp = in.Time.Format(time.RFC3339)
	}

	descriptor := BuildDescriptor(g.Template, g.InputDir, in.Name)
	raster, err := g.Rasterizer.Rasterize(descriptor, in.Name)
	mc.Log(raster, err)
	if err == nil && g.Verbose {
		log.Printf("Rasterized %s -> %s", in.Name, raster)
	}
	return raster, err
}

func (g *GapFiller) synthesize(reference string, ts time.Time) (string, error) {
	out := filepath.Join(g.OutputDir, g.Format.Format(ts)+".tif")
	mc := metrics.NewMetricsCollector(g.Metrics, metrics.OpNoData, reference)
	mc.Info.Timestamp = ts.Format(time.RFC3339)

	err := g.Synthesizer.Synthesize(reference, out)
	mc.Log(out, err)
	if err != nil {
		return "", err
	}
	if g.Verbose {
		log.Printf("Synthesized no data raster %s", out)
	}
	return out, nil
}
