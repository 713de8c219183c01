package processor

import (
	"time"
)

// SeriesTimeLayout renders row timestamps in drill output.
const SeriesTimeLayout = "2006-01-02 15:04:05"

// SeriesRow holds the readings of all drill points in one raster.
type SeriesRow struct {
	Raster   string
	Time     time.Time
	Readings []Reading
}

// DrillSeries is a point time series: one column per point, one row per
// time step in ascending order without duplicate timestamps.
type DrillSeries struct {
	Points []DrillPoint
	Rows   []SeriesRow
}

// SeriesSink persists a drilled series.
type SeriesSink interface {
	WriteSeries(series *DrillSeries) error
}

// Values returns the column of readings for point i.
func (s *DrillSeries) Values(i int) []Reading {
	vals := make([]Reading, 0, len(s.Rows))
	for _, row := range s.Rows {
		vals = append(vals, row.Readings[i])
	}
	return vals
}

// FormatValue renders a reading for text output; missing readings are
// empty.
func FormatValue(r Reading) string {
	if r.Missing {
		return ""
	}
	return formatFloat(r.Value)
}
