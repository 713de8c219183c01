package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/nci/csvgrid/processor"
)

// CSVSink writes a drilled series as a delimited text file: a timestamp
// column followed by one value column per drill point. An existing file is
// replaced.
type CSVSink struct {
	Path string
}

func NewCSVSink(path string) *CSVSink {
	return &CSVSink{Path: path}
}

func (s *CSVSink) WriteSeries(series *processor.DrillSeries) error {
	dir := filepath.Dir(s.Path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		log.Printf("Creating target directory %s", dir)
		if err = os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	partial := s.Path + processor.PartialSuffix
	f, err := os.Create(partial)
	if err != nil {
		return err
	}

	err = writeCSV(f, series)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(partial)
		return fmt.Errorf("writing %s: %v", s.Path, err)
	}
	return os.Rename(partial, s.Path)
}

func writeCSV(out io.Writer, series *processor.DrillSeries) error {
	w := csv.NewWriter(out)

	header := []string{"timestamp"}
	for _, pt := range series.Points {
		header = append(header, pt.Header())
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, row := range series.Rows {
		rec := []string{row.Time.Format(processor.SeriesTimeLayout)}
		for _, r := range row.Readings {
			rec = append(rec, processor.FormatValue(r))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
