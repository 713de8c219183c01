package metrics

import (
	"bytes"
	"encoding/json"
	"time"
)

// Operation kinds recorded by the pipelines.
const (
	OpRasterize = "rasterize"
	OpNoData    = "nodata"
	OpDrill     = "drill"
)

// OpInfo is one metrics record: a single file level operation.
type OpInfo struct {
	StartTime string        `json:"start_time"`
	Duration  time.Duration `json:"duration"`
	Op        string        `json:"op"`
	Input     string        `json:"input"`
	Output    string        `json:"output,omitempty"`
	Timestamp string        `json:"timestamp,omitempty"`
	Error     string        `json:"error,omitempty"`
}

type MetricsCollector struct {
	Info   *OpInfo
	logger Logger
	start  time.Time
}

// NewMetricsCollector starts timing one operation. A nil logger makes Log a
// no-op.
func NewMetricsCollector(logger Logger, op string, input string) *MetricsCollector {
	start := time.Now()
	return &MetricsCollector{
		Info: &OpInfo{
			StartTime: start.UTC().Format(time.RFC3339Nano),
			Op:        op,
			Input:     input,
		},
		logger: logger,
		start:  start,
	}
}

// Log completes the record with the operation's outcome and hands it to
// the logger.
func (m *MetricsCollector) Log(output string, err error) {
	m.Info.Duration = time.Since(m.start)
	m.Info.Output = output
	if err != nil {
		m.Info.Error = err.Error()
	}
	if m.logger != nil {
		m.logger.Log(m.Info)
	}
}

func (i *OpInfo) ToJSON() (string, error) {
	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(i); err != nil {
		return "", err
	}
	return buf.String(), nil
}
