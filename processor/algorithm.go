package processor

import (
	"fmt"
	"strconv"
	"strings"
)

// GridAlgorithm is a GDAL grid algorithm with its tuning parameters.
// Params are emitted in order, so String() is stable.
type GridAlgorithm struct {
	Name   string
	Params []AlgorithmParam
}

type AlgorithmParam struct {
	Key   string
	Value string
}

const (
	AlgorithmNearest = "nearest"
	AlgorithmInvDist = "invdist"
)

// NearestNeighbour with a zero search radius never invents values: a cell
// either holds a source point's value or nodata.
func NearestNeighbour(nodata float64) GridAlgorithm {
	return GridAlgorithm{
		Name: AlgorithmNearest,
		Params: []AlgorithmParam{
			{"radius1", "0.0"},
			{"radius2", "0.0"},
			{"angle", "0.0"},
			{"nodata", formatFloat(nodata)},
		},
	}
}

// InverseDistance weights points by distance to the power of 2 within a
// radius of 1 map unit, without a point count limit.
func InverseDistance(nodata float64) GridAlgorithm {
	return GridAlgorithm{
		Name: AlgorithmInvDist,
		Params: []AlgorithmParam{
			{"power", "2.0"},
			{"smoothing", "0.01"},
			{"radius1", "1.0"},
			{"radius2", "1.0"},
			{"angle", "0.0"},
			{"max_points", "0"},
			{"min_points", "0"},
			{"nodata", formatFloat(nodata)},
		},
	}
}

// ParseAlgorithm accepts "nearest", "invdist" or a complete GDAL algorithm
// string such as "invdist:power=3.0:nodata=-1". Complete strings are
// passed to GDAL unchanged; GDAL rejects unknown algorithms.
func ParseAlgorithm(algSpec string, nodata float64) (GridAlgorithm, error) {
	algSpec = strings.TrimSpace(algSpec)
	switch algSpec {
	case "", AlgorithmNearest:
		return NearestNeighbour(nodata), nil
	case AlgorithmInvDist:
		return InverseDistance(nodata), nil
	}

	parts := strings.Split(algSpec, ":")
	alg := GridAlgorithm{Name: parts[0]}
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			return GridAlgorithm{}, fmt.Errorf("malformed algorithm parameter '%s' in '%s'", p, algSpec)
		}
		if _, err := strconv.ParseFloat(kv[1], 64); err != nil {
			return GridAlgorithm{}, fmt.Errorf("algorithm parameter '%s' in '%s': %v", kv[0], algSpec, err)
		}
		alg.Params = append(alg.Params, AlgorithmParam{kv[0], kv[1]})
	}
	return alg, nil
}

// NoData is the value the algorithm writes to empty cells.
func (a GridAlgorithm) NoData() (float64, bool) {
	for _, p := range a.Params {
		if p.Key == "nodata" {
			v, err := strconv.ParseFloat(p.Value, 64)
			return v, err == nil
		}
	}
	return 0, false
}

func (a GridAlgorithm) String() string {
	var sb strings.Builder
	sb.WriteString(a.Name)
	for _, p := range a.Params {
		fmt.Fprintf(&sb, ":%s=%s", p.Key, p.Value)
	}
	return sb.String()
}

// formatFloat keeps one decimal for integral values, "2.0" rather than "2".
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
