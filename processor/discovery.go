package processor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	goeval "github.com/edisonguo/govaluate"
	"github.com/nci/csvgrid/utils"
)

// ParseFilePattern compiles a file filter expression such as
// "name =~ '[.]csv$' && type == 'f'". The variables are path, name and
// type ("f" for regular files).
func ParseFilePattern(pattern string) (*goeval.EvaluableExpression, error) {
	if len(pattern) == 0 {
		return nil, nil
	}

	expr, err := goeval.NewEvaluableExpression(pattern)
	if err != nil {
		return nil, &utils.ConfigError{Option: "pattern", Msg: pattern, Err: err}
	}

	validVariables := map[string]struct{}{"path": struct{}{}, "name": struct{}{}, "type": struct{}{}}
	for _, token := range expr.Tokens() {
		if token.Kind == goeval.VARIABLE {
			varName, ok := token.Value.(string)
			if !ok {
				return nil, &utils.ConfigError{Option: "pattern", Msg: fmt.Sprintf("variable token '%v' failed to cast string", token.Value)}
			}
			if _, found := validVariables[varName]; !found {
				return nil, &utils.ConfigError{Option: "pattern", Msg: fmt.Sprintf("variable %v is not supported. Valid variables are path, name and type", varName)}
			}
		}
	}
	return expr, nil
}

func evaluatePattern(pattern *goeval.EvaluableExpression, filePath string) (bool, error) {
	parameters := map[string]interface{}{"type": "f", "path": filePath, "name": filepath.Base(filePath)}
	result, err := pattern.Evaluate(parameters)
	if err != nil {
		return false, fmt.Errorf("pattern expression: %v", err)
	}

	val, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("pattern expression: result '%v' is not boolean", result)
	}
	return val, nil
}

// Discover lists the regular files directly inside dir that match pattern
// and orders them for processing. With a format, names are parsed into
// timestamps; requireTime makes a name that does not parse a ConfigError.
// Inputs are sorted by time when every name carries one, otherwise by name.
func Discover(dir string, pattern *goeval.EvaluableExpression, format *utils.NameFormat, requireTime bool) ([]SeriesInput, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("Could not open dir: %v", err)
	}

	var inputs []SeriesInput
	allTimed := true
	for _, ent := range entries {
		filePath := filepath.Join(dir, ent.Name())
		st, err := os.Stat(filePath)
		if err != nil || !st.Mode().IsRegular() {
			continue
		}

		if pattern != nil {
			ok, err := evaluatePattern(pattern, filePath)
			if err != nil {
				return nil, &utils.ConfigError{Option: "pattern", Msg: filePath, Err: err}
			}
			if !ok {
				continue
			}
		}

		in := SeriesInput{Name: ent.Name()}
		if format != nil {
			ts, err := format.Parse(in.Name)
			if err == nil {
				in.Time = ts
				in.HasTime = true
			} else if requireTime {
				return nil, err
			}
		}
		if !in.HasTime {
			allTimed = false
		}
		inputs = append(inputs, in)
	}

	if allTimed {
		sort.SliceStable(inputs, func(i, j int) bool {
			if inputs[i].Time.Equal(inputs[j].Time) {
				return inputs[i].Name < inputs[j].Name
			}
			return inputs[i].Time.Before(inputs[j].Time)
		})
	} else {
		sort.Slice(inputs, func(i, j int) bool { return inputs[i].Name < inputs[j].Name })
	}
	return inputs, nil
}
