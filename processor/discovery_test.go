package processor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nci/csvgrid/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilePattern(t *testing.T) {
	expr, err := ParseFilePattern("")
	require.NoError(t, err)
	assert.Nil(t, expr)

	_, err = ParseFilePattern("name =~ '[.]csv$' && type == 'f'")
	require.NoError(t, err)

	_, err = ParseFilePattern("size > 10")
	var cfgErr *utils.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"stationA_20200101-0020.csv",
		"stationA_20200101-0000.csv",
		"stationA_20191231-2350.csv",
		"notes.txt",
	} {
		writeInput(t, dir, name, "")
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.csv"), 0755))

	pattern, err := ParseFilePattern(utils.DefaultRasterPattern)
	require.NoError(t, err)
	format, err := utils.NewNameFormat(testNameFormat)
	require.NoError(t, err)

	inputs, err := Discover(dir, pattern, format, true)
	require.NoError(t, err)
	require.Len(t, inputs, 3)
	assert.Equal(t, "stationA_20191231-2350.csv", inputs[0].Name)
	assert.Equal(t, "stationA_20200101-0000.csv", inputs[1].Name)
	assert.Equal(t, "stationA_20200101-0020.csv", inputs[2].Name)
	assert.True(t, inputs[2].HasTime)
	assert.Equal(t, time.Date(2020, 1, 1, 0, 20, 0, 0, time.UTC), inputs[2].Time)
}

func TestDiscoverUnparseableName(t *testing.T) {
	dir := t.TempDir()
	writeInput(t, dir, "stationA_20200101-0000.csv", "")
	writeInput(t, dir, "other.csv", "")

	pattern, err := ParseFilePattern(utils.DefaultRasterPattern)
	require.NoError(t, err)
	format, err := utils.NewNameFormat(testNameFormat)
	require.NoError(t, err)

	_, err = Discover(dir, pattern, format, true)
	var cfgErr *utils.ConfigError
	assert.True(t, errors.As(err, &cfgErr))

	// without a required time the inputs fall back to name order
	inputs, err := Discover(dir, pattern, format, false)
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	assert.Equal(t, "other.csv", inputs[0].Name)
	assert.False(t, inputs[0].HasTime)
	assert.True(t, inputs[1].HasTime)
}

func TestDiscoverPathVariable(t *testing.T) {
	dir := t.TempDir()
	writeInput(t, dir, "a.tif", "")
	writeInput(t, dir, "a.tif.partial", "")
	writeInput(t, dir, "b.tif", "")

	pattern, err := ParseFilePattern("path =~ '[.]tif$' && name != 'b.tif'")
	require.NoError(t, err)

	inputs, err := Discover(dir, pattern, nil, false)
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	assert.Equal(t, "a.tif", inputs[0].Name)
}

func TestDiscoverMissingDir(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "missing"), nil, nil, false)
	assert.Error(t, err)
}
