package processor

import (
	"os"
	"strings"
	"testing"

	"github.com/nci/csvgrid/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDescriptorReplacesEveryToken(t *testing.T) {
	tmpl := "$NAME$|$NAME$|$FILENAME$|$PATH$/$FILENAME$|$PATH$"
	out := BuildDescriptor(tmpl, "/data/in", "stationA_20200101-0000.csv")

	assert.Equal(t, "stationA_20200101-0000|stationA_20200101-0000|stationA_20200101-0000.csv|/data/in/stationA_20200101-0000.csv|/data/in", out)
	for _, tok := range []string{utils.TokenName, utils.TokenFilename, utils.TokenPath} {
		assert.NotContains(t, out, tok)
	}
}

func TestBuildDescriptorDefaultTemplate(t *testing.T) {
	settings := utils.DescriptorSettings{SRS: "EPSG:31258", Separator: ";", XField: "field_2", YField: "field_1", ZField: "field_3"}
	tmpl, err := utils.RenderVRTTemplate(utils.DefaultVRTTemplate, settings)
	require.NoError(t, err)

	out := BuildDescriptor(tmpl, "/data/in", "inca.csv")
	assert.Contains(t, out, `<OGRVRTLayer name="inca">`)
	assert.Contains(t, out, "<SrcDataSource>/data/in/inca.csv</SrcDataSource>")
	assert.Contains(t, out, "<LayerSRS>EPSG:31258</LayerSRS>")
	assert.False(t, strings.Contains(out, "$"))
}

func TestBuildDescriptorWithoutTokens(t *testing.T) {
	assert.Equal(t, "<broken", BuildDescriptor("<broken", "/x", "a.csv"))
}

func TestDescriptorFileClose(t *testing.T) {
	dir := t.TempDir()
	df, err := WriteDescriptor(dir, "a.csv", "<OGRVRTDataSource/>")
	require.NoError(t, err)
	assert.Equal(t, DescriptorPath(dir, "a.csv"), df.Path)

	_, err = os.Stat(df.Path)
	require.NoError(t, err)

	path := df.Path
	df.Close()
	df.Close()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
