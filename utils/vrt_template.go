package utils

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"

	"github.com/edisonguo/jet"
)

// Tokens substituted into a descriptor template for every input file.
const (
	TokenName     = "$NAME$"
	TokenFilename = "$FILENAME$"
	TokenPath     = "$PATH$"
)

// DefaultVRTTemplate describes a header-less point CSV to the OGR VRT
// driver. Its jet placeholders are resolved once per run, the $TOKEN$s once
// per input file.
const DefaultVRTTemplate = `
<OGRVRTDataSource>
    <OGRVRTLayer name="$NAME$">
        <SrcDataSource>$PATH$/$FILENAME$</SrcDataSource>
        <GeometryType>wkbPoint</GeometryType>
        <LayerSRS>{{ .SRS }}</LayerSRS>
        <GeometryField separator="{{ .Separator }}" encoding="PointFromColumns" x="{{ .XField }}" y="{{ .YField }}" z="{{ .ZField }}"/>
    </OGRVRTLayer>
</OGRVRTDataSource>
`

// DescriptorSettings are the per-run values of the default template.
type DescriptorSettings struct {
	SRS       string
	Separator string
	XField    string
	YField    string
	ZField    string
}

// RenderVRTTemplate resolves the run-level placeholders of tmpl. Values are
// XML escaped on output.
func RenderVRTTemplate(tmpl string, settings DescriptorSettings) (string, error) {
	view := jet.NewSet(jet.SafeWriter(func(w io.Writer, b []byte) {
		xml.EscapeText(w, b)
	}))

	template, err := view.LoadTemplate("descriptor.vrt", tmpl)
	if err != nil {
		return "", fmt.Errorf("descriptor template: %v", err)
	}

	var buf bytes.Buffer
	if err = template.Execute(&buf, make(jet.VarMap), settings); err != nil {
		return "", fmt.Errorf("descriptor template: %v", err)
	}
	return buf.String(), nil
}

// LoadVRTTemplate returns the descriptor template for a run. A configured
// template file is used verbatim; when it is unset or not a file the
// default template is rendered instead.
func LoadVRTTemplate(templateFile string, settings DescriptorSettings) (string, error) {
	if len(templateFile) > 0 {
		st, err := os.Stat(templateFile)
		if err == nil && st.Mode().IsRegular() {
			b, err := ioutil.ReadFile(templateFile)
			if err != nil {
				return "", &ConfigError{Option: "vrt_template", Msg: templateFile, Err: err}
			}
			return string(b), nil
		}
		log.Printf("'%s' is not a file, using default VRT template", templateFile)
	}
	return RenderVRTTemplate(DefaultVRTTemplate, settings)
}
