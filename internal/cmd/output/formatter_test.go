package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/cssmap/internal/cmd/table"
	"github.com/agentstation/cssmap/pkg/errors"
)

type probe struct {
	Name      string `json:"name"`
	PageSize  int    `json:"page_size"`
	Supported bool
	hidden    string
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"table", "JSON", "yaml", "wide", ""} {
		_, err := ParseFormat(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseFormat("csv")
	assert.True(t, errors.IsValidationError(err))
}

func TestDetectFormatPrefersExplicit(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("YAML"))
}

func TestJSONFormatterKeepsGrammar(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON).Format(&buf, map[string]string{"value": "<length> && <color>"}))
	assert.Contains(t, buf.String(), `"<length> && <color>"`)
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatYAML).Format(&buf, probe{Name: "color", PageSize: 9}))
	assert.Contains(t, buf.String(), "name: color")
	assert.Contains(t, buf.String(), "page_size: 9")
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	data := table.Data{
		Headers:         []string{"Name", "Browsers"},
		Rows:            [][]string{{"color", "3/3"}, {"if()", "0/3"}},
		ColumnAlignment: []table.Align{table.AlignLeft, table.AlignRight},
	}
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, data))
	out := buf.String()
	assert.Contains(t, out, "color")
	assert.Contains(t, out, "if()")
	assert.Contains(t, out, "3/3")
}

func TestTableFormatterReflectsStructs(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, []probe{{Name: "gap", PageSize: 9, Supported: true}}))
	out := buf.String()
	assert.Contains(t, out, "gap")
	assert.Contains(t, out, "true")
	assert.NotContains(t, out, "hidden")

	buf.Reset()
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, map[string]int{"total": 3}))
	assert.Contains(t, buf.String(), `"total": 3`)
}

func TestWrite(t *testing.T) {
	rows := func(wide bool) table.Data {
		h := []string{"Name"}
		if wide {
			h = append(h, "Href")
		}
		return table.Data{Headers: h, Rows: [][]string{make([]string, len(h))}}
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, []string{"color"}, rows))
	assert.JSONEq(t, `["color"]`, buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, FormatWide, nil, rows))
	assert.Contains(t, strings.ToUpper(buf.String()), "HREF")
}
