package corrections

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/cssmap/pkg/cssdata"
	"github.com/agentstation/cssmap/pkg/errors"
)

func TestDefaultTable(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "css-color", table.FetchName("css-color-4"))
	assert.Equal(t, "css-easing", table.FetchName("css-easing-2"))
	assert.Equal(t, "css-grid-3", table.FetchName("css-grid-3"))
	assert.Equal(t, "Current work is being done in css-color-4, but the recommendation is css-color-3.",
		table.Note("css-color-4"))

	require.Len(t, table.Inject["css-values-5"], 1)
	assert.Equal(t, Record{
		Name:  "if()",
		Type:  "value",
		Value: "if( <boolean-condition> , <value> , <value>? )",
		Href:  "https://drafts.csswg.org/css-values-5/#funcdef-if",
	}, table.Inject["css-values-5"][0])

	assert.Equal(t, 12, table.PatchCount())
	assert.Equal(t, "https://drafts.csswg.org/css-anchor-position-2/#at-ruledef-container",
		table.Patches["css-anchor-position-2"]["@container"].Href)
}

func TestNilTable(t *testing.T) {
	var table *Table
	assert.Equal(t, "css-color-4", table.FetchName("css-color-4"))
	assert.Empty(t, table.Note("css-color-4"))
}

func TestParseRejectsBadTables(t *testing.T) {
	_, err := Parse([]byte("aliases:\n  css-color-4: css-color\nunknown: true\n"), "bad.yaml")
	var parseErr *errors.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "bad.yaml", parseErr.File)

	_, err = Parse([]byte("patches:\n  compat:\n    \"@media\": {}\n"), "empty-href.yaml")
	assert.True(t, errors.IsValidationError(err))

	_, err = Parse([]byte("inject:\n  css-values-5:\n    - type: value\n"), "no-name.yaml")
	assert.True(t, errors.IsValidationError(err))
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrections.yaml")
	require.NoError(t, os.WriteFile(path, []byte("notes:\n  css2: Superseded.\n"), 0o600))

	table, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Superseded.", table.Note("css2"))
	assert.Empty(t, table.Aliases)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)
}

func injectTable() *Table {
	return &Table{Inject: map[string][]Record{
		"css-values-5": {{Name: "if()", Type: "value"}},
		"not-fetched":  {{Name: "x()"}},
	}}
}

func TestInjectIsIdempotent(t *testing.T) {
	ds := cssdata.Dataset{
		"css-values-5": {Values: []cssdata.FeatureRecord{{Name: "calc()", Type: "function"}}},
	}

	once, injected := Inject(ds, injectTable())
	assert.Equal(t, []Injection{{Spec: "css-values-5", Name: "if()"}}, injected)
	twice, injected := Inject(once, injectTable())
	assert.Empty(t, injected)

	assert.Len(t, once["css-values-5"].Values, 2)
	assert.Len(t, twice["css-values-5"].Values, len(once["css-values-5"].Values))
	assert.Len(t, ds["css-values-5"].Values, 1, "input is not modified")
	assert.NotContains(t, twice, "not-fetched")
}

func TestInjectCreatesValuesList(t *testing.T) {
	ds := cssdata.Dataset{"css-values-5": {Properties: []cssdata.FeatureRecord{{Name: "if()"}}}}

	out, injected := Inject(ds, injectTable())
	require.Len(t, injected, 1)
	require.Len(t, out["css-values-5"].Values, 1)
	assert.Equal(t, "if()", out["css-values-5"].Values[0].Name)
}

func TestPatchNeverOverwrites(t *testing.T) {
	table := &Table{Patches: map[string]map[string]HrefPatch{
		"css-sizing-4": {
			"width":  {Href: "https://drafts.csswg.org/css-sizing-4/#propdef-width"},
			"height": {Href: "https://drafts.csswg.org/css-sizing-4/#propdef-height"},
		},
		"mediaqueries-5": {"@media": {Href: "https://drafts.csswg.org/mediaqueries-5/#at-ruledef-media"}},
	}}
	ds := cssdata.Dataset{
		"css-sizing-4": {Properties: []cssdata.FeatureRecord{
			{Name: "width", Href: "https://example.test/existing"},
			{Name: "height"},
			{Name: "block-size"},
		}},
		"mediaqueries-5": {AtRules: []cssdata.FeatureRecord{{Name: "@media"}}},
	}

	out, patched := Patch(ds, table)

	props := out["css-sizing-4"].Properties
	assert.Equal(t, "https://example.test/existing", props[0].Href)
	assert.Equal(t, "https://drafts.csswg.org/css-sizing-4/#propdef-height", props[1].Href)
	assert.Empty(t, props[2].Href)
	assert.Equal(t, "https://drafts.csswg.org/mediaqueries-5/#at-ruledef-media", out["mediaqueries-5"].AtRules[0].Href)
	assert.Len(t, patched, 2)
	assert.Empty(t, ds["css-sizing-4"].Properties[1].Href, "input is not modified")

	again, patched := Patch(out, table)
	assert.Empty(t, patched)
	assert.Equal(t, out, again)
}
