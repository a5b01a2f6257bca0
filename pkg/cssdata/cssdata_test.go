package cssdata

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const colorDoc = `{
  "spec": {"title": "CSS Color Module Level 4", "url": "https://drafts.csswg.org/css-color-4/"},
  "properties": [
    {"name": "color", "value": "<color>", "initial": "CanvasText", "href": "https://drafts.csswg.org/css-color-4/#propdef-color"}
  ],
  "values": [
    {"name": "rgb()", "type": "function", "value": "rgb( <percentage>{3} )"}
  ],
  "selectors": []
}`

func TestSpecDataRoundTripPreservesUnknownKeys(t *testing.T) {
	var spec SpecData
	require.NoError(t, json.Unmarshal([]byte(colorDoc), &spec))

	assert.Equal(t, "CSS Color Module Level 4", spec.SpecTitle())
	require.Len(t, spec.Properties, 1)
	assert.Equal(t, "color", spec.Properties[0].Name)
	assert.JSONEq(t, `"CanvasText"`, string(spec.Properties[0].Extra["initial"]))
	assert.Nil(t, spec.AtRules)
	assert.True(t, spec.Values[0].IsFunction())
	assert.Equal(t, []string{"properties", "selectors", "spec", "values"}, spec.Keys())

	out, err := json.Marshal(spec)
	require.NoError(t, err)
	assert.JSONEq(t, colorDoc, string(out))
}

func TestFeatureRecordKeyOrder(t *testing.T) {
	rec := FeatureRecord{
		Name: "if()",
		Type: TypeFunction,
		Href: "https://drafts.csswg.org/css-values-5/#funcdef-if",
		Compatibility: &Compatibility{
			Supported: false,
			Browsers:  1,
			Support:   &BrowserSupport{Chrome: true},
		},
		Extra: map[string]json.RawMessage{"prose": json.RawMessage(`"x"`)},
	}

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t,
		`{"name":"if()","type":"function","href":"https://drafts.csswg.org/css-values-5/#funcdef-if","prose":"x",`+
			`"compatibility":{"supported":false,"browsers":1,"flagged":false,"support":{"chrome":true,"firefox":false,"safari":false}}}`,
		string(out))
}

func TestGrammarIsNotHTMLEscaped(t *testing.T) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	require.NoError(t, enc.Encode(FeatureRecord{Name: "if()", Value: "if( <boolean-condition> , <value> )"}))
	assert.Contains(t, buf.String(), "<boolean-condition>")
}

func TestEmptyListIsKeptDistinctFromMissing(t *testing.T) {
	var spec SpecData
	require.NoError(t, json.Unmarshal([]byte(`{"properties": []}`), &spec))
	assert.NotNil(t, spec.Properties)
	assert.Nil(t, spec.Values)

	out, err := json.Marshal(spec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"properties": []}`, string(out))
}

func TestFeatureRecordRejectsNonObject(t *testing.T) {
	var rec FeatureRecord
	assert.Error(t, json.Unmarshal([]byte(`["color"]`), &rec))
	assert.Error(t, json.Unmarshal([]byte(`{"name": 3}`), &rec))
}

func TestDatasetCloneIsDeep(t *testing.T) {
	ds := Dataset{
		"css-color-4": {
			Properties: []FeatureRecord{{
				Name:          "color",
				Compatibility: &Compatibility{Supported: true, Browsers: 3, Support: &BrowserSupport{Chrome: true}},
				Extra:         map[string]json.RawMessage{"initial": json.RawMessage(`"CanvasText"`)},
			}},
		},
	}

	clone := ds.Clone()
	clone["css-color-4"].Properties[0].Href = "changed"
	clone["css-color-4"].Properties[0].Compatibility.Support.Chrome = false
	clone["css-color-4"].Properties[0].Extra["initial"] = json.RawMessage(`"red"`)
	clone["css-color-4"].Note = "note"
	delete(clone, "css-color-4")

	orig := ds["css-color-4"]
	require.NotNil(t, orig)
	assert.Empty(t, orig.Properties[0].Href)
	assert.True(t, orig.Properties[0].Compatibility.Support.Chrome)
	assert.JSONEq(t, `"CanvasText"`, string(orig.Properties[0].Extra["initial"]))
	assert.Empty(t, orig.Note)
}

func TestDatasetWalk(t *testing.T) {
	ds := Dataset{
		"b": {Values: []FeatureRecord{{Name: "v1"}}},
		"a": {Properties: []FeatureRecord{{Name: "p1"}}, AtRules: []FeatureRecord{{Name: "@a"}}},
	}

	var seen []string
	ds.Walk(func(shortname string, kind ListKind, rec *FeatureRecord) bool {
		seen = append(seen, shortname+"/"+kind.String()+"/"+rec.Name)
		return true
	})
	assert.Equal(t, []string{"a/properties/p1", "a/atrules/@a", "b/values/v1"}, seen)
	assert.Equal(t, 3, ds.FeatureCount())
	assert.Equal(t, []string{"a", "b"}, ds.Shortnames())
}

func TestParseSpecIndex(t *testing.T) {
	raw := []byte(`{"results":[{"shortname":"css2","title":"CSS 2.1","nightly":{"url":"x"},
		"release":{"status":"Recommendation"},"groups":[{"name":"Cascading Style Sheets (CSS) Working Group"}]}]}`)

	idx, err := ParseSpecIndex(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, []byte(idx.Raw))

	entry, ok := idx.Lookup("css2")
	require.True(t, ok)
	assert.Equal(t, "Recommendation", entry.Status())
	assert.True(t, entry.InGroup("Cascading Style Sheets (CSS) Working Group"))

	_, ok = idx.Lookup("missing")
	assert.False(t, ok)

	_, err = ParseSpecIndex([]byte(`{"results":`))
	assert.Error(t, err)
}
