package differ

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/cssmap/pkg/cssdata"
)

func dataset(t *testing.T, doc string) cssdata.Dataset {
	t.Helper()
	var ds cssdata.Dataset
	require.NoError(t, json.Unmarshal([]byte(doc), &ds))
	return ds
}

const before = `{
  "css-color-4": {
    "properties": [{"name": "color", "href": "https://example.test/color",
      "compatibility": {"supported": false, "browsers": 1, "flagged": false}}],
    "values": [{"name": "oklch()", "type": "function", "value": "oklch( <l> <c> <h> )"}]
  },
  "css-old-1": {"properties": [{"name": "zoom"}]}
}`

const after = `{
  "css-color-4": {
    "properties": [
      {"name": "color", "href": "https://example.test/color",
       "compatibility": {"supported": true, "browsers": 3, "flagged": false}},
      {"name": "opacity"}
    ]
  },
  "css-grid-2": {"properties": [{"name": "gap"}]}
}`

func TestDatasets(t *testing.T) {
	c := New().Datasets(dataset(t, before), dataset(t, after))

	assert.Equal(t, []string{"css-grid-2"}, c.AddedSpecs)
	assert.Equal(t, []string{"css-old-1"}, c.RemovedSpecs)

	want := &Changeset{
		AddedSpecs:   []string{"css-grid-2"},
		RemovedSpecs: []string{"css-old-1"},
		Added:        []FeatureKey{{Spec: "css-color-4", List: cssdata.ListProperties, Name: "opacity"}},
		Updated: []FeatureUpdate{{
			Key: FeatureKey{Spec: "css-color-4", List: cssdata.ListProperties, Name: "color"},
			Changes: []FieldChange{
				{Path: "compatibility.supported", OldValue: "false", NewValue: "true", Type: ChangeTypeUpdate},
				{Path: "compatibility.browsers", OldValue: "1", NewValue: "3", Type: ChangeTypeUpdate},
			},
		}},
		Removed: []FeatureKey{{Spec: "css-color-4", List: cssdata.ListValues, Name: "oklch()"}},
		Summary: Summary{
			SpecsAdded: 1, SpecsRemoved: 1,
			FeaturesAdded: 1, FeaturesUpdated: 1, FeaturesRemoved: 1,
			TotalChanges: 5,
		},
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("Datasets() mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, c.HasChanges())
	assert.Equal(t, "Specs: 1 added, 1 removed; Features: 1 added, 1 updated, 1 removed", c.String())
}

func TestDatasetsIdentical(t *testing.T) {
	ds := dataset(t, before)
	c := New().Datasets(ds, ds.Clone())

	assert.True(t, c.IsEmpty())
	assert.Equal(t, "No changes detected", c.String())
}

func TestIgnoredFields(t *testing.T) {
	c := New(WithIgnoredFields("compatibility")).Datasets(dataset(t, before), dataset(t, after))
	assert.Empty(t, c.Updated)
}

func TestRepeatedNamesAreMatchedByOccurrence(t *testing.T) {
	old := dataset(t, `{"s": {"values": [{"name": "<x>", "value": "a"}, {"name": "<x>", "value": "b"}]}}`)
	cur := dataset(t, `{"s": {"values": [{"name": "<x>", "value": "a"}, {"name": "<x>", "value": "c"}]}}`)

	c := New().Datasets(old, cur)
	require.Len(t, c.Updated, 1)
	assert.Equal(t, 1, c.Updated[0].Key.Occurrence)
	assert.Equal(t, "s/values/<x>#1", c.Updated[0].Key.String())
	assert.Equal(t, []FieldChange{{Path: "value", OldValue: "b", NewValue: "c", Type: ChangeTypeUpdate}}, c.Updated[0].Changes)
}

func TestHrefBackfillIsAnAdd(t *testing.T) {
	old := dataset(t, `{"s": {"properties": [{"name": "width"}]}}`)
	cur := dataset(t, `{"s": {"properties": [{"name": "width", "href": "https://example.test/width"}]}}`)

	c := New().Datasets(old, cur)
	require.Len(t, c.Updated, 1)
	assert.Equal(t, ChangeTypeAdd, c.Updated[0].Changes[0].Type)
}

func TestTruncation(t *testing.T) {
	assert.Equal(t, "abcdefg...", truncateString("abcdefghijklmnop", 10))
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abcdefghijklmnop", truncateString("abcdefghijklmnop", 0))
}

func TestPrint(t *testing.T) {
	c := New().Datasets(dataset(t, before), dataset(t, after))

	var buf bytes.Buffer
	c.Print(&buf, 0)
	out := buf.String()
	assert.Contains(t, out, "+ css-grid-2")
	assert.Contains(t, out, "- css-color-4/values/oklch()")
	assert.Contains(t, out, "~ css-color-4/properties/color (compatibility.supported: false -> true; compatibility.browsers: 1 -> 3)")
}
