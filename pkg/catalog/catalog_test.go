package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/cssmap/pkg/cssdata"
	"github.com/agentstation/cssmap/pkg/errors"
)

func supported() *cssdata.Compatibility {
	return &cssdata.Compatibility{Supported: true, Browsers: 3}
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	var ds cssdata.Dataset
	require.NoError(t, json.Unmarshal([]byte(`{
	  "css-color-4": {
	    "spec": {"title": "CSS Color Module Level 4"},
	    "note": "Current work is being done in css-color-4, but the recommendation is css-color-3.",
	    "properties": [{"name": "color", "compatibility": {"supported": true, "browsers": 3, "flagged": false}}],
	    "values": [
	      {"name": "oklch()", "type": "function", "compatibility": {"supported": true, "browsers": 3, "flagged": false}},
	      {"name": "<color>", "type": "type", "compatibility": {"supported": false, "browsers": 0, "flagged": false}}
	    ]
	  },
	  "mediaqueries-5": {
	    "atrules": [{"name": "@media", "compatibility": {"supported": true, "browsers": 3, "flagged": false}}]
	  },
	  "css-color-3": {
	    "properties": [
	      {"name": "color", "compatibility": {"supported": true, "browsers": 2, "flagged": false}},
	      {"name": "opacity", "compatibility": {"supported": false, "browsers": 1, "flagged": false}}
	    ]
	  }
	}`), &ds))

	specs := &cssdata.SpecIndex{Results: []cssdata.SpecIndexEntry{
		{Shortname: "css-color-3", Release: &cssdata.Release{Status: "Recommendation"},
			Groups: []cssdata.Group{{Name: "Cascading Style Sheets (CSS) Working Group"}}},
		{Shortname: "css-color-4", Release: &cssdata.Release{Status: "Candidate Recommendation Draft"},
			Groups: []cssdata.Group{{Name: "Cascading Style Sheets (CSS) Working Group"}}},
		{Shortname: "wai-aria-1.2", Release: &cssdata.Release{Status: "Recommendation"},
			Groups: []cssdata.Group{{Name: "Accessible Rich Internet Applications Working Group"}}},
		{Shortname: "css-grid-3"},
	}}
	return New(ds, specs)
}

func names(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Spec + ":" + it.Name() + ":" + it.Type
	}
	return out
}

func TestFlatten(t *testing.T) {
	c := testCatalog(t)

	want := []string{
		"css-color-3:color:property",
		"css-color-3:opacity:property",
		"css-color-4:color:property",
		"mediaqueries-5:@media:at-rule",
		"css-color-4:oklch():function",
		"css-color-4:<color>:value",
	}
	if diff := cmp.Diff(want, names(c.All())); diff != "" {
		t.Errorf("All() mismatch (-want +got):\n%s", diff)
	}

	color4 := c.Properties[2]
	assert.Equal(t, "CSS Color Module Level 4", color4.SourceTitle())
	assert.Contains(t, color4.Note, "css-color-3")
	assert.Equal(t, "css-color-3", c.Properties[0].SourceTitle())
	assert.JSONEq(t, `{"title": "css-color-3"}`, string(c.Properties[0].SourceSpec))
}

func TestItemJSON(t *testing.T) {
	c := testCatalog(t)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	require.NoError(t, enc.Encode(c.Values[1]))
	out := buf.Bytes()
	assert.JSONEq(t, `{
	  "name": "<color>",
	  "type": "value",
	  "spec": "css-color-4",
	  "sourceSpec": {"title": "CSS Color Module Level 4"},
	  "note": "Current work is being done in css-color-4, but the recommendation is css-color-3.",
	  "compatibility": {"supported": false, "browsers": 0, "flagged": false}
	}`, string(out))
	assert.Contains(t, string(out), `"<color>"`)
}

func TestFilter(t *testing.T) {
	c := testCatalog(t)

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{"search is case-insensitive", Query{Search: "COL"}, []string{
			"css-color-3:color:property", "css-color-4:color:property", "css-color-4:<color>:value",
		}},
		{"category", Query{Category: CategoryFunction}, []string{"css-color-4:oklch():function"}},
		{"browser support view", Query{View: ViewBrowserSupport, Category: CategoryProperty}, []string{
			"css-color-3:color:property", "css-color-4:color:property",
		}},
		{"no match", Query{Search: "grid"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, names(c.Filter(tt.query))); diff != "" {
				t.Errorf("Filter() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPagination(t *testing.T) {
	var records []cssdata.FeatureRecord
	for i := range 20 {
		records = append(records, cssdata.FeatureRecord{Name: fmt.Sprintf("p%02d", i), Compatibility: supported()})
	}
	c := New(cssdata.Dataset{"s": {Properties: records}}, nil)

	first := c.Query(Query{})
	assert.Len(t, first.Items, 9)
	assert.Equal(t, 1, first.Page)
	assert.Equal(t, 9, first.PageSize)
	assert.Equal(t, 3, first.TotalPages)
	assert.Equal(t, 20, first.Total)

	last := c.Query(Query{Page: 3})
	require.Len(t, last.Items, 2)
	assert.Equal(t, "p18", last.Items[0].Name())

	beyond := c.Query(Query{Page: 7})
	assert.Empty(t, beyond.Items)
	assert.Equal(t, 20, beyond.Total)

	huge := c.Query(Query{Page: 2_000_000_000_000_000_000, PageSize: 9})
	assert.Empty(t, huge.Items)
	assert.Equal(t, 3, huge.TotalPages)

	wide := c.Query(Query{PageSize: math.MaxInt})
	assert.Len(t, wide.Items, 20)
	assert.Equal(t, 1, wide.TotalPages)

	all := c.Query(Query{NoPagination: true})
	assert.Len(t, all.Items, 20)
	assert.Equal(t, 1, all.TotalPages)

	custom := c.Query(Query{Page: 2, PageSize: 5})
	assert.Equal(t, "p05", custom.Items[0].Name())
	assert.Equal(t, 4, custom.TotalPages)
}

func TestCompletedSpecs(t *testing.T) {
	c := testCatalog(t)
	completed := c.CompletedSpecs()
	require.Len(t, completed, 1)
	assert.Equal(t, "css-color-3", completed[0].Shortname)

	assert.Nil(t, New(cssdata.Dataset{}, nil).CompletedSpecs())
}

func TestSpecsWithProperty(t *testing.T) {
	c := testCatalog(t)
	assert.Equal(t, []string{"css-color-3", "css-color-4"}, c.SpecsWithProperty("color"))
	assert.Empty(t, c.SpecsWithProperty("grid-template"))

	spec, ok := c.Spec("mediaqueries-5")
	require.True(t, ok)
	assert.Len(t, spec.AtRules, 1)
	_, ok = c.Spec("css-grid-3")
	assert.False(t, ok)

	items := c.SpecItems("mediaqueries-5")
	require.Len(t, items, 1)
	assert.Equal(t, "mediaqueries-5", items[0].Spec)
	assert.Empty(t, c.SpecItems("css-grid-3"))
}

func TestParse(t *testing.T) {
	cat, err := ParseCategory("")
	require.NoError(t, err)
	assert.Equal(t, CategoryAll, cat)
	cat, err = ParseCategory("At-Rule")
	require.NoError(t, err)
	assert.Equal(t, CategoryAtRule, cat)
	_, err = ParseCategory("selector")
	assert.True(t, errors.IsValidationError(err))

	view, err := ParseView("browser-support")
	require.NoError(t, err)
	assert.Equal(t, ViewBrowserSupport, view)
	_, err = ParseView("definition")
	assert.True(t, errors.IsValidationError(err))
}
