package validation

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/cssmap/pkg/compat"
	"github.com/agentstation/cssmap/pkg/cssdata"
	"github.com/agentstation/cssmap/pkg/errors"
)

func annotated() *cssdata.Compatibility {
	return &cssdata.Compatibility{Supported: true, Browsers: 3}
}

func TestCheckHrefs(t *testing.T) {
	var props []cssdata.FeatureRecord
	for i := range 12 {
		props = append(props, cssdata.FeatureRecord{Name: fmt.Sprintf("p%02d", i), Compatibility: annotated()})
	}
	ds := cssdata.Dataset{
		"b-spec": {Properties: props},
		"a-spec": {Values: []cssdata.FeatureRecord{
			{Name: "if()", Type: "function", Href: "https://drafts.csswg.org/css-values-5/#funcdef-if", Compatibility: annotated()},
			{Name: "<x>", Type: "type", Compatibility: annotated()},
		}},
	}

	report := CheckHrefs(ds)
	require.NoError(t, report.Err())
	assert.Equal(t, 14, report.Records)
	assert.Len(t, report.Missing, 13)
	assert.Equal(t, MissingHref{Spec: "a-spec", Name: "<x>", Type: "values"}, report.Missing[0])

	sample := report.Sample()
	assert.Len(t, sample, 10)
	assert.Equal(t, "p08", sample[9].Name)

	var buf bytes.Buffer
	PrintHrefReport(&buf, report)
	assert.Contains(t, buf.String(), "Items missing href: 13 (of 14)")
	assert.NotContains(t, buf.String(), "p09")
}

func TestCheckHrefsFailsOnMissingVerdict(t *testing.T) {
	ds := cssdata.Dataset{"css-values-5": {Values: []cssdata.FeatureRecord{{Name: "if()", Href: "x"}}}}

	report := CheckHrefs(ds)
	err := report.Err()
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.Equal(t, []string{"css-values-5/if()"}, report.Unannotated)
}

func TestCheckHrefsFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := CheckHrefsFile(filepath.Join(dir, "absent.json"))
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("unparseable file", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
		_, err := CheckHrefsFile(path)
		var parseErr *errors.ParseError
		assert.ErrorAs(t, err, &parseErr)
	})

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(dir, "css-data.json")
		doc := `{"css-color-4": {"properties": [
		  {"name": "color", "href": "https://drafts.csswg.org/css-color-4/#propdef-color",
		   "compatibility": {"supported": true, "browsers": 3, "flagged": false}}
		]}}`
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
		report, err := CheckHrefsFile(path)
		require.NoError(t, err)
		assert.Equal(t, path, report.Path)
		assert.Empty(t, report.Missing)
	})
}

func TestCheckSpecs(t *testing.T) {
	idx, err := cssdata.ParseSpecIndex([]byte(`{"results": [
	  {"shortname": "CSS2", "title": "CSS 2.2",
	   "release": {"status": "Recommendation"},
	   "groups": [{"name": "Cascading Style Sheets (CSS) Working Group"}]},
	  {"shortname": "css-color-4", "title": "CSS Color 4",
	   "release": {"status": "Candidate Recommendation Snapshot"},
	   "groups": [{"name": "Cascading Style Sheets (CSS) Working Group"}]},
	  {"shortname": "css-grid-3", "title": "CSS Grid 3",
	   "groups": [{"name": "Cascading Style Sheets (CSS) Working Group"}]},
	  {"shortname": "css-nav-1", "title": "CSS Spatial Navigation",
	   "groups": [{"name": "Cascading Style Sheets (CSS) Working Group"}]},
	  {"shortname": "wai-aria-1.2", "title": "ARIA",
	   "release": {"status": "Recommendation"},
	   "groups": [{"name": "Accessible Rich Internet Applications Working Group"}]}
	]}`))
	require.NoError(t, err)

	report := CheckSpecs(idx)
	assert.Equal(t, 5, report.Total)
	require.Len(t, report.Completed, 1)
	assert.Equal(t, "CSS2", report.Completed[0].Shortname)

	require.NotNil(t, report.Detail)
	assert.True(t, report.Detail.IsRecommendation)
	assert.True(t, report.Detail.HasCSSGroup)

	assert.Equal(t, []string{
		"Accessible Rich Internet Applications Working Group",
		"Cascading Style Sheets (CSS) Working Group",
	}, report.RecommendationGroups)
	assert.Equal(t, map[string]int{
		"Recommendation":                    1,
		"Candidate Recommendation Snapshot": 1,
		NoRelease:                           2,
	}, report.CSSStatuses)
	assert.Equal(t, NoRelease, report.Statuses()[0])

	var buf bytes.Buffer
	PrintSpecsReport(&buf, report)
	assert.Contains(t, buf.String(), "Completed CSS specs: 1")
	assert.Contains(t, buf.String(), "CSS2 found:")
}

func TestCheckSpecsWithoutDetail(t *testing.T) {
	report := CheckSpecs(&cssdata.SpecIndex{})
	assert.Nil(t, report.Detail)
	assert.Empty(t, report.Completed)

	var buf bytes.Buffer
	PrintSpecsReport(&buf, report)
	assert.Contains(t, buf.String(), "CSS2 not found in results")
}

type checkerFunc func(name string, kind compat.Kind) cssdata.Compatibility

func (f checkerFunc) Check(name string, kind compat.Kind) cssdata.Compatibility {
	return f(name, kind)
}

func TestProbeCompat(t *testing.T) {
	checker := checkerFunc(func(name string, kind compat.Kind) cssdata.Compatibility {
		if kind == compat.KindAtRule {
			return cssdata.Compatibility{Supported: true, Browsers: 3, Flagged: true}
		}
		return cssdata.Compatibility{}
	})

	results := ProbeCompat(checker, nil)
	require.Len(t, results, len(DefaultProbes))
	assert.Equal(t, ProbeResult{Name: "@media", Kind: compat.KindAtRule, Supported: true, Browsers: 3, Flagged: true}, results[2])
	assert.False(t, results[6].Supported)

	custom := ProbeCompat(checker, []Probe{{Name: "gap", Kind: compat.KindProperty}})
	assert.Equal(t, []ProbeResult{{Name: "gap", Kind: compat.KindProperty}}, custom)
}
