// Package catalog is the read side of cssmap: it flattens the artifacts
// written by the pipeline into one list of features and answers the
// search, filter, and pagination queries the browsing UI and the API make.
package catalog

import (
	"bytes"
	"encoding/json"

	"github.com/agentstation/cssmap/pkg/constants"
	"github.com/agentstation/cssmap/pkg/cssdata"
)

// Item is a feature record tagged with the specification it came from.
type Item struct {
	Record     cssdata.FeatureRecord
	Spec       string          // Shortname of the owning specification
	SourceSpec json.RawMessage // The document's spec object, or {"title": shortname}
	Note       string          // Advisory note of the owning specification
	Type       string          // property, at-rule, value, or function
}

// Name returns the feature name.
func (it Item) Name() string {
	return it.Record.Name
}

// Supported reports whether the feature has a supported verdict.
func (it Item) Supported() bool {
	return it.Record.Compatibility != nil && it.Record.Compatibility.Supported
}

// SourceTitle returns the title of the source specification.
func (it Item) SourceTitle() string {
	var spec struct {
		Title string `json:"title"`
	}
	_ = json.Unmarshal(it.SourceSpec, &spec)
	if spec.Title == "" {
		return it.Spec
	}
	return spec.Title
}

// MarshalJSON writes the record's keys plus spec, sourceSpec, note, and type.
func (it Item) MarshalJSON() ([]byte, error) {
	recJSON, err := it.Record.MarshalJSON()
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(recJSON, &fields); err != nil {
		return nil, err
	}

	fields["spec"] = plain(it.Spec)
	fields["sourceSpec"] = it.SourceSpec
	fields["type"] = plain(it.Type)
	if it.Note != "" {
		fields["note"] = plain(it.Note)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(fields); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func plain(s string) json.RawMessage {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return bytes.TrimRight(buf.Bytes(), "\n")
}

// Catalog holds the flattened features and the specification index.
type Catalog struct {
	Dataset    cssdata.Dataset
	Specs      *cssdata.SpecIndex
	Properties []Item
	AtRules    []Item
	Values     []Item
}

// New flattens ds. specs may be nil when only the dataset is available.
func New(ds cssdata.Dataset, specs *cssdata.SpecIndex) *Catalog {
	c := &Catalog{Dataset: ds, Specs: specs}

	for _, shortname := range ds.Shortnames() {
		data := ds[shortname]
		if data == nil {
			continue
		}
		source, ok := data.Extra["spec"]
		if !ok {
			source, _ = json.Marshal(map[string]string{"title": shortname})
		}

		tag := func(rec cssdata.FeatureRecord, typ string) Item {
			return Item{Record: rec, Spec: shortname, SourceSpec: source, Note: data.Note, Type: typ}
		}
		for _, rec := range data.Properties {
			c.Properties = append(c.Properties, tag(rec, cssdata.TypeProperty))
		}
		for _, rec := range data.AtRules {
			c.AtRules = append(c.AtRules, tag(rec, cssdata.TypeAtRule))
		}
		for _, rec := range data.Values {
			typ := cssdata.TypeValue
			if rec.IsFunction() {
				typ = cssdata.TypeFunction
			}
			c.Values = append(c.Values, tag(rec, typ))
		}
	}
	return c
}

// All returns properties, then at-rules, then values.
func (c *Catalog) All() []Item {
	all := make([]Item, 0, len(c.Properties)+len(c.AtRules)+len(c.Values))
	all = append(all, c.Properties...)
	all = append(all, c.AtRules...)
	return append(all, c.Values...)
}

// SpecItems returns the items of one specification in All order.
func (c *Catalog) SpecItems(shortname string) []Item {
	var items []Item
	for _, it := range c.All() {
		if it.Spec == shortname {
			items = append(items, it)
		}
	}
	return items
}

// Spec returns the feature document of one specification.
func (c *Catalog) Spec(shortname string) (*cssdata.SpecData, bool) {
	data, ok := c.Dataset[shortname]
	return data, ok && data != nil
}

// SpecsWithProperty lists the specifications that define a property.
func (c *Catalog) SpecsWithProperty(name string) []string {
	var specs []string
	for _, it := range c.Properties {
		if it.Name() == name && (len(specs) == 0 || specs[len(specs)-1] != it.Spec) {
			specs = append(specs, it.Spec)
		}
	}
	return specs
}

// CompletedSpecs returns the CSS Working Group specifications that have
// reached Recommendation.
func (c *Catalog) CompletedSpecs() []cssdata.SpecIndexEntry {
	if c.Specs == nil {
		return nil
	}
	return CompletedSpecs(c.Specs.Results)
}

// CompletedSpecs filters entries down to CSS Working Group Recommendations.
func CompletedSpecs(entries []cssdata.SpecIndexEntry) []cssdata.SpecIndexEntry {
	completed := []cssdata.SpecIndexEntry{}
	for _, e := range entries {
		if IsCompleted(e) {
			completed = append(completed, e)
		}
	}
	return completed
}

// IsCompleted reports whether the entry is a CSS Working Group Recommendation.
func IsCompleted(e cssdata.SpecIndexEntry) bool {
	return e.Status() == constants.StatusRecommendation && e.InGroup(constants.CSSWorkingGroup)
}
