package cssdata

import (
	"encoding/json"
	"fmt"
)

// ListKind names one of the three feature lists of a specification.
type ListKind string

// Feature list kinds, as keyed in webref documents.
const (
	ListProperties ListKind = "properties"
	ListAtRules    ListKind = "atrules"
	ListValues     ListKind = "values"
)

// FeatureLists enumerates the list kinds in output order.
var FeatureLists = []ListKind{ListProperties, ListAtRules, ListValues}

// String returns the list key.
func (k ListKind) String() string {
	return string(k)
}

// SpecData is the feature document of one specification.
// A nil list means the upstream document did not carry that key.
type SpecData struct {
	Properties []FeatureRecord
	AtRules    []FeatureRecord
	Values     []FeatureRecord
	Note       string // Advisory note added by corrections

	// Extra holds the other upstream keys (spec, selectors, ...).
	Extra map[string]json.RawMessage
}

// List returns the records of the given kind.
func (s *SpecData) List(kind ListKind) []FeatureRecord {
	switch kind {
	case ListProperties:
		return s.Properties
	case ListAtRules:
		return s.AtRules
	case ListValues:
		return s.Values
	}
	return nil
}

// SetList replaces the records of the given kind.
func (s *SpecData) SetList(kind ListKind, records []FeatureRecord) {
	switch kind {
	case ListProperties:
		s.Properties = records
	case ListAtRules:
		s.AtRules = records
	case ListValues:
		s.Values = records
	}
}

// Count returns the number of records across all lists.
func (s *SpecData) Count() int {
	return len(s.Properties) + len(s.AtRules) + len(s.Values)
}

// SpecTitle returns the title carried in the document's spec key, if any.
func (s *SpecData) SpecTitle() string {
	raw, ok := s.Extra["spec"]
	if !ok {
		return ""
	}
	var spec struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(raw, &spec); err != nil {
		return ""
	}
	return spec.Title
}

// Clone returns a deep copy, preserving nil lists.
func (s *SpecData) Clone() *SpecData {
	if s == nil {
		return nil
	}
	out := &SpecData{Note: s.Note, Extra: cloneRaw(s.Extra)}
	for _, kind := range FeatureLists {
		out.SetList(kind, cloneRecords(s.List(kind)))
	}
	return out
}

func cloneRecords(in []FeatureRecord) []FeatureRecord {
	if in == nil {
		return nil
	}
	out := make([]FeatureRecord, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *SpecData) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var out SpecData
	for _, kind := range FeatureLists {
		v, ok := raw[kind.String()]
		if !ok || isNull(v) {
			continue
		}
		var records []FeatureRecord
		if err := json.Unmarshal(v, &records); err != nil {
			return fmt.Errorf("%s: %w", kind, err)
		}
		if records == nil {
			records = []FeatureRecord{}
		}
		out.SetList(kind, records)
	}
	if err := decodeString(raw, "note", &out.Note); err != nil {
		return err
	}

	for key, v := range raw {
		switch ListKind(key) {
		case ListProperties, ListAtRules, ListValues:
			continue
		}
		if key == "note" {
			continue
		}
		if out.Extra == nil {
			out.Extra = make(map[string]json.RawMessage)
		}
		out.Extra[key] = v
	}

	*s = out
	return nil
}

// Keys returns the document's top-level keys in sorted order, as written.
func (s *SpecData) Keys() []string {
	keys := make(map[string]struct{}, len(s.Extra)+4)
	for k := range s.Extra {
		keys[k] = struct{}{}
	}
	for _, kind := range FeatureLists {
		if s.List(kind) != nil {
			keys[kind.String()] = struct{}{}
		}
	}
	if s.Note != "" {
		keys["note"] = struct{}{}
	}
	return sortedKeys(keys)
}

// MarshalJSON implements json.Marshaler. All keys are written in sorted order.
func (s SpecData) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, len(s.Extra)+4)
	for k, v := range s.Extra {
		fields[k] = v
	}
	for _, kind := range FeatureLists {
		if list := s.List(kind); list != nil {
			fields[kind.String()] = list
		}
	}
	if s.Note != "" {
		fields["note"] = s.Note
	}

	var w objectWriter
	for _, key := range sortedKeys(fields) {
		if raw, ok := fields[key].(json.RawMessage); ok {
			w.raw(key, raw)
			continue
		}
		if err := w.value(key, fields[key]); err != nil {
			return nil, err
		}
	}
	return w.finish(), w.err
}

// Dataset maps a specification shortname to its feature document.
type Dataset map[string]*SpecData

// Clone returns a deep copy of the dataset.
func (d Dataset) Clone() Dataset {
	if d == nil {
		return nil
	}
	out := make(Dataset, len(d))
	for k, v := range d {
		out[k] = v.Clone()
	}
	return out
}

// Shortnames returns the dataset keys in sorted order.
func (d Dataset) Shortnames() []string {
	return sortedKeys(d)
}

// FeatureCount returns the number of records across all specs.
func (d Dataset) FeatureCount() int {
	n := 0
	for _, s := range d {
		n += s.Count()
	}
	return n
}

// Walk calls fn for every record in shortname order, then list order.
// Returning false stops the walk.
func (d Dataset) Walk(fn func(shortname string, kind ListKind, rec *FeatureRecord) bool) {
	for _, name := range d.Shortnames() {
		spec := d[name]
		if spec == nil {
			continue
		}
		for _, kind := range FeatureLists {
			list := spec.List(kind)
			for i := range list {
				if !fn(name, kind, &list[i]) {
					return
				}
			}
		}
	}
}
