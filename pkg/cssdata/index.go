// Package cssdata defines the data model shared by every cssmap stage:
// the specification index fetched from webref, the per-specification
// feature documents, and the compatibility verdicts attached to features.
package cssdata

import (
	"encoding/json"

	"github.com/agentstation/cssmap/pkg/errors"
)

// SpecIndex is the webref specification index.
type SpecIndex struct {
	Results []SpecIndexEntry `json:"results" yaml:"results"` // Tracked specifications, in upstream order

	// Raw holds the index document exactly as it was fetched.
	Raw json.RawMessage `json:"-" yaml:"-"`
}

// SpecIndexEntry describes one tracked specification.
type SpecIndexEntry struct {
	Shortname string   `json:"shortname" yaml:"shortname"`                 // Short code, e.g. css-color-4
	Title     string   `json:"title" yaml:"title"`                         // Human-readable title
	URL       string   `json:"url,omitempty" yaml:"url,omitempty"`         // Canonical specification URL
	Release   *Release `json:"release,omitempty" yaml:"release,omitempty"` // Latest published release, if any
	Groups    []Group  `json:"groups,omitempty" yaml:"groups,omitempty"`   // Working groups that own the spec
}

// Release describes the published (TR) version of a specification.
type Release struct {
	Status string `json:"status,omitempty" yaml:"status,omitempty"` // Maturity, e.g. Recommendation
	URL    string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Group is a standards working group.
type Group struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Status returns the release status, or "" when the spec has no release.
func (e SpecIndexEntry) Status() string {
	if e.Release == nil {
		return ""
	}
	return e.Release.Status
}

// InGroup reports whether the spec is owned by the named group.
func (e SpecIndexEntry) InGroup(name string) bool {
	for _, g := range e.Groups {
		if g.Name == name {
			return true
		}
	}
	return false
}

// ParseSpecIndex decodes an index document and keeps its raw bytes.
func ParseSpecIndex(data []byte) (*SpecIndex, error) {
	var idx SpecIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, errors.WrapParse("json", "index.json", err)
	}
	idx.Raw = append(json.RawMessage(nil), data...)
	return &idx, nil
}

// Lookup returns the entry with the given shortname.
func (idx *SpecIndex) Lookup(shortname string) (SpecIndexEntry, bool) {
	if idx == nil {
		return SpecIndexEntry{}, false
	}
	for _, e := range idx.Results {
		if e.Shortname == shortname {
			return e, true
		}
	}
	return SpecIndexEntry{}, false
}
