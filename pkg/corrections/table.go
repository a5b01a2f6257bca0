// Package corrections holds the hand-maintained fixes applied on top of
// webref data: fetch-name aliases, advisory notes, records injected into
// a specification, and hrefs backfilled for records that lack one.
//
// The default table is embedded; a YAML file with the same shape can
// replace it.
package corrections

import (
	_ "embed"
	"os"
	"sort"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/cssmap/pkg/cssdata"
	"github.com/agentstation/cssmap/pkg/errors"
)

//go:embed corrections.yaml
var defaultTable []byte

// Table is a set of corrections keyed by specification shortname.
type Table struct {
	Aliases map[string]string           `yaml:"aliases,omitempty"` // shortname -> upstream document name
	Notes   map[string]string           `yaml:"notes,omitempty"`   // shortname -> advisory note
	Inject  map[string][]Record         `yaml:"inject,omitempty"`  // shortname -> records for its values list
	Patches map[string]map[string]HrefPatch `yaml:"patches,omitempty"` // shortname -> feature name -> patch
}

// Record is a feature record to inject.
type Record struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type,omitempty"`
	Value string `yaml:"value,omitempty"`
	Href  string `yaml:"href,omitempty"`
}

// HrefPatch is an href correction for one feature record.
type HrefPatch struct {
	Href string `yaml:"href"`
}

// FeatureRecord converts r to a dataset record.
func (r Record) FeatureRecord() cssdata.FeatureRecord {
	return cssdata.FeatureRecord{Name: r.Name, Type: r.Type, Value: r.Value, Href: r.Href}
}

// Default returns the embedded correction table.
func Default() (*Table, error) {
	return Parse(defaultTable, "corrections.yaml")
}

// Load reads a table from path, or returns the default table when path is empty.
func Load(path string) (*Table, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return Parse(data, path)
}

// Parse decodes a YAML table. Unknown keys are rejected.
func Parse(data []byte, name string) (*Table, error) {
	var t Table
	if err := yaml.UnmarshalWithOptions(data, &t, yaml.Strict()); err != nil {
		return nil, errors.WrapParse("yaml", name, err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks the table for entries that could never apply.
func (t *Table) Validate() error {
	for spec, alias := range t.Aliases {
		if alias == "" {
			return errors.NewValidationError("aliases."+spec, alias, "alias must not be empty")
		}
	}
	for spec, records := range t.Inject {
		for i, r := range records {
			if r.Name == "" {
				return errors.NewValidationError("inject."+spec, i, "record has no name")
			}
		}
	}
	for spec, patches := range t.Patches {
		for name, p := range patches {
			if p.Href == "" {
				return errors.NewValidationError("patches."+spec+"."+name, p, "patch has no href")
			}
		}
	}
	return nil
}

// FetchName returns the upstream document name for a shortname.
func (t *Table) FetchName(shortname string) string {
	if t != nil {
		if alias, ok := t.Aliases[shortname]; ok {
			return alias
		}
	}
	return shortname
}

// Note returns the advisory note for a shortname, if any.
func (t *Table) Note(shortname string) string {
	if t == nil {
		return ""
	}
	return t.Notes[shortname]
}

// PatchCount returns the number of feature patches in the table.
func (t *Table) PatchCount() int {
	n := 0
	for _, p := range t.Patches {
		n += len(p)
	}
	return n
}

func sortedSpecs[V any](m map[string]V) []string {
	specs := make([]string, 0, len(m))
	for s := range m {
		specs = append(specs, s)
	}
	sort.Strings(specs)
	return specs
}
