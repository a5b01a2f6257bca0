// Package differ compares two CSS feature datasets and reports what an
// update added, removed, or changed.
package differ

import (
	"fmt"
	"io"
	"strings"

	"github.com/agentstation/cssmap/pkg/cssdata"
)

// ChangeType represents the type of change.
type ChangeType string

const (
	// ChangeTypeAdd indicates an item was added.
	ChangeTypeAdd ChangeType = "add"
	// ChangeTypeUpdate indicates an item was updated.
	ChangeTypeUpdate ChangeType = "update"
	// ChangeTypeRemove indicates an item was removed.
	ChangeTypeRemove ChangeType = "remove"
)

// FeatureKey identifies a record within a dataset. A name can appear more
// than once in one list; Occurrence counts earlier records of that name.
type FeatureKey struct {
	Spec       string           `json:"spec" yaml:"spec"`
	List       cssdata.ListKind `json:"list" yaml:"list"`
	Name       string           `json:"name" yaml:"name"`
	Occurrence int              `json:"occurrence,omitempty" yaml:"occurrence,omitempty"`
}

// String returns spec/list/name, with #n for repeated names.
func (k FeatureKey) String() string {
	s := k.Spec + "/" + k.List.String() + "/" + k.Name
	if k.Occurrence > 0 {
		s += fmt.Sprintf("#%d", k.Occurrence)
	}
	return s
}

// FieldChange represents a change to a specific field.
type FieldChange struct {
	Path     string     `json:"path" yaml:"path"` // Field path (e.g., "compatibility.supported")
	OldValue string     `json:"old" yaml:"old"`
	NewValue string     `json:"new" yaml:"new"`
	Type     ChangeType `json:"type" yaml:"type"`
}

// FeatureUpdate represents an update to an existing record.
type FeatureUpdate struct {
	Key     FeatureKey    `json:"key" yaml:"key"`
	Changes []FieldChange `json:"changes" yaml:"changes"`
}

// Changeset represents all changes between two datasets.
type Changeset struct {
	AddedSpecs   []string        `json:"added_specs" yaml:"added_specs"`
	RemovedSpecs []string        `json:"removed_specs" yaml:"removed_specs"`
	Added        []FeatureKey    `json:"added" yaml:"added"`
	Updated      []FeatureUpdate `json:"updated" yaml:"updated"`
	Removed      []FeatureKey    `json:"removed" yaml:"removed"`
	Summary      Summary         `json:"summary" yaml:"summary"`
}

// Summary provides summary statistics for a changeset.
type Summary struct {
	SpecsAdded      int `json:"specs_added" yaml:"specs_added"`
	SpecsRemoved    int `json:"specs_removed" yaml:"specs_removed"`
	FeaturesAdded   int `json:"features_added" yaml:"features_added"`
	FeaturesUpdated int `json:"features_updated" yaml:"features_updated"`
	FeaturesRemoved int `json:"features_removed" yaml:"features_removed"`
	TotalChanges    int `json:"total_changes" yaml:"total_changes"`
}

// HasChanges returns true if the changeset contains any changes.
func (c *Changeset) HasChanges() bool {
	return c.Summary.TotalChanges > 0
}

// IsEmpty returns true if the changeset contains no changes.
func (c *Changeset) IsEmpty() bool {
	return c.Summary.TotalChanges == 0
}

// calculateSummary computes the summary for a changeset.
func calculateSummary(c *Changeset) Summary {
	s := Summary{
		SpecsAdded:      len(c.AddedSpecs),
		SpecsRemoved:    len(c.RemovedSpecs),
		FeaturesAdded:   len(c.Added),
		FeaturesUpdated: len(c.Updated),
		FeaturesRemoved: len(c.Removed),
	}
	s.TotalChanges = s.SpecsAdded + s.SpecsRemoved + s.FeaturesAdded + s.FeaturesUpdated + s.FeaturesRemoved
	return s
}

// String returns a human-readable summary of the changeset.
func (c *Changeset) String() string {
	if c.IsEmpty() {
		return "No changes detected"
	}

	var parts []string
	if n := len(c.AddedSpecs) + len(c.RemovedSpecs); n > 0 {
		parts = append(parts, "Specs: "+counts(len(c.AddedSpecs), 0, len(c.RemovedSpecs)))
	}
	if n := len(c.Added) + len(c.Updated) + len(c.Removed); n > 0 {
		parts = append(parts, "Features: "+counts(len(c.Added), len(c.Updated), len(c.Removed)))
	}
	return strings.Join(parts, "; ")
}

func counts(added, updated, removed int) string {
	var parts []string
	if added > 0 {
		parts = append(parts, fmt.Sprintf("%d added", added))
	}
	if updated > 0 {
		parts = append(parts, fmt.Sprintf("%d updated", updated))
	}
	if removed > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", removed))
	}
	return strings.Join(parts, ", ")
}

// Print writes the changeset as text, listing at most limit entries of
// each kind (0 lists all).
func (c *Changeset) Print(w io.Writer, limit int) {
	_, _ = fmt.Fprintln(w, c.String())
	section := func(symbol string, keys []string) {
		for i, k := range keys {
			if limit > 0 && i == limit {
				_, _ = fmt.Fprintf(w, "  ... and %d more\n", len(keys)-limit)
				return
			}
			_, _ = fmt.Fprintf(w, "  %s %s\n", symbol, k)
		}
	}

	section("+", c.AddedSpecs)
	section("-", c.RemovedSpecs)
	section("+", keyStrings(c.Added))
	section("-", keyStrings(c.Removed))

	updates := make([]string, len(c.Updated))
	for i, u := range c.Updated {
		fields := make([]string, len(u.Changes))
		for j, fc := range u.Changes {
			fields[j] = fmt.Sprintf("%s: %s -> %s", fc.Path, fc.OldValue, fc.NewValue)
		}
		updates[i] = u.Key.String() + " (" + strings.Join(fields, "; ") + ")"
	}
	section("~", updates)
}

func keyStrings(keys []FeatureKey) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}
