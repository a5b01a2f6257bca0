package differ

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/agentstation/cssmap/pkg/cssdata"
)

// Differ handles change detection between datasets.
type Differ interface {
	// Datasets compares two datasets and returns changes.
	Datasets(existing, updated cssdata.Dataset) *Changeset
}

// differ is the default implementation of Differ.
type differ struct {
	ignoreFields map[string]bool
	truncate     int
}

// New creates a Differ with default settings.
func New(opts ...Option) Differ {
	d := &differ{
		ignoreFields: make(map[string]bool),
		truncate:     60,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Datasets compares two datasets. Records are matched by spec, list, and
// name; a spec present on only one side counts once as a spec change and
// its records are not listed individually.
func (diff *differ) Datasets(existing, updated cssdata.Dataset) *Changeset {
	changeset := &Changeset{
		AddedSpecs:   []string{},
		RemovedSpecs: []string{},
		Added:        []FeatureKey{},
		Updated:      []FeatureUpdate{},
		Removed:      []FeatureKey{},
	}

	for _, name := range updated.Shortnames() {
		if _, ok := existing[name]; !ok {
			changeset.AddedSpecs = append(changeset.AddedSpecs, name)
		}
	}
	for _, name := range existing.Shortnames() {
		if _, ok := updated[name]; !ok {
			changeset.RemovedSpecs = append(changeset.RemovedSpecs, name)
		}
	}

	for _, name := range updated.Shortnames() {
		old, ok := existing[name]
		if !ok {
			continue
		}
		diff.spec(changeset, name, old, updated[name])
	}

	changeset.Summary = calculateSummary(changeset)
	return changeset
}

// spec compares the three lists of one specification.
func (diff *differ) spec(c *Changeset, shortname string, existing, updated *cssdata.SpecData) {
	for _, kind := range cssdata.FeatureLists {
		oldRecords := index(shortname, kind, list(existing, kind))
		newRecords := index(shortname, kind, list(updated, kind))

		for _, key := range sortedKeys(newRecords) {
			old, ok := oldRecords[key]
			if !ok {
				c.Added = append(c.Added, key)
				continue
			}
			if changes := diff.record(old, newRecords[key]); len(changes) > 0 {
				c.Updated = append(c.Updated, FeatureUpdate{Key: key, Changes: changes})
			}
		}
		for _, key := range sortedKeys(oldRecords) {
			if _, ok := newRecords[key]; !ok {
				c.Removed = append(c.Removed, key)
			}
		}
	}
}

// record compares two records with the same key.
func (diff *differ) record(existing, updated cssdata.FeatureRecord) []FieldChange {
	var changes []FieldChange
	field := func(path, old, cur string) {
		if old == cur || diff.ignoreFields[path] {
			return
		}
		changes = append(changes, FieldChange{
			Path:     path,
			OldValue: truncateString(old, diff.truncate),
			NewValue: truncateString(cur, diff.truncate),
			Type:     changeType(old, cur),
		})
	}

	field("type", existing.Type, updated.Type)
	field("value", existing.Value, updated.Value)
	field("href", existing.Href, updated.Href)

	if !diff.ignoreFields["compatibility"] {
		changes = append(changes, diffCompatibility(existing.Compatibility, updated.Compatibility)...)
	}
	return changes
}

// diffCompatibility compares verdicts. A missing verdict compares as empty.
func diffCompatibility(existing, updated *cssdata.Compatibility) []FieldChange {
	var old, cur cssdata.Compatibility
	if existing != nil {
		old = *existing
	}
	if updated != nil {
		cur = *updated
	}

	var changes []FieldChange
	if old.Supported != cur.Supported {
		changes = append(changes, FieldChange{
			Path:     "compatibility.supported",
			OldValue: strconv.FormatBool(old.Supported),
			NewValue: strconv.FormatBool(cur.Supported),
			Type:     ChangeTypeUpdate,
		})
	}
	if old.Browsers != cur.Browsers {
		changes = append(changes, FieldChange{
			Path:     "compatibility.browsers",
			OldValue: strconv.Itoa(old.Browsers),
			NewValue: strconv.Itoa(cur.Browsers),
			Type:     ChangeTypeUpdate,
		})
	}
	if old.Flagged != cur.Flagged {
		changes = append(changes, FieldChange{
			Path:     "compatibility.flagged",
			OldValue: strconv.FormatBool(old.Flagged),
			NewValue: strconv.FormatBool(cur.Flagged),
			Type:     ChangeTypeUpdate,
		})
	}
	return changes
}

func list(spec *cssdata.SpecData, kind cssdata.ListKind) []cssdata.FeatureRecord {
	if spec == nil {
		return nil
	}
	return spec.List(kind)
}

// index keys records by name and occurrence.
func index(shortname string, kind cssdata.ListKind, records []cssdata.FeatureRecord) map[FeatureKey]cssdata.FeatureRecord {
	out := make(map[FeatureKey]cssdata.FeatureRecord, len(records))
	seen := make(map[string]int, len(records))
	for _, rec := range records {
		key := FeatureKey{Spec: shortname, List: kind, Name: rec.Name, Occurrence: seen[rec.Name]}
		seen[rec.Name]++
		out[key] = rec
	}
	return out
}

func sortedKeys(m map[FeatureKey]cssdata.FeatureRecord) []FeatureKey {
	keys := make([]FeatureKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b FeatureKey) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), cmp.Compare(a.Occurrence, b.Occurrence))
	})
	return keys
}

func changeType(old, cur string) ChangeType {
	switch {
	case old == "":
		return ChangeTypeAdd
	case cur == "":
		return ChangeTypeRemove
	default:
		return ChangeTypeUpdate
	}
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if maxLen <= 0 || len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
