package corrections

import (
	"github.com/agentstation/cssmap/pkg/cssdata"
)

// Injection records one record added to a specification.
type Injection struct {
	Spec string
	Name string
}

// Patched records one href filled in by a patch.
type Patched struct {
	Spec string
	List cssdata.ListKind
	Name string
	Href string
}

// Inject returns a copy of ds with the table's records appended to the
// values list of their spec. A record is skipped when values already holds
// one with the same name, so applying the table twice changes nothing.
// Specs not present in ds are skipped.
func Inject(ds cssdata.Dataset, t *Table) (cssdata.Dataset, []Injection) {
	out := ds.Clone()
	var injected []Injection

	for _, spec := range sortedSpecs(t.Inject) {
		data, ok := out[spec]
		if !ok || data == nil {
			continue
		}
		if data.Values == nil {
			data.Values = []cssdata.FeatureRecord{}
		}
		for _, r := range t.Inject[spec] {
			if hasName(data.Values, r.Name) {
				continue
			}
			data.Values = append(data.Values, r.FeatureRecord())
			injected = append(injected, Injection{Spec: spec, Name: r.Name})
		}
	}
	return out, injected
}

// Patch returns a copy of ds where records with an empty href take the
// href from the table. A non-empty href is never replaced.
func Patch(ds cssdata.Dataset, t *Table) (cssdata.Dataset, []Patched) {
	out := ds.Clone()
	var patched []Patched

	for _, spec := range sortedSpecs(t.Patches) {
		data, ok := out[spec]
		if !ok || data == nil {
			continue
		}
		patches := t.Patches[spec]
		for _, list := range cssdata.FeatureLists {
			records := data.List(list)
			for i := range records {
				p, ok := patches[records[i].Name]
				if !ok || records[i].Href != "" {
					continue
				}
				records[i].Href = p.Href
				patched = append(patched, Patched{Spec: spec, List: list, Name: records[i].Name, Href: p.Href})
			}
		}
	}
	return out, patched
}

func hasName(records []cssdata.FeatureRecord, name string) bool {
	for _, r := range records {
		if r.Name == name {
			return true
		}
	}
	return false
}
