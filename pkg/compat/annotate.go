package compat

import (
	"github.com/agentstation/cssmap/pkg/cssdata"
)

// Annotate returns a copy of ds with a verdict on every record.
func Annotate(ds cssdata.Dataset, checker Checker) cssdata.Dataset {
	return annotate(ds, checker, false)
}

// AnnotateMissing returns a copy of ds where records without a verdict
// get one. Existing verdicts are left as they are.
func AnnotateMissing(ds cssdata.Dataset, checker Checker) (cssdata.Dataset, int) {
	before := countMissing(ds)
	return annotate(ds, checker, true), before
}

func annotate(ds cssdata.Dataset, checker Checker, onlyMissing bool) cssdata.Dataset {
	out := ds.Clone()
	for _, spec := range out {
		if spec == nil {
			continue
		}
		for _, list := range cssdata.FeatureLists {
			records := spec.List(list)
			for i := range records {
				if onlyMissing && records[i].Compatibility != nil {
					continue
				}
				verdict := checker.Check(records[i].Name, KindFor(list, records[i]))
				records[i].Compatibility = &verdict
			}
		}
	}
	return out
}

func countMissing(ds cssdata.Dataset) int {
	n := 0
	ds.Walk(func(_ string, _ cssdata.ListKind, rec *cssdata.FeatureRecord) bool {
		if rec.Compatibility == nil {
			n++
		}
		return true
	})
	return n
}

// Unannotated lists "shortname/name" for every record without a verdict.
func Unannotated(ds cssdata.Dataset) []string {
	var missing []string
	ds.Walk(func(shortname string, _ cssdata.ListKind, rec *cssdata.FeatureRecord) bool {
		if rec.Compatibility == nil {
			missing = append(missing, shortname+"/"+rec.Name)
		}
		return true
	})
	return missing
}
