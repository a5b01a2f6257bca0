// Package validation checks the artifacts the pipeline writes and
// reports on the specification index.
package validation

import (
	"fmt"
	"io"

	"github.com/agentstation/cssmap/internal/cmd/emoji"
	"github.com/agentstation/cssmap/internal/persistence"
	"github.com/agentstation/cssmap/pkg/constants"
	"github.com/agentstation/cssmap/pkg/cssdata"
	"github.com/agentstation/cssmap/pkg/errors"
)

// MissingHref identifies a feature record without a definition link.
type MissingHref struct {
	Spec string `json:"spec" yaml:"spec"`
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"` // properties, atrules, or values
}

// HrefReport is the result of checking css-data.json.
type HrefReport struct {
	Path        string        `json:"path,omitempty" yaml:"path,omitempty"`
	Records     int           `json:"records" yaml:"records"`
	Missing     []MissingHref `json:"missing" yaml:"missing"`
	Unannotated []string      `json:"unannotated,omitempty" yaml:"unannotated,omitempty"`
}

// Sample returns the first few records missing an href.
func (r *HrefReport) Sample() []MissingHref {
	n := min(len(r.Missing), constants.MissingHrefSampleSize)
	return r.Missing[:n]
}

// Err returns a validation error when any record has no compatibility verdict.
// Missing hrefs are reported but never fail the check.
func (r *HrefReport) Err() error {
	if len(r.Unannotated) == 0 {
		return nil
	}
	return errors.NewValidationError("compatibility", r.Unannotated,
		fmt.Sprintf("%d records have no compatibility verdict (first: %s)", len(r.Unannotated), r.Unannotated[0]))
}

// CheckHrefs walks the dataset in shortname order.
func CheckHrefs(ds cssdata.Dataset) *HrefReport {
	report := &HrefReport{Missing: []MissingHref{}}
	ds.Walk(func(shortname string, kind cssdata.ListKind, rec *cssdata.FeatureRecord) bool {
		report.Records++
		if rec.Href == "" {
			report.Missing = append(report.Missing, MissingHref{Spec: shortname, Name: rec.Name, Type: kind.String()})
		}
		if rec.Compatibility == nil {
			report.Unannotated = append(report.Unannotated, shortname+"/"+rec.Name)
		}
		return true
	})
	return report
}

// CheckHrefsFile reads css-data.json and checks it. A missing or
// unparseable file is an error.
func CheckHrefsFile(path string) (*HrefReport, error) {
	ds, err := persistence.ReadDataset(path)
	if err != nil {
		return nil, err
	}
	report := CheckHrefs(ds)
	report.Path = path
	return report, report.Err()
}

// PrintHrefReport writes a human-readable summary.
func PrintHrefReport(w io.Writer, r *HrefReport) {
	_, _ = fmt.Fprintf(w, "Items missing href: %d (of %d)\n", len(r.Missing), r.Records)
	for _, m := range r.Sample() {
		_, _ = fmt.Fprintf(w, "  %s %s/%s (%s)\n", emoji.Optional, m.Spec, m.Name, m.Type)
	}
	if len(r.Unannotated) > 0 {
		_, _ = fmt.Fprintf(w, "%s %d records have no compatibility verdict\n", emoji.Error, len(r.Unannotated))
		return
	}
	_, _ = fmt.Fprintf(w, "%s every record has a compatibility verdict\n", emoji.Success)
}
