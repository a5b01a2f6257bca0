package validation

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/cssmap/pkg/catalog"
	"github.com/agentstation/cssmap/pkg/constants"
	"github.com/agentstation/cssmap/pkg/cssdata"
)

// NoRelease is the status bucket for specifications never published as TR.
const NoRelease = "No Release"

// DetailShortname is the specification whose status is always detailed.
const DetailShortname = "CSS2"

// SpecDetails describes one specification's standing.
type SpecDetails struct {
	Shortname        string   `json:"shortname" yaml:"shortname"`
	Status           string   `json:"status" yaml:"status"`
	Groups           []string `json:"groups" yaml:"groups"`
	IsRecommendation bool     `json:"is_recommendation" yaml:"is_recommendation"`
	HasCSSGroup      bool     `json:"has_css_group" yaml:"has_css_group"`
}

// SpecsReport summarizes the specification index.
type SpecsReport struct {
	Total                int                      `json:"total" yaml:"total"`
	Completed            []cssdata.SpecIndexEntry `json:"completed" yaml:"completed"`
	Detail               *SpecDetails             `json:"detail,omitempty" yaml:"detail,omitempty"`
	RecommendationGroups []string                 `json:"recommendation_groups" yaml:"recommendation_groups"`
	CSSStatuses          map[string]int           `json:"css_statuses" yaml:"css_statuses"`
}

// Details describes entry.
func Details(entry cssdata.SpecIndexEntry) SpecDetails {
	d := SpecDetails{
		Shortname:        entry.Shortname,
		Status:           entry.Status(),
		Groups:           []string{},
		IsRecommendation: entry.Status() == constants.StatusRecommendation,
		HasCSSGroup:      entry.InGroup(constants.CSSWorkingGroup),
	}
	if d.Status == "" {
		d.Status = NoRelease
	}
	for _, g := range entry.Groups {
		d.Groups = append(d.Groups, g.Name)
	}
	return d
}

// CheckSpecs builds the report for idx.
func CheckSpecs(idx *cssdata.SpecIndex) *SpecsReport {
	report := &SpecsReport{
		Total:                len(idx.Results),
		Completed:            catalog.CompletedSpecs(idx.Results),
		RecommendationGroups: []string{},
		CSSStatuses:          map[string]int{},
	}

	if entry, ok := idx.Lookup(DetailShortname); ok {
		d := Details(entry)
		report.Detail = &d
	}

	groups := map[string]bool{}
	for _, e := range idx.Results {
		if e.Status() == constants.StatusRecommendation {
			for _, g := range e.Groups {
				groups[g.Name] = true
			}
		}
		if e.InGroup(constants.CSSWorkingGroup) {
			status := e.Status()
			if status == "" {
				status = NoRelease
			}
			report.CSSStatuses[status]++
		}
	}
	for name := range groups {
		report.RecommendationGroups = append(report.RecommendationGroups, name)
	}
	slices.Sort(report.RecommendationGroups)
	return report
}

// Statuses returns the CSS Working Group status buckets, most common first.
func (r *SpecsReport) Statuses() []string {
	statuses := make([]string, 0, len(r.CSSStatuses))
	for s := range r.CSSStatuses {
		statuses = append(statuses, s)
	}
	slices.SortFunc(statuses, func(a, b string) int {
		if r.CSSStatuses[a] != r.CSSStatuses[b] {
			return r.CSSStatuses[b] - r.CSSStatuses[a]
		}
		return strings.Compare(a, b)
	})
	return statuses
}

// PrintSpecsReport writes a human-readable summary.
func PrintSpecsReport(w io.Writer, r *SpecsReport) {
	caser := cases.Title(language.English)

	_, _ = fmt.Fprintf(w, "Total specs: %d\n", r.Total)
	_, _ = fmt.Fprintf(w, "Completed CSS specs: %d\n", len(r.Completed))

	if d := r.Detail; d != nil {
		_, _ = fmt.Fprintf(w, "\n%s found:\n", d.Shortname)
		_, _ = fmt.Fprintf(w, "  Status: %s\n", d.Status)
		_, _ = fmt.Fprintf(w, "  Groups: %s\n", strings.Join(d.Groups, ", "))
		_, _ = fmt.Fprintf(w, "  Is Recommendation: %t\n", d.IsRecommendation)
		_, _ = fmt.Fprintf(w, "  Has CSS Group: %t\n", d.HasCSSGroup)
	} else {
		_, _ = fmt.Fprintf(w, "\n%s not found in results\n", DetailShortname)
	}

	_, _ = fmt.Fprintln(w, "\nAll Groups in Recommendations:")
	for _, g := range r.RecommendationGroups {
		_, _ = fmt.Fprintf(w, "  - %s\n", g)
	}

	_, _ = fmt.Fprintln(w, "\nCSS WG Spec Statuses:")
	for _, s := range r.Statuses() {
		_, _ = fmt.Fprintf(w, "  %-40s %d\n", caser.String(s), r.CSSStatuses[s])
	}
}
