// Package table converts cssmap values into rows for tabular CLI output.
package table

import (
	"strconv"
	"strings"

	"github.com/agentstation/cssmap/internal/cmd/emoji"
	"github.com/agentstation/cssmap/internal/validation"
	"github.com/agentstation/cssmap/pkg/catalog"
	"github.com/agentstation/cssmap/pkg/cssdata"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// maxValueWidth truncates value grammars in narrow tables.
const maxValueWidth = 48

// ItemsToTableData converts catalog items to table format. Wide adds the
// source title, value grammar, and href columns.
func ItemsToTableData(items []catalog.Item, wide bool) Data {
	headers := []string{"Name", "Type", "Spec", "Supported", "Browsers"}
	align := []Align{AlignLeft, AlignLeft, AlignLeft, AlignCenter, AlignRight}
	if wide {
		headers = append(headers, "Source", "Value", "Href")
		align = append(align, AlignLeft, AlignLeft, AlignLeft)
	}

	rows := make([][]string, 0, len(items))
	for _, it := range items {
		row := []string{
			it.Name(),
			it.Type,
			it.Spec,
			SupportSymbol(it.Record.Compatibility),
			BrowsersString(it.Record.Compatibility),
		}
		if wide {
			row = append(row, it.SourceTitle(), Truncate(it.Record.Value, maxValueWidth), dash(it.Record.Href))
		}
		rows = append(rows, row)
	}
	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// SpecsToTableData converts index entries to table format.
func SpecsToTableData(entries []cssdata.SpecIndexEntry) Data {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		status := e.Status()
		if status == "" {
			status = validation.NoRelease
		}
		groups := make([]string, 0, len(e.Groups))
		for _, g := range e.Groups {
			groups = append(groups, g.Name)
		}
		rows = append(rows, []string{e.Shortname, e.Title, status, dash(strings.Join(groups, ", "))})
	}
	return Data{Headers: []string{"Shortname", "Title", "Status", "Groups"}, Rows: rows}
}

// ProbesToTableData converts compatibility probe results to table format.
func ProbesToTableData(results []validation.ProbeResult) Data {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		c := &cssdata.Compatibility{Supported: r.Supported, Browsers: r.Browsers, Flagged: r.Flagged}
		flagged := ""
		if r.Flagged {
			flagged = emoji.Warning
		}
		rows = append(rows, []string{r.Name, string(r.Kind), SupportSymbol(c), BrowsersString(c), flagged})
	}
	return Data{
		Headers:         []string{"Feature", "Kind", "Supported", "Browsers", "Flagged"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignCenter, AlignRight, AlignCenter},
	}
}

// MissingHrefsToTableData converts records without an href to table format.
func MissingHrefsToTableData(missing []validation.MissingHref) Data {
	rows := make([][]string, 0, len(missing))
	for _, m := range missing {
		rows = append(rows, []string{m.Spec, m.Name, m.Type})
	}
	return Data{Headers: []string{"Spec", "Name", "List"}, Rows: rows}
}

// SupportSymbol renders a verdict as a check, a cross, or unknown.
func SupportSymbol(c *cssdata.Compatibility) string {
	switch {
	case c == nil:
		return emoji.Unknown
	case c.Supported:
		return emoji.Success
	default:
		return emoji.Error
	}
}

// BrowsersString renders the browser count, e.g. "2/3".
func BrowsersString(c *cssdata.Compatibility) string {
	if c == nil {
		return "-"
	}
	return strconv.Itoa(c.Browsers) + "/3"
}

// Truncate shortens s to at most n runes, ending with an ellipsis.
func Truncate(s string, n int) string {
	if s == "" {
		return "-"
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
