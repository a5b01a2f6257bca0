package output

import (
	"io"

	"github.com/agentstation/cssmap/internal/cmd/table"
)

// Write renders data in format. For table formats, rows builds the table
// (wide is true for the wide format); with nil rows the formatter falls
// back to reflecting over data.
func Write(w io.Writer, format Format, data any, rows func(wide bool) table.Data) error {
	if format.IsTable() && rows != nil {
		return NewFormatter(format).Format(w, rows(format == FormatWide))
	}
	return NewFormatter(format).Format(w, data)
}
