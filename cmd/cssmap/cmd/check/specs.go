package check

import (
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agentstation/cssmap/internal/appcontext"
	"github.com/agentstation/cssmap/internal/cmd/output"
	"github.com/agentstation/cssmap/internal/cmd/table"
	"github.com/agentstation/cssmap/internal/persistence"
	"github.com/agentstation/cssmap/internal/validation"
	"github.com/agentstation/cssmap/pkg/constants"
)

func newSpecsCommand(app appcontext.Interface) *cobra.Command {
	var (
		file      string
		completed bool
	)

	cmd := &cobra.Command{
		Use:   "specs",
		Short: "Report specification statuses from specs.json",
		Long: `Specs summarizes specs.json: the number of tracked specifications,
the CSS Working Group specifications at Recommendation, the groups that
own Recommendations, the status histogram of CSS Working Group
specifications, and the standing of CSS2.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file == "" {
				file = filepath.Join(app.PipelineConfig().OutputDir, constants.SpecsFile)
			}
			return RunSpecs(app, file, completed, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "index to read (default <output-dir>/specs.json)")
	cmd.Flags().BoolVar(&completed, "completed", false, "list the completed specifications instead of the summary")
	return cmd
}

// RunSpecs reads file and prints the report, or only the completed
// specifications.
func RunSpecs(app appcontext.Interface, file string, completed bool, w io.Writer) error {
	idx, err := persistence.ReadSpecs(file)
	if err != nil {
		app.Logger().Error().Err(err).Str("file", file).Msg("Failed to read specification index")
		return err
	}
	report := validation.CheckSpecs(idx)
	format := output.Format(app.OutputFormat())

	if completed {
		return output.Write(w, format, report.Completed, func(bool) table.Data {
			return table.SpecsToTableData(report.Completed)
		})
	}
	if format.IsTable() {
		validation.PrintSpecsReport(w, report)
		return nil
	}
	return output.Write(w, format, report, nil)
}
