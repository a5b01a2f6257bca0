package check

import (
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agentstation/cssmap/internal/appcontext"
	"github.com/agentstation/cssmap/internal/cmd/output"
	"github.com/agentstation/cssmap/internal/cmd/table"
	"github.com/agentstation/cssmap/internal/validation"
	"github.com/agentstation/cssmap/pkg/constants"
)

func newHrefsCommand(app appcontext.Interface) *cobra.Command {
	var (
		file string
		all  bool
	)

	cmd := &cobra.Command{
		Use:   "hrefs",
		Short: "Check css-data.json for missing links and verdicts",
		Long: `Hrefs reads css-data.json and reports the feature records without a
definition link (the count plus the first 10).

The check fails when the file is missing or unparseable, or when any
record lacks a compatibility verdict. Missing links never fail it.
With --all, every record missing a link is listed instead of the summary.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file == "" {
				file = filepath.Join(app.PipelineConfig().OutputDir, constants.DataFile)
			}
			return RunHrefs(app, file, all, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "dataset to check (default <output-dir>/css-data.json)")
	cmd.Flags().BoolVar(&all, "all", false, "list every record missing an href")
	return cmd
}

// RunHrefs checks file and prints the report, or every record missing an
// href when all is set.
func RunHrefs(app appcontext.Interface, file string, all bool, w io.Writer) error {
	logger := app.Logger()

	report, err := validation.CheckHrefsFile(file)
	if report == nil {
		logger.Error().Err(err).Str("file", file).Msg("Dataset check failed")
		return err
	}

	format := output.Format(app.OutputFormat())
	if all {
		if werr := output.Write(w, format, report.Missing, func(bool) table.Data {
			return table.MissingHrefsToTableData(report.Missing)
		}); werr != nil {
			return werr
		}
	} else if format.IsTable() {
		validation.PrintHrefReport(w, report)
	} else if werr := output.Write(w, format, report, nil); werr != nil {
		return werr
	}

	if err != nil {
		logger.Error().Err(err).Int("unannotated", len(report.Unannotated)).Msg("Dataset check failed")
		return err
	}
	logger.Info().
		Int("records", report.Records).
		Int("missing_href", len(report.Missing)).
		Msg("Dataset check passed")
	return nil
}
