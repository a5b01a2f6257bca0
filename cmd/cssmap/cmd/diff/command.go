// Package diff provides the diff command, which compares two datasets.
package diff

import (
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agentstation/cssmap/internal/appcontext"
	"github.com/agentstation/cssmap/internal/cmd/output"
	"github.com/agentstation/cssmap/internal/persistence"
	"github.com/agentstation/cssmap/pkg/constants"
	"github.com/agentstation/cssmap/pkg/differ"
)

// Flags holds the diff-specific flags.
type Flags struct {
	Ignore   []string
	Limit    int
	Truncate int
}

// NewCommand creates the diff command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "diff <old> [new]",
		GroupID: "validation",
		Short:   "Compare two css-data.json files",
		Long: `Diff reports the specifications and features added or removed between
two datasets, and the records whose type, grammar, link, or compatibility
verdict changed. The new dataset defaults to <output-dir>/css-data.json.`,
		Example: `  cssmap diff backup/css-data.json
  cssmap diff old.json new.json --ignore href
  cssmap diff old.json -o json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			newPath := filepath.Join(app.PipelineConfig().OutputDir, constants.DataFile)
			if len(args) == 2 {
				newPath = args[1]
			}
			return Run(app, args[0], newPath, flags, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringSliceVar(&flags.Ignore, "ignore", nil, "record fields to ignore: type, value, href, compatibility")
	cmd.Flags().IntVar(&flags.Limit, "limit", 20, "entries listed per section in table output (0 for all)")
	cmd.Flags().IntVar(&flags.Truncate, "truncate", 60, "characters kept of a changed grammar or link (0 for all)")
	return cmd
}

// Run compares the datasets at oldPath and newPath and prints the changes.
func Run(app appcontext.Interface, oldPath, newPath string, flags *Flags, w io.Writer) error {
	logger := app.Logger()

	existing, err := persistence.ReadDataset(oldPath)
	if err != nil {
		logger.Error().Err(err).Str("file", oldPath).Msg("Failed to read dataset")
		return err
	}
	updated, err := persistence.ReadDataset(newPath)
	if err != nil {
		logger.Error().Err(err).Str("file", newPath).Msg("Failed to read dataset")
		return err
	}

	changes := differ.New(
		differ.WithIgnoredFields(flags.Ignore...),
		differ.WithTruncation(flags.Truncate),
	).Datasets(existing, updated)

	format := output.Format(app.OutputFormat())
	if format.IsTable() {
		changes.Print(w, flags.Limit)
		return nil
	}
	return output.Write(w, format, changes, nil)
}
