// Package prepare provides the prepare command, which runs the update and
// validation stages as child processes of the running binary.
package prepare

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/cssmap/internal/appcontext"
	"github.com/agentstation/cssmap/internal/cmd/emoji"
	"github.com/agentstation/cssmap/internal/pipeline"
	"github.com/agentstation/cssmap/pkg/logging"
)

// NewCommand creates the prepare command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "prepare",
		GroupID: "core",
		Short:   "Update the dataset, then validate it",
		Long: `Prepare runs "cssmap update" and then "cssmap check hrefs", each as
its own process, and stops at the first failure. Global flags such as
--output-dir and --log-level are passed through to both.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runner, err := pipeline.NewExecRunner()
			if err != nil {
				return err
			}
			runner.Stdout = cmd.OutOrStdout()
			runner.Stderr = cmd.ErrOrStderr()
			return Run(cmd.Context(), app, runner, cmd.OutOrStdout())
		},
	}
}

// Run runs the preparation steps with runner.
func Run(ctx context.Context, app appcontext.Interface, runner pipeline.Runner, w io.Writer) error {
	ctx = logging.WithLogger(ctx, app.Logger())

	if err := pipeline.RunSteps(ctx, runner, pipeline.PrepareSteps(app.ForwardArgs()...)); err != nil {
		_, _ = fmt.Fprintf(w, "\n%s Data preparation failed: %v\n", emoji.Error, err)
		return err
	}
	_, _ = fmt.Fprintf(w, "\n%s Data preparation complete!\n", emoji.Success)
	return nil
}
