// Package check provides the check commands, which validate the written
// artifacts and the compatibility data.
package check

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/cssmap/internal/appcontext"
)

// NewCommand creates the check command and its subcommands.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "check",
		GroupID: "validation",
		Short:   "Validate the generated artifacts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newHrefsCommand(app))
	cmd.AddCommand(newSpecsCommand(app))
	cmd.AddCommand(newCompatCommand(app))
	return cmd
}
