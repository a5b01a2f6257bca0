package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/cssmap/cmd/cssmap/cmd/check"
	"github.com/agentstation/cssmap/cmd/cssmap/cmd/diff"
	"github.com/agentstation/cssmap/cmd/cssmap/cmd/inspect"
	"github.com/agentstation/cssmap/cmd/cssmap/cmd/prepare"
	"github.com/agentstation/cssmap/cmd/cssmap/cmd/serve"
	"github.com/agentstation/cssmap/cmd/cssmap/cmd/update"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(update.NewCommand(a))
	rootCmd.AddCommand(prepare.NewCommand(a))
	rootCmd.AddCommand(serve.NewCommand(a))

	// Validation commands
	rootCmd.AddCommand(check.NewCommand(a))
	rootCmd.AddCommand(inspect.NewCommand(a))
	rootCmd.AddCommand(diff.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(a.newVersionCommand())
}

// newVersionCommand creates the version command.
func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("cssmap %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
