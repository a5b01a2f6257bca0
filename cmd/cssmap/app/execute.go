package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/cssmap/internal/cmd/output"
	"github.com/agentstation/cssmap/pkg/constants"
)

// Flags holds the global flags.
type Flags struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool
	NoColor    bool
	Format     string
	LogLevel   string
	OutputDir  string
}

// forwarded are the global flags passed on to child processes.
var forwarded = []string{"config", "verbose", "quiet", "no-color", "log-level", "output-dir"}

// Execute runs the cssmap CLI application with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "cssmap",
		Short:   "CSS feature catalog builder",
		Version: a.version,
		Long: `cssmap builds a catalog of CSS features from the W3C webref dataset.

It fetches every specification's properties, at-rules, and values,
attaches a browser compatibility verdict to each, backfills missing
features and definition links, and writes specs.json and css-data.json.
The result can be validated, inspected, and served over HTTP.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "validation",
		Title: "Validation Commands:",
	})

	f := a.flags
	rootCmd.PersistentFlags().StringVar(&f.ConfigFile, "config", "", "config file (default is $HOME/.cssmap.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&f.Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolVarP(&f.Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().BoolVar(&f.NoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVarP(&f.Format, "format", "o", "", "output format: table, json, yaml, wide")
	rootCmd.PersistentFlags().StringVar(&f.LogLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	rootCmd.PersistentFlags().StringVar(&f.OutputDir, "output-dir", "", "directory for specs.json and css-data.json (default "+constants.DefaultOutputDir+")")

	rootCmd.SetVersionTemplate("cssmap {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	if a.flags.ConfigFile != "" {
		config, err := LoadConfig(a.flags.ConfigFile)
		if err != nil {
			return err
		}
		a.config = config
	}

	if a.flags.Format != "" {
		if _, err := output.ParseFormat(a.flags.Format); err != nil {
			return err
		}
	}
	a.config.UpdateFromFlags(a.flags)
	a.forward = forwardArgs(cmd)

	logger := NewLogger(a.config)
	a.logger = &logger

	if a.config.ConfigFile != "" {
		a.logger.Debug().Str("file", a.config.ConfigFile).Msg("Using config file")
	}
	return nil
}

// forwardArgs returns the forwarded global flags the user set on cmd.
func forwardArgs(cmd *cobra.Command) []string {
	var args []string
	for _, name := range forwarded {
		flag := cmd.Flags().Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		if flag.Value.Type() == "bool" {
			args = append(args, "--"+name+"="+flag.Value.String())
			continue
		}
		args = append(args, "--"+name, flag.Value.String())
	}
	return args
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
