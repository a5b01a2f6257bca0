// Package update provides the update command: fetch the webref index and
// feature documents, annotate them, and write the artifacts.
package update

import (
	"context"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/agentstation/cssmap/internal/appcontext"
	"github.com/agentstation/cssmap/internal/cmd/output"
	"github.com/agentstation/cssmap/internal/pipeline"
	"github.com/agentstation/cssmap/pkg/errors"
	"github.com/agentstation/cssmap/pkg/logging"
)

// Flags holds the update-specific flags.
type Flags struct {
	DryRun      bool
	BatchSize   int
	MetricsFile string
}

// NewCommand creates the update command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "update",
		GroupID: "core",
		Short:   "Fetch CSS features from webref and write the dataset",
		Args:    cobra.NoArgs,
		Long: `Update rebuilds the CSS feature dataset:

1. Fetch the webref specification index and write specs.json
2. Fetch each specification's feature document, in batches
3. Attach a browser compatibility verdict to every feature
4. Inject features missing upstream and backfill missing links
5. Write css-data.json

Specifications without CSS data are skipped. Other per-specification
failures are logged and the run continues.`,
		Example: `  cssmap update                          # Rebuild ./public/css-data.json
  cssmap update --output-dir ./dist       # Write elsewhere
  cssmap update --dry-run -o json         # Fetch and annotate without writing
  cssmap update --metrics-file run.prom   # Export run metrics for node_exporter`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := app.PipelineConfig()
			if cmd.Flags().Changed("dry-run") {
				cfg.DryRun = flags.DryRun
			}
			if cmd.Flags().Changed("batch-size") {
				cfg.BatchSize = flags.BatchSize
			}
			return Execute(cmd.Context(), app, cfg, flags, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "fetch and annotate without writing artifacts")
	cmd.Flags().IntVar(&flags.BatchSize, "batch-size", 0, "concurrent feature fetches per batch (default from config)")
	cmd.Flags().StringVar(&flags.MetricsFile, "metrics-file", "", "write run metrics in Prometheus text format to this file")

	return cmd
}

// Summary is the printed result of an update run.
type Summary struct {
	RunID     string `json:"run_id" yaml:"run_id"`
	Specs     int    `json:"specs" yaml:"specs"`
	Fetched   int    `json:"fetched" yaml:"fetched"`
	Missing   int    `json:"missing" yaml:"missing"`
	Failed    int    `json:"failed" yaml:"failed"`
	Features  int    `json:"features" yaml:"features"`
	Supported int    `json:"supported" yaml:"supported"`
	Injected  int    `json:"injected" yaml:"injected"`
	Patched   int    `json:"patched" yaml:"patched"`
	Duration  string `json:"duration" yaml:"duration"`
	DryRun    bool   `json:"dry_run" yaml:"dry_run"`
	OutputDir string `json:"output_dir" yaml:"output_dir"`
	Changes   string `json:"changes,omitempty" yaml:"changes,omitempty"`
}

// NewSummary builds the printed summary of result.
func NewSummary(result *pipeline.Result, outputDir string) Summary {
	s := Summary{
		RunID:     result.RunID,
		Specs:     result.Specs,
		Fetched:   result.Fetched,
		Missing:   result.Missing,
		Failed:    result.Failed,
		Features:  result.Features,
		Supported: result.Supported,
		Injected:  len(result.Injected),
		Patched:   len(result.Patched),
		Duration:  result.Duration.Round(time.Millisecond).String(),
		DryRun:    result.DryRun,
		OutputDir: outputDir,
	}
	if result.Changes != nil {
		s.Changes = result.Changes.String()
	}
	return s
}

// Execute runs one update and prints its summary.
func Execute(ctx context.Context, app appcontext.Interface, cfg pipeline.Config, flags *Flags, w io.Writer) error {
	logger := app.Logger()
	ctx = logging.WithLogger(ctx, logger)

	logger.Info().
		Str("base_url", cfg.BaseURL).
		Str("output_dir", cfg.OutputDir).
		Int("batch_size", cfg.BatchSize).
		Bool("dry_run", cfg.DryRun).
		Msg("Starting update")

	metrics := app.Metrics()
	p, err := pipeline.Build(cfg, metrics)
	if err != nil {
		return err
	}

	result, err := p.Run(ctx)
	if err != nil {
		return err
	}

	if flags != nil && flags.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(flags.MetricsFile, metrics.Registry()); err != nil {
			return errors.WrapIO("write", flags.MetricsFile, err)
		}
	}

	return output.Write(w, output.Format(app.OutputFormat()), NewSummary(result, cfg.OutputDir), nil)
}
