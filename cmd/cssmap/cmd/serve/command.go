// Package serve provides the serve command, a read-only HTTP API over the
// written artifacts.
package serve

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/cssmap/internal/appcontext"
	"github.com/agentstation/cssmap/internal/server"
)

// NewCommand creates the serve command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		GroupID: "core",
		Short:   "Serve the CSS feature catalog over HTTP",
		Long: `Start a read-only REST API over specs.json and css-data.json.

Endpoints:
  GET /api/specs                 Specification index
  GET /api/specs/completed       CSS Working Group Recommendations
  GET /api/features              Flattened features (q, category, view,
                                 page, page_size, all)
  GET /api/features/{spec}       One specification's feature document
  GET /health, /ready            Liveness and readiness
  GET /metrics                   Prometheus metrics

The artifacts are read on first use and re-read after --cache-ttl, so a
running server picks up the output of a later "cssmap update".`,
		Example: `  # Serve ./public on :8080
  cssmap serve

  # Serve another directory on another port
  cssmap serve --addr :3000 --data-dir ./dist

  # Restrict CORS and tighten rate limiting
  cssmap serve --cors-origins "https://example.com" --rate-limit 60`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := ParseConfig(cmd, app.ServerConfig())
			logger := app.Logger()

			logger.Info().
				Str("addr", cfg.Addr).
				Str("prefix", cfg.PathPrefix).
				Str("data_dir", cfg.DataDir).
				Bool("cors", cfg.CORSEnabled).
				Int("rate_limit", cfg.RateLimit).
				Dur("cache_ttl", cfg.CacheTTL).
				Msg("Starting API server")

			var opts []server.Option
			if cfg.MetricsEnabled {
				opts = append(opts, server.WithMetrics(app.Metrics()))
			}
			return server.New(cfg, logger, opts...).ListenAndServe(cmd.Context())
		},
	}

	defaults := server.DefaultConfig()
	cmd.Flags().String("addr", "", "listen address (default from config, "+defaults.Addr+")")
	cmd.Flags().String("data-dir", "", "directory holding the artifacts (default <output-dir>)")
	cmd.Flags().String("prefix", defaults.PathPrefix, "API path prefix")

	cmd.Flags().Bool("cors", defaults.CORSEnabled, "enable CORS")
	cmd.Flags().StringSlice("cors-origins", []string{}, "allowed CORS origins (comma-separated, empty allows all)")

	cmd.Flags().Int("rate-limit", defaults.RateLimit, "requests per minute per client (0 to disable)")
	cmd.Flags().Duration("cache-ttl", defaults.CacheTTL, "how long loaded artifacts are served before re-reading")

	cmd.Flags().Duration("read-timeout", defaults.ReadTimeout, "HTTP read timeout")
	cmd.Flags().Duration("write-timeout", defaults.WriteTimeout, "HTTP write timeout")
	cmd.Flags().Duration("idle-timeout", defaults.IdleTimeout, "HTTP idle timeout")

	cmd.Flags().Bool("metrics", defaults.MetricsEnabled, "enable the /metrics endpoint")

	return cmd
}

// ParseConfig applies the flags the user set on top of base.
func ParseConfig(cmd *cobra.Command, base server.Config) server.Config {
	cfg := base
	flags := cmd.Flags()

	setString := func(name string, dst *string) {
		if v, _ := flags.GetString(name); v != "" && (flags.Changed(name) || *dst == "") {
			*dst = v
		}
	}
	setDuration := func(name string, dst *time.Duration) {
		if flags.Changed(name) {
			*dst, _ = flags.GetDuration(name)
		}
	}

	setString("addr", &cfg.Addr)
	setString("data-dir", &cfg.DataDir)
	setString("prefix", &cfg.PathPrefix)

	if flags.Changed("cors") {
		cfg.CORSEnabled, _ = flags.GetBool("cors")
	}
	if flags.Changed("cors-origins") {
		cfg.CORSOrigins, _ = flags.GetStringSlice("cors-origins")
	}
	if flags.Changed("rate-limit") {
		cfg.RateLimit, _ = flags.GetInt("rate-limit")
	}
	if flags.Changed("metrics") {
		cfg.MetricsEnabled, _ = flags.GetBool("metrics")
	}

	setDuration("cache-ttl", &cfg.CacheTTL)
	setDuration("read-timeout", &cfg.ReadTimeout)
	setDuration("write-timeout", &cfg.WriteTimeout)
	setDuration("idle-timeout", &cfg.IdleTimeout)

	return cfg
}
