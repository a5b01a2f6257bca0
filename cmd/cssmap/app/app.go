// Package app provides the application context and dependency management
// for the cssmap CLI. Configuration, logging, and shared metrics live here
// and reach the commands through appcontext.Interface.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/cssmap/internal/appcontext"
	"github.com/agentstation/cssmap/internal/cmd/output"
	"github.com/agentstation/cssmap/internal/monitoring"
	"github.com/agentstation/cssmap/internal/pipeline"
	"github.com/agentstation/cssmap/internal/server"
	"github.com/agentstation/cssmap/pkg/errors"
)

// App represents the cssmap application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	flags  *Flags
	logger *zerolog.Logger

	// Global flags the user set, for child processes
	forward []string

	metricsOnce sync.Once
	metrics     *monitoring.Metrics
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		flags:   &Flags{},
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the --format value, or the format detected from stdout.
func (a *App) OutputFormat() string {
	return string(output.DetectFormat(a.config.Format))
}

// ForwardArgs returns the global flags given on the command line.
func (a *App) ForwardArgs() []string {
	return a.forward
}

// PipelineConfig returns the update settings.
func (a *App) PipelineConfig() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	if a.config.BaseURL != "" {
		cfg.BaseURL = a.config.BaseURL
	}
	if a.config.OutputDir != "" {
		cfg.OutputDir = a.config.OutputDir
	}
	if a.config.CompatData != "" {
		cfg.CompatData = a.config.CompatData
	}
	if a.config.BatchSize != 0 {
		cfg.BatchSize = a.config.BatchSize
	}
	if a.config.HTTPTimeout != 0 {
		cfg.HTTPTimeout = a.config.HTTPTimeout
	}
	if a.config.UserAgent != "" {
		cfg.UserAgent = a.config.UserAgent
	}
	cfg.Corrections = a.config.Corrections
	return cfg
}

// ServerConfig returns the API server settings. The server reads the
// artifacts from the pipeline's output directory.
func (a *App) ServerConfig() server.Config {
	cfg := server.DefaultConfig()
	if a.config.Listen != "" {
		cfg.Addr = a.config.Listen
	}
	cfg.DataDir = a.PipelineConfig().OutputDir
	return cfg
}

// Metrics returns the process-wide metrics, created on first use.
func (a *App) Metrics() *monitoring.Metrics {
	a.metricsOnce.Do(func() {
		a.metrics = monitoring.NewMetrics()
	})
	return a.metrics
}

// Shutdown performs graceful shutdown of the application.
func (a *App) Shutdown(_ context.Context) error {
	a.logger.Debug().Msg("Application shutdown")
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

var _ appcontext.Interface = (*App)(nil)
