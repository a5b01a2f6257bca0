// Package appcontext provides the application context interface shared
// by every command, so commands depend on an interface rather than on
// the concrete App.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/cssmap/internal/monitoring"
	"github.com/agentstation/cssmap/internal/pipeline"
	"github.com/agentstation/cssmap/internal/server"
)

// Interface defines the application context commands need.
// The App struct from cmd/cssmap/app implements it.
type Interface interface {
	// PipelineConfig returns the update settings after flags, env, and
	// config file have been merged.
	PipelineConfig() pipeline.Config

	// ServerConfig returns the API server settings.
	ServerConfig() server.Config

	// Metrics returns the process-wide metrics, created lazily.
	Metrics() *monitoring.Metrics

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml, wide).
	OutputFormat() string

	// ForwardArgs returns the global flags to pass to child processes.
	ForwardArgs() []string

	Version() string
	Commit() string
	Date() string
	BuiltBy() string
}
