package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/cssmap/internal/monitoring"
	"github.com/agentstation/cssmap/internal/pipeline"
	"github.com/agentstation/cssmap/internal/server"
)

// Mock provides a configurable implementation of Interface for tests.
// Zero fields fall back to defaults.
type Mock struct {
	Pipeline  *pipeline.Config
	Server    *server.Config
	Format    string
	Forward   []string
	LoggerPtr *zerolog.Logger

	metrics *monitoring.Metrics
}

// PipelineConfig returns Pipeline or the default configuration.
func (m *Mock) PipelineConfig() pipeline.Config {
	if m.Pipeline != nil {
		return *m.Pipeline
	}
	return pipeline.DefaultConfig()
}

// ServerConfig returns Server or the default configuration.
func (m *Mock) ServerConfig() server.Config {
	if m.Server != nil {
		return *m.Server
	}
	return server.DefaultConfig()
}

// Metrics returns a metrics instance private to this mock.
func (m *Mock) Metrics() *monitoring.Metrics {
	if m.metrics == nil {
		m.metrics = monitoring.NewMetrics()
	}
	return m.metrics
}

// Logger returns LoggerPtr or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerPtr != nil {
		return m.LoggerPtr
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns Format or json.
func (m *Mock) OutputFormat() string {
	if m.Format != "" {
		return m.Format
	}
	return "json"
}

// ForwardArgs returns Forward.
func (m *Mock) ForwardArgs() []string {
	return m.Forward
}

// Version returns "dev".
func (m *Mock) Version() string { return "dev" }

// Commit returns "unknown".
func (m *Mock) Commit() string { return "unknown" }

// Date returns "unknown".
func (m *Mock) Date() string { return "unknown" }

// BuiltBy returns "test".
func (m *Mock) BuiltBy() string { return "test" }

var _ Interface = (*Mock)(nil)
