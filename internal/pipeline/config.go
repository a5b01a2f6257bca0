package pipeline

import (
	"time"

	"github.com/agentstation/cssmap/internal/monitoring"
	"github.com/agentstation/cssmap/internal/persistence"
	"github.com/agentstation/cssmap/internal/sources/webref"
	"github.com/agentstation/cssmap/internal/transport"
	"github.com/agentstation/cssmap/pkg/compat"
	"github.com/agentstation/cssmap/pkg/constants"
	"github.com/agentstation/cssmap/pkg/corrections"
	"github.com/agentstation/cssmap/pkg/errors"
	"github.com/agentstation/cssmap/pkg/logging"
)

// Config holds the settings of an update run.
type Config struct {
	BaseURL     string        // webref base URL
	OutputDir   string        // Directory for specs.json and css-data.json
	CompatData  string        // Path to the BCD JSON document
	Corrections string        // Path to a corrections table; empty uses the embedded one
	BatchSize   int           // Concurrent feature fetches per batch
	HTTPTimeout time.Duration // Per-request timeout
	UserAgent   string
	DryRun      bool
}

// DefaultConfig returns a configuration with the built-in defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:     constants.WebrefBaseURL,
		OutputDir:   constants.DefaultOutputDir,
		CompatData:  constants.DefaultCompatDataPath,
		BatchSize:   constants.DefaultBatchSize,
		HTTPTimeout: constants.DefaultHTTPTimeout,
		UserAgent:   constants.DefaultUserAgent,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.BatchSize < 1 || c.BatchSize > constants.MaxBatchSize {
		return errors.NewValidationError("batch_size", c.BatchSize, "must be between 1 and 100")
	}
	if c.HTTPTimeout < 0 {
		return errors.NewValidationError("http_timeout", c.HTTPTimeout, "must not be negative")
	}
	if c.CompatData == "" {
		return errors.NewValidationError("compat_data", c.CompatData, "path to compatibility data is required")
	}
	return nil
}

// Build loads the compatibility data and corrections named by cfg and
// wires a pipeline against webref. Loading failures are fatal. metrics
// may be nil.
func Build(cfg Config, metrics *monitoring.Metrics, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	data, err := compat.LoadFile(cfg.CompatData)
	if err != nil {
		return nil, errors.WrapResource("load", "compatibility data", cfg.CompatData, err)
	}
	table, err := corrections.Load(cfg.Corrections)
	if err != nil {
		return nil, errors.WrapResource("load", "corrections", cfg.Corrections, err)
	}
	logging.Debug().
		Int("aliases", len(table.Aliases)).
		Int("injections", len(table.Inject)).
		Int("patches", table.PatchCount()).
		Msg("Loaded corrections")

	var observer webref.Observer
	if metrics != nil {
		observer = metrics
		opts = append(opts, WithRecorder(metrics))
	}

	source := webref.New(
		webref.WithBaseURL(cfg.BaseURL),
		webref.WithBatchSize(cfg.BatchSize),
		webref.WithResolver(table),
		webref.WithObserver(observer),
		webref.WithTransport(transport.New(webref.SourceName,
			transport.WithTimeout(cfg.HTTPTimeout),
			transport.WithUserAgent(cfg.UserAgent),
		)),
	)

	opts = append(opts, WithDryRun(cfg.DryRun))
	return New(source, data, table, persistence.NewWriter(cfg.OutputDir), opts...), nil
}
