package server

import (
	"time"

	"github.com/agentstation/cssmap/pkg/constants"
)

// Config holds server configuration.
type Config struct {
	Addr       string // Listen address, e.g. :8080
	PathPrefix string // Prefix of the API routes

	// DataDir is where specs.json and css-data.json are read from.
	DataDir string

	CORSEnabled bool
	CORSOrigins []string

	RateLimit int           // Requests per minute per client (0 to disable)
	CacheTTL  time.Duration // How long a loaded catalog is served before re-reading

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	MetricsEnabled bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:           constants.DefaultListenAddr,
		PathPrefix:     "/api",
		DataDir:        constants.DefaultOutputDir,
		CORSEnabled:    true,
		CORSOrigins:    []string{},
		RateLimit:      300,
		CacheTTL:       5 * time.Minute,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    120 * time.Second,
		MetricsEnabled: true,
	}
}
