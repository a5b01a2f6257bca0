// Package constants provides shared constants used throughout the cssmap codebase.
// This includes upstream locations, output file names, timeouts, limits and
// file permissions that should be consistent across the pipeline stages.
package constants

import "time"

// Upstream locations
const (
	// WebrefBaseURL is the root of the curated webref editor's-draft dataset
	WebrefBaseURL = "https://raw.githubusercontent.com/w3c/webref/curated/ed"

	// WebrefIndexPath is the specification index, relative to WebrefBaseURL
	WebrefIndexPath = "index.json"

	// WebrefCSSDir is the directory holding per-specification CSS documents
	WebrefCSSDir = "css"

	// DefaultUserAgent identifies cssmap to upstream hosts
	DefaultUserAgent = "cssmap (+https://github.com/agentstation/cssmap)"
)

// Output artifacts
const (
	// DefaultOutputDir is where the pipeline writes its artifacts
	DefaultOutputDir = "./public"

	// SpecsFile is the verbatim copy of the specification index
	SpecsFile = "specs.json"

	// DataFile is the annotated aggregate dataset
	DataFile = "css-data.json"

	// DefaultCompatDataPath is the default location of the browser-compat-data JSON
	DefaultCompatDataPath = "./data/bcd.json"
)

// Timeout constants
const (
	// DefaultHTTPTimeout is the per-request timeout for upstream fetches
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultTimeout is the standard timeout for general operations
	DefaultTimeout = 10 * time.Second

	// ShutdownTimeout bounds graceful shutdown of the API server
	ShutdownTimeout = 5 * time.Second

	// StageTimeout bounds a single child stage run by the prepare orchestrator
	StageTimeout = 15 * time.Minute
)

// File permission constants
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limits
const (
	// DefaultBatchSize is how many per-spec fetches run concurrently
	DefaultBatchSize = 10

	// MaxBatchSize caps configurable batch sizes
	MaxBatchSize = 100

	// DefaultPageSize is the display layer's page size
	DefaultPageSize = 9

	// MaxPageSize is the maximum allowed page size for paginated results
	MaxPageSize = 500

	// MissingHrefSampleSize is how many records the href check prints
	MissingHrefSampleSize = 10
)

// Working group and status names used by the specs report and catalog
const (
	// CSSWorkingGroup is the group name of the CSS Working Group in the index
	CSSWorkingGroup = "Cascading Style Sheets (CSS) Working Group"

	// StatusRecommendation is the W3C maturity status of a finished spec
	StatusRecommendation = "Recommendation"
)

// Server defaults
const (
	// DefaultListenAddr is the address the serve command binds to
	DefaultListenAddr = ":8080"
)
