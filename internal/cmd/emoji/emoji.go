// Package emoji provides symbol constants for CLI output.
package emoji

// Symbols used for verdicts and check results.
const (
	// Success marks a supported feature or a passing check.
	Success = "✓"

	// Error marks an unsupported feature or a failing check.
	Error = "✗"

	// Warning marks a feature only available behind a flag.
	Warning = "!"

	// Optional marks an informational list entry.
	Optional = "-"

	// Unknown marks a record without a verdict.
	Unknown = "?"
)
