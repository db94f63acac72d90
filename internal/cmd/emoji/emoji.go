// Package emoji provides symbol constants for CLI output.
package emoji

// Status symbols used by basesync commands.
const (
	// Success marks an available dependency or a committed change.
	Success = "✓"

	// Error marks a missing required dependency or a failed run.
	Error = "✗"

	// Warning marks a missing optional dependency or an ignored failure.
	Warning = "!"

	// Optional marks skipped work, such as formatting with --no-format.
	Optional = "-"

	// Info marks informational lines.
	Info = "i"
)
