// Package constants provides shared constants used throughout basesync.
// This includes default file names, external tool names, file permissions
// and timeouts that should be consistent across the application.
package constants

import "time"

// Default paths and tool names
const (
	// DefaultSingularityFile is the target dataset rewritten in place
	DefaultSingularityFile = "pokedex.json"

	// DefaultFormatter is the command used to format the singularity file
	DefaultFormatter = "pre-commit"

	// FormatterHook is the pre-commit hook run against the singularity file
	FormatterHook = "prettier"

	// GitCommand is the version control executable
	GitCommand = "git"

	// ConfigName is the config file name searched in $HOME and the working directory
	ConfigName = ".basesync"
)

// JSON output settings for the singularity file
const (
	// JSONIndent is the indentation used when rewriting the singularity file
	JSONIndent = "  "
)

// File permission constants
const (
	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Timeouts
const (
	// VersionProbeTimeout bounds each `<tool> --version` call during dependency checks
	VersionProbeTimeout = 5 * time.Second
)
