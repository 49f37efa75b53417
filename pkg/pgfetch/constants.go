package pgfetch

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // All queries completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration or parameters
	ExitConnectionError = 11 // Failed to connect to database
	ExitQueryFailed     = 12 // One or more queries still failed after all attempts
	ExitSnapshotError   = 13 // Result snapshot could not be written
)

const (
	// DefaultMaxAttempts is the default retry budget for a fetch session.
	DefaultMaxAttempts = 50

	// DefaultBackoffInitialDelay is the wait before the first retry round.
	// Round n waits initialDelay * 2^(n-2), i.e. 2s, 4s, 8s, ...
	DefaultBackoffInitialDelay = 2 * time.Second

	// DefaultBackoffMaxDelay caps the wait between retry rounds.
	DefaultBackoffMaxDelay = 10 * time.Minute

	// DefaultPort is the standard PostgreSQL port.
	DefaultPort = 5432

	// CursorTerminationMarker is the literal substring in source query text
	// before which a LIMIT clause must be spliced to stay syntactically valid.
	CursorTerminationMarker = "FOR READ ONLY"

	// MaxQueryPreviewLength is the maximum number of characters of query
	// text shown in diagnostic reports.
	MaxQueryPreviewLength = 200
)
