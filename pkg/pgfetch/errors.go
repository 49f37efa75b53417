package pgfetch

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	_, err := connector.Connect(ctx)
//	if errors.Is(err, pgfetch.ErrInvalidConfig) {
//	    // Required connection parameters are missing
//	}
var (
	// ErrInvalidConfig indicates required connection or session parameters are missing.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectionFailed indicates the database handshake failed
	// (network, authentication, TLS).
	ErrConnectionFailed = errors.New("connection failed")

	// ErrQueryFailed indicates a single query failed after every
	// execution strategy was exhausted.
	ErrQueryFailed = errors.New("query failed")

	// ErrSnapshotFailed indicates a result snapshot could not be written.
	ErrSnapshotFailed = errors.New("snapshot write failed")

	// ErrNoQueries indicates an empty batch was submitted.
	ErrNoQueries = errors.New("no queries in batch")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Check for sentinel errors
	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrQueryFailed):
		return ExitQueryFailed
	case errors.Is(err, ErrSnapshotFailed):
		return ExitSnapshotError
	case errors.Is(err, ErrNoQueries):
		return ExitUsageError
	}

	// Check for common connection error patterns
	errStr := err.Error()
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
