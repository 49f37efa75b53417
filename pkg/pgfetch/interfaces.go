package pgfetch

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connector abstracts database connection establishment.
// A connector validates its configuration, opens a pool, verifies it with
// a ping and hands ownership to the caller. It does NOT retry internally;
// retry across rounds is the fetcher's responsibility.
type Connector interface {
	// Connect establishes a connection pool to the database.
	// Fails with ErrInvalidConfig when required parameters are missing and
	// with ErrConnectionFailed when the handshake fails.
	Connect(ctx context.Context) (*pgxpool.Pool, error)
}

// SnapshotStore persists the accumulated ResultSet after each round so
// partial progress survives a process crash between rounds.
type SnapshotStore interface {
	// Save durably writes the full result set keyed by attempt number.
	// Each attempt overwrites its own snapshot file completely.
	Save(attempt int, results ResultSet) error

	// Load reads the snapshot for the given attempt number.
	Load(attempt int) (ResultSet, error)
}

// Notifier signals completion of a long-running query.
// Implementations must tolerate being called from the hot path; failures
// are swallowed, never surfaced to the caller.
type Notifier interface {
	Notify()
}

// BackoffStrategy calculates the delay before the next retry round.
type BackoffStrategy interface {
	// NextDelay returns the duration to wait before the next attempt.
	// attempt is zero-indexed (0 = first retry, 1 = second retry, etc.)
	NextDelay(attempt int) time.Duration

	// MaxAttempts returns the maximum number of retry attempts (0 = no retries, -1 = unlimited)
	MaxAttempts() int
}
