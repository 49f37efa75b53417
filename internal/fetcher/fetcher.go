// Package fetcher drives the retrying batch-query loop: one connection
// per round, every pending query attempted, results snapshotted, failed
// subset retried with exponential backoff until the budget runs out.
package fetcher

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/pgfetch/internal/logging"
	"github.com/vvka-141/pgfetch/internal/retry"
	"github.com/vvka-141/pgfetch/pkg/pgfetch"
)

// Executor abstracts single-query execution for testability.
type Executor interface {
	Execute(ctx context.Context, pool *pgxpool.Pool, query string) (*pgfetch.Result, error)
}

// Fetcher coordinates retry rounds over a query batch.
//
// Not safe for concurrent use: exactly one round is active at a time and
// the accumulated result set is mutated only by that round.
type Fetcher struct {
	connector pgfetch.Connector
	executor  Executor
	store     pgfetch.SnapshotStore
	strategy  pgfetch.BackoffStrategy
	logger    pgfetch.Logger
	sessionID uuid.UUID

	// sleep waits out the backoff period. Tests replace it to avoid
	// real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLogger sets the logger. Defaults to a NullLogger.
func WithLogger(logger pgfetch.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// WithSnapshotStore sets the store persisting results after each round.
// Without a store, snapshotting is disabled.
func WithSnapshotStore(store pgfetch.SnapshotStore) Option {
	return func(f *Fetcher) {
		f.store = store
	}
}

// WithBackoff sets the backoff strategy. The default waits
// min(2^(n-1), 600) seconds before round n with a budget of
// pgfetch.DefaultMaxAttempts rounds.
func WithBackoff(strategy pgfetch.BackoffStrategy) Option {
	return func(f *Fetcher) {
		f.strategy = strategy
	}
}

// WithSessionID sets the session correlation ID. Defaults to a random UUID.
func WithSessionID(id uuid.UUID) Option {
	return func(f *Fetcher) {
		f.sessionID = id
	}
}

// New creates a Fetcher. Panics if connector or executor is nil.
func New(connector pgfetch.Connector, executor Executor, opts ...Option) *Fetcher {
	if connector == nil {
		panic("connector cannot be nil")
	}
	if executor == nil {
		panic("executor cannot be nil")
	}

	f := &Fetcher{
		connector: connector,
		executor:  executor,
		logger:    logging.NewNullLogger(),
		sessionID: uuid.New(),
		sleep:     sleepWithContext,
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.strategy == nil {
		f.strategy = retry.NewExponentialBackoff(pgfetch.DefaultMaxAttempts)
	}

	return f
}

// SessionID returns the session correlation ID.
func (f *Fetcher) SessionID() uuid.UUID {
	return f.sessionID
}

// Run executes every query in the batch, retrying failed subsets with
// exponential backoff until all succeed or the attempt budget is
// exhausted.
//
// The returned ResultSet always contains an entry for every name in the
// original batch: a tabular result on success, nil on failure. Budget
// exhaustion is a normal return, not an error; callers inspect the
// result set for failed markers. The only error conditions are an empty
// batch and context cancellation during backoff.
func (f *Fetcher) Run(ctx context.Context, batch *pgfetch.QueryBatch) (pgfetch.ResultSet, error) {
	if batch == nil || batch.Len() == 0 {
		return nil, pgfetch.ErrNoQueries
	}

	maxAttempts := f.strategy.MaxAttempts()
	if maxAttempts < 1 {
		maxAttempts = pgfetch.DefaultMaxAttempts
	}

	f.logger.Verbose("session %s: fetching %d queries, budget %d attempts", f.sessionID, batch.Len(), maxAttempts)

	results := make(pgfetch.ResultSet, batch.Len())
	pending := batch

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			f.logger.Info("%s attempt", ordinal(attempt))
			delay := f.strategy.NextDelay(attempt - 2)
			f.logger.Info("Waiting for %.2f seconds before retry...", delay.Seconds())
			if err := f.sleep(ctx, delay); err != nil {
				return results, err
			}
		}

		f.runRound(ctx, attempt, pending, results)

		failed := results.Failed(pending.Names())
		if len(failed) == 0 {
			f.logger.Info("All queries completed successfully!")
			return results, nil
		}

		if attempt == maxAttempts {
			f.logger.Info("Maximum retry attempts (%d) reached.", maxAttempts)
			f.logger.Info("Failed queries: %s", strings.Join(failed, ", "))
			return results, nil
		}

		noun := "queries"
		if len(failed) == 1 {
			noun = "query"
		}
		f.logger.Info("%d %s remain: %s", len(failed), noun, strings.Join(failed, ", "))

		pending = pending.Subset(failed)
	}

	return results, nil
}

// runRound performs one full pass over the pending batch: connect, run
// every pending query, release the connection, snapshot the accumulated
// results.
func (f *Fetcher) runRound(ctx context.Context, attempt int, pending *pgfetch.QueryBatch, results pgfetch.ResultSet) {
	pool, err := f.connector.Connect(ctx)
	if err != nil {
		f.logger.Error("database connection error at attempt %d: %v", attempt, err)
		// The whole round is lost: mark every pending query failed,
		// but never downgrade a success from a prior round.
		for _, name := range pending.Names() {
			if !results.Succeeded(name) {
				results[name] = nil
			}
		}
	} else {
		f.logger.Info("database connection successful")

		for _, name := range pending.Names() {
			query, ok := pending.Get(name)
			if !ok {
				continue
			}

			result, execErr := f.executor.Execute(ctx, pool, query)
			if execErr != nil {
				f.logger.Error("query %q failed: %v", name, execErr)
				results[name] = nil
				continue
			}

			f.logger.Info("query %q completed successfully", name)
			results[name] = result
		}

		f.releasePool(pool)
	}

	f.persist(attempt, results)
}

// releasePool closes the round's pool unconditionally. A panicking close
// must not take the retry loop down with it.
func (f *Fetcher) releasePool(pool *pgxpool.Pool) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("error closing connection pool: %v", r)
		}
	}()
	pool.Close()
	f.logger.Verbose("database connection closed")
}

// persist snapshots the full accumulated result set keyed by attempt
// number. Snapshot failures are reported but never abort the retry loop.
func (f *Fetcher) persist(attempt int, results pgfetch.ResultSet) {
	if f.store == nil {
		return
	}
	if err := f.store.Save(attempt, results); err != nil {
		f.logger.Error("failed to persist results for attempt %d: %v", attempt, err)
	}
}

// sleepWithContext blocks for d or until the context is cancelled.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ordinal renders 1 -> "1st", 2 -> "2nd", 11 -> "11th" etc.
func ordinal(n int) string {
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}
