// Package executor runs a single query against a connection and
// materializes the result as an in-memory table, falling back through
// alternative execution strategies when result decoding fails.
package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/pgfetch/internal/logging"
	"github.com/vvka-141/pgfetch/internal/notify"
	"github.com/vvka-141/pgfetch/pkg/pgfetch"
)

// Executor executes one query at a time against a pool owned by the
// current retry round. It holds no connection state of its own, so a
// single Executor serves every round of a session.
type Executor struct {
	logger     pgfetch.Logger
	notifier   pgfetch.Notifier
	classifier *MetadataErrorClassifier

	// limit, when non-empty, is spliced into each query before the
	// cursor-termination marker.
	limit string

	// target describes the connection endpoint for diagnostic reports.
	target string
}

// New creates an Executor. logger and notifier may be nil, in which case
// no-op implementations are used.
func New(logger pgfetch.Logger, notifier pgfetch.Notifier, limit, target string) *Executor {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	if notifier == nil {
		notifier = notify.NewNullNotifier()
	}
	return &Executor{
		logger:     logger,
		notifier:   notifier,
		classifier: NewMetadataErrorClassifier(),
		limit:      limit,
		target:     target,
	}
}

// InjectLimit splices a LIMIT clause into query text immediately before
// the cursor-termination marker. Queries written in cursor style must keep
// trailing clauses ahead of the marker, so appending at the end would
// produce invalid SQL. Queries without the marker are returned unchanged.
func InjectLimit(query, limit string) string {
	if limit == "" {
		return query
	}
	limitClause := "LIMIT " + limit
	return strings.ReplaceAll(query, pgfetch.CursorTerminationMarker, limitClause+" "+pgfetch.CursorTerminationMarker)
}

type strategyFunc func(ctx context.Context) (*pgfetch.Result, error)

type namedStrategy struct {
	name string
	run  strategyFunc
}

// Execute runs the query and materializes a tabular result.
//
// The primary strategy reads the result directly. When it fails with a
// metadata-interpretation error, ordered fallbacks are attempted: a
// freshly scoped connection, manual row-by-row construction, then
// re-execution with alternate result decoding. Non-metadata errors fail
// immediately. On total exhaustion a diagnostic report is emitted and a
// *QueryError carrying every strategy error is returned.
func (e *Executor) Execute(ctx context.Context, pool *pgxpool.Pool, query string) (*pgfetch.Result, error) {
	query = InjectLimit(query, e.limit)

	primary := namedStrategy{
		name: "direct",
		run: func(ctx context.Context) (*pgfetch.Result, error) {
			return e.queryDirect(ctx, pool, query)
		},
	}

	fallbacks := []namedStrategy{
		{
			name: "dedicated connection",
			run: func(ctx context.Context) (*pgfetch.Result, error) {
				return e.queryDedicated(ctx, pool, query)
			},
		},
		{
			name: "manual row construction",
			run: func(ctx context.Context) (*pgfetch.Result, error) {
				return e.queryManual(ctx, pool, query)
			},
		},
		{
			name: "alternate decoding",
			run: func(ctx context.Context) (*pgfetch.Result, error) {
				return e.queryAlternateDecoding(ctx, pool, query)
			},
		},
	}

	return e.runLadder(ctx, query, primary, fallbacks)
}

// runLadder drives the strategy ladder. Factored out of Execute so the
// gating logic is testable with fake strategies.
func (e *Executor) runLadder(ctx context.Context, query string, primary namedStrategy, fallbacks []namedStrategy) (*pgfetch.Result, error) {
	start := time.Now()

	result, err := primary.run(ctx)
	if err == nil {
		e.finish(result, start)
		return result, nil
	}

	failures := []StrategyFailure{{Strategy: primary.name, Err: err}}

	if !e.classifier.IsMetadataError(err) {
		// Non-recoverable by strategy variation; fail without fallbacks.
		e.logger.Error("query execution failed (non-metadata error): %v", err)
		return nil, &QueryError{Query: query, Failures: failures}
	}

	e.logger.Info("detected metadata interpretation error, trying fallback strategies...")

	for _, fallback := range fallbacks {
		e.logger.Verbose("attempting fallback strategy: %s", fallback.name)

		result, err = fallback.run(ctx)
		if err == nil {
			e.logger.Verbose("fallback strategy %q succeeded", fallback.name)
			e.finish(result, start)
			return result, nil
		}

		e.logger.Verbose("fallback strategy %q failed: %v", fallback.name, err)
		failures = append(failures, StrategyFailure{Strategy: fallback.name, Err: err})
	}

	e.reportExhaustion(query, failures)
	return nil, &QueryError{Query: query, Failures: failures}
}

// finish reports elapsed wall-clock time and signals completion.
// Both are informational side effects, never errors.
func (e *Executor) finish(result *pgfetch.Result, start time.Time) {
	e.logger.Info("Elapsed Time: %s", formatElapsed(time.Since(start)))

	if result.Empty() {
		e.logger.Verbose("query returned an empty result set")
	} else {
		e.logger.Verbose("materialized %d columns x %d rows", len(result.Columns), result.RowCount())
	}

	e.notifier.Notify()
}

// queryDirect is the primary strategy: run the query on the round's pool
// and materialize the table from decoded row values.
func (e *Executor) queryDirect(ctx context.Context, pool *pgxpool.Pool, query string) (*pgfetch.Result, error) {
	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	defer rows.Close()

	return materialize(rows)
}

// queryDedicated re-executes on a freshly scoped connection acquired from
// the pool instead of the pool's implicit routing.
func (e *Executor) queryDedicated(ctx context.Context, pool *pgxpool.Pool, query string) (*pgfetch.Result, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	defer rows.Close()

	return materialize(rows)
}

// queryManual iterates the result cursor itself, reads the declared column
// names and builds the table row by row. Each row is read positionally and
// re-addressed through a name-keyed mapping, which avoids the scan plans a
// struct- or map-oriented collect would set up for the row as a whole.
func (e *Executor) queryManual(ctx context.Context, pool *pgxpool.Pool, query string) (*pgfetch.Result, error) {
	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	result := &pgfetch.Result{Columns: columns}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(result.Rows)+1, err)
		}
		result.Rows = append(result.Rows, reprojectByName(columns, values))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return result, nil
}

// reprojectByName routes a positional row through a name-keyed mapping and
// back into declared column order. Duplicate column names collapse to the
// last value read; columns without a value come back nil.
func reprojectByName(columns []string, values []any) []any {
	byName := make(map[string]any, len(columns))
	for i, col := range columns {
		if i < len(values) {
			byName[col] = values[i]
		}
	}
	row := make([]any, len(columns))
	for i, col := range columns {
		row[i] = byName[col]
	}
	return row
}

// queryAlternateDecoding re-executes the query varying result-decoding
// parameters until one combination succeeds: first the simple protocol
// (server-side text format, no extended type decoding), then raw values
// surfaced as strings with no decoding at all.
func (e *Executor) queryAlternateDecoding(ctx context.Context, pool *pgxpool.Pool, query string) (*pgfetch.Result, error) {
	variations := []struct {
		name string
		run  func(ctx context.Context) (*pgfetch.Result, error)
	}{
		{
			name: "simple protocol",
			run: func(ctx context.Context) (*pgfetch.Result, error) {
				rows, err := pool.Query(ctx, query, pgx.QueryExecModeSimpleProtocol)
				if err != nil {
					return nil, fmt.Errorf("execute: %w", err)
				}
				defer rows.Close()
				return materialize(rows)
			},
		},
		{
			name: "raw text values",
			run: func(ctx context.Context) (*pgfetch.Result, error) {
				rows, err := pool.Query(ctx, query, pgx.QueryExecModeSimpleProtocol)
				if err != nil {
					return nil, fmt.Errorf("execute: %w", err)
				}
				defer rows.Close()
				return materializeRaw(rows)
			},
		},
	}

	var lastErr error
	for _, v := range variations {
		result, err := v.run(ctx)
		if err == nil {
			return result, nil
		}
		e.logger.Verbose("decoding variation %q failed: %v", v.name, err)
		lastErr = err
	}

	return nil, fmt.Errorf("all decoding variations failed: %w", lastErr)
}

// materialize builds a tabular result from decoded row values.
func materialize(rows pgx.Rows) (*pgfetch.Result, error) {
	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	result := &pgfetch.Result{Columns: columns}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(result.Rows)+1, err)
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return result, nil
}

// materializeRaw builds a tabular result from undecoded wire values.
// Every non-NULL value becomes a string; NULL stays nil.
func materializeRaw(rows pgx.Rows) (*pgfetch.Result, error) {
	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	result := &pgfetch.Result{Columns: columns}
	for rows.Next() {
		raw := rows.RawValues()
		row := make([]any, len(raw))
		for i, v := range raw {
			if v == nil {
				row[i] = nil
			} else {
				row[i] = string(v)
			}
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return result, nil
}

// reportExhaustion emits a diagnostic report after every strategy failed.
func (e *Executor) reportExhaustion(query string, failures []StrategyFailure) {
	preview := query
	if len(preview) > pgfetch.MaxQueryPreviewLength {
		preview = preview[:pgfetch.MaxQueryPreviewLength] + "..."
	}

	e.logger.Error(strings.Repeat("=", 60))
	e.logger.Error("QUERY EXECUTION FAILED - ALL STRATEGIES EXHAUSTED")
	e.logger.Error(strings.Repeat("=", 60))
	e.logger.Error("Query: %s", preview)
	if e.target != "" {
		e.logger.Error("Target: %s", e.target)
	}
	e.logger.Error("Error sequence:")
	for i, f := range failures {
		e.logger.Error("  %d. [%s] %v", i+1, f.Strategy, f.Err)
	}
	e.logger.Error(strings.Repeat("=", 60))
}

// formatElapsed renders a duration as h:mm:ss wall-clock time.
func formatElapsed(d time.Duration) string {
	total := int(d.Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}
