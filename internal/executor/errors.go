package executor

import (
	"fmt"
	"strings"

	"github.com/vvka-141/pgfetch/pkg/pgfetch"
)

// StrategyFailure records one failed execution strategy and its error.
type StrategyFailure struct {
	Strategy string
	Err      error
}

// QueryError is returned when every execution strategy for a query has
// been exhausted. It carries the full ordered list of per-strategy errors
// and unwraps to pgfetch.ErrQueryFailed.
type QueryError struct {
	Query    string
	Failures []StrategyFailure
}

func (e *QueryError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "query failed after %d strategies", len(e.Failures))
	for _, f := range e.Failures {
		fmt.Fprintf(&sb, "; %s: %v", f.Strategy, f.Err)
	}
	return sb.String()
}

// Unwrap lets errors.Is(err, pgfetch.ErrQueryFailed) identify query failures.
func (e *QueryError) Unwrap() error {
	return pgfetch.ErrQueryFailed
}
