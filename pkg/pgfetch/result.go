package pgfetch

// Result is a materialized tabular query result.
//
// Column order is fixed by the query's result shape at execution time;
// rows keep the positional order the server returned them in. A Result
// with zero rows is still a successful result -- failure is represented
// by a nil *Result entry in a ResultSet, never by an empty table.
type Result struct {
	Columns []string
	Rows    [][]any
}

// RowCount returns the number of rows in the result.
func (r *Result) RowCount() int {
	return len(r.Rows)
}

// Empty returns true if the result has a valid shape but no rows.
func (r *Result) Empty() bool {
	return len(r.Rows) == 0
}

// ResultSet maps query names to their results.
// A nil value is the explicit failed marker for that query; it is distinct
// from a non-nil Result with zero rows.
type ResultSet map[string]*Result

// Succeeded returns true if the named query holds a successful result.
func (rs ResultSet) Succeeded(name string) bool {
	r, ok := rs[name]
	return ok && r != nil
}

// Failed returns the names currently holding a failed marker, in the
// order given.
func (rs ResultSet) Failed(names []string) []string {
	var failed []string
	for _, name := range names {
		if !rs.Succeeded(name) {
			failed = append(failed, name)
		}
	}
	return failed
}
