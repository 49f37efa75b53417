package pgfetch

// QueryBatch is an insertion-ordered mapping of query name to SQL text.
// Names are unique within a batch; re-adding a name overwrites its SQL
// without changing its position. The retry loop iterates batches in
// insertion order, so round-to-round retry order is stable.
type QueryBatch struct {
	names   []string
	queries map[string]string
}

// NewQueryBatch creates an empty batch.
func NewQueryBatch() *QueryBatch {
	return &QueryBatch{
		queries: make(map[string]string),
	}
}

// Add registers a query under the given name.
func (b *QueryBatch) Add(name, sql string) {
	if _, exists := b.queries[name]; !exists {
		b.names = append(b.names, name)
	}
	b.queries[name] = sql
}

// Get returns the SQL text for a name.
func (b *QueryBatch) Get(name string) (string, bool) {
	sql, ok := b.queries[name]
	return sql, ok
}

// Names returns the query names in insertion order.
// The returned slice is a copy; callers may mutate it freely.
func (b *QueryBatch) Names() []string {
	names := make([]string, len(b.names))
	copy(names, b.names)
	return names
}

// Len returns the number of queries in the batch.
func (b *QueryBatch) Len() int {
	return len(b.names)
}

// Subset returns a new batch containing only the given names, preserving
// this batch's insertion order. Names not present in the batch are skipped.
func (b *QueryBatch) Subset(names []string) *QueryBatch {
	keep := make(map[string]bool, len(names))
	for _, name := range names {
		keep[name] = true
	}

	sub := NewQueryBatch()
	for _, name := range b.names {
		if keep[name] {
			sub.Add(name, b.queries[name])
		}
	}
	return sub
}
