package pgfetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryBatch_InsertionOrder(t *testing.T) {
	b := NewQueryBatch()
	b.Add("zeta", "SELECT 1")
	b.Add("alpha", "SELECT 2")
	b.Add("mid", "SELECT 3")

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, b.Names())
	assert.Equal(t, 3, b.Len())
}

func TestQueryBatch_ReAddKeepsPosition(t *testing.T) {
	b := NewQueryBatch()
	b.Add("a", "old")
	b.Add("b", "SELECT 2")
	b.Add("a", "new")

	assert.Equal(t, []string{"a", "b"}, b.Names())

	sql, ok := b.Get("a")
	require.True(t, ok)
	assert.Equal(t, "new", sql)
}

func TestQueryBatch_Get_Missing(t *testing.T) {
	b := NewQueryBatch()
	_, ok := b.Get("nope")
	assert.False(t, ok)
}

func TestQueryBatch_NamesIsACopy(t *testing.T) {
	b := NewQueryBatch()
	b.Add("a", "SELECT 1")

	names := b.Names()
	names[0] = "mutated"

	assert.Equal(t, []string{"a"}, b.Names())
}

func TestQueryBatch_Subset(t *testing.T) {
	b := NewQueryBatch()
	b.Add("a", "SELECT 1")
	b.Add("b", "SELECT 2")
	b.Add("c", "SELECT 3")

	sub := b.Subset([]string{"c", "a", "unknown"})

	assert.Equal(t, []string{"a", "c"}, sub.Names(), "subset keeps the original insertion order")

	sql, ok := sub.Get("c")
	require.True(t, ok)
	assert.Equal(t, "SELECT 3", sql)

	_, ok = sub.Get("b")
	assert.False(t, ok)
}
