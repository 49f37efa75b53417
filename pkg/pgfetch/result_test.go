package pgfetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultSet_FailedMarkerVsEmptyResult(t *testing.T) {
	rs := ResultSet{
		"empty":  {Columns: []string{"id"}},
		"failed": nil,
	}

	assert.True(t, rs.Succeeded("empty"), "zero rows with a valid schema is a success")
	assert.False(t, rs.Succeeded("failed"))
	assert.False(t, rs.Succeeded("absent"))

	assert.True(t, rs["empty"].Empty())
	assert.Equal(t, 0, rs["empty"].RowCount())
}

func TestResultSet_Failed(t *testing.T) {
	rs := ResultSet{
		"a": {Columns: []string{"n"}, Rows: [][]any{{int64(1)}}},
		"b": nil,
	}

	failed := rs.Failed([]string{"a", "b", "c"})
	assert.Equal(t, []string{"b", "c"}, failed, "missing names count as failed")

	assert.Empty(t, rs.Failed([]string{"a"}))
}
