package fetcher

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pgfetch/internal/db"
	"github.com/vvka-141/pgfetch/internal/executor"
	"github.com/vvka-141/pgfetch/internal/snapshot"
	"github.com/vvka-141/pgfetch/internal/testinfra"
	"github.com/vvka-141/pgfetch/pkg/pgfetch"
)

// TestFetcher_Integration runs the whole pipeline against a TLS-enabled
// container: standard connector, real executor, snapshot store.
func TestFetcher_Integration(t *testing.T) {
	testinfra.SkipIfShort(t)
	ctx := context.Background()

	bundle, err := testinfra.GenerateCertBundle([]string{"localhost", "127.0.0.1"})
	require.NoError(t, err)
	paths, err := bundle.WriteToDir(t.TempDir())
	require.NoError(t, err)

	ctr, err := testinfra.StartPostgres(ctx, paths)
	if err != nil {
		t.Skipf("Docker unavailable: %v", err)
	}
	t.Cleanup(func() { _ = ctr.Terminate(ctx) })

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := pgfetch.ConnectionConfig{
		Host:     host,
		Port:     port.Int(),
		Username: testinfra.PostgresUser,
		Password: testinfra.PostgresPassword,
		Database: testinfra.PostgresDB,
	}
	connector := db.NewStandardConnector(&cfg)

	exec := executor.New(nil, nil, "", "integration")

	sessionID := uuid.New()
	snapshotDir := t.TempDir()
	store := snapshot.NewFileStore(snapshotDir, sessionID)

	batch := pgfetch.NewQueryBatch()
	batch.Add("numbers", "SELECT n FROM generate_series(1, 5) AS n FOR READ ONLY")
	batch.Add("greeting", "SELECT 'hello' AS word")

	f := New(connector, exec, WithSnapshotStore(store), WithSessionID(sessionID))

	results, err := f.Run(ctx, batch)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.True(t, results.Succeeded("numbers"))
	assert.True(t, results.Succeeded("greeting"))
	assert.Equal(t, 5, results["numbers"].RowCount())
	assert.Equal(t, "hello", results["greeting"].Rows[0][0])

	// Round 1 snapshot is on disk and loads back with the same key set.
	restored, err := store.Load(1)
	require.NoError(t, err)
	assert.Len(t, restored, 2)
	assert.True(t, restored.Succeeded("numbers"))
}
