// Package snapshot persists accumulated result sets between retry rounds.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/vvka-141/pgfetch/pkg/pgfetch"
)

// FileStore writes one snapshot file per attempt into a directory.
// Each Save is a full overwrite of that attempt's file, so only the latest
// snapshot needs to be consistent; there is no multi-writer coordination.
type FileStore struct {
	dir       string
	sessionID uuid.UUID
}

// NewFileStore creates a store writing into dir. The directory is created
// on first Save. sessionID correlates snapshots with log output.
func NewFileStore(dir string, sessionID uuid.UUID) *FileStore {
	return &FileStore{
		dir:       dir,
		sessionID: sessionID,
	}
}

// snapshotFile returns the deterministic file name for an attempt.
func (s *FileStore) snapshotFile(attempt int) string {
	return filepath.Join(s.dir, fmt.Sprintf("results_attempt_%d.json", attempt))
}

type envelope struct {
	SessionID string                    `json:"session_id"`
	Attempt   int                       `json:"attempt"`
	SavedAt   time.Time                 `json:"saved_at"`
	Results   map[string]*tabularResult `json:"results"`
}

// tabularResult is the serialized form of a successful result.
// A failed query serializes as JSON null, keeping the failed marker
// distinct from an empty-but-successful table.
type tabularResult struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Save durably persists the full result set keyed by attempt number.
// The write goes through a temp file and rename so a crash mid-write never
// leaves a truncated snapshot behind.
func (s *FileStore) Save(attempt int, results pgfetch.ResultSet) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create snapshot dir: %w", pgfetch.ErrSnapshotFailed, err)
	}

	env := envelope{
		SessionID: s.sessionID.String(),
		Attempt:   attempt,
		SavedAt:   time.Now().UTC(),
		Results:   make(map[string]*tabularResult, len(results)),
	}
	for name, result := range results {
		if result == nil {
			env.Results[name] = nil
			continue
		}
		env.Results[name] = &tabularResult{Columns: result.Columns, Rows: result.Rows}
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("%w: encode snapshot: %w", pgfetch.ErrSnapshotFailed, err)
	}

	path := s.snapshotFile(attempt)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: write snapshot: %w", pgfetch.ErrSnapshotFailed, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: finalize snapshot: %w", pgfetch.ErrSnapshotFailed, err)
	}

	return nil
}

// Load reads the snapshot for the given attempt number.
// Only the logical name-to-table mapping is restored; JSON widens numeric
// values, which is acceptable for resumption purposes.
func (s *FileStore) Load(attempt int) (pgfetch.ResultSet, error) {
	data, err := os.ReadFile(s.snapshotFile(attempt))
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	results := make(pgfetch.ResultSet, len(env.Results))
	for name, r := range env.Results {
		if r == nil {
			results[name] = nil
			continue
		}
		results[name] = &pgfetch.Result{Columns: r.Columns, Rows: r.Rows}
	}
	return results, nil
}
