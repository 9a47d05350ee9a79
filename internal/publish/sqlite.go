package publish

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLite records tuples in an append-only table, tagged with a per-process
// run id so several recognition runs can share one file.
type SQLite struct {
	db    *sql.DB
	runID string
}

// NewSQLite opens (or creates) the tuple store at path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS tuples (
			run_id            TEXT,
			key               TEXT,
			value             TEXT,
			timestamp         TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS tuples_run_key ON tuples(run_id, key);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create tuple store: %w", err)
	}
	return &SQLite{db: db, runID: uuid.NewString()}, nil
}

// RunID identifies this process run within the store.
func (s *SQLite) RunID() string { return s.runID }

func (s *SQLite) Publish(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO tuples (run_id, key, value) VALUES (?, ?, ?)`,
		s.runID, key, value,
	)
	return err
}

// Last returns the most recent value recorded for key in this run, sql.ErrNoRows
// if the key was never published.
func (s *SQLite) Last(key string) (string, error) {
	var value string
	err := s.db.QueryRow(
		`SELECT value FROM tuples WHERE run_id = ? AND key = ? ORDER BY rowid DESC LIMIT 1`,
		s.runID, key,
	).Scan(&value)
	return value, err
}

func (s *SQLite) Close() error { return s.db.Close() }
