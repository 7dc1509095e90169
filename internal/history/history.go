// Package history records the spaces joined from this machine in a local
// SQLite database.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// ErrNotFound is returned by Get when no entry exists for a space.
var ErrNotFound = errors.New("history: space not found")

// schema is executed on every open.
const schema = `
CREATE TABLE IF NOT EXISTS visits (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    space_id    TEXT NOT NULL,
    participant TEXT NOT NULL,
    route       TEXT NOT NULL,
    created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS visits_space ON visits(space_id);
`

// Entry is one recorded join.
type Entry struct {
	ID          int64
	SpaceID     string
	Participant string
	Route       string
	CreatedAt   time.Time
}

// Store is a SQLite-backed join history.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database at path, creating its parent
// directory if needed.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("history: create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}
	// SQLite has a single writer; one connection keeps the PRAGMAs below in
	// effect for every statement.
	db.SetMaxOpenConns(1)

	for _, stmt := range []struct{ sql, action string }{
		{"PRAGMA journal_mode=WAL", "enable WAL mode"},
		{"PRAGMA busy_timeout=5000", "set busy timeout"},
		{schema, "create schema"},
	} {
		if _, err := db.ExecContext(ctx, stmt.sql); err != nil {
			db.Close()
			return nil, fmt.Errorf("history: %s: %w", stmt.action, err)
		}
	}
	return &Store{db: db}, nil
}

// Record appends e and returns its row id. A zero CreatedAt is stamped with
// the current time.
func (s *Store) Record(ctx context.Context, e Entry) (int64, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO visits (space_id, participant, route, created_at) VALUES (?, ?, ?, ?)`,
		e.SpaceID, e.Participant, e.Route, e.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("history: record %q: %w", e.SpaceID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("history: record %q: last insert id: %w", e.SpaceID, err)
	}
	return id, nil
}

// Recent returns up to limit entries, newest first. A non-positive limit
// returns every entry.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	q := `SELECT id, space_id, participant, route, created_at
		FROM visits ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("history: query recent: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate recent: %w", err)
	}
	return out, nil
}

// Get returns the latest entry for spaceID, or ErrNotFound.
func (s *Store) Get(ctx context.Context, spaceID string) (Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, space_id, participant, route, created_at
		FROM visits WHERE space_id = ? ORDER BY id DESC LIMIT 1`, spaceID)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %q", ErrNotFound, spaceID)
	}
	return e, err
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (Entry, error) {
	var e Entry
	var ts string
	if err := sc.Scan(&e.ID, &e.SpaceID, &e.Participant, &e.Route, &ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("history: scan entry: %w", err)
	}
	t, err := parseTimestamp(ts)
	if err != nil {
		return Entry{}, fmt.Errorf("history: parse timestamp: %w", err)
	}
	e.CreatedAt = t
	return e, nil
}

// timestampFormats lists the layouts a created_at value may come back in.
var timestampFormats = []string{
	time.RFC3339,
	time.DateTime,
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", s)
}
