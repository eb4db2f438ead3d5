package planstore

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kastheco/arbor/config/planstate"
	_ "modernc.org/sqlite" // register sqlite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	goal       TEXT NOT NULL DEFAULT '',
	source     TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL DEFAULT '',
	snapshot   TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at DESC);
CREATE INDEX IF NOT EXISTS idx_sessions_goal ON sessions(goal);
`

// SQLiteStore is a Store implementation backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and runs
// schema migrations. Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if dbPath == ":memory:" {
		// Each pooled connection would get its own empty in-memory database.
		db.SetMaxOpenConns(1)
	} else {
		// Enable WAL mode for better concurrent read performance.
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("set WAL mode: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run schema migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection is alive.
func (s *SQLiteStore) Ping() error {
	return s.db.Ping()
}

// Create inserts a new session. Returns an error if the id already exists.
func (s *SQLiteStore) Create(entry SessionEntry) error {
	snap, err := planstate.Marshal(entry.Snapshot)
	if err != nil {
		return err
	}
	created, updated := entryTimes(entry)

	const q = `
		INSERT INTO sessions (id, goal, source, created_at, updated_at, snapshot)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.Exec(q, entry.ID, entry.Goal, entry.Source, formatTime(created), formatTime(updated), string(snap))
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("session already exists: %s", entry.ID)
		}
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// Save inserts the session or, if it exists, replaces its goal, snapshot and
// updated time. created_at of an existing row is kept.
func (s *SQLiteStore) Save(entry SessionEntry) error {
	snap, err := planstate.Marshal(entry.Snapshot)
	if err != nil {
		return err
	}
	created, updated := entryTimes(entry)

	const q = `
		INSERT INTO sessions (id, goal, source, created_at, updated_at, snapshot)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			goal = excluded.goal,
			updated_at = excluded.updated_at,
			snapshot = excluded.snapshot
	`
	if _, err := s.db.Exec(q, entry.ID, entry.Goal, entry.Source, formatTime(created), formatTime(updated), string(snap)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Get retrieves a session by id.
func (s *SQLiteStore) Get(id string) (SessionEntry, error) {
	const q = `
		SELECT id, goal, source, created_at, updated_at, snapshot
		FROM sessions
		WHERE id = ?
	`
	entry, err := scanSessionEntry(s.db.QueryRow(q, id))
	if errors.Is(err, ErrNotFound) {
		return SessionEntry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return entry, err
}

// List returns all sessions, most recently updated first.
func (s *SQLiteStore) List() ([]SessionEntry, error) {
	const q = `
		SELECT id, goal, source, created_at, updated_at, snapshot
		FROM sessions
		ORDER BY updated_at DESC, id ASC
	`
	rows, err := s.db.Query(q)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()
	return scanSessionEntries(rows)
}

// FindByGoal returns sessions with exactly this goal, most recent first.
func (s *SQLiteStore) FindByGoal(goal string) ([]SessionEntry, error) {
	const q = `
		SELECT id, goal, source, created_at, updated_at, snapshot
		FROM sessions
		WHERE goal = ?
		ORDER BY updated_at DESC, id ASC
	`
	rows, err := s.db.Query(q, goal)
	if err != nil {
		return nil, fmt.Errorf("find sessions by goal: %w", err)
	}
	defer rows.Close()
	return scanSessionEntries(rows)
}

// Delete removes a session. Returns ErrNotFound if it does not exist.
func (s *SQLiteStore) Delete(id string) error {
	result, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSessionEntry(row rowScanner) (SessionEntry, error) {
	var id, goal, source, createdAt, updatedAt, snapshot string
	if err := row.Scan(&id, &goal, &source, &createdAt, &updatedAt, &snapshot); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SessionEntry{}, ErrNotFound
		}
		return SessionEntry{}, fmt.Errorf("scan session: %w", err)
	}
	snap, err := planstate.Unmarshal([]byte(snapshot))
	if err != nil {
		return SessionEntry{}, fmt.Errorf("session %s: %w", id, err)
	}
	return SessionEntry{
		ID:        id,
		Goal:      goal,
		Source:    source,
		CreatedAt: parseTime(createdAt),
		UpdatedAt: parseTime(updatedAt),
		Snapshot:  snap,
	}, nil
}

func scanSessionEntries(rows *sql.Rows) ([]SessionEntry, error) {
	var entries []SessionEntry
	for rows.Next() {
		entry, err := scanSessionEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return entries, nil
}

// entryTimes fills in zero timestamps with now.
func entryTimes(e SessionEntry) (created, updated time.Time) {
	now := time.Now()
	created, updated = e.CreatedAt, e.UpdatedAt
	if created.IsZero() {
		created = now
	}
	if updated.IsZero() {
		updated = now
	}
	return created, updated
}

// formatTime formats a time.Time as RFC3339 for storage. Zero time returns empty string.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime parses an RFC3339 string. Returns zero time on empty or invalid input.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// isUniqueConstraintError returns true if the error is a SQLite UNIQUE or
// PRIMARY KEY constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
