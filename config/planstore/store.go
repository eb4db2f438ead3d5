// Package planstore persists exported planning sessions. SQLiteStore is the
// only implementation; the Store interface keeps callers testable.
package planstore

import (
	"errors"
	"time"

	"github.com/kastheco/arbor/config/planstate"
)

// ErrNotFound is returned when a session id is not in the store.
var ErrNotFound = errors.New("session not found")

// SessionEntry is one saved session: its identity plus the latest snapshot.
type SessionEntry struct {
	ID        string             `json:"id"`
	Goal      string             `json:"goal"`
	Source    string             `json:"source,omitempty"` // file path for imported snapshots
	CreatedAt time.Time          `json:"created_at,omitempty"`
	UpdatedAt time.Time          `json:"updated_at,omitempty"`
	Snapshot  planstate.Snapshot `json:"snapshot"`
}

// Store is the interface for session persistence.
type Store interface {
	// Save inserts the entry or replaces the snapshot of an existing one.
	Save(entry SessionEntry) error
	Get(id string) (SessionEntry, error)
	// Create inserts the entry and fails if the id is taken.
	Create(entry SessionEntry) error

	// List returns all sessions, most recently updated first.
	List() ([]SessionEntry, error)
	// FindByGoal returns sessions whose goal matches exactly.
	FindByGoal(goal string) ([]SessionEntry, error)

	Delete(id string) error

	// Health
	Ping() error

	// Close releases any resources held by the store.
	Close() error
}
