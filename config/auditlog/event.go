package auditlog

import "time"

// EventKind identifies the type of audit event.
type EventKind string

// String returns the string representation of the EventKind.
func (k EventKind) String() string {
	return string(k)
}

// Interaction events. These mirror the session's interaction log one to one.
const (
	EventInput  EventKind = "input"
	EventEdit   EventKind = "edit"
	EventChoice EventKind = "choice"
)

// Session events.
const (
	EventSessionStarted  EventKind = "session_started"
	EventSessionExported EventKind = "session_exported"
	EventGenerationShort EventKind = "generation_short"
	EventError           EventKind = "error"
)

// IsInteraction reports whether k is one of the three interaction kinds.
func (k EventKind) IsInteraction() bool {
	switch k {
	case EventInput, EventEdit, EventChoice:
		return true
	}
	return false
}

// Event is a single audit log entry.
type Event struct {
	ID        int64
	Kind      EventKind
	Timestamp time.Time
	SessionID string
	Goal      string
	Sequence  int // position in the session's interaction log, 1-based; 0 for session events
	Content   string
	Detail    string // JSON-encoded extra data
	Level     string // info, warn, error
}
