package auditlog

import "time"

// QueryFilter specifies criteria for querying audit events.
type QueryFilter struct {
	SessionID string
	Kinds     []EventKind
	Limit     int
	Before    time.Time
	After     time.Time
	// Oldest returns events in the order they were emitted instead of
	// newest-first. Replay uses this.
	Oldest bool
	// Offset skips that many matching events; used for paging.
	Offset int
}

// Logger is the interface for emitting and querying audit events.
type Logger interface {
	Emit(event Event)
	Query(filter QueryFilter) ([]Event, error)
	Close() error
}

// QueryAll pages through every event matching f. f.Limit and f.Offset are
// ignored.
func QueryAll(l Logger, f QueryFilter) ([]Event, error) {
	f.Limit = MaxQueryLimit
	f.Offset = 0
	var all []Event
	for {
		page, err := l.Query(f)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < MaxQueryLimit {
			return all, nil
		}
		f.Offset += len(page)
	}
}

// EventOption is a functional option for configuring optional Event fields.
type EventOption func(*Event)

// WithGoal sets the Goal field on the event.
func WithGoal(goal string) EventOption {
	return func(e *Event) { e.Goal = goal }
}

// WithSequence sets the interaction log position on the event.
func WithSequence(seq int) EventOption {
	return func(e *Event) { e.Sequence = seq }
}

// WithDetail sets the Detail field on the event (JSON-encoded extra data).
func WithDetail(detail string) EventOption {
	return func(e *Event) { e.Detail = detail }
}

// WithLevel sets the Level field on the event (info, warn, error).
func WithLevel(level string) EventOption {
	return func(e *Event) { e.Level = level }
}

// NewEvent builds an event for sessionID with the given options applied.
func NewEvent(kind EventKind, sessionID, content string, opts ...EventOption) Event {
	e := Event{Kind: kind, SessionID: sessionID, Content: content}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// nopLogger is a no-op Logger used when no audit database is configured.
type nopLogger struct{}

// NopLogger returns a Logger that discards all events.
func NopLogger() Logger {
	return &nopLogger{}
}

func (n *nopLogger) Emit(_ Event) {}

func (n *nopLogger) Query(_ QueryFilter) ([]Event, error) {
	return nil, nil
}

func (n *nopLogger) Close() error {
	return nil
}

// Open returns a SQLite logger for dbPath, or a NopLogger when dbPath is empty.
func Open(dbPath string) (Logger, error) {
	if dbPath == "" {
		return NopLogger(), nil
	}
	return NewSQLiteLogger(dbPath)
}
