package session

import (
	"time"

	"github.com/kastheco/arbor/config/planstate"
	"github.com/kastheco/arbor/internal/prompt"
)

// Event is one entry of the interaction log. Kind is set by the operation
// that appended it and is never re-derived from Content.
type Event struct {
	Seq     int // 1-based position in the log
	Kind    planstate.InteractionType
	Content string
	At      time.Time
}

// Role is the chat role the event plays when the history is sent back to
// the model: selections read as the assistant's answer, everything else as
// the user speaking.
func (e Event) Role() prompt.Role {
	if e.Kind == planstate.TypeChoice {
		return prompt.RoleAssistant
	}
	return prompt.RoleUser
}

// History is the append-only interaction log of one session.
type History struct {
	events []Event
	now    func() time.Time
}

// NewHistory returns an empty log.
func NewHistory() *History {
	return &History{now: time.Now}
}

// Append adds an event at the end of the log and returns it.
func (h *History) Append(kind planstate.InteractionType, content string) Event {
	e := Event{
		Seq:     len(h.events) + 1,
		Kind:    kind,
		Content: content,
		At:      h.now(),
	}
	h.events = append(h.events, e)
	return e
}

// Len returns the number of events.
func (h *History) Len() int { return len(h.events) }

// Events returns a copy of the log in append order.
func (h *History) Events() []Event {
	return append([]Event(nil), h.events...)
}

// Interactions converts the log into snapshot form.
func (h *History) Interactions() []planstate.Interaction {
	out := make([]planstate.Interaction, len(h.events))
	for i, e := range h.events {
		out[i] = planstate.Interaction{Type: e.Kind, Content: e.Content}
	}
	return out
}

// Messages converts the log into chat turns for the prompt formatter.
func (h *History) Messages() []prompt.Message {
	out := make([]prompt.Message, len(h.events))
	for i, e := range h.events {
		out[i] = prompt.Message{Role: e.Role(), Content: e.Content}
	}
	return out
}
