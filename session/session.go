// Package session ties a plan tree, the interaction log and the model
// together into one planning session. It is the API the CLI drives.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kastheco/arbor/config/auditlog"
	"github.com/kastheco/arbor/config/planparser"
	"github.com/kastheco/arbor/config/planstate"
	"github.com/kastheco/arbor/config/plantree"
	"github.com/kastheco/arbor/internal/llm"
	"github.com/kastheco/arbor/internal/prompt"
	"github.com/kastheco/arbor/log"
)

// DefaultCandidates is how many candidates a generation round asks for.
const DefaultCandidates = 3

// Session is a single-user planning session. It is not safe for concurrent use.
type Session struct {
	id          string
	goal        string
	createdAt   time.Time
	tree        *plantree.Tree
	history     *History
	model       llm.Completer
	formatter   prompt.Formatter
	system      string
	audit       auditlog.Logger
	maxAttempts int
}

// Option configures a Session.
type Option func(*Session)

// WithID sets the session id instead of generating one.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithFormatter sets the chat template used to render the history.
func WithFormatter(f prompt.Formatter) Option {
	return func(s *Session) { s.formatter = f }
}

// WithSystemPrompt sets the system prompt sent ahead of the history.
func WithSystemPrompt(system string) Option {
	return func(s *Session) { s.system = system }
}

// WithAuditLogger mirrors every interaction event to l.
func WithAuditLogger(l auditlog.Logger) Option {
	return func(s *Session) { s.audit = l }
}

// WithMaxAttempts sets the model round-trip budget per generation request.
func WithMaxAttempts(n int) Option {
	return func(s *Session) { s.maxAttempts = n }
}

// New starts a session for goal. The cursor sits at the root.
func New(goal string, model llm.Completer, opts ...Option) *Session {
	s := &Session{
		id:          uuid.NewString(),
		goal:        goal,
		createdAt:   time.Now(),
		tree:        plantree.New(),
		history:     NewHistory(),
		model:       model,
		formatter:   prompt.Llama3{},
		system:      prompt.DefaultSystemPrompt,
		audit:       auditlog.NopLogger(),
		maxAttempts: planparser.DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.audit.Emit(auditlog.NewEvent(auditlog.EventSessionStarted, s.id, goal, auditlog.WithGoal(goal)))
	log.InfoLog.Printf("session %s started: %q", s.id, goal)
	return s
}

func (s *Session) ID() string           { return s.id }
func (s *Session) Goal() string         { return s.goal }
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// History returns a copy of the interaction log.
func (s *Session) History() []Event { return s.history.Events() }

// record appends to the interaction log and mirrors the event to the audit sink.
func (s *Session) record(kind planstate.InteractionType, content string) Event {
	e := s.history.Append(kind, content)
	ae := auditlog.NewEvent(auditlog.EventKind(kind), s.id, content,
		auditlog.WithGoal(s.goal),
		auditlog.WithSequence(e.Seq),
	)
	ae.Timestamp = e.At
	s.audit.Emit(ae)
	return e
}

// RequestCandidates asks the model for up to count next steps from the
// cursor. Each round logs its request as an input event. The candidates are
// not attached to the tree; fewer than count is a normal outcome.
func (s *Session) RequestCandidates(ctx context.Context, count int) ([]string, error) {
	request := func(ctx context.Context, remaining int) (string, error) {
		s.record(planstate.TypeInput, prompt.PlanningRequest(s.goal, s.tree.CurrentPath(), remaining))
		return s.model.Complete(ctx, s.formatter.Format(s.system, s.history.Messages()))
	}

	plans, err := planparser.GenerateCandidates(ctx, request, count, s.maxAttempts)
	if err != nil {
		log.ErrorLog.Printf("session %s: %v", s.id, err)
		s.audit.Emit(auditlog.NewEvent(auditlog.EventError, s.id, err.Error(),
			auditlog.WithGoal(s.goal), auditlog.WithLevel("error")))
		return plans, err
	}
	if len(plans) < count {
		log.WarningLog.Printf("session %s: wanted %d candidates, got %d", s.id, count, len(plans))
		s.audit.Emit(auditlog.NewEvent(auditlog.EventGenerationShort, s.id, "",
			auditlog.WithGoal(s.goal), auditlog.WithLevel("warn")))
	}
	return plans, nil
}

// AttachCandidates adds generated plans under the cursor. Nothing is logged:
// the generation request that produced them already is.
func (s *Session) AttachCandidates(plans []string) []plantree.Child {
	return s.attach(plans)
}

// AddPlans adds plans typed in by the user under the cursor and logs them as
// one input event.
func (s *Session) AddPlans(plans []string) []plantree.Child {
	if len(plans) == 0 {
		return nil
	}
	added := s.attach(plans)
	s.record(planstate.TypeInput, prompt.ManualPlansMessage(plans))
	return added
}

func (s *Session) attach(plans []string) []plantree.Child {
	first := s.tree.Cursor().NumChildren()
	nodes := s.tree.AddPlans(plans)
	out := make([]plantree.Child, len(nodes))
	for i, n := range nodes {
		out[i] = plantree.Child{Index: first + i, ID: n.ID(), Content: n.Content()}
	}
	return out
}

// GeneratePlans requests up to count candidates and attaches them. When a
// later round fails, the candidates collected by earlier rounds are still
// attached and returned alongside the error, so every logged request has its
// results in the tree.
func (s *Session) GeneratePlans(ctx context.Context, count int) ([]plantree.Child, error) {
	plans, err := s.RequestCandidates(ctx, count)
	var added []plantree.Child
	if len(plans) > 0 {
		added = s.AttachCandidates(plans)
	}
	return added, err
}

// SelectPlan moves the cursor to child index and logs a choice event.
func (s *Session) SelectPlan(index int) (string, error) {
	node, err := s.tree.SelectPlan(index)
	if err != nil {
		return "", err
	}
	s.record(planstate.TypeChoice, prompt.SelectionMessage(node.Content()))
	return node.Content(), nil
}

// EditPlan rewrites child index in place and logs an edit event.
func (s *Session) EditPlan(index int, content string) error {
	if _, err := s.tree.EditPlan(index, content); err != nil {
		return err
	}
	s.record(planstate.TypeEdit, prompt.EditMessage(index, content))
	return nil
}

// CurrentPath returns the contents from the root down to the cursor.
func (s *Session) CurrentPath() []string { return s.tree.CurrentPath() }

// CurrentChildren lists the candidates under the cursor.
func (s *Session) CurrentChildren() []plantree.Child { return s.tree.CurrentChildren() }
