package session

import (
	"fmt"
	"sort"
	"time"

	"github.com/kastheco/arbor/config/auditlog"
	"github.com/kastheco/arbor/config/planstate"
	"github.com/kastheco/arbor/config/planstore"
)

// ExportSnapshot copies the current state. It does not touch the tree or log.
func (s *Session) ExportSnapshot() planstate.Snapshot {
	return planstate.Snapshot{
		Target:             s.goal,
		PlanningPath:       s.tree.CurrentPath(),
		CurrentPlans:       s.tree.CurrentPlans(),
		InteractionHistory: s.history.Interactions(),
	}
}

// SaveFile writes the snapshot to path.
func (s *Session) SaveFile(path string) error {
	if err := planstate.Save(path, s.ExportSnapshot()); err != nil {
		return err
	}
	s.audit.Emit(auditlog.NewEvent(auditlog.EventSessionExported, s.id, path, auditlog.WithGoal(s.goal)))
	return nil
}

// SaveTo stores the snapshot in store under the session id.
func (s *Session) SaveTo(store planstore.Store) error {
	entry := planstore.SessionEntry{
		ID:        s.id,
		Goal:      s.goal,
		CreatedAt: s.createdAt,
		UpdatedAt: time.Now(),
		Snapshot:  s.ExportSnapshot(),
	}
	if err := store.Save(entry); err != nil {
		return fmt.Errorf("save session %s: %w", s.id, err)
	}
	s.audit.Emit(auditlog.NewEvent(auditlog.EventSessionExported, s.id, "store", auditlog.WithGoal(s.goal)))
	return nil
}

// ReplayHistory rebuilds a session's interaction history from audit events,
// in log order. Events that are not interactions are skipped.
func ReplayHistory(events []auditlog.Event) []planstate.Interaction {
	ordered := append([]auditlog.Event(nil), events...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Sequence < ordered[j].Sequence
	})
	var out []planstate.Interaction
	for _, e := range ordered {
		if !e.Kind.IsInteraction() {
			continue
		}
		out = append(out, planstate.Interaction{Type: planstate.InteractionType(e.Kind), Content: e.Content})
	}
	return out
}
