// Package planstate defines the exported snapshot of a planning session and
// reads and writes it as JSON. The key names are a contract with other
// tooling and must not change.
package planstate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// InteractionType classifies one entry of the interaction history.
type InteractionType string

const (
	TypeInput  InteractionType = "input"
	TypeEdit   InteractionType = "edit"
	TypeChoice InteractionType = "choice"
)

// Valid reports whether t is one of the three known types.
func (t InteractionType) Valid() bool {
	switch t {
	case TypeInput, TypeEdit, TypeChoice:
		return true
	}
	return false
}

// Interaction is one entry of a snapshot's interaction history.
type Interaction struct {
	Type    InteractionType `json:"type"`
	Content string          `json:"content"`
}

// Snapshot is the exported state of a session.
type Snapshot struct {
	Target             string        `json:"target"`
	PlanningPath       []string      `json:"planning_path"`
	CurrentPlans       []string      `json:"current_plans"`
	InteractionHistory []Interaction `json:"interaction_history"`
}

const (
	// DefaultDir and DefaultFile name the conventional export location.
	DefaultDir  = ".plan_info"
	DefaultFile = "aplan.json"
)

// DefaultPath returns DefaultDir/DefaultFile under root.
func DefaultPath(root string) string {
	return filepath.Join(root, DefaultDir, DefaultFile)
}

// ErrUnknownInteraction is returned when a snapshot carries an interaction
// type other than input, edit or choice.
var ErrUnknownInteraction = errors.New("unknown interaction type")

// Validate checks that every interaction has a known type.
func (s Snapshot) Validate() error {
	for i, in := range s.InteractionHistory {
		if !in.Type.Valid() {
			return fmt.Errorf("interaction %d: %w: %q", i, ErrUnknownInteraction, in.Type)
		}
	}
	return nil
}

// Marshal encodes s as indented JSON. Nil slices encode as empty arrays.
func Marshal(s Snapshot) ([]byte, error) {
	if s.PlanningPath == nil {
		s.PlanningPath = []string{}
	}
	if s.CurrentPlans == nil {
		s.CurrentPlans = []string{}
	}
	if s.InteractionHistory == nil {
		s.InteractionHistory = []Interaction{}
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// Unmarshal decodes and validates a snapshot.
func Unmarshal(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("parse snapshot: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

// Save writes s to path, creating parent directories. The file is written to
// a temp file first and renamed into place.
func Save(path string, s Snapshot) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Load reads a snapshot from path.
func Load(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	return Unmarshal(data)
}
