package app

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/huh"
	"github.com/kastheco/arbor/config"
	"github.com/kastheco/arbor/config/planstate"
	"github.com/kastheco/arbor/config/planstore"
	"github.com/kastheco/arbor/config/plantree"
	"github.com/kastheco/arbor/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedPrompter replays canned answers in order.
type scriptedPrompter struct {
	goal    string
	actions []Action
	indexes []int
	texts   []string
	plans   [][]string

	offered []bool // hasPlans passed to each Action call
}

func (p *scriptedPrompter) Goal() (string, error) { return p.goal, nil }

func (p *scriptedPrompter) Action(hasPlans bool) (Action, error) {
	p.offered = append(p.offered, hasPlans)
	if len(p.actions) == 0 {
		return ActionQuit, nil
	}
	a := p.actions[0]
	p.actions = p.actions[1:]
	return a, nil
}

func (p *scriptedPrompter) PlanIndex(string, []plantree.Child) (int, error) {
	i := p.indexes[0]
	p.indexes = p.indexes[1:]
	return i, nil
}

func (p *scriptedPrompter) Text(string, string) (string, error) {
	t := p.texts[0]
	p.texts = p.texts[1:]
	return t, nil
}

func (p *scriptedPrompter) Plans() ([]string, error) {
	ps := p.plans[0]
	p.plans = p.plans[1:]
	return ps, nil
}

type harness struct {
	opts      Options
	out       *bytes.Buffer
	store     planstore.Store
	clipboard []string
}

func newHarness(t *testing.T, prompter Prompter, model llm.Completer) *harness {
	t.Helper()
	store, err := planstore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := &harness{out: &bytes.Buffer{}, store: store}
	cfg := config.DefaultConfig()
	h.opts = Options{
		Config:     cfg,
		Model:      model,
		Prompter:   prompter,
		Store:      store,
		Out:        h.out,
		ExportPath: filepath.Join(t.TempDir(), ".plan_info", "aplan.json"),
		CopyToClipboard: func(s string) error {
			h.clipboard = append(h.clipboard, s)
			return nil
		},
	}
	return h
}

func TestRun_SelectAutoGeneratesNextStage(t *testing.T) {
	model := llm.NewStatic(
		"1. Market research\n2. Build MVP\n3. Hire team\n",
		"1. Pick a stack\n2. Write the landing page\n3. Ship a beta\n",
	)
	p := &scriptedPrompter{
		goal:    "Launch a product",
		actions: []Action{ActionSelect, ActionExport, ActionQuit},
		indexes: []int{1},
	}
	h := newHarness(t, p, model)

	s, err := Run(context.Background(), "", h.opts)
	require.NoError(t, err)
	require.NotNil(t, s)

	assert.Equal(t, []string{"Root", "Build MVP"}, s.CurrentPath())
	assert.Equal(t, []string{"Pick a stack", "Write the landing page", "Ship a beta"}, s.ExportSnapshot().CurrentPlans)

	snap, err := planstate.Load(h.opts.ExportPath)
	require.NoError(t, err)
	assert.Equal(t, "Launch a product", snap.Target)
	assert.Equal(t, s.ExportSnapshot(), snap)

	entry, err := h.store.Get(s.ID())
	require.NoError(t, err)
	assert.Equal(t, "Launch a product", entry.Goal)

	require.Len(t, h.clipboard, 1)
	assert.Contains(t, h.clipboard[0], "# Launch a product")
	assert.Contains(t, h.out.String(), "Exported to")
}

func TestRun_EditAddAndGenerate(t *testing.T) {
	model := llm.NewStatic("1. A\n2. B\n3. C\n", "1. D\n2. E\n3. F\n")
	p := &scriptedPrompter{
		actions: []Action{ActionEdit, ActionAdd, ActionGenerate, ActionQuit},
		indexes: []int{0},
		texts:   []string{"A prime"},
		plans:   [][]string{{"Manual"}},
	}
	h := newHarness(t, p, model)

	s, err := Run(context.Background(), "goal", h.opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"A prime", "B", "C", "Manual", "D", "E", "F"}, s.ExportSnapshot().CurrentPlans)
	kinds := []planstate.InteractionType{}
	for _, in := range s.ExportSnapshot().InteractionHistory {
		kinds = append(kinds, in.Type)
	}
	assert.Equal(t, []planstate.InteractionType{
		planstate.TypeInput, planstate.TypeEdit, planstate.TypeInput, planstate.TypeInput,
	}, kinds)

	// Saved on exit.
	_, err = h.store.Get(s.ID())
	assert.NoError(t, err)
}

func TestRun_ShortGenerationWarns(t *testing.T) {
	p := &scriptedPrompter{actions: []Action{ActionQuit}}
	h := newHarness(t, p, llm.NewStatic("1. Only one\n"))

	s, err := Run(context.Background(), "goal", h.opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"Only one"}, s.ExportSnapshot().CurrentPlans)
	assert.Contains(t, h.out.String(), "the model returned 1 of 3 plans")
}

func TestRun_ModelErrorIsReported(t *testing.T) {
	model := llm.CompleterFunc(func(context.Context, string) (string, error) {
		return "", errors.New("connection refused")
	})
	p := &scriptedPrompter{actions: []Action{ActionQuit}}
	h := newHarness(t, p, model)

	s, err := Run(context.Background(), "goal", h.opts)
	require.NoError(t, err)
	assert.Empty(t, s.CurrentChildren())
	assert.Contains(t, h.out.String(), "could not generate plans")
	assert.Contains(t, h.out.String(), "no plans at this step yet")
	assert.Equal(t, []bool{false}, p.offered, "select and edit are hidden without plans")
}

func TestRun_PartialGenerationIsKept(t *testing.T) {
	calls := 0
	model := llm.CompleterFunc(func(context.Context, string) (string, error) {
		calls++
		if calls == 1 {
			return "1. A\n2. B\n", nil
		}
		return "", errors.New("connection reset")
	})
	p := &scriptedPrompter{actions: []Action{ActionQuit}}
	h := newHarness(t, p, model)

	s, err := Run(context.Background(), "goal", h.opts)
	require.NoError(t, err)
	assert.Len(t, s.CurrentChildren(), 2)
	assert.Contains(t, h.out.String(), "could not generate plans")
	assert.Contains(t, h.out.String(), "kept 2 plans from earlier rounds")
	assert.Equal(t, []bool{true}, p.offered)
}

func TestRun_InvalidSelectionKeepsState(t *testing.T) {
	p := &scriptedPrompter{actions: []Action{ActionSelect, ActionQuit}, indexes: []int{7}}
	h := newHarness(t, p, llm.NewStatic("1. A\n2. B\n3. C\n"))

	s, err := Run(context.Background(), "goal", h.opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"Root"}, s.CurrentPath())
	assert.Len(t, s.History(), 1)
	assert.Contains(t, h.out.String(), plantree.ErrInvalidIndex.Error())
}

type abortingPrompter struct{ scriptedPrompter }

func (abortingPrompter) Goal() (string, error) { return "", huh.ErrUserAborted }

func TestRun_AbortAtGoal(t *testing.T) {
	h := newHarness(t, &abortingPrompter{}, llm.NewStatic())
	s, err := Run(context.Background(), "", h.opts)
	assert.NoError(t, err)
	assert.Nil(t, s)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &scriptedPrompter{}
	h := newHarness(t, p, llm.NewStatic("1. A\n"))

	_, err := Run(ctx, "goal", h.opts)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_RejectsUnknownTemplate(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ChatTemplate = "chatml"
	_, err := New("goal", Options{Config: cfg, Model: llm.NewStatic()})
	assert.Error(t, err)
}

func TestSplitPlans(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitPlans("a\n\n  b  \n"))
	assert.Nil(t, splitPlans("   \n"))
}

func TestMenuOptions(t *testing.T) {
	assert.Len(t, menuOptions(true), 6)
	assert.Len(t, menuOptions(false), 4)
}

func TestPlanOptions(t *testing.T) {
	opts := planOptions([]plantree.Child{
		{Index: 0, Content: "Short"},
		{Index: 1, Content: string(bytes.Repeat([]byte("x"), 200))},
	})
	require.Len(t, opts, 2)
	assert.Equal(t, "0: Short", opts[0].Key)
	assert.Equal(t, 1, opts[1].Value)
	assert.LessOrEqual(t, len(opts[1].Key), optionWidth)
}
