package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kastheco/arbor/config"
	"github.com/kastheco/arbor/config/auditlog"
	"github.com/kastheco/arbor/config/planstate"
	"github.com/kastheco/arbor/config/planstore"
	"github.com/kastheco/arbor/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) planstore.Store {
	t.Helper()
	store, err := planstore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestAudit(t *testing.T) auditlog.Logger {
	t.Helper()
	l, err := auditlog.NewSQLiteLogger(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	return config.DefaultConfig()
}

func saveEntry(t *testing.T, store planstore.Store, id, goal string, updated time.Time) {
	t.Helper()
	require.NoError(t, store.Save(planstore.SessionEntry{
		ID:        id,
		Goal:      goal,
		CreatedAt: updated,
		UpdatedAt: updated,
		Snapshot: planstate.Snapshot{
			Target:       goal,
			PlanningPath: []string{"Root", "Build MVP"},
			CurrentPlans: []string{"Pick a stack"},
		},
	}))
}

func TestExecuteGenerate(t *testing.T) {
	store := newTestStore(t)
	audit := newTestAudit(t)
	var errOut bytes.Buffer

	out, err := executeGenerate(context.Background(), generateParams{
		goal:   "Launch a product",
		cfg:    testConfig(t),
		model:  llm.NewStatic("1. Market research\n2. Build MVP\n3. Hire team\n"),
		audit:  audit,
		store:  store,
		errOut: &errOut,
	})
	require.NoError(t, err)
	assert.Equal(t, "0: Market research\n1: Build MVP\n2: Hire team\n", out)
	assert.Empty(t, errOut.String())

	entries, err := store.FindByGoal("Launch a product")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Len(t, entries[0].Snapshot.CurrentPlans, 3)

	events, err := audit.Query(auditlog.QueryFilter{SessionID: entries[0].ID, Kinds: []auditlog.EventKind{auditlog.EventInput}})
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestExecuteGenerate_ShortAndCount(t *testing.T) {
	var errOut bytes.Buffer
	out, err := executeGenerate(context.Background(), generateParams{
		goal:   "goal",
		count:  2,
		cfg:    testConfig(t),
		model:  llm.NewStatic("1. Only\n"),
		errOut: &errOut,
	})
	require.NoError(t, err)
	assert.Equal(t, "0: Only\n", out)
	assert.Contains(t, errOut.String(), "returned 1 of 2 plans")
}

func TestExecuteSessionsList(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()
	saveEntry(t, store, "aaaa1111", "Launch a product", now.Add(-time.Hour))
	saveEntry(t, store, "bbbb2222", "Learn Go", now)

	out, err := executeSessionsList(store, "", 80)
	require.NoError(t, err)
	assert.Less(t, bytes.Index([]byte(out), []byte("Learn Go")), bytes.Index([]byte(out), []byte("Launch a product")),
		"most recently updated first")

	out, err = executeSessionsList(store, "Learn Go", 80)
	require.NoError(t, err)
	assert.Contains(t, out, "bbbb2222")
	assert.NotContains(t, out, "aaaa1111")
}

func TestResolveSession(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()
	saveEntry(t, store, "abc-1", "one", now)
	saveEntry(t, store, "abc-2", "two", now)
	saveEntry(t, store, "xyz-1", "three", now)

	e, err := resolveSession(store, "abc-2")
	require.NoError(t, err)
	assert.Equal(t, "two", e.Goal)

	e, err = resolveSession(store, "xyz")
	require.NoError(t, err)
	assert.Equal(t, "three", e.Goal)

	_, err = resolveSession(store, "abc")
	assert.ErrorContains(t, err, "ambiguous")

	_, err = resolveSession(store, "nope")
	assert.ErrorIs(t, err, planstore.ErrNotFound)
}

func TestExecuteSessionsShow(t *testing.T) {
	store := newTestStore(t)
	saveEntry(t, store, "abc-1", "Launch a product", time.Now())

	out, err := executeSessionsShow(store, "abc", false, 80, time.Now())
	require.NoError(t, err)
	snap, err := planstate.Unmarshal([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, "Launch a product", snap.Target)

	out, err = executeSessionsShow(store, "abc", true, 80, time.Now())
	require.NoError(t, err)
	assert.Contains(t, out, "Pick a stack")
}

func TestExecuteSessionsImportAndDelete(t *testing.T) {
	store := newTestStore(t)
	dir := t.TempDir()
	path := planstate.DefaultPath(dir)
	require.NoError(t, planstate.Save(path, planstate.Snapshot{
		Target:       "Imported goal",
		PlanningPath: []string{"Root"},
	}))

	out, err := executeSessionsImport(store, path)
	require.NoError(t, err)
	assert.Contains(t, out, "imported")

	out, err = executeSessionsImport(store, path)
	require.NoError(t, err)
	assert.Contains(t, out, "already imported")

	out, err = executeSessionsImport(store, filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, "imported 0 session(s) from "+filepath.Dir(path)+"\n", out)

	_, err = executeSessionsImport(store, filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	id := planstore.ImportID(path)
	out, err = executeSessionsDelete(store, id)
	require.NoError(t, err)
	assert.Equal(t, "deleted "+id+"\n", out)

	_, err = store.Get(id)
	assert.ErrorIs(t, err, planstore.ErrNotFound)
}

func TestExecuteSessionsHistory(t *testing.T) {
	store := newTestStore(t)
	audit := newTestAudit(t)

	_, err := executeGenerate(context.Background(), generateParams{
		goal:  "goal",
		cfg:   testConfig(t),
		model: llm.NewStatic("1. A\n2. B\n3. C\n"),
		audit: audit,
		store: store,
	})
	require.NoError(t, err)
	entries, err := store.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	out, err := executeSessionsHistory(store, audit, entries[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "  1  input   Given the current goal: goal")

	saveEntry(t, store, "quiet", "nothing logged", time.Now())
	out, err = executeSessionsHistory(store, audit, "quiet")
	require.NoError(t, err)
	assert.Equal(t, "no recorded interactions\n", out)
}

func TestExecuteSessionsHistory_LongSession(t *testing.T) {
	store := newTestStore(t)
	audit := newTestAudit(t)
	saveEntry(t, store, "long", "goal", time.Now())

	base := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	total := auditlog.MaxQueryLimit + 3
	for i := 1; i <= total; i++ {
		e := auditlog.NewEvent(auditlog.EventInput, "long", fmt.Sprintf("step %d", i), auditlog.WithSequence(i))
		e.Timestamp = base.Add(time.Duration(i) * time.Millisecond)
		audit.Emit(e)
	}

	out, err := executeSessionsHistory(store, audit, "long")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, total)
	assert.Equal(t, fmt.Sprintf("%3d  input   step %d", total, total), lines[total-1])
}

func TestExecutePromptgen(t *testing.T) {
	out, err := executePromptgen(context.Background(), llm.NewStatic("Warm.", "Brief."), "You are a guide", []string{"personality", "conversation flow"})
	require.NoError(t, err)
	assert.Equal(t, "You are a guide\n\nPersonality:\nWarm.\n\nConversation flow:\nBrief.\n\n", out)

	_, err = executePromptgen(context.Background(), llm.NewStatic(), "base", nil)
	assert.Error(t, err)
}

func TestOpenStore_RequiresPath(t *testing.T) {
	cfg := testConfig(t)
	cfg.StorePath = ""
	_, err := openStore(cfg)
	assert.Error(t, err)

	cfg.StorePath = filepath.Join(t.TempDir(), "s.db")
	store, err := openStore(cfg)
	require.NoError(t, err)
	assert.NoError(t, store.Close())
	_, err = os.Stat(cfg.StorePath)
	assert.NoError(t, err)
}
