package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/kastheco/arbor/config/planstate"
	"github.com/kastheco/arbor/config/planstore"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSessionList(t *testing.T) {
	assert.Equal(t, "no saved sessions", RenderSessionList(nil, 80))

	updated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)
	entries := []planstore.SessionEntry{
		{
			ID:        "0123456789abcdef",
			Goal:      "Launch a product in a crowded market with a small team",
			UpdatedAt: updated,
			Snapshot:  planstate.Snapshot{PlanningPath: []string{"Root", "Build MVP"}},
		},
		{ID: "short", Goal: "Learn Go", UpdatedAt: updated},
	}

	out := RenderSessionList(entries, 60)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)

	assert.True(t, strings.HasPrefix(lines[0], "01234567  2026-03-01 12:00  depth 1"))
	assert.True(t, strings.HasSuffix(lines[0], "..."))
	assert.LessOrEqual(t, runewidth.StringWidth(lines[0]), 60)
	assert.True(t, strings.HasSuffix(lines[1], "Learn Go"))
	assert.Contains(t, lines[1], "depth 0")
}

func TestAge(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "just now", Age(now.Add(-10*time.Second), now))
	assert.Equal(t, "5m ago", Age(now.Add(-5*time.Minute), now))
	assert.Equal(t, "3h ago", Age(now.Add(-3*time.Hour), now))
	assert.Equal(t, "2d ago", Age(now.Add(-49*time.Hour), now))
}
