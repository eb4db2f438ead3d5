package ui

import (
	"testing"

	"github.com/kastheco/arbor/config/planstate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotMarkdown(t *testing.T) {
	snap := planstate.Snapshot{
		Target:       "Launch a product",
		PlanningPath: []string{"Root", "Build MVP"},
		CurrentPlans: []string{"Pick a stack", "Write the landing page"},
		InteractionHistory: []planstate.Interaction{
			{Type: planstate.TypeInput, Content: "Given the current goal: Launch a product\nAnd the current path: Root"},
			{Type: planstate.TypeChoice, Content: "Selected plan: Build MVP"},
		},
	}

	md := SnapshotMarkdown(snap)
	assert.Contains(t, md, "# Launch a product\n")
	assert.Contains(t, md, "1. Root\n2. Build MVP\n")
	assert.Contains(t, md, "- **1** Write the landing page\n")
	assert.Contains(t, md, "1. `input` Given the current goal: Launch a product\n")
	assert.NotContains(t, md, "And the current path")
	assert.Contains(t, md, "2. `choice` Selected plan: Build MVP\n")
}

func TestSnapshotMarkdown_NoPlans(t *testing.T) {
	md := SnapshotMarkdown(planstate.Snapshot{Target: "g", PlanningPath: []string{"Root"}})
	assert.Contains(t, md, "_none_")
	assert.NotContains(t, md, "## History")
}

func TestRenderMarkdown(t *testing.T) {
	out, err := RenderMarkdown("# Title\n\nSome paragraph text.\n", 10)
	require.NoError(t, err)
	assert.Contains(t, out, "paragraph")
}
