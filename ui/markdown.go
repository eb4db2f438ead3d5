package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/kastheco/arbor/config/planstate"
)

// SnapshotMarkdown writes a snapshot as a markdown document.
func SnapshotMarkdown(s planstate.Snapshot) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", s.Target))

	sb.WriteString("## Path\n\n")
	for i, step := range s.PlanningPath {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, step))
	}

	sb.WriteString("\n## Current plans\n\n")
	if len(s.CurrentPlans) == 0 {
		sb.WriteString("_none_\n")
	}
	for i, p := range s.CurrentPlans {
		sb.WriteString(fmt.Sprintf("- **%d** %s\n", i, p))
	}

	if len(s.InteractionHistory) > 0 {
		sb.WriteString("\n## History\n\n")
		for i, in := range s.InteractionHistory {
			// Generation requests span several lines; only the first is kept.
			content, _, _ := strings.Cut(in.Content, "\n")
			sb.WriteString(fmt.Sprintf("%d. `%s` %s\n", i+1, in.Type, content))
		}
	}

	return sb.String()
}

// RenderMarkdown renders md for the terminal, wrapped at width.
func RenderMarkdown(md string, width int) (string, error) {
	if width < 40 {
		width = 40
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("could not create markdown renderer: %w", err)
	}
	rendered, err := renderer.Render(md)
	if err != nil {
		return "", fmt.Errorf("could not render markdown: %w", err)
	}
	return rendered, nil
}
