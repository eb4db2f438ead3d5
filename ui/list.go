package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/kastheco/arbor/config/planstore"
	"github.com/mattn/go-runewidth"
)

const (
	idWidth   = 8
	timeWidth = 16
)

// RenderSessionList renders one line per saved session: short id, last
// update, path depth and goal, truncated to width.
func RenderSessionList(entries []planstore.SessionEntry, width int) string {
	if len(entries) == 0 {
		return Muted("no saved sessions")
	}

	var sb strings.Builder
	for _, e := range entries {
		id := runewidth.Truncate(e.ID, idWidth, "")
		when := e.UpdatedAt.Local().Format("2006-01-02 15:04")
		depth := fmt.Sprintf("depth %d", max(len(e.Snapshot.PlanningPath)-1, 0))

		prefix := fmt.Sprintf("%-*s  %-*s  %-8s  ", idWidth, id, timeWidth, when, depth)
		goal := e.Goal
		if avail := width - runewidth.StringWidth(prefix); avail > 3 && runewidth.StringWidth(goal) > avail {
			goal = runewidth.Truncate(goal, avail, "...")
		}
		sb.WriteString(indexStyle.Render(id))
		sb.WriteString(prefix[len(id):])
		sb.WriteString(goal)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Age renders how long ago t was, coarsely.
func Age(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
