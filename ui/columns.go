package ui

import (
	"fmt"
	"strings"

	"github.com/kastheco/arbor/config/plantree"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

const (
	DefaultColumns     = 3
	DefaultColumnWidth = 40

	// cells leave room for the border and a little air on the right.
	cellMargin = 4
	hangIndent = "  "
)

// wrapCell wraps "index: content" to fit a column. Continuation lines are
// indented so the index stands out. Words longer than the cell are broken.
func wrapCell(c plantree.Child, width int) []string {
	limit := max(width-cellMargin-len(hangIndent), 1)
	label := fmt.Sprintf("%d: ", c.Index)
	text := label + strings.Join(strings.Fields(c.Content), " ")

	lines := strings.Split(wrap.String(wordwrap.String(text, limit), limit), "\n")
	if strings.HasPrefix(lines[0], label) {
		lines[0] = indexStyle.Render(label) + lines[0][len(label):]
	}
	for i := 1; i < len(lines); i++ {
		lines[i] = hangIndent + lines[i]
	}
	return lines
}

// pad fills s with spaces to width display cells. Styling escapes do not count.
func pad(s string, width int) string {
	visible := ansi.PrintableRuneWidth(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func rule(left, mid, right string, columns, width int) string {
	segs := make([]string, columns)
	for i := range segs {
		segs[i] = strings.Repeat("─", width)
	}
	return borderStyle.Render(left + strings.Join(segs, mid) + right)
}

// RenderColumns lays the children out left to right in a boxed grid of
// columns x width cells. It returns "" when there are no children.
func RenderColumns(children []plantree.Child, columns, width int) string {
	if len(children) == 0 {
		return ""
	}
	if columns < 1 {
		columns = DefaultColumns
	}
	if width < cellMargin+1 {
		width = DefaultColumnWidth
	}

	bar := borderStyle.Render("│")
	rows := (len(children) + columns - 1) / columns

	var sb strings.Builder
	sb.WriteString(rule("┌", "┬", "┐", columns, width))
	sb.WriteString("\n")

	for row := 0; row < rows; row++ {
		cells := make([][]string, columns)
		height := 1
		for col := 0; col < columns; col++ {
			i := row*columns + col
			if i >= len(children) {
				continue
			}
			cells[col] = wrapCell(children[i], width)
			height = max(height, len(cells[col]))
		}

		for line := 0; line < height; line++ {
			for col := 0; col < columns; col++ {
				text := ""
				if line < len(cells[col]) {
					text = cells[col][line]
				}
				sb.WriteString(bar)
				sb.WriteString(pad(text, width))
			}
			sb.WriteString(bar)
			sb.WriteString("\n")
		}

		if row < rows-1 {
			sb.WriteString(rule("├", "┼", "┤", columns, width))
			sb.WriteString("\n")
		}
	}

	sb.WriteString(rule("└", "┴", "┘", columns, width))
	return sb.String()
}

// RenderPath renders the walk from the root to the cursor.
func RenderPath(path []string) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = pathStyle.Render(p)
	}
	return strings.Join(parts, arrowStyle.Render(" → "))
}
