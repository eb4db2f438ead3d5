package ui

import "github.com/charmbracelet/lipgloss"

// Rosé Pine Moon palette
// https://rosepinetheme.com/palette/
var (
	ColorOverlay = lipgloss.Color("#393552")
	ColorMuted   = lipgloss.Color("#6e6a86")
	ColorText    = lipgloss.Color("#e0def4")

	ColorLove = lipgloss.Color("#eb6f92") // error
	ColorGold = lipgloss.Color("#f6c177") // warning
	ColorFoam = lipgloss.Color("#9ccfd8") // info
	ColorIris = lipgloss.Color("#c4a7e7") // highlight, primary
)

var (
	borderStyle  = lipgloss.NewStyle().Foreground(ColorOverlay)
	indexStyle   = lipgloss.NewStyle().Foreground(ColorIris).Bold(true)
	pathStyle    = lipgloss.NewStyle().Foreground(ColorFoam)
	arrowStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	headerStyle  = lipgloss.NewStyle().Foreground(ColorIris).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	errorStyle   = lipgloss.NewStyle().Foreground(ColorLove)
	warningStyle = lipgloss.NewStyle().Foreground(ColorGold)
)

// Error, Warning and Muted style one-line status messages.
func Error(msg string) string   { return errorStyle.Render(msg) }
func Warning(msg string) string { return warningStyle.Render(msg) }
func Muted(msg string) string   { return mutedStyle.Render(msg) }

// Header renders a section title.
func Header(title string) string { return headerStyle.Render(title) }
