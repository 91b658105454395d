// Package theme holds the palette and shared lipgloss styles.
package theme

import (
	"charm.land/lipgloss/v2"
)

// Palette, calm and high-contrast for long reading sessions.
var (
	Primary   = lipgloss.Color("#2563EB") // blue
	Secondary = lipgloss.Color("#0EA5E9") // sky
	Accent    = lipgloss.Color("#F59E0B") // amber
	Success   = lipgloss.Color("#22C55E")
	Error     = lipgloss.Color("#F43F5E")
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	BgCard    = lipgloss.Color("#1E293B")
	Border    = lipgloss.Color("#334155")
)

// Text styles.
var (
	Title    = lipgloss.NewStyle().Bold(true).Foreground(Primary).Align(lipgloss.Center)
	Subtitle = lipgloss.NewStyle().Foreground(TextDim).Align(lipgloss.Center)
	Heading  = lipgloss.NewStyle().Bold(true).Foreground(Text)
	Plain    = lipgloss.NewStyle().Foreground(Text)
	Dim      = lipgloss.NewStyle().Foreground(TextDim)
	Hint     = lipgloss.NewStyle().Foreground(TextDim).Italic(true)
	Rule     = lipgloss.NewStyle().Foreground(Border)
)

// Answer and choice states. Correct and Incorrect only appear on results.
var (
	Selected   = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	Unselected = lipgloss.NewStyle().Foreground(Text)
	Answered   = lipgloss.NewStyle().Foreground(Success)
	Correct    = lipgloss.NewStyle().Foreground(Success).Bold(true)
	Incorrect  = lipgloss.NewStyle().Foreground(Error).Bold(true)
	Warning    = lipgloss.NewStyle().Foreground(Accent).Bold(true)
	Notice     = lipgloss.NewStyle().Foreground(Accent)
)

// Progress bar cells.
var (
	ProgressFilled = lipgloss.NewStyle().Background(Secondary)
	ProgressEmpty  = lipgloss.NewStyle().Background(Border)
)

// LevelStyle colours a skill level label on the results screen.
func LevelStyle(level string) lipgloss.Style {
	switch level {
	case "Excellent":
		return Correct
	case "Good":
		return lipgloss.NewStyle().Foreground(Secondary).Bold(true)
	case "Fair":
		return Warning
	}
	return Incorrect
}
