package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/ieltsprep/internal/ui/theme"
)

// ContentWidth returns the inner width used for cards and passages.
func ContentWidth(frameWidth int) int {
	w := frameWidth - 6
	if w > 100 {
		w = 100
	}
	if w < 20 {
		w = 20
	}
	return w
}

// Card wraps content in a rounded-border card at the given content width.
func Card(content string, cw int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw - 2).
		Padding(0, 1).
		Render(content)
}

// StatCard renders a small labelled figure, e.g. the band score.
func StatCard(label, value string, width int) string {
	body := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(value) + "\n" +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(label)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(width).
		Align(lipgloss.Center).
		Render(body)
}
