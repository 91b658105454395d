package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/ieltsprep/internal/ui/theme"
)

// ProgressBar shows how many of Total items are Done, e.g. answered
// questions in a section or finished sections of a test.
type ProgressBar struct {
	Label string
	Done  int
	Total int
	Width int
}

func NewProgressBar(label string, done, total, width int) ProgressBar {
	return ProgressBar{Label: label, Done: done, Total: total, Width: width}
}

// Fraction returns Done/Total clamped to [0,1]; 0 when Total is not positive.
func (p ProgressBar) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	return min(max(float64(p.Done)/float64(p.Total), 0), 1)
}

// View renders "label  ████░░░░  done/total" in Width columns.
func (p ProgressBar) View() string {
	prefix := ""
	if p.Label != "" {
		prefix = theme.Plain.Render(p.Label) + "  "
	}
	count := fmt.Sprintf("  %d/%d", p.Done, p.Total)

	cells := max(p.Width-lipgloss.Width(prefix)-len(count), 4)
	filled := int(float64(cells) * p.Fraction())

	return prefix +
		theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", cells-filled)) +
		theme.Dim.Render(count)
}
