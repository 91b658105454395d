package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/ieltsprep/internal/ui/theme"
)

// ChoiceList is a single-select option picker. Unlike a quiz widget it
// never reveals which option is right; it only tracks the chosen one.
type ChoiceList struct {
	Options  []string
	Cursor   int
	Chosen   int
	Disabled bool
}

// NewChoiceList creates a picker with chosen preselected, or -1 for none.
func NewChoiceList(options []string, chosen int) ChoiceList {
	cursor := chosen
	if cursor < 0 {
		cursor = 0
	}
	return ChoiceList{Options: options, Cursor: cursor, Chosen: chosen}
}

// Update moves the cursor and selects. Digits 1-9 select directly.
// It reports whether the selection changed.
func (c ChoiceList) Update(msg tea.Msg) (ChoiceList, bool) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || c.Disabled || len(c.Options) == 0 {
		return c, false
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if c.Cursor > 0 {
			c.Cursor--
		}
	case "down", "j":
		if c.Cursor < len(c.Options)-1 {
			c.Cursor++
		}
	case "enter", "space":
		return c.choose(c.Cursor)
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if i := int(key[0] - '1'); i < len(c.Options) {
				c.Cursor = i
				return c.choose(i)
			}
		}
	}
	return c, false
}

func (c ChoiceList) choose(i int) (ChoiceList, bool) {
	changed := c.Chosen != i
	c.Chosen = i
	return c, changed
}

// Value returns the chosen option text, or "" when nothing is chosen.
func (c ChoiceList) Value() string {
	if c.Chosen < 0 || c.Chosen >= len(c.Options) {
		return ""
	}
	return c.Options[c.Chosen]
}

// View renders the options with the cursor and the chosen marker.
func (c ChoiceList) View() string {
	var b strings.Builder
	for i, opt := range c.Options {
		prefix := "  "
		if i == c.Cursor && !c.Disabled {
			prefix = "▸ "
		}
		mark := "( )"
		if i == c.Chosen {
			mark = "(•)"
		}
		line := fmt.Sprintf("%s%d %s %s", prefix, i+1, mark, opt)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case i == c.Chosen:
			style = lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
		case i == c.Cursor && !c.Disabled:
			style = theme.Selected
		}
		b.WriteString(style.Render(line) + "\n")
	}
	return b.String()
}

// IndexOf returns the index of value in options, or -1.
func IndexOf(options []string, value string) int {
	for i, o := range options {
		if o == value {
			return i
		}
	}
	return -1
}
