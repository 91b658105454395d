package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/ieltsprep/internal/ui/theme"
)

// MenuItem is one selectable row. Detail is shown dimmed after the label.
type MenuItem struct {
	Label    string
	Detail   string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical list of actions. The cursor never rests on a
// disabled item and stops at either end.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu returns a menu with the cursor on the first enabled item.
func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	m.seek(0, 1)
	if m.Selected < 0 {
		m.Selected = 0
	}
	return m
}

// seek moves the cursor to the first enabled item at or after from in
// direction dir. The cursor is unchanged when there is none.
func (m *Menu) seek(from, dir int) {
	for i := from; i >= 0 && i < len(m.Items); i += dir {
		if !m.Items[i].Disabled {
			m.Selected = i
			return
		}
	}
}

// Update moves the cursor or runs the selected action on enter.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch kmsg.String() {
	case "up", "k":
		m.seek(m.Selected-1, -1)
	case "down", "j":
		m.seek(m.Selected+1, 1)
	case "home", "g":
		m.seek(0, 1)
	case "end", "G":
		m.seek(len(m.Items)-1, -1)
	case "enter":
		if m.Selected < 0 || m.Selected >= len(m.Items) {
			return m, nil
		}
		if item := m.Items[m.Selected]; item.Action != nil && !item.Disabled {
			return m, item.Action()
		}
	}
	return m, nil
}

func (m Menu) View() string {
	var b strings.Builder
	for i, item := range m.Items {
		label := theme.Unselected.Render("    " + item.Label)
		switch {
		case item.Disabled:
			label = theme.Dim.Render("    " + item.Label)
		case i == m.Selected:
			label = theme.Selected.Render("  ▸ " + item.Label)
		}
		b.WriteString(label)
		if item.Detail != "" {
			b.WriteString("  " + theme.Dim.Render(item.Detail))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
