package components

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/ieltsprep/internal/ui/theme"
)

// TextInput wraps bubbles/textinput for short free-text answers.
type TextInput struct {
	Model     textinput.Model
	Label     string
	WordLimit int
}

// NewTextInput creates a focused input holding value.
func NewTextInput(label, value string, wordLimit, maxWidth int) TextInput {
	ti := textinput.New()
	ti.Placeholder = "type your answer"
	ti.SetValue(value)
	ti.Focus()

	if maxWidth > 0 {
		ti.CharLimit = maxWidth
	}

	return TextInput{
		Model:     ti,
		Label:     label,
		WordLimit: wordLimit,
	}
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update forwards the message and reports whether the value changed.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd, bool) {
	before := t.Model.Value()
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd, t.Model.Value() != before
}

// Focus focuses the input.
func (t *TextInput) Focus() tea.Cmd { return t.Model.Focus() }

// Blur removes focus.
func (t *TextInput) Blur() { t.Model.Blur() }

// View renders the label, the input and a word-limit warning.
func (t TextInput) View() string {
	view := t.Model.View()
	if t.Label != "" {
		view = lipgloss.NewStyle().Foreground(theme.TextDim).Render(t.Label+": ") + view
	}
	if t.OverLimit() {
		view += " " + theme.Warning.Render(fmt.Sprintf("max %d words", t.WordLimit))
	}
	return view
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// OverLimit reports whether the value exceeds the word limit.
func (t TextInput) OverLimit() bool {
	return t.WordLimit > 0 && len(strings.Fields(t.Model.Value())) > t.WordLimit
}
