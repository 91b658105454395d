package session

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/ieltsprep/internal/autosave"
	"github.com/abhisek/ieltsprep/internal/question"
	"github.com/abhisek/ieltsprep/internal/ui/components"
	"github.com/abhisek/ieltsprep/internal/ui/layout"
	"github.com/abhisek/ieltsprep/internal/ui/theme"
)

// renderInstructions renders the pre-start screen of a section.
func (s *SessionScreen) renderInstructions(width, height int) string {
	sec := s.ctrl.Section()
	cw := components.ContentWidth(width)
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(center.Inherit(theme.Title).Render(sec.Title))
	b.WriteString("\n")
	b.WriteString(center.Foreground(theme.TextDim).Render(fmt.Sprintf(
		"%s · Section %d of %d · %d questions",
		sec.Kind.DisplayName(), sec.SectionNumber, sec.Kind.LastSection(), len(sec.Questions))))
	b.WriteString("\n\n")

	var body strings.Builder
	if limit := sec.TimeLimitDuration(); limit > 0 {
		fmt.Fprintf(&body, "Time allowed: %s\n", layout.FormatClock(limit))
	} else {
		body.WriteString("This section is untimed.\n")
	}
	if sec.AudioFile != "" {
		fmt.Fprintf(&body, "Recording: %s (%s)\n", sec.AudioFile,
			layout.FormatClock(time.Duration(sec.AudioDuration)*time.Second))
	}
	if len(sec.Instructions) > 0 {
		body.WriteString("\n")
		for _, line := range sec.Instructions {
			body.WriteString("• " + line + "\n")
		}
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, components.Card(strings.TrimRight(body.String(), "\n"), cw)))
	b.WriteString("\n\n")

	if s.resumed {
		b.WriteString(center.Foreground(theme.Accent).Render(fmt.Sprintf(
			"Resuming your previous attempt: %d of %d answered.",
			s.ctrl.AnsweredCount(), len(sec.Questions))))
		b.WriteString("\n")
	}
	b.WriteString(center.Foreground(theme.Primary).Bold(true).Render("Press Enter to begin"))
	return b.String()
}

// renderQuestionView renders the focused question, or the passage.
func (s *SessionScreen) renderQuestionView(width, height int) string {
	sec := s.ctrl.Section()
	q := s.question()
	cw := components.ContentWidth(width)

	var b strings.Builder

	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render("  " + sec.Title)
	infoRight := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Question %d of %d", s.current+1, len(sec.Questions)))
	infoLine := infoLeft
	if pad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4; pad > 0 {
		infoLine += strings.Repeat(" ", pad) + infoRight
	}
	b.WriteString(infoLine + "\n")
	b.WriteString(theme.Rule.Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n")

	if sec.Kind == question.KindListening {
		b.WriteString(theme.Dim.Render(fmt.Sprintf("  ♪ %s  ·  replays %d", sec.AudioFile, s.ctrl.Replays())))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	// Room left for the body once the info, nav and notice lines are drawn.
	bodyHeight := max(height-10, 3)
	if s.showPassage {
		b.WriteString(s.renderPassage(cw, bodyHeight))
	} else {
		b.WriteString(s.renderQuestion(q, cw))
	}
	b.WriteString("\n\n")
	b.WriteString(s.renderNav())
	b.WriteString("\n  ")
	b.WriteString(components.NewProgressBar("Answered", s.ctrl.AnsweredCount(), len(sec.Questions), min(cw, 60)).View())
	b.WriteString("\n")

	if s.notice != "" {
		b.WriteString(theme.Notice.Render("  " + s.notice))
	} else if s.ctrl.CanAdvance() {
		b.WriteString(theme.Answered.Render("  All questions answered. Ctrl+N to continue."))
	}
	return b.String()
}

func (s *SessionScreen) renderQuestion(q question.Question, cw int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().
		Width(cw).
		Foreground(theme.Text).
		Bold(true).
		Render(fmt.Sprintf("%d. %s", s.current+1, q.Prompt)))
	b.WriteString("\n")
	if q.WordLimit > 0 {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("Write no more than %s.", words(q.WordLimit))))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if q.Type.IsChoice() {
		b.WriteString(s.choice.View())
		return b.String()
	}
	for _, in := range s.inputs {
		b.WriteString("  " + in.View() + "\n")
	}
	return b.String()
}

// renderPassage renders a window of the wrapped reading passage.
func (s *SessionScreen) renderPassage(cw, height int) string {
	wrapped := lipgloss.NewStyle().Width(cw).Render(s.ctrl.Section().Passage)
	lines := strings.Split(wrapped, "\n")
	maxOffset := max(len(lines)-height, 0)
	if s.passageOffset > maxOffset {
		s.passageOffset = maxOffset
	}
	end := min(s.passageOffset+height, len(lines))
	view := strings.Join(lines[s.passageOffset:end], "\n")
	return theme.Plain.Render(view) + "\n" +
		theme.Hint.Render(fmt.Sprintf("lines %d-%d of %d · ↑↓ scroll · Ctrl+P back to questions",
			s.passageOffset+1, end, len(lines)))
}

// renderNav renders one marker per question: answered, unanswered, focused.
func (s *SessionScreen) renderNav() string {
	var parts []string
	for i, q := range s.ctrl.Section().Questions {
		label := fmt.Sprintf("%d", i+1)
		ans, ok := s.ctrl.Answer(q.ID)
		style := theme.Dim
		if ok && !ans.IsEmpty() {
			style = theme.Answered
		}
		if i == s.current {
			style = style.Bold(true).Underline(true)
		}
		parts = append(parts, style.Render(label))
	}
	return "  " + strings.Join(parts, " ")
}

// saveIndicator renders the autosave state for the header.
func saveIndicator(st autosave.State) string {
	switch st.Status {
	case autosave.StatusSaving:
		return "Saving..."
	case autosave.StatusJustSaved:
		return "Saved"
	}
	if !st.EverSaved {
		return ""
	}
	return fmt.Sprintf("Saved %s ago", st.SinceLastSave.Truncate(time.Second))
}

func words(n int) string {
	if n == 1 {
		return "ONE WORD"
	}
	return fmt.Sprintf("%d WORDS", n)
}

// renderQuitConfirm renders the leave confirmation dialog.
func renderQuitConfirm(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	lines := []string{
		center.Inherit(theme.Heading).Render("Leave this section?"),
		center.Inherit(theme.Dim).Render("Your answers and time are saved. You can resume later."),
		"",
		center.Foreground(theme.Success).Render("[Y] Save and leave"),
		center.Foreground(theme.Primary).Render("[N] Keep going"),
	}
	return "\n\n\n" + strings.Join(lines, "\n")
}

// renderLoading renders a waiting message.
func renderLoading(width, height int, text string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("\n\n\n  " + text)
}

// renderError renders an error message.
func renderError(width, height int, errMsg string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n  Error: %s\n\n  Press any key to go back.", errMsg))
}
