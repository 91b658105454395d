package results

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/ieltsprep/internal/question"
	res "github.com/abhisek/ieltsprep/internal/results"
	"github.com/abhisek/ieltsprep/internal/router"
	"github.com/abhisek/ieltsprep/internal/screen"
	"github.com/abhisek/ieltsprep/internal/ui/components"
	"github.com/abhisek/ieltsprep/internal/ui/layout"
	"github.com/abhisek/ieltsprep/internal/ui/theme"
)

// loadedMsg carries the test overview once progress has been read.
type loadedMsg struct {
	Overview res.TestOverview
	Err      error
}

// ResultsScreen shows scored results for the completed sections of a test.
type ResultsScreen struct {
	deps      screen.Deps
	kind      question.Kind
	testID    string
	sectionID string

	overview *res.TestOverview
	reports  []res.Report
	idx      int
	offset   int

	showShare bool
	notice    string
	errMsg    string
}

var _ screen.Screen = (*ResultsScreen)(nil)
var _ screen.KeyHintProvider = (*ResultsScreen)(nil)
var _ screen.StatusProvider = (*ResultsScreen)(nil)

// New creates a results screen focused on sectionID.
func New(deps screen.Deps, kind question.Kind, testID, sectionID string) *ResultsScreen {
	return &ResultsScreen{deps: deps, kind: kind, testID: testID, sectionID: sectionID}
}

func (s *ResultsScreen) Init() tea.Cmd {
	deps, kind, testID := s.deps, s.kind, s.testID
	return func() tea.Msg {
		sections, err := deps.Catalog.Sections(kind, testID)
		if err != nil {
			return loadedMsg{Err: err}
		}
		records, err := deps.Store.LoadTest(context.Background(), kind, testID)
		if err != nil {
			return loadedMsg{Err: err}
		}
		return loadedMsg{Overview: res.Overview(kind, testID, sections, records, deps.Policy)}
	}
}

func (s *ResultsScreen) Title() string {
	return s.kind.DisplayName() + " Results"
}

func (s *ResultsScreen) Status() string {
	if s.overview == nil || s.overview.Completed == 0 {
		return ""
	}
	return "Overall band " + res.FormatBand(s.overview.OverallBand)
}

func (s *ResultsScreen) KeyHints() []layout.KeyHint {
	if s.errMsg != "" {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	hints := []layout.KeyHint{
		{Key: "←→", Description: "Section"},
		{Key: "↑↓", Description: "Scroll"},
		{Key: "R", Description: "Retry"},
		{Key: "S", Description: "Share"},
		{Key: "N", Description: "Next"},
		{Key: "Esc", Description: "Back"},
	}
	return hints
}

// Current returns the focused report.
func (s *ResultsScreen) Current() (res.Report, bool) {
	if s.idx < 0 || s.idx >= len(s.reports) {
		return res.Report{}, false
	}
	return s.reports[s.idx], true
}

func (s *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.handleLoaded(msg)
		return s, nil
	case tea.KeyMsg:
		return s, s.handleKey(msg.String())
	}
	return s, nil
}

func (s *ResultsScreen) handleLoaded(msg loadedMsg) {
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return
	}
	o := msg.Overview
	s.overview = &o
	s.reports = s.reports[:0]
	for _, sum := range o.Sections {
		if sum.Status == res.StatusCompleted && sum.Report != nil {
			if sum.SectionID == s.sectionID {
				s.idx = len(s.reports)
			}
			s.reports = append(s.reports, *sum.Report)
		}
	}
	if len(s.reports) == 0 {
		s.errMsg = res.ErrNoProgress.Error()
	}
}

func (s *ResultsScreen) handleKey(key string) tea.Cmd {
	r, ok := s.Current()
	if !ok {
		return nil
	}
	switch key {
	case "left", "h":
		s.focus(s.idx - 1)
	case "right", "l":
		s.focus(s.idx + 1)
	case "up", "k":
		if s.offset > 0 {
			s.offset--
		}
	case "down", "j":
		if s.offset < len(r.Breakdown.Questions)-1 {
			s.offset++
		}
	case "s":
		s.showShare = !s.showShare
	case "n":
		return router.Navigate(res.Next(r))
	case "r":
		route, err := res.Retry(context.Background(), s.deps.Store, r.Key(), s.deps.Clock.Now())
		if err != nil {
			s.notice = "Retry failed: " + err.Error()
			return nil
		}
		return router.Navigate(route)
	}
	return nil
}

func (s *ResultsScreen) focus(i int) {
	if i < 0 || i >= len(s.reports) {
		return
	}
	s.idx = i
	s.offset = 0
	s.showShare = false
}

func (s *ResultsScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Render(fmt.Sprintf("\n\n\n  %s\n\n  Press Esc to go back.", s.errMsg))
	}
	r, ok := s.Current()
	if !ok {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("\n\n\n  Scoring your answers...")
	}

	cw := components.ContentWidth(width)
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	var b strings.Builder
	b.WriteString(center.Inherit(theme.Title).Render(
		fmt.Sprintf("Section %d: %s", r.SectionNumber, r.SectionTitle)))
	b.WriteString("\n")
	b.WriteString(center.Foreground(theme.TextDim).Render(
		fmt.Sprintf("completed section %d of %d  ←→ to switch", s.idx+1, len(s.reports))))
	b.WriteString("\n\n")

	cardW := max((cw-6)/4, 12)
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		components.StatCard("Band", res.FormatBand(r.BandScore()), cardW),
		components.StatCard("Correct", fmt.Sprintf("%d/%d", r.Correct(), r.Total()), cardW),
		components.StatCard("Accuracy", fmt.Sprintf("%.0f%%", r.Percentage()), cardW),
		components.StatCard("Time", layout.FormatClock(r.TimeSpent()), cardW),
	)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, cards))
	b.WriteString("\n\n")

	b.WriteString(s.renderSkills(r))
	b.WriteString("\n")

	if s.showShare {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			components.Card(res.ShareText(r), cw)))
		b.WriteString("\n")
	}

	// Whatever height the header block leaves goes to the breakdown.
	rows := max(height-lipgloss.Height(b.String())-2, 3)
	b.WriteString(s.renderBreakdown(r, rows))

	if s.notice != "" {
		b.WriteString("\n" + theme.Warning.Render("  "+s.notice))
	}
	return b.String()
}

func (s *ResultsScreen) renderSkills(r res.Report) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render("  Skill analysis"))
	b.WriteString("\n")
	for _, sk := range r.Skills {
		fmt.Fprintf(&b, "  %-24s %s  %s\n",
			sk.Name,
			theme.LevelStyle(string(sk.Level)).Render(string(sk.Level)),
			lipgloss.NewStyle().Foreground(theme.TextDim).Render(sk.Detail))
	}
	return b.String()
}

// renderBreakdown lists question results from the scroll offset.
func (s *ResultsScreen) renderBreakdown(r res.Report, rows int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render("  Question breakdown"))
	b.WriteString("\n")

	qs := r.Breakdown.Questions
	end := min(s.offset+rows, len(qs))
	for i := s.offset; i < end; i++ {
		qr := qs[i]
		mark, style := "✗", theme.Incorrect
		if qr.Correct {
			mark, style = "✓", theme.Correct
		}
		given := qr.Given.String()
		if !qr.Answered {
			given = "(no answer)"
		}
		line := fmt.Sprintf("  %s %2d. %s", style.Render(mark), i+1, truncate(qr.Prompt, 48))
		detail := fmt.Sprintf("you: %s", given)
		if !qr.Correct {
			detail += fmt.Sprintf("  answer: %s", qr.Expected.String())
		}
		b.WriteString(line + "  " + lipgloss.NewStyle().Foreground(theme.TextDim).Render(detail) + "\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
