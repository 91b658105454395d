package app

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/ieltsprep/internal/router"
	"github.com/abhisek/ieltsprep/internal/screen"
	"github.com/abhisek/ieltsprep/internal/screens/home"
	"github.com/abhisek/ieltsprep/internal/screens/notice"
	resultsscreen "github.com/abhisek/ieltsprep/internal/screens/results"
	sessionscreen "github.com/abhisek/ieltsprep/internal/screens/session"
	"github.com/abhisek/ieltsprep/internal/session"
	"github.com/abhisek/ieltsprep/internal/ui/layout"
)

// Options configures the TUI.
type Options struct {
	Deps screen.Deps

	// Start, when set, opens this route on top of the home screen.
	Start *session.Route
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	deps   screen.Deps
	start  *session.Route
	width  int
	height int
}

// newAppModel creates a new AppModel with the home screen.
func newAppModel(opts Options) AppModel {
	return AppModel{
		router: router.New(home.New(opts.Deps)),
		deps:   opts.Deps,
		start:  opts.Start,
	}
}

func (m AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.router.Active().Init()}
	if m.start != nil {
		cmds = append(cmds, router.Navigate(*m.start))
	}
	return tea.Batch(cmds...)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case router.NavigateMsg:
		return m, m.navigate(msg.Route)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if c, ok := m.router.Active().(screen.Closer); ok {
				c.Close()
			}
			return m, tea.Quit
		case "esc":
			if h, ok := m.router.Active().(screen.EscapeHandler); ok && h.HandlesEscape() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// navigate resolves a route to a screen. Screens opened from another
// section or results screen replace it so esc always leads home.
func (m AppModel) navigate(r session.Route) tea.Cmd {
	var next screen.Screen
	switch r.Dest {
	case session.DestListing:
		return m.router.PopToRoot()
	case session.DestSection:
		sec, err := m.deps.Catalog.Section(r.Kind, r.TestID, r.SectionID)
		if err != nil {
			m.deps.Logger.Warn().Err(err).Str("route", r.Dest.String()).Msg("cannot open section")
			next = notice.New("Not found", err.Error())
		} else {
			next = sessionscreen.New(m.deps, sec)
		}
	case session.DestResults:
		next = resultsscreen.New(m.deps, r.Kind, r.TestID, r.SectionID)
	default:
		return nil
	}

	if m.router.Depth() > 1 {
		return m.router.Replace(next)
	}
	return m.router.Push(next)
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	switch {
	case m.width == 0 || m.height == 0:
	case layout.IsTooSmall(m.width, m.height):
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
	default:
		header, footer := m.chrome()
		body := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
		v.SetContent(layout.RenderFrame(header, m.router.View(m.width, body), footer, m.width, m.height))
	}
	return v
}

var defaultHints = []layout.KeyHint{
	{Key: "Esc", Description: "Back"},
	{Key: "Ctrl+C", Description: "Quit"},
}

// chrome renders the header and footer for the active screen.
func (m AppModel) chrome() (string, string) {
	var title, status string
	hints := defaultHints
	if active := m.router.Active(); active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
		if kp, ok := active.(screen.KeyHintProvider); ok && kp.KeyHints() != nil {
			hints = kp.KeyHints()
		}
	}
	return layout.RenderHeader(title, status, m.width), layout.RenderFooter(hints, m.width)
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	if _, err := tea.NewProgram(newAppModel(opts)).Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
