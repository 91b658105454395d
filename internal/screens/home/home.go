package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/ieltsprep/internal/content"
	"github.com/abhisek/ieltsprep/internal/question"
	"github.com/abhisek/ieltsprep/internal/results"
	"github.com/abhisek/ieltsprep/internal/router"
	"github.com/abhisek/ieltsprep/internal/screen"
	"github.com/abhisek/ieltsprep/internal/session"
	"github.com/abhisek/ieltsprep/internal/ui/components"
	"github.com/abhisek/ieltsprep/internal/ui/layout"
	"github.com/abhisek/ieltsprep/internal/ui/theme"
)

const titleArt = "I E L T S   ·   P R E P"

// testRow is one test of the listing with its stored progress.
type testRow struct {
	Info     content.TestInfo
	Overview results.TestOverview
}

// loadedMsg carries the listing once progress has been read.
type loadedMsg struct {
	Rows []testRow
	Err  error
}

// HomeScreen lists every test with its progress.
type HomeScreen struct {
	deps   screen.Deps
	rows   []testRow
	menu   components.Menu
	errMsg string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Refresher = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps screen.Deps) *HomeScreen {
	return &HomeScreen{deps: deps}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.load()
}

// Refresh reloads progress when the screen becomes active again.
func (h *HomeScreen) Refresh() tea.Cmd {
	return h.load()
}

func (h *HomeScreen) load() tea.Cmd {
	deps := h.deps
	return func() tea.Msg {
		ctx := context.Background()
		var rows []testRow
		for _, kind := range question.Kinds {
			for _, info := range deps.Catalog.Tests(kind) {
				sections, err := deps.Catalog.Sections(kind, info.ID)
				if err != nil {
					return loadedMsg{Err: err}
				}
				records, err := deps.Store.LoadTest(ctx, kind, info.ID)
				if err != nil {
					return loadedMsg{Err: err}
				}
				rows = append(rows, testRow{
					Info:     info,
					Overview: results.Overview(kind, info.ID, sections, records, deps.Policy),
				})
			}
		}
		return loadedMsg{Rows: rows}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.Err != nil {
			h.errMsg = msg.Err.Error()
			return h, nil
		}
		h.errMsg = ""
		selected := h.menu.Selected
		h.rows = msg.Rows
		h.menu = components.NewMenu(h.menuItems())
		if selected < len(h.menu.Items) && !h.menu.Items[selected].Disabled {
			h.menu.Selected = selected
		}
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) menuItems() []components.MenuItem {
	var items []components.MenuItem
	for _, row := range h.rows {
		o := row.Overview
		route := startRoute(o)
		items = append(items, components.MenuItem{
			Label:  fmt.Sprintf("%-10s %s", o.Kind.DisplayName(), row.Info.Title),
			Detail: progressDetail(o),
			Action: func() tea.Cmd { return router.Navigate(route) },
		})
		if o.Completed > 0 {
			first := firstCompleted(o)
			items = append(items, components.MenuItem{
				Label:  fmt.Sprintf("%-10s   results", ""),
				Detail: "band " + results.FormatBand(o.OverallBand),
				Action: func() tea.Cmd {
					return router.Navigate(session.ResultsRoute(o.Kind, o.TestID, first))
				},
			})
		}
	}
	items = append(items, components.MenuItem{
		Label:  "Quit",
		Action: func() tea.Cmd { return tea.Quit },
	})
	return items
}

// startRoute opens the first unfinished section, or the results of a
// finished test.
func startRoute(o results.TestOverview) session.Route {
	if next, ok := o.NextSection(); ok {
		return session.Route{Dest: session.DestSection, Kind: o.Kind, TestID: o.TestID, SectionID: next.SectionID}
	}
	return session.ResultsRoute(o.Kind, o.TestID, firstCompleted(o))
}

func firstCompleted(o results.TestOverview) string {
	for _, s := range o.Sections {
		if s.Status == results.StatusCompleted {
			return s.SectionID
		}
	}
	return ""
}

func progressDetail(o results.TestOverview) string {
	switch {
	case o.Finished():
		return fmt.Sprintf("finished · band %s", results.FormatBand(o.OverallBand))
	case o.Completed > 0:
		return fmt.Sprintf("%d/%d sections done", o.Completed, len(o.Sections))
	}
	for _, s := range o.Sections {
		if s.Status == results.StatusInProgress {
			return "in progress"
		}
	}
	return "not started"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Start / resume"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) View(width, height int) string {
	if h.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Render("\n\n\n  Error: " + h.errMsg)
	}

	cw := components.ContentWidth(width)
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(center.Inherit(theme.Title).Render(titleArt))
	b.WriteString("\n")
	b.WriteString(center.Inherit(theme.Subtitle).Render("Academic Reading and Listening practice"))
	b.WriteString("\n\n")

	if h.rows == nil {
		b.WriteString(center.Foreground(theme.TextDim).Render("Loading tests..."))
		return b.String()
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		components.Card(strings.TrimRight(h.menu.View(), "\n"), cw)))
	return b.String()
}

func (h *HomeScreen) Title() string {
	return "Home"
}
