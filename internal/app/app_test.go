package app

import (
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/ieltsprep/internal/clock"
	"github.com/abhisek/ieltsprep/internal/content"
	"github.com/abhisek/ieltsprep/internal/progress"
	"github.com/abhisek/ieltsprep/internal/question"
	"github.com/abhisek/ieltsprep/internal/results"
	"github.com/abhisek/ieltsprep/internal/router"
	"github.com/abhisek/ieltsprep/internal/screen"
	"github.com/abhisek/ieltsprep/internal/screens/home"
	"github.com/abhisek/ieltsprep/internal/screens/notice"
	resultsscreen "github.com/abhisek/ieltsprep/internal/screens/results"
	sessionscreen "github.com/abhisek/ieltsprep/internal/screens/session"
	"github.com/abhisek/ieltsprep/internal/session"
)

func testModel(t *testing.T) AppModel {
	t.Helper()
	cat, err := content.Default()
	require.NoError(t, err)
	return newAppModel(Options{Deps: screen.Deps{
		Catalog: cat,
		Store:   progress.NewKVStore(progress.NewMemoryKV(), zerolog.Nop()),
		Clock:   clock.NewManual(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
		Logger:  zerolog.Nop(),
		Policy:  results.DefaultPolicy(),
	}})
}

func update(m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(AppModel), cmd
}

func sectionRoute(id string) session.Route {
	return session.Route{Dest: session.DestSection, Kind: question.KindReading, TestID: "test-1", SectionID: id}
}

func TestNavigatePushesThenReplaces(t *testing.T) {
	m := testModel(t)

	m, _ = update(m, router.NavigateMsg{Route: sectionRoute("section-1")})
	require.Equal(t, 2, m.router.Depth())
	assert.IsType(t, &sessionscreen.SessionScreen{}, m.router.Active())

	m, _ = update(m, router.NavigateMsg{Route: sectionRoute("section-2")})
	assert.Equal(t, 2, m.router.Depth(), "section to section replaces")

	m, _ = update(m, router.NavigateMsg{Route: session.ResultsRoute(question.KindReading, "test-1", "section-2")})
	assert.Equal(t, 2, m.router.Depth())
	assert.IsType(t, &resultsscreen.ResultsScreen{}, m.router.Active())

	m, _ = update(m, router.NavigateMsg{Route: session.ListingRoute(question.KindReading)})
	assert.Equal(t, 1, m.router.Depth())
	assert.IsType(t, &home.HomeScreen{}, m.router.Active())
}

func TestNavigateUnknownSectionShowsNotice(t *testing.T) {
	m := testModel(t)
	m, _ = update(m, router.NavigateMsg{Route: sectionRoute("section-9")})
	assert.IsType(t, &notice.NoticeScreen{}, m.router.Active())
}

func TestEscapeClaimedByRunningSection(t *testing.T) {
	m := testModel(t)
	m, _ = update(m, router.NavigateMsg{Route: sectionRoute("section-1")})
	scr := m.router.Active().(*sessionscreen.SessionScreen)

	// Not started yet: esc pops.
	_, cmd := update(m, tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	_, ok := cmd().(router.PopScreenMsg)
	assert.True(t, ok)

	scr.Controller().Resume(t.Context())
	_, err := scr.Controller().Start()
	require.NoError(t, err)

	_, cmd = update(m, tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Nil(t, cmd, "running section opens its own confirm")
	assert.Equal(t, 2, m.router.Depth())
}

func TestStartRouteOpensOnInit(t *testing.T) {
	m := testModel(t)
	r := sectionRoute("section-1")
	m.start = &r
	require.NotNil(t, m.Init())
}
