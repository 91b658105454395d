package home

import (
	"context"
	"strings"
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
	"github.com/abhisek/ieltsprep/internal/session"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func newHome(t *testing.T) (*HomeScreen, *progress.KVStore) {
	t.Helper()
	cat, err := content.Default()
	require.NoError(t, err)
	store := progress.NewKVStore(progress.NewMemoryKV(), zerolog.Nop())
	return New(screen.Deps{
		Catalog: cat,
		Store:   store,
		Clock:   clock.NewManual(t0),
		Logger:  zerolog.Nop(),
		Policy:  results.DefaultPolicy(),
	}), store
}

func load(t *testing.T, h *HomeScreen, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	h.Update(cmd())
}

func enter(t *testing.T, h *HomeScreen) session.Route {
	t.Helper()
	_, cmd := h.Update(specialKey(tea.KeyEnter))
	require.NotNil(t, cmd)
	nav, ok := cmd().(router.NavigateMsg)
	require.True(t, ok, "expected NavigateMsg")
	return nav.Route
}

func TestHomeScreen_FreshStartsFirstSection(t *testing.T) {
	h, _ := newHome(t)
	assert.Contains(t, h.View(100, 30), "Loading")
	load(t, h, h.Init())

	require.Len(t, h.menu.Items, 3, "reading, listening, quit")
	assert.Equal(t, "not started", h.menu.Items[0].Detail)

	route := enter(t, h)
	assert.Equal(t, session.Route{Dest: session.DestSection, Kind: question.KindReading, TestID: "test-1", SectionID: "section-1"}, route)
}

func TestHomeScreen_ResumesFirstUnfinishedSection(t *testing.T) {
	h, store := newHome(t)
	ctx := context.Background()

	done := progress.Fresh(t0)
	done.Completed = true
	require.NoError(t, store.Save(ctx, progress.Key{Kind: question.KindReading, TestID: "test-1", SectionID: "section-1"}, done))
	require.NoError(t, store.Save(ctx, progress.Key{Kind: question.KindReading, TestID: "test-1", SectionID: "section-2"}, progress.Fresh(t0)))

	load(t, h, h.Refresh())

	require.Len(t, h.menu.Items, 4, "reading, reading results, listening, quit")
	assert.Equal(t, "1/3 sections done", h.menu.Items[0].Detail)
	assert.Equal(t, "section-2", enter(t, h).SectionID)

	h.Update(specialKey(tea.KeyDown))
	route := enter(t, h)
	assert.Equal(t, session.ResultsRoute(question.KindReading, "test-1", "section-1"), route)
}

func TestHomeScreen_FinishedTestOpensResults(t *testing.T) {
	h, store := newHome(t)
	for n := 1; n <= question.KindReading.LastSection(); n++ {
		rec := progress.Fresh(t0)
		rec.Completed = true
		key := progress.Key{Kind: question.KindReading, TestID: "test-1", SectionID: question.SectionID(n)}
		require.NoError(t, store.Save(context.Background(), key, rec))
	}
	load(t, h, h.Init())

	assert.True(t, strings.HasPrefix(h.menu.Items[0].Detail, "finished"))
	assert.Equal(t, session.DestResults, enter(t, h).Dest)
}

func TestHomeScreen_QuitItem(t *testing.T) {
	h, _ := newHome(t)
	load(t, h, h.Init())

	for range h.menu.Items {
		h.Update(specialKey(tea.KeyDown))
	}
	assert.Equal(t, "Quit", h.menu.Items[h.menu.Selected].Label)
	_, cmd := h.Update(specialKey(tea.KeyEnter))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}
