package results

import (
	"context"
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
	res "github.com/abhisek/ieltsprep/internal/results"
	"github.com/abhisek/ieltsprep/internal/router"
	"github.com/abhisek/ieltsprep/internal/screen"
	"github.com/abhisek/ieltsprep/internal/session"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testDeps(t *testing.T) (screen.Deps, *progress.KVStore) {
	t.Helper()
	cat, err := content.Default()
	require.NoError(t, err)
	store := progress.NewKVStore(progress.NewMemoryKV(), zerolog.Nop())
	return screen.Deps{
		Catalog: cat,
		Store:   store,
		Clock:   clock.NewManual(t0.Add(time.Hour)),
		Logger:  zerolog.Nop(),
		Policy:  res.DefaultPolicy(),
	}, store
}

// seed stores a completed record for sectionID, answering every question
// correctly when correct is set and leaving it blank otherwise.
func seed(t *testing.T, deps screen.Deps, store progress.Store, sectionID string, correct bool) {
	t.Helper()
	sec, err := deps.Catalog.Section(question.KindReading, "test-1", sectionID)
	require.NoError(t, err)
	rec := progress.Fresh(t0)
	rec.Completed = true
	rec.TimeSpentSeconds = 600
	rec.LastSaved = t0.Add(10 * time.Minute).UnixMilli()
	rec.AttemptID = progress.NewAttemptID()
	if correct {
		for _, q := range sec.Questions {
			rec.Answers.Set(q.ID, *q.CorrectAnswer)
		}
	}
	key := progress.Key{Kind: question.KindReading, TestID: "test-1", SectionID: sectionID}
	require.NoError(t, store.Save(context.Background(), key, rec))
}

func load(t *testing.T, s *ResultsScreen) {
	t.Helper()
	_, cmd := s.Update(s.Init()())
	require.Nil(t, cmd)
}

func navigate(t *testing.T, cmd tea.Cmd) session.Route {
	t.Helper()
	require.NotNil(t, cmd)
	nav, ok := cmd().(router.NavigateMsg)
	require.True(t, ok, "expected NavigateMsg")
	return nav.Route
}

func TestResultsScreen_FocusAndCycle(t *testing.T) {
	deps, store := testDeps(t)
	seed(t, deps, store, "section-1", true)
	seed(t, deps, store, "section-2", false)

	s := New(deps, question.KindReading, "test-1", "section-2")
	load(t, s)

	r, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "section-2", r.SectionID)
	assert.Equal(t, 0, r.Correct())

	s.Update(specialKey(tea.KeyLeft))
	r, _ = s.Current()
	assert.Equal(t, "section-1", r.SectionID)
	assert.Equal(t, r.Total(), r.Correct())

	s.Update(specialKey(tea.KeyLeft))
	r, _ = s.Current()
	assert.Equal(t, "section-1", r.SectionID, "cycling stops at the first report")

	assert.Contains(t, s.Status(), "Overall band")
}

func TestResultsScreen_View(t *testing.T) {
	deps, store := testDeps(t)
	seed(t, deps, store, "section-1", true)

	s := New(deps, question.KindReading, "test-1", "section-1")
	load(t, s)

	view := s.View(120, 40)
	for _, want := range []string{"Band", "Skill analysis", "Accuracy", "Time management", "Question breakdown", "✓"} {
		assert.Contains(t, view, want)
	}
	assert.NotContains(t, view, "I scored band", "share text is hidden until requested")

	s.Update(keyPress('s'))
	assert.Contains(t, s.View(120, 40), "I scored band")
}

func TestResultsScreen_Next(t *testing.T) {
	deps, store := testDeps(t)
	seed(t, deps, store, "section-2", true)
	seed(t, deps, store, "section-3", true)

	s := New(deps, question.KindReading, "test-1", "section-2")
	load(t, s)
	_, cmd := s.Update(keyPress('n'))
	route := navigate(t, cmd)
	assert.Equal(t, session.DestSection, route.Dest)
	assert.Equal(t, "section-3", route.SectionID)

	s.Update(specialKey(tea.KeyRight))
	_, cmd = s.Update(keyPress('n'))
	assert.Equal(t, session.ListingRoute(question.KindReading), navigate(t, cmd))
}

func TestResultsScreen_Retry(t *testing.T) {
	deps, store := testDeps(t)
	seed(t, deps, store, "section-1", true)

	s := New(deps, question.KindReading, "test-1", "section-1")
	load(t, s)
	_, cmd := s.Update(keyPress('r'))
	route := navigate(t, cmd)
	assert.Equal(t, session.DestSection, route.Dest)
	assert.Equal(t, "section-1", route.SectionID)

	rec, err := store.Load(context.Background(), progress.Key{Kind: question.KindReading, TestID: "test-1", SectionID: "section-1"})
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.False(t, rec.Completed)
	assert.Empty(t, rec.Answers)
	assert.Equal(t, deps.Clock.Now().UnixMilli(), rec.StartTime)
}

func TestResultsScreen_NoProgress(t *testing.T) {
	deps, _ := testDeps(t)
	s := New(deps, question.KindReading, "test-1", "section-1")
	load(t, s)

	assert.Contains(t, s.View(100, 30), res.ErrNoProgress.Error())
	_, cmd := s.Update(keyPress('r'))
	assert.Nil(t, cmd)
}

func TestResultsScreen_UnknownTest(t *testing.T) {
	deps, _ := testDeps(t)
	s := New(deps, question.KindReading, "test-99", "section-1")
	load(t, s)
	assert.Contains(t, s.View(100, 30), "Press Esc")
}
