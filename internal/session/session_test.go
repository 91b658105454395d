package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/ieltsprep/internal/autosave"
	"github.com/abhisek/ieltsprep/internal/clock"
	"github.com/abhisek/ieltsprep/internal/progress"
	"github.com/abhisek/ieltsprep/internal/question"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func ans(s string) *question.Answer {
	a := question.Single(s)
	return &a
}

func testSection(kind question.Kind, n int) *question.TestSection {
	return &question.TestSection{
		Kind:           kind,
		TestID:         "test-1",
		ID:             question.SectionID(n),
		Title:          "Section",
		SectionNumber:  n,
		TotalQuestions: 3,
		TimeLimit:      20,
		Questions: []question.Question{
			{ID: "q1", Type: question.TypeMultipleChoice, Options: []string{"A", "B"}, CorrectAnswer: ans("A")},
			{ID: "q2", Type: question.TypeShortAnswer, CorrectAnswer: ans("B")},
			{ID: "q3", Type: question.TypeShortAnswer, CorrectAnswer: ans("C")},
		},
	}
}

type fixture struct {
	clk   *clock.Manual
	kv    *progress.MemoryKV
	store *progress.KVStore
	ctl   *Controller
}

func newFixture(t *testing.T, sec *question.TestSection) *fixture {
	t.Helper()
	kv := progress.NewMemoryKV()
	f := &fixture{
		clk:   clock.NewManual(t0),
		kv:    kv,
		store: progress.NewKVStore(kv, zerolog.Nop()),
	}
	f.ctl = f.controller(sec)
	return f
}

func (f *fixture) controller(sec *question.TestSection) *Controller {
	return New(Options{
		Section: sec,
		Store:   f.store,
		Clock:   f.clk,
		Logger:  zerolog.Nop(),
	})
}

func (f *fixture) load(t *testing.T, sec *question.TestSection) *progress.SectionProgress {
	t.Helper()
	rec, err := f.store.Load(context.Background(), progress.Key{Kind: sec.Kind, TestID: sec.TestID, SectionID: sec.ID})
	require.NoError(t, err)
	return rec
}

func TestNewStartsInInstructions(t *testing.T) {
	f := newFixture(t, testSection(question.KindReading, 1))
	assert.Equal(t, PhaseInstructions, f.ctl.Phase())
	assert.ErrorIs(t, f.ctl.SetAnswer("q1", question.Single("A")), ErrNotInProgress)

	_, err := f.ctl.Start()
	require.NoError(t, err)
	assert.Equal(t, PhaseInProgress, f.ctl.Phase())
	assert.NotEmpty(t, f.ctl.AttemptID())

	_, err = f.ctl.Start()
	assert.ErrorIs(t, err, ErrNotInProgress)
}

func TestAdvanceGating(t *testing.T) {
	f := newFixture(t, testSection(question.KindReading, 1))
	ctx := context.Background()
	_, err := f.ctl.Start()
	require.NoError(t, err)

	require.NoError(t, f.ctl.SetAnswer("q1", question.Single("A")))
	require.NoError(t, f.ctl.SetAnswer("q2", question.Single("B")))
	assert.Equal(t, 2, f.ctl.AnsweredCount())
	assert.False(t, f.ctl.CanAdvance())

	_, err = f.ctl.Advance(ctx)
	assert.ErrorIs(t, err, ErrIncompleteAdvance)
	assert.Equal(t, PhaseInProgress, f.ctl.Phase())

	require.NoError(t, f.ctl.SetAnswer("q3", question.Single("C")))
	assert.True(t, f.ctl.CanAdvance())
}

func TestBlankAnswerDoesNotCount(t *testing.T) {
	f := newFixture(t, testSection(question.KindReading, 1))
	f.ctl.Start()
	require.NoError(t, f.ctl.SetAnswer("q1", question.Single("A")))
	require.NoError(t, f.ctl.SetAnswer("q1", question.Single("   ")))
	assert.Equal(t, 0, f.ctl.AnsweredCount())
}

func TestSetAnswer_UnknownQuestion(t *testing.T) {
	f := newFixture(t, testSection(question.KindReading, 1))
	f.ctl.Start()
	assert.ErrorIs(t, f.ctl.SetAnswer("q99", question.Single("A")), ErrUnknownQuestion)
}

func answerAll(t *testing.T, c *Controller) {
	t.Helper()
	for _, q := range c.Section().Questions {
		require.NoError(t, c.SetAnswer(q.ID, question.Single("A")))
	}
}

func TestAdvance_SavesCompletedAndRoutes(t *testing.T) {
	tests := []struct {
		kind question.Kind
		n    int
		want Route
	}{
		{question.KindReading, 1, Route{Dest: DestSection, Kind: question.KindReading, TestID: "test-1", SectionID: "section-2"}},
		{question.KindReading, 3, Route{Dest: DestResults, Kind: question.KindReading, TestID: "test-1", SectionID: "section-3"}},
		{question.KindListening, 3, Route{Dest: DestSection, Kind: question.KindListening, TestID: "test-1", SectionID: "section-4"}},
		{question.KindListening, 4, Route{Dest: DestResults, Kind: question.KindListening, TestID: "test-1", SectionID: "section-4"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+question.SectionID(tt.n), func(t *testing.T) {
			sec := testSection(tt.kind, tt.n)
			f := newFixture(t, sec)
			f.ctl.Start()
			answerAll(t, f.ctl)
			f.clk.Advance(90 * time.Second)

			route, err := f.ctl.Advance(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, route)
			assert.Equal(t, PhaseCompleted, f.ctl.Phase())

			rec := f.load(t, sec)
			require.NotNil(t, rec)
			assert.True(t, rec.Completed)
			assert.Equal(t, 90, rec.TimeSpentSeconds)
			assert.Equal(t, 3, rec.Answers.AnsweredCount(sec.Questions))

			_, err = f.ctl.Advance(context.Background())
			assert.ErrorIs(t, err, ErrNotInProgress)
		})
	}
}

func TestTimerExpiry_ForceAdvances(t *testing.T) {
	sec := testSection(question.KindReading, 2)
	f := newFixture(t, sec)
	gen, _ := f.ctl.Start()
	require.NoError(t, f.ctl.SetAnswer("q1", question.Single("A")))

	f.clk.Advance(19 * time.Minute)
	assert.False(t, f.ctl.Tick(gen, f.clk.Now()))
	rem, timed := f.ctl.Remaining()
	assert.True(t, timed)
	assert.Equal(t, time.Minute, rem)

	f.clk.Advance(time.Minute)
	require.True(t, f.ctl.Tick(gen, f.clk.Now()))

	route, err := f.ctl.Expire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "section-3", route.SectionID)

	rec := f.load(t, sec)
	require.NotNil(t, rec)
	assert.True(t, rec.Completed)
	assert.Equal(t, 1, rec.Answers.AnsweredCount(sec.Questions))
}

func TestResume_ElapsedContinuesFromStoredStart(t *testing.T) {
	sec := testSection(question.KindReading, 1)
	f := newFixture(t, sec)
	ctx := context.Background()

	prior := &progress.SectionProgress{
		Answers:   question.AnswerSet{"q1": question.Single("A")},
		StartTime: t0.Add(-120 * time.Second).UnixMilli(),
		LastSaved: t0.Add(-100 * time.Second).UnixMilli(),
		AttemptID: "attempt-1",
	}
	require.NoError(t, f.store.Save(ctx, f.ctl.Key(), prior))

	assert.Equal(t, ResumeRestored, f.ctl.Resume(ctx))
	assert.Equal(t, 120*time.Second, f.ctl.Elapsed())
	assert.True(t, f.ctl.Persisted())

	gen, err := f.ctl.Start()
	require.NoError(t, err)
	assert.Equal(t, "attempt-1", f.ctl.AttemptID())
	assert.Equal(t, 1, f.ctl.AnsweredCount())

	f.clk.Advance(time.Second)
	f.ctl.Tick(gen, f.clk.Now())
	assert.Equal(t, 121*time.Second, f.ctl.Elapsed())
}

func TestResume_CompletedRecord(t *testing.T) {
	sec := testSection(question.KindReading, 1)
	f := newFixture(t, sec)
	ctx := context.Background()

	done := progress.Fresh(t0.Add(-time.Hour))
	done.Completed = true
	require.NoError(t, f.store.Save(ctx, f.ctl.Key(), done))

	assert.Equal(t, ResumeCompleted, f.ctl.Resume(ctx))
	assert.True(t, f.ctl.AlreadyCompleted())
}

func TestResume_MalformedStartsFresh(t *testing.T) {
	sec := testSection(question.KindReading, 1)
	f := newFixture(t, sec)
	ctx := context.Background()
	require.NoError(t, f.kv.Set(ctx, "reading_progress", []byte(`{"test-1":{"section-1":{"timeSpent":5}}}`)))

	assert.Equal(t, ResumeFresh, f.ctl.Resume(ctx))
	assert.Equal(t, 0, f.ctl.AnsweredCount())
	assert.Equal(t, time.Duration(0), f.ctl.Elapsed())
}

type brokenStore struct{}

func (brokenStore) Load(context.Context, progress.Key) (*progress.SectionProgress, error) {
	return nil, &progress.StorageError{Op: "load", Key: "reading_progress", Err: errors.New("disabled")}
}

func (brokenStore) Save(context.Context, progress.Key, *progress.SectionProgress) error {
	return &progress.StorageError{Op: "save", Key: "reading_progress", Err: errors.New("disabled")}
}

func TestStorageUnavailable_SessionContinues(t *testing.T) {
	clk := clock.NewManual(t0)
	c := New(Options{Section: testSection(question.KindReading, 3), Store: brokenStore{}, Clock: clk, Logger: zerolog.Nop()})
	ctx := context.Background()

	assert.Equal(t, ResumeFresh, c.Resume(ctx))
	_, err := c.Start()
	require.NoError(t, err)
	answerAll(t, c)

	err = c.Save(ctx)
	assert.ErrorIs(t, err, progress.ErrStorageUnavailable)

	clk.Advance(10 * time.Second)
	saved, err := c.Autosaver().Poll(ctx)
	assert.True(t, saved)
	assert.Error(t, err)
	assert.Equal(t, autosave.StatusIdle, c.Autosaver().Status(clk.Now()).Status)

	route, err := c.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, DestResults, route.Dest)
}

func TestSave_WritesImmediately(t *testing.T) {
	sec := testSection(question.KindReading, 1)
	f := newFixture(t, sec)
	f.ctl.Start()
	require.NoError(t, f.ctl.SetAnswer("q2", question.Single("B")))
	f.clk.Advance(3 * time.Second)

	require.NoError(t, f.ctl.Save(context.Background()))
	rec := f.load(t, sec)
	require.NotNil(t, rec)
	assert.False(t, rec.Completed)
	assert.Equal(t, 3, rec.TimeSpentSeconds)
	assert.Equal(t, t0.UnixMilli(), rec.StartTime)
	assert.GreaterOrEqual(t, rec.LastSaved, rec.StartTime)
}

func TestAutosave_PersistsLiveAnswers(t *testing.T) {
	sec := testSection(question.KindReading, 1)
	f := newFixture(t, sec)
	ctx := context.Background()
	f.ctl.Start()
	require.NoError(t, f.ctl.SetAnswer("q1", question.Single("A")))

	for i := 0; i < 10; i++ {
		f.clk.Advance(time.Second)
		f.ctl.Autosaver().Poll(ctx)
	}
	rec := f.load(t, sec)
	require.NotNil(t, rec)
	a, ok := rec.Answers.Get("q1")
	require.True(t, ok)
	assert.Equal(t, "A", a.Value())
}

func TestDispose_StopsTicksAndAutosave(t *testing.T) {
	sec := testSection(question.KindReading, 1)
	f := newFixture(t, sec)
	gen, _ := f.ctl.Start()
	f.ctl.Dispose()

	f.clk.Advance(time.Minute)
	assert.False(t, f.ctl.Tick(gen, f.clk.Now()))
	saved, _ := f.ctl.Autosaver().Poll(context.Background())
	assert.False(t, saved)
	assert.Nil(t, f.load(t, sec))
}

func TestRecordReplay(t *testing.T) {
	sec := testSection(question.KindListening, 1)
	f := newFixture(t, sec)
	f.ctl.Start()

	n, err := f.ctl.RecordReplay()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	f.ctl.RecordReplay()
	require.NoError(t, f.ctl.Save(context.Background()))

	rec := f.load(t, sec)
	require.NotNil(t, rec)
	assert.Equal(t, 2, rec.ReplayCount)

	rf := newFixture(t, testSection(question.KindReading, 1))
	rf.ctl.Start()
	_, err = rf.ctl.RecordReplay()
	assert.Error(t, err)
}

func TestResume_AfterResetCountsFromReset(t *testing.T) {
	sec := testSection(question.KindReading, 1)
	f := newFixture(t, sec)
	ctx := context.Background()
	key := progress.Key{Kind: sec.Kind, TestID: sec.TestID, SectionID: sec.ID}

	_, err := progress.Reset(ctx, f.store, key, f.clk.Now())
	require.NoError(t, err)

	// Time on the instructions screen after a retry is part of the attempt.
	f.clk.Advance(45 * time.Second)
	c := f.controller(sec)
	require.Equal(t, ResumeRestored, c.Resume(ctx))
	_, err = c.Start()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, c.Elapsed())

	f.clk.Advance(15 * time.Second)
	require.NoError(t, c.Save(ctx))
	rec := f.load(t, sec)
	require.NotNil(t, rec)
	assert.Equal(t, 60, rec.TimeSpentSeconds)
	assert.Equal(t, t0.UnixMilli(), rec.StartTime)
}

func TestNextRoute(t *testing.T) {
	assert.Equal(t, DestSection, NextRoute(question.KindReading, "t", 2).Dest)
	assert.Equal(t, DestResults, NextRoute(question.KindReading, "t", 3).Dest)
	assert.Equal(t, "section-4", NextRoute(question.KindListening, "t", 3).SectionID)
	assert.Equal(t, DestResults, NextRoute(question.KindListening, "t", 4).Dest)
}

func TestRouteAfter(t *testing.T) {
	last := testSection(question.KindReading, 3)
	require.True(t, last.IsLast())
	assert.Equal(t, ResultsRoute(question.KindReading, last.TestID, last.ID), RouteAfter(last))

	mid := testSection(question.KindListening, 2)
	require.False(t, mid.IsLast())
	assert.Equal(t, Route{Dest: DestSection, Kind: question.KindListening, TestID: mid.TestID, SectionID: "section-3"}, RouteAfter(mid))
}
