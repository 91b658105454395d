package autosave

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhisek/ieltsprep/internal/clock"
	"github.com/abhisek/ieltsprep/internal/progress"
	"github.com/abhisek/ieltsprep/internal/question"
)

var start = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type recordingStore struct {
	saves []*progress.SectionProgress
	err   error
}

func (r *recordingStore) Load(context.Context, progress.Key) (*progress.SectionProgress, error) {
	return nil, nil
}

func (r *recordingStore) Save(_ context.Context, _ progress.Key, rec *progress.SectionProgress) error {
	if r.err != nil {
		return r.err
	}
	r.saves = append(r.saves, rec)
	return nil
}

func snapshotAt(now time.Time) *progress.SectionProgress {
	return &progress.SectionProgress{
		Answers:          question.AnswerSet{},
		StartTime:        start.UnixMilli(),
		LastSaved:        now.UnixMilli(),
		TimeSpentSeconds: int(now.Sub(start).Seconds()),
	}
}

func newTestSaver(st progress.Store, clk clock.Clock) *Saver {
	key := progress.Key{Kind: question.KindReading, TestID: "test-1", SectionID: "section-1"}
	return New(st, key, SourceFunc(snapshotAt), clk, Config{}, zerolog.Nop())
}

func TestCadence_TwoSavesIn25Seconds(t *testing.T) {
	clk := clock.NewManual(start)
	st := &recordingStore{}
	s := newTestSaver(st, clk)
	s.Start(clk.Now())

	for i := 0; i < 25; i++ {
		clk.Advance(time.Second)
		if _, err := s.Poll(context.Background()); err != nil {
			t.Fatalf("poll: %v", err)
		}
	}

	if len(st.saves) != 2 {
		t.Fatalf("saves = %d, want 2", len(st.saves))
	}
	if got := st.saves[0].TimeSpentSeconds; got != 10 {
		t.Errorf("first save timeSpent = %d, want 10", got)
	}
	if got := st.saves[1].TimeSpentSeconds; got != 20 {
		t.Errorf("second save timeSpent = %d, want 20", got)
	}
}

func TestNotActiveUntilStarted(t *testing.T) {
	clk := clock.NewManual(start)
	st := &recordingStore{}
	s := newTestSaver(st, clk)

	clk.Advance(time.Minute)
	saved, _ := s.Poll(context.Background())
	if saved || len(st.saves) != 0 {
		t.Error("saver wrote before Start")
	}
}

func TestStop_HaltsSaves(t *testing.T) {
	clk := clock.NewManual(start)
	st := &recordingStore{}
	s := newTestSaver(st, clk)
	s.Start(clk.Now())
	s.Stop()

	clk.Advance(30 * time.Second)
	s.Poll(context.Background())
	if len(st.saves) != 0 {
		t.Errorf("saves after Stop = %d, want 0", len(st.saves))
	}
}

func TestBegin_RefusesWhileSaving(t *testing.T) {
	clk := clock.NewManual(start)
	s := newTestSaver(&recordingStore{}, clk)
	s.Start(clk.Now())

	clk.Advance(10 * time.Second)
	if _, ok := s.Begin(clk.Now()); !ok {
		t.Fatal("expected first Begin to succeed")
	}
	if got := s.Status(clk.Now()).Status; got != StatusSaving {
		t.Errorf("status = %v, want saving", got)
	}

	clk.Advance(15 * time.Second)
	if _, ok := s.Begin(clk.Now()); ok {
		t.Error("Begin succeeded while a save was outstanding")
	}

	s.Complete(clk.Now(), nil)
	if _, ok := s.Begin(clk.Now()); !ok {
		t.Error("expected Begin to succeed after Complete")
	}
}

func TestStatus_JustSavedThenIdle(t *testing.T) {
	clk := clock.NewManual(start)
	s := newTestSaver(&recordingStore{}, clk)
	s.Start(clk.Now())

	if st := s.Status(clk.Now()); st.Status != StatusIdle || st.EverSaved {
		t.Fatalf("initial state = %+v", st)
	}

	clk.Advance(10 * time.Second)
	s.Poll(context.Background())
	if got := s.Status(clk.Now()).Status; got != StatusJustSaved {
		t.Errorf("status right after save = %v, want just saved", got)
	}

	clk.Advance(3 * time.Second)
	st := s.Status(clk.Now())
	if st.Status != StatusIdle {
		t.Errorf("status 3s after save = %v, want idle", st.Status)
	}
	if st.SinceLastSave != 3*time.Second {
		t.Errorf("SinceLastSave = %v, want 3s", st.SinceLastSave)
	}
}

func TestFailure_StaysIdleAndRetries(t *testing.T) {
	clk := clock.NewManual(start)
	st := &recordingStore{err: errors.New("disk full")}
	s := newTestSaver(st, clk)
	s.Start(clk.Now())

	clk.Advance(10 * time.Second)
	saved, err := s.Poll(context.Background())
	if !saved || err == nil {
		t.Fatalf("Poll = %v, %v; want attempted with error", saved, err)
	}
	state := s.Status(clk.Now())
	if state.Status != StatusIdle || state.EverSaved {
		t.Errorf("state after failure = %+v", state)
	}
	if s.Failures() != 1 {
		t.Errorf("Failures() = %d, want 1", s.Failures())
	}

	st.err = nil
	clk.Advance(10 * time.Second)
	s.Poll(context.Background())
	if len(st.saves) != 1 {
		t.Errorf("saves after recovery = %d, want 1", len(st.saves))
	}
}

func TestFlush_DoesNotShiftCadence(t *testing.T) {
	clk := clock.NewManual(start)
	st := &recordingStore{}
	s := newTestSaver(st, clk)
	s.Start(clk.Now())

	clk.Advance(4 * time.Second)
	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if got := s.Until(clk.Now()); got != 6*time.Second {
		t.Errorf("Until = %v, want 6s", got)
	}
	clk.Advance(6 * time.Second)
	s.Poll(context.Background())
	if len(st.saves) != 2 {
		t.Errorf("saves = %d, want 2", len(st.saves))
	}
}
