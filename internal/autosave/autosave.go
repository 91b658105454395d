// Package autosave periodically flushes a live session into the progress store.
//
// The Saver is cooperative: it owns no goroutines or timers. Callers drive it
// from their own tick source (a tea.Tick in the TUI, a manual clock in tests)
// by calling Poll, or Begin and Complete when the write runs elsewhere.
package autosave

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhisek/ieltsprep/internal/clock"
	"github.com/abhisek/ieltsprep/internal/progress"
)

const (
	DefaultInterval     = 10 * time.Second
	DefaultJustSavedFor = 2 * time.Second
)

// Status is the save indicator shown to the learner.
type Status int

const (
	StatusIdle      Status = iota // waiting for the next tick
	StatusSaving                  // write in flight
	StatusJustSaved               // briefly after a successful write
)

func (s Status) String() string {
	switch s {
	case StatusSaving:
		return "saving"
	case StatusJustSaved:
		return "just saved"
	}
	return "idle"
}

// State is a point-in-time view of the save indicator.
type State struct {
	Status Status

	// SinceLastSave is the time since the last successful write.
	// Only meaningful when EverSaved is true.
	SinceLastSave time.Duration
	EverSaved     bool
}

// Source supplies the record to write, stamped with now.
type Source interface {
	Snapshot(now time.Time) *progress.SectionProgress
}

// SourceFunc adapts a function to Source.
type SourceFunc func(now time.Time) *progress.SectionProgress

func (f SourceFunc) Snapshot(now time.Time) *progress.SectionProgress { return f(now) }

// Config controls save cadence.
type Config struct {
	Interval     time.Duration
	JustSavedFor time.Duration
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.JustSavedFor <= 0 {
		c.JustSavedFor = DefaultJustSavedFor
	}
	return c
}

// Saver writes Source snapshots to a progress.Store on a fixed interval.
type Saver struct {
	store  progress.Store
	key    progress.Key
	source Source
	clock  clock.Clock
	cfg    Config
	logger zerolog.Logger

	active         bool
	saving         bool
	next           time.Time
	lastSaved      time.Time
	justSavedUntil time.Time

	saves    int
	failures int
}

// New returns an inactive Saver. Call Start to arm it.
func New(store progress.Store, key progress.Key, src Source, clk clock.Clock, cfg Config, logger zerolog.Logger) *Saver {
	return &Saver{
		store:  store,
		key:    key,
		source: src,
		clock:  clk,
		cfg:    cfg.withDefaults(),
		logger: logger,
	}
}

// Interval returns the configured save interval.
func (s *Saver) Interval() time.Duration { return s.cfg.Interval }

// Start arms the saver; the first save is due one interval after now.
func (s *Saver) Start(now time.Time) {
	s.active = true
	s.next = now.Add(s.cfg.Interval)
}

// Stop disarms the saver. A write already in flight may still Complete.
func (s *Saver) Stop() {
	s.active = false
}

// Active reports whether the saver is armed.
func (s *Saver) Active() bool { return s.active }

// Due reports whether a save should start at now.
func (s *Saver) Due(now time.Time) bool {
	return s.active && !s.saving && !now.Before(s.next)
}

// Until returns how long until the next save is due, never negative.
func (s *Saver) Until(now time.Time) time.Duration {
	if d := s.next.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Begin takes a snapshot and marks a write in flight. It returns false
// when no save is due or one is already outstanding.
func (s *Saver) Begin(now time.Time) (*progress.SectionProgress, bool) {
	if !s.Due(now) {
		return nil, false
	}
	for !s.next.After(now) {
		s.next = s.next.Add(s.cfg.Interval)
	}
	s.saving = true
	return s.source.Snapshot(now), true
}

// BeginFlush is Begin for an explicit save: it ignores the interval but
// still refuses while a write is outstanding. The cadence is unchanged.
func (s *Saver) BeginFlush(now time.Time) (*progress.SectionProgress, bool) {
	if s.saving {
		return nil, false
	}
	s.saving = true
	return s.source.Snapshot(now), true
}

// Complete settles the write started by Begin or BeginFlush. A failure is logged and
// leaves the last-saved time untouched; the next tick retries.
func (s *Saver) Complete(now time.Time, err error) {
	s.saving = false
	if err != nil {
		s.failures++
		s.logger.Warn().Err(err).
			Str("kind", string(s.key.Kind)).
			Str("test_id", s.key.TestID).
			Str("section_id", s.key.SectionID).
			Msg("autosave failed")
		return
	}
	s.saves++
	s.lastSaved = now
	s.justSavedUntil = now.Add(s.cfg.JustSavedFor)
}

// Poll runs one synchronous save when due. It reports whether a write was
// attempted and the write's error.
func (s *Saver) Poll(ctx context.Context) (bool, error) {
	now := s.clock.Now()
	rec, ok := s.Begin(now)
	if !ok {
		return false, nil
	}
	err := s.store.Save(ctx, s.key, rec)
	s.Complete(s.clock.Now(), err)
	return true, err
}

// Flush writes immediately, outside the interval. The cadence is unchanged.
func (s *Saver) Flush(ctx context.Context) error {
	now := s.clock.Now()
	err := s.store.Save(ctx, s.key, s.source.Snapshot(now))
	if err != nil {
		s.failures++
		return err
	}
	s.saves++
	s.lastSaved = now
	s.justSavedUntil = now.Add(s.cfg.JustSavedFor)
	return nil
}

// Status reports the indicator state at now.
func (s *Saver) Status(now time.Time) State {
	st := State{EverSaved: !s.lastSaved.IsZero()}
	if st.EverSaved {
		st.SinceLastSave = now.Sub(s.lastSaved)
	}
	switch {
	case s.saving:
		st.Status = StatusSaving
	case st.EverSaved && now.Before(s.justSavedUntil):
		st.Status = StatusJustSaved
	default:
		st.Status = StatusIdle
	}
	return st
}

// Saves returns the number of successful writes.
func (s *Saver) Saves() int { return s.saves }

// Failures returns the number of failed writes.
func (s *Saver) Failures() int { return s.failures }
