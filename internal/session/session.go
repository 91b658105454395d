// Package session runs one attempt at one test section.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhisek/ieltsprep/internal/autosave"
	"github.com/abhisek/ieltsprep/internal/clock"
	"github.com/abhisek/ieltsprep/internal/progress"
	"github.com/abhisek/ieltsprep/internal/question"
)

var (
	// ErrIncompleteAdvance is returned by Advance while a question is unanswered.
	ErrIncompleteAdvance = errors.New("every question needs an answer before advancing")

	// ErrNotInProgress is returned by operations that need a running attempt.
	ErrNotInProgress = errors.New("section is not in progress")

	// ErrUnknownQuestion is returned by SetAnswer for IDs outside the section.
	ErrUnknownQuestion = errors.New("unknown question")
)

// Phase is the controller's lifecycle state.
type Phase int

const (
	PhaseInstructions Phase = iota // shown once per mount
	PhaseInProgress                // answering, clock running
	PhaseCompleted                 // saved as completed, routed onward
)

func (p Phase) String() string {
	switch p {
	case PhaseInstructions:
		return "instructions"
	case PhaseInProgress:
		return "in progress"
	case PhaseCompleted:
		return "completed"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// ResumeResult describes what Resume found in the store.
type ResumeResult int

const (
	ResumeFresh     ResumeResult = iota // no usable record
	ResumeRestored                      // incomplete attempt restored
	ResumeCompleted                     // section already finished
)

// Options configures a Controller.
type Options struct {
	Section  *question.TestSection
	Store    progress.Store
	Clock    clock.Clock
	Logger   zerolog.Logger
	Autosave autosave.Config
}

// Controller owns the lifecycle of one attempt at one section.
type Controller struct {
	section *question.TestSection
	store   progress.Store
	clock   clock.Clock
	logger  zerolog.Logger
	key     progress.Key

	phase     Phase
	answers   question.AnswerSet
	attemptID string
	replays   int

	sclock *SessionClock
	saver  *autosave.Saver

	resumed          bool
	alreadyCompleted bool
}

// New returns a controller in PhaseInstructions with an empty answer set.
func New(opts Options) *Controller {
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real{}
	}
	s := opts.Section
	c := &Controller{
		section: s,
		store:   opts.Store,
		clock:   clk,
		logger: opts.Logger.With().
			Str("kind", string(s.Kind)).
			Str("test_id", s.TestID).
			Str("section_id", s.ID).
			Logger(),
		key:     progress.Key{Kind: s.Kind, TestID: s.TestID, SectionID: s.ID},
		phase:   PhaseInstructions,
		answers: question.AnswerSet{},
		sclock:  NewSessionClock(clk, s.TimeLimitDuration()),
	}
	c.saver = autosave.New(opts.Store, c.key, c, clk, opts.Autosave, c.logger)
	return c
}

// Resume loads prior progress. An incomplete record restores answers, the
// attempt ID, the replay count and the original start time. A completed
// record marks the controller AlreadyCompleted. Missing, malformed or
// unreadable records start fresh.
func (c *Controller) Resume(ctx context.Context) ResumeResult {
	rec, err := c.store.Load(ctx, c.key)
	if err != nil {
		c.logger.Warn().Err(err).Msg("load progress failed, starting fresh")
		return ResumeFresh
	}
	if rec == nil {
		return ResumeFresh
	}
	if rec.Completed {
		c.alreadyCompleted = true
		return ResumeCompleted
	}

	c.resumed = true
	c.answers = rec.Answers.Clone()
	c.attemptID = rec.AttemptID
	c.replays = rec.ReplayCount
	if rec.StartTime > 0 {
		c.sclock.Restore(rec.StartedAt())
	}
	return ResumeRestored
}

// Persisted reports whether a record for this attempt exists in the store.
func (c *Controller) Persisted() bool {
	return c.resumed || c.saver.Saves() > 0
}

// AlreadyCompleted reports whether Resume found a finished attempt.
func (c *Controller) AlreadyCompleted() bool { return c.alreadyCompleted }

// Start leaves the instructions and begins (or continues) the attempt.
// It returns the tick generation for the session clock.
func (c *Controller) Start() (int, error) {
	if c.phase != PhaseInstructions {
		return 0, fmt.Errorf("start: %w", ErrNotInProgress)
	}
	if c.attemptID == "" {
		c.attemptID = progress.NewAttemptID()
	}
	gen := c.sclock.Start()
	c.saver.Start(c.clock.Now())
	c.phase = PhaseInProgress
	c.logger.Debug().Str("attempt_id", c.attemptID).Msg("section started")
	return gen, nil
}

// SetAnswer upserts the answer for question id.
func (c *Controller) SetAnswer(id string, a question.Answer) error {
	if c.phase != PhaseInProgress {
		return ErrNotInProgress
	}
	if _, ok := c.section.Question(id); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownQuestion, id)
	}
	c.answers.Set(id, a)
	return nil
}

// Answer returns the current answer for id.
func (c *Controller) Answer(id string) (question.Answer, bool) {
	return c.answers.Get(id)
}

// Answers returns a copy of the live answer set.
func (c *Controller) Answers() question.AnswerSet { return c.answers.Clone() }

// AnsweredCount counts questions with a non-empty answer.
func (c *Controller) AnsweredCount() int {
	return c.answers.AnsweredCount(c.section.Questions)
}

// CanAdvance reports whether every question has an answer.
func (c *Controller) CanAdvance() bool {
	return c.phase == PhaseInProgress && c.AnsweredCount() == len(c.section.Questions)
}

// Tick recomputes elapsed time. It reports whether a timed section has
// just run out, in which case the caller should Expire.
func (c *Controller) Tick(gen int, now time.Time) bool {
	if !c.sclock.Tick(gen, now) {
		return false
	}
	return c.phase == PhaseInProgress && c.sclock.Expired()
}

// Save writes the current state immediately. Failures are logged and
// returned; the attempt continues in memory.
func (c *Controller) Save(ctx context.Context) error {
	if c.phase != PhaseInProgress {
		return ErrNotInProgress
	}
	if err := c.saver.Flush(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("save failed")
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// Advance finishes the section once every question is answered.
func (c *Controller) Advance(ctx context.Context) (Route, error) {
	if c.phase != PhaseInProgress {
		return Route{}, ErrNotInProgress
	}
	if !c.CanAdvance() {
		return Route{}, ErrIncompleteAdvance
	}
	return c.complete(ctx, "advance"), nil
}

// Expire finishes the section regardless of unanswered questions.
func (c *Controller) Expire(ctx context.Context) (Route, error) {
	if c.phase != PhaseInProgress {
		return Route{}, ErrNotInProgress
	}
	return c.complete(ctx, "expired"), nil
}

func (c *Controller) complete(ctx context.Context, reason string) Route {
	now := c.clock.Now()
	c.sclock.Tick(c.sclock.Generation(), now)
	c.saver.Stop()
	c.sclock.Stop()

	rec := c.Snapshot(now)
	rec.Completed = true
	c.phase = PhaseCompleted

	if err := c.store.Save(ctx, c.key, rec); err != nil {
		c.logger.Error().Err(err).Str("reason", reason).Msg("save completed section failed")
	} else {
		c.logger.Info().
			Str("reason", reason).
			Int("answered", c.AnsweredCount()).
			Int("time_spent", rec.TimeSpentSeconds).
			Msg("section completed")
	}
	return RouteAfter(c.section)
}

// RecordReplay counts one replay of the recording and returns the total.
func (c *Controller) RecordReplay() (int, error) {
	if c.phase != PhaseInProgress {
		return c.replays, ErrNotInProgress
	}
	if c.section.Kind != question.KindListening {
		return c.replays, fmt.Errorf("replay: %s sections have no recording", c.section.Kind)
	}
	c.replays++
	return c.replays, nil
}

// Snapshot builds the record to persist at now. It implements autosave.Source.
func (c *Controller) Snapshot(now time.Time) *progress.SectionProgress {
	start := c.sclock.StartTime()
	if start.IsZero() {
		start = now
	}
	if now.Before(start) {
		now = start
	}
	return &progress.SectionProgress{
		Answers:          c.answers.Clone(),
		TimeSpentSeconds: int(now.Sub(start) / time.Second),
		Completed:        c.phase == PhaseCompleted,
		StartTime:        start.UnixMilli(),
		LastSaved:        now.UnixMilli(),
		AttemptID:        c.attemptID,
		ReplayCount:      c.replays,
	}
}

// Dispose stops the clock and the autosaver. Call it when the view unmounts.
func (c *Controller) Dispose() {
	c.saver.Stop()
	c.sclock.Dispose()
}

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() Phase { return c.phase }

// Section returns the section being attempted.
func (c *Controller) Section() *question.TestSection { return c.section }

// Key returns the progress key of this section.
func (c *Controller) Key() progress.Key { return c.key }

// Clock returns the session clock.
func (c *Controller) Clock() *SessionClock { return c.sclock }

// Autosaver returns the controller's autosaver.
func (c *Controller) Autosaver() *autosave.Saver { return c.saver }

// Elapsed returns the elapsed time as of the last tick.
func (c *Controller) Elapsed() time.Duration { return c.sclock.Elapsed() }

// Remaining returns the countdown and whether the section is timed.
func (c *Controller) Remaining() (time.Duration, bool) { return c.sclock.Remaining() }

// TimeExpired reports whether the countdown has reached zero.
func (c *Controller) TimeExpired() bool { return c.sclock.Expired() }

// Replays returns the replay count.
func (c *Controller) Replays() int { return c.replays }

// AttemptID returns the attempt identifier (empty before Start on a fresh attempt).
func (c *Controller) AttemptID() string { return c.attemptID }
