package session

import (
	"time"

	"github.com/abhisek/ieltsprep/internal/clock"
)

// SessionClock owns the attempt's start time and the state of its tick
// timer. Elapsed time is always derived from the start time, so a resumed
// attempt keeps counting the time the learner was away.
type SessionClock struct {
	clock   clock.Clock
	limit   time.Duration
	start   time.Time
	elapsed time.Duration
	running bool

	// generation invalidates ticks scheduled before the last Start or Stop.
	generation int
}

// NewSessionClock returns a stopped clock with the given countdown limit
// (0 for untimed sections).
func NewSessionClock(clk clock.Clock, limit time.Duration) *SessionClock {
	return &SessionClock{clock: clk, limit: limit}
}

// Restore sets the start time of a resumed attempt and recomputes elapsed.
func (c *SessionClock) Restore(start time.Time) {
	c.start = start
	c.recompute(c.clock.Now())
}

// Start begins ticking. A clock without a restored start time starts now.
// It returns the generation that valid ticks must carry.
func (c *SessionClock) Start() int {
	now := c.clock.Now()
	if c.start.IsZero() {
		c.start = now
	}
	c.running = true
	c.generation++
	c.recompute(now)
	return c.generation
}

// Tick recomputes elapsed time at now. Ticks from a stale generation are
// ignored and report false.
func (c *SessionClock) Tick(gen int, now time.Time) bool {
	if !c.running || gen != c.generation {
		return false
	}
	c.recompute(now)
	return true
}

func (c *SessionClock) recompute(now time.Time) {
	if c.start.IsZero() {
		c.elapsed = 0
		return
	}
	c.elapsed = max(now.Sub(c.start), 0)
}

// Stop halts ticking and invalidates outstanding ticks.
func (c *SessionClock) Stop() {
	c.running = false
	c.generation++
}

// Dispose tears the clock down on unmount.
func (c *SessionClock) Dispose() { c.Stop() }

// StartTime returns the attempt's start time (zero before Start or Restore).
func (c *SessionClock) StartTime() time.Time { return c.start }

// Running reports whether ticks are accepted.
func (c *SessionClock) Running() bool { return c.running }

// Generation returns the current tick generation.
func (c *SessionClock) Generation() int { return c.generation }

// Elapsed returns the elapsed time as of the last recompute.
func (c *SessionClock) Elapsed() time.Duration { return c.elapsed }

// Limit returns the countdown length, 0 when untimed.
func (c *SessionClock) Limit() time.Duration { return c.limit }

// Remaining returns the time left and whether the section is timed.
func (c *SessionClock) Remaining() (time.Duration, bool) {
	if c.limit <= 0 {
		return 0, false
	}
	return max(c.limit-c.elapsed, 0), true
}

// Expired reports whether a timed section has run out.
func (c *SessionClock) Expired() bool {
	return c.limit > 0 && c.elapsed >= c.limit
}
