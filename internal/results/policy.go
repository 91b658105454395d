package results

import "time"

// Level is a coarse skill rating shown in the results view.
type Level string

const (
	LevelExcellent        Level = "Excellent"
	LevelGood             Level = "Good"
	LevelFair             Level = "Fair"
	LevelNeedsImprovement Level = "Needs Improvement"
)

// AccuracyBucket assigns Level to every percentage at or above MinPercentage.
type AccuracyBucket struct {
	MinPercentage float64
	Level         Level
}

// Policy holds the presentation heuristics for skill levels. None of the
// values are normative; any monotonic bucketing works.
type Policy struct {
	// Accuracy buckets ordered by descending MinPercentage.
	Accuracy []AccuracyBucket

	// Listening: replays at or under these counts rate Excellent / Good.
	ReplayExcellent int
	ReplayGood      int

	// Reading: average time per question at or under these rate Excellent / Good.
	PaceExcellent time.Duration
	PaceGood      time.Duration
}

// DefaultPolicy returns the built-in thresholds.
func DefaultPolicy() Policy {
	return Policy{
		Accuracy: []AccuracyBucket{
			{80, LevelExcellent},
			{60, LevelGood},
			{40, LevelFair},
			{0, LevelNeedsImprovement},
		},
		ReplayExcellent: 2,
		ReplayGood:      3,
		PaceExcellent:   90 * time.Second,
		PaceGood:        120 * time.Second,
	}
}

// AccuracyLevel rates a percentage.
func (p Policy) AccuracyLevel(pct float64) Level {
	for _, b := range p.Accuracy {
		if pct >= b.MinPercentage {
			return b.Level
		}
	}
	return LevelNeedsImprovement
}

// ReplayLevel rates instruction-following by the number of replays.
func (p Policy) ReplayLevel(replays int) Level {
	switch {
	case replays <= p.ReplayExcellent:
		return LevelExcellent
	case replays <= p.ReplayGood:
		return LevelGood
	}
	return LevelNeedsImprovement
}

// PaceLevel rates the average time spent per question.
func (p Policy) PaceLevel(avg time.Duration) Level {
	switch {
	case avg <= p.PaceExcellent:
		return LevelExcellent
	case avg <= p.PaceGood:
		return LevelGood
	}
	return LevelNeedsImprovement
}
