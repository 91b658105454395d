// Package results turns stored attempts into score reports and drives the
// actions offered from the results view.
package results

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/ieltsprep/internal/progress"
	"github.com/abhisek/ieltsprep/internal/question"
	"github.com/abhisek/ieltsprep/internal/scoring"
	"github.com/abhisek/ieltsprep/internal/session"
)

// ErrNoProgress is returned by Build when the section has never been attempted.
var ErrNoProgress = errors.New("no progress recorded for section")

// Skill is one row of the skill analysis.
type Skill struct {
	Name   string
	Level  Level
	Detail string
}

// Report is the results view of one section attempt.
type Report struct {
	Kind          question.Kind
	TestID        string
	SectionID     string
	SectionNumber int
	SectionTitle  string
	AttemptID     string
	Completed     bool
	ReplayCount   int
	Breakdown     scoring.Breakdown
	Skills        []Skill
}

// Correct returns the number of correct answers.
func (r Report) Correct() int { return r.Breakdown.Correct }

// Total returns the number of questions.
func (r Report) Total() int { return r.Breakdown.Total }

// Percentage returns the percentage score.
func (r Report) Percentage() float64 { return r.Breakdown.Percentage }

// BandScore returns the band for the section.
func (r Report) BandScore() float64 { return r.Breakdown.BandScore }

// TimeSpent returns the total time spent.
func (r Report) TimeSpent() time.Duration { return r.Breakdown.TimeAnalysis.TotalTime }

// Key returns the progress key of the reported section.
func (r Report) Key() progress.Key {
	return progress.Key{Kind: r.Kind, TestID: r.TestID, SectionID: r.SectionID}
}

// Build scores rec against sec. A nil table uses the default for the kind.
func Build(sec *question.TestSection, rec *progress.SectionProgress, policy Policy, table scoring.BandTable) (Report, error) {
	if rec == nil {
		return Report{}, fmt.Errorf("%w: %s/%s/%s", ErrNoProgress, sec.Kind, sec.TestID, sec.ID)
	}

	timeSpent := time.Duration(rec.TimeSpentSeconds) * time.Second
	b := scoring.Score(sec.Questions, rec.Answers, timeSpent, sec.Kind, table)

	r := Report{
		Kind:          sec.Kind,
		TestID:        sec.TestID,
		SectionID:     sec.ID,
		SectionNumber: sec.SectionNumber,
		SectionTitle:  sec.Title,
		AttemptID:     rec.AttemptID,
		Completed:     rec.Completed,
		ReplayCount:   rec.ReplayCount,
		Breakdown:     b,
	}
	r.Skills = analyze(r, policy)
	return r, nil
}

func analyze(r Report, p Policy) []Skill {
	b := r.Breakdown
	skills := []Skill{{
		Name:   "Accuracy",
		Level:  p.AccuracyLevel(b.Percentage),
		Detail: fmt.Sprintf("%d of %d correct", b.Correct, b.Total),
	}}
	switch r.Kind {
	case question.KindListening:
		skills = append(skills, Skill{
			Name:   "Instruction following",
			Level:  p.ReplayLevel(r.ReplayCount),
			Detail: fmt.Sprintf("%d replays", r.ReplayCount),
		})
	case question.KindReading:
		avg := b.TimeAnalysis.AveragePerQuestion
		skills = append(skills, Skill{
			Name:   "Time management",
			Level:  p.PaceLevel(avg),
			Detail: fmt.Sprintf("%s per question", avg.Round(time.Second)),
		})
	}
	return skills
}

// Retry resets the section's progress and routes back to it. The fresh
// record's start time is now, so the retried attempt's clock runs from the
// reset, including time spent reading the instructions.
func Retry(ctx context.Context, store progress.Store, key progress.Key, now time.Time) (session.Route, error) {
	if _, err := progress.Reset(ctx, store, key, now); err != nil {
		return session.Route{}, err
	}
	return session.Route{Dest: session.DestSection, Kind: key.Kind, TestID: key.TestID, SectionID: key.SectionID}, nil
}

// Next routes to the following section, or back to the listing after the
// last section of the test.
func Next(r Report) session.Route {
	route := session.NextRoute(r.Kind, r.TestID, r.SectionNumber)
	if route.Dest == session.DestResults {
		return session.ListingRoute(r.Kind)
	}
	return route
}

// FormatBand renders a band with one decimal, as IELTS reports do.
func FormatBand(b float64) string {
	return fmt.Sprintf("%.1f", b)
}

// ShareText returns a one-line summary suitable for pasting elsewhere.
func ShareText(r Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "I scored band %s on IELTS %s %s, Section %d",
		FormatBand(r.Breakdown.BandScore), r.Kind.DisplayName(), testLabel(r.TestID), r.SectionNumber)
	fmt.Fprintf(&sb, " (%d/%d correct, %.0f%%)", r.Breakdown.Correct, r.Breakdown.Total, r.Breakdown.Percentage)
	if r.Kind == question.KindListening {
		fmt.Fprintf(&sb, " with %d replays", r.ReplayCount)
	}
	sb.WriteString(".")
	return sb.String()
}

// testLabel turns "test-1" into "Test 1".
func testLabel(id string) string {
	if n, ok := strings.CutPrefix(id, "test-"); ok {
		return "Test " + n
	}
	return id
}
