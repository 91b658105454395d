package results

import (
	"github.com/abhisek/ieltsprep/internal/progress"
	"github.com/abhisek/ieltsprep/internal/question"
	"github.com/abhisek/ieltsprep/internal/scoring"
)

// SectionStatus is the state of one section within a test overview.
type SectionStatus int

const (
	StatusNotStarted SectionStatus = iota
	StatusInProgress
	StatusCompleted
)

func (s SectionStatus) String() string {
	switch s {
	case StatusInProgress:
		return "in progress"
	case StatusCompleted:
		return "completed"
	}
	return "not started"
}

// SectionSummary pairs a section with its report, when it has one.
type SectionSummary struct {
	SectionID string
	Number    int
	Title     string
	Status    SectionStatus
	Report    *Report
}

// TestOverview aggregates every section of one test.
type TestOverview struct {
	Kind     question.Kind
	TestID   string
	Sections []SectionSummary

	// Completed counts finished sections.
	Completed int

	// Correct and Total sum over completed sections.
	Correct int
	Total   int

	// OverallBand is the mean of the completed sections' bands rounded to
	// the nearest half band. Zero until a section is completed.
	OverallBand float64
}

// Finished reports whether every section has been completed.
func (o TestOverview) Finished() bool {
	return len(o.Sections) > 0 && o.Completed == len(o.Sections)
}

// NextSection returns the first section not yet completed.
func (o TestOverview) NextSection() (SectionSummary, bool) {
	for _, s := range o.Sections {
		if s.Status != StatusCompleted {
			return s, true
		}
	}
	return SectionSummary{}, false
}

// Overview builds the test overview from the sections of a test and their
// stored records, keyed by section ID.
func Overview(kind question.Kind, testID string, sections []*question.TestSection, records map[string]*progress.SectionProgress, policy Policy) TestOverview {
	o := TestOverview{Kind: kind, TestID: testID}
	var bandSum float64
	for _, sec := range sections {
		sum := SectionSummary{SectionID: sec.ID, Number: sec.SectionNumber, Title: sec.Title}
		rec := records[sec.ID]
		if rec != nil {
			r, err := Build(sec, rec, policy, nil)
			if err == nil {
				sum.Report = &r
			}
			sum.Status = StatusInProgress
			if rec.Completed {
				sum.Status = StatusCompleted
				o.Completed++
				o.Correct += r.Breakdown.Correct
				o.Total += r.Breakdown.Total
				bandSum += r.Breakdown.BandScore
			}
		}
		o.Sections = append(o.Sections, sum)
	}
	if o.Completed > 0 {
		o.OverallBand = scoring.RoundHalfBand(bandSum / float64(o.Completed))
	}
	return o
}
