// Package scoring grades answer sets against section questions.
package scoring

import (
	"time"

	"github.com/abhisek/ieltsprep/internal/question"
)

// QuestionResult is the outcome for one question.
type QuestionResult struct {
	QuestionID string
	Type       question.Type
	Prompt     string
	Given      question.Answer
	Answered   bool
	Expected   question.Answer
	Correct    bool
}

// TimeAnalysis summarizes time spent on the section.
type TimeAnalysis struct {
	TotalTime          time.Duration
	AveragePerQuestion time.Duration
}

// Breakdown is the derived score of one section. It is never persisted.
type Breakdown struct {
	Correct      int
	Incorrect    int
	Total        int
	Percentage   float64
	BandScore    float64
	TimeAnalysis TimeAnalysis
	Questions    []QuestionResult
}

// IsCorrect grades a single answer. Single answers need exact,
// case-sensitive equality; sequences need the same length and identical
// elements in each position. A missing answer, a missing key or a shape
// mismatch is incorrect.
func IsCorrect(q question.Question, given question.Answer, ok bool) bool {
	if !ok || q.CorrectAnswer == nil {
		return false
	}
	return q.CorrectAnswer.Equal(given)
}

// Score grades answers against questions. It is pure: identical inputs
// yield identical breakdowns. A nil table uses the default for kind.
func Score(questions []question.Question, answers question.AnswerSet, timeSpent time.Duration, kind question.Kind, table BandTable) Breakdown {
	if table == nil {
		table = DefaultBandTable(kind)
	}

	b := Breakdown{
		Total:     len(questions),
		Questions: make([]QuestionResult, 0, len(questions)),
	}
	for _, q := range questions {
		given, ok := answers.Get(q.ID)
		r := QuestionResult{
			QuestionID: q.ID,
			Type:       q.Type,
			Prompt:     q.Prompt,
			Given:      given,
			Answered:   ok && !given.IsEmpty(),
			Correct:    IsCorrect(q, given, ok),
		}
		if q.CorrectAnswer != nil {
			r.Expected = *q.CorrectAnswer
		}
		if r.Correct {
			b.Correct++
		} else {
			b.Incorrect++
		}
		b.Questions = append(b.Questions, r)
	}

	b.Percentage = Percentage(b.Correct, b.Total)
	b.BandScore = table.Band(b.Percentage)
	b.TimeAnalysis.TotalTime = timeSpent
	if b.Total > 0 {
		b.TimeAnalysis.AveragePerQuestion = timeSpent / time.Duration(b.Total)
	}
	return b
}
