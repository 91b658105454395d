// Package question defines IELTS question shapes, answers and test sections.
package question

import "time"

// Type enumerates the question variants found in IELTS content.
type Type string

const (
	TypeMultipleChoice              Type = "MULTIPLE_CHOICE"
	TypeTrueFalseNotGiven           Type = "TRUE_FALSE_NOT_GIVEN"
	TypeYesNoNotGiven               Type = "YES_NO_NOT_GIVEN"
	TypeSentenceCompletion          Type = "SENTENCE_COMPLETION"
	TypeListeningSentenceCompletion Type = "LISTENING_SENTENCE_COMPLETION"
	TypeMatchingHeadings            Type = "MATCHING_HEADINGS"
	TypeListeningFormCompletion     Type = "LISTENING_FORM_COMPLETION"
	TypeShortAnswer                 Type = "SHORT_ANSWER"
	TypeListeningShortAnswer        Type = "LISTENING_SHORT_ANSWER"
	TypeListeningMCQSingle          Type = "LISTENING_MCQ_SINGLE"
)

// AllTypes lists every known question type.
var AllTypes = []Type{
	TypeMultipleChoice,
	TypeTrueFalseNotGiven,
	TypeYesNoNotGiven,
	TypeSentenceCompletion,
	TypeListeningSentenceCompletion,
	TypeMatchingHeadings,
	TypeListeningFormCompletion,
	TypeShortAnswer,
	TypeListeningShortAnswer,
	TypeListeningMCQSingle,
}

// Valid reports whether t is a known question type.
func (t Type) Valid() bool {
	for _, k := range AllTypes {
		if k == t {
			return true
		}
	}
	return false
}

// IsChoice reports whether the answer is picked from a fixed list of options.
func (t Type) IsChoice() bool {
	switch t {
	case TypeMultipleChoice, TypeTrueFalseNotGiven, TypeYesNoNotGiven,
		TypeMatchingHeadings, TypeListeningMCQSingle:
		return true
	}
	return false
}

// IsForm reports whether the question has one answer per form field.
func (t Type) IsForm() bool {
	return t == TypeListeningFormCompletion
}

var (
	trueFalseOptions = []string{"TRUE", "FALSE", "NOT GIVEN"}
	yesNoOptions     = []string{"YES", "NO", "NOT GIVEN"}
)

// Question is an immutable question definition loaded from content.
type Question struct {
	ID             string   `json:"id"`
	Type           Type     `json:"type"`
	Prompt         string   `json:"prompt"`
	Options        []string `json:"options,omitempty"`
	WordLimit      int      `json:"wordLimit,omitempty"`
	CorrectAnswer  *Answer  `json:"correctAnswer,omitempty"`
	Explanation    string   `json:"explanation,omitempty"`
	Image          string   `json:"image,omitempty"`
	AudioTimestamp string   `json:"audioTimestamp,omitempty"`

	// Fields are the blank labels of a form-completion question.
	Fields []string `json:"fields,omitempty"`
}

// Choices returns the selectable options. TRUE/FALSE/NOT GIVEN and
// YES/NO/NOT GIVEN questions fall back to their fixed option lists.
func (q Question) Choices() []string {
	if len(q.Options) > 0 {
		return q.Options
	}
	switch q.Type {
	case TypeTrueFalseNotGiven:
		return trueFalseOptions
	case TypeYesNoNotGiven:
		return yesNoOptions
	}
	return nil
}

// TestSection is one timed unit of a test: a passage or recording plus its questions.
type TestSection struct {
	Kind           Kind       `json:"kind"`
	TestID         string     `json:"testId"`
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	SectionNumber  int        `json:"sectionNumber"`
	TotalQuestions int        `json:"totalQuestions"`
	Difficulty     string     `json:"difficulty,omitempty"`
	Passage        string     `json:"passage,omitempty"`
	AudioFile      string     `json:"audioFile,omitempty"`
	AudioDuration  int        `json:"audioDuration,omitempty"` // seconds
	TimeLimit      int        `json:"timeLimitMinutes,omitempty"`
	Instructions   []string   `json:"instructions,omitempty"`
	Questions      []Question `json:"questions"`
}

// TimeLimitDuration returns the section's countdown length, or 0 when the
// section is untimed. Listening sections without an explicit limit are
// bounded by the recording length.
func (s *TestSection) TimeLimitDuration() time.Duration {
	if s.TimeLimit > 0 {
		return time.Duration(s.TimeLimit) * time.Minute
	}
	if s.Kind == KindListening && s.AudioDuration > 0 {
		return time.Duration(s.AudioDuration) * time.Second
	}
	return 0
}

// Question returns the question with the given id.
func (s *TestSection) Question(id string) (Question, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// IsLast reports whether this is the final section of its test.
func (s *TestSection) IsLast() bool {
	return s.SectionNumber >= s.Kind.LastSection()
}
