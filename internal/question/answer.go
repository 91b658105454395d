package question

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Shape distinguishes the two answer representations.
type Shape int

const (
	ShapeSingle   Shape = iota // one string
	ShapeSequence              // ordered strings (multi-blank, form fields)
)

// Answer is either a single string or an ordered sequence of strings.
// The zero value is an empty single answer.
type Answer struct {
	shape  Shape
	single string
	seq    []string
}

// Single returns a single-string answer.
func Single(s string) Answer {
	return Answer{shape: ShapeSingle, single: s}
}

// Sequence returns an ordered multi-part answer. The slice is copied.
func Sequence(parts ...string) Answer {
	return Answer{shape: ShapeSequence, seq: slices.Clone(parts)}
}

// Shape reports which representation the answer uses.
func (a Answer) Shape() Shape { return a.shape }

// Value returns the single string. It is empty for sequence answers.
func (a Answer) Value() string { return a.single }

// Parts returns a copy of the sequence elements. It is nil for single answers.
func (a Answer) Parts() []string { return slices.Clone(a.seq) }

// Part returns element i of a sequence answer, or "" when out of range.
func (a Answer) Part(i int) string {
	if i < 0 || i >= len(a.seq) {
		return ""
	}
	return a.seq[i]
}

// WithPart returns a sequence answer with element i set to v, growing the
// sequence to length n when shorter.
func (a Answer) WithPart(i, n int, v string) Answer {
	parts := slices.Clone(a.seq)
	if len(parts) < n {
		parts = append(parts, make([]string, n-len(parts))...)
	}
	if i >= len(parts) {
		parts = append(parts, make([]string, i+1-len(parts))...)
	}
	parts[i] = v
	return Answer{shape: ShapeSequence, seq: parts}
}

// IsEmpty reports whether the answer carries no non-blank text.
func (a Answer) IsEmpty() bool {
	if a.shape == ShapeSingle {
		return strings.TrimSpace(a.single) == ""
	}
	for _, p := range a.seq {
		if strings.TrimSpace(p) != "" {
			return false
		}
	}
	return true
}

// Equal reports exact equality: same shape and identical strings in the same
// positions. No trimming or case folding is applied.
func (a Answer) Equal(b Answer) bool {
	if a.shape != b.shape {
		return false
	}
	if a.shape == ShapeSingle {
		return a.single == b.single
	}
	return slices.Equal(a.seq, b.seq)
}

// String renders the answer for display.
func (a Answer) String() string {
	if a.shape == ShapeSingle {
		return a.single
	}
	return strings.Join(a.seq, ", ")
}

// MarshalJSON encodes a single answer as a JSON string and a sequence as an array.
func (a Answer) MarshalJSON() ([]byte, error) {
	if a.shape == ShapeSequence {
		if a.seq == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.seq)
	}
	return json.Marshal(a.single)
}

// UnmarshalJSON accepts a string, an array of strings or null.
func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = Single("")
		return nil
	case len(data) > 0 && data[0] == '[':
		var parts []string
		if err := json.Unmarshal(data, &parts); err != nil {
			return fmt.Errorf("decode answer sequence: %w", err)
		}
		*a = Answer{shape: ShapeSequence, seq: parts}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode answer: %w", err)
	}
	*a = Single(s)
	return nil
}

// AnswerSet maps question IDs to the learner's answers.
type AnswerSet map[string]Answer

// Set upserts the answer for id.
func (s AnswerSet) Set(id string, a Answer) {
	s[id] = a
}

// Get returns the answer for id and whether one was recorded.
func (s AnswerSet) Get(id string) (Answer, bool) {
	a, ok := s[id]
	return a, ok
}

// AnsweredCount counts the questions that have a non-empty answer.
func (s AnswerSet) AnsweredCount(questions []Question) int {
	n := 0
	for _, q := range questions {
		if a, ok := s[q.ID]; ok && !a.IsEmpty() {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the set.
func (s AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(s))
	for id, a := range s {
		out[id] = Answer{shape: a.shape, single: a.single, seq: slices.Clone(a.seq)}
	}
	return out
}
