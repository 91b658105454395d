package question

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the test module a section belongs to.
type Kind string

const (
	KindReading   Kind = "reading"
	KindListening Kind = "listening"
)

// Kinds lists every supported test kind in display order.
var Kinds = []Kind{KindReading, KindListening}

// ParseKind converts a user-supplied string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindReading:
		return KindReading, nil
	case KindListening:
		return KindListening, nil
	}
	return "", fmt.Errorf("unknown test kind %q (want reading or listening)", s)
}

// DisplayName returns the capitalized name shown in the UI.
func (k Kind) DisplayName() string {
	switch k {
	case KindReading:
		return "Reading"
	case KindListening:
		return "Listening"
	}
	return string(k)
}

// LastSection is the number of the final section in a test of this kind.
// Reading tests have 3 passages, listening tests 4 recordings.
func (k Kind) LastSection() int {
	if k == KindListening {
		return 4
	}
	return 3
}

const sectionPrefix = "section-"

// SectionID builds the canonical section identifier for section n.
func SectionID(n int) string {
	return sectionPrefix + strconv.Itoa(n)
}

// SectionNumber extracts N from a "section-<N>" identifier.
func SectionNumber(id string) (int, error) {
	rest, ok := strings.CutPrefix(id, sectionPrefix)
	if !ok {
		return 0, fmt.Errorf("section id %q: missing %q prefix", id, sectionPrefix)
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("section id %q: invalid section number", id)
	}
	return n, nil
}
