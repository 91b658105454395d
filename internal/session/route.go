package session

import (
	"fmt"

	"github.com/abhisek/ieltsprep/internal/question"
)

// Destination is where the router should go next.
type Destination int

const (
	DestSection Destination = iota // another section of the same test
	DestResults                    // the results view
	DestListing                    // the test listing
)

func (d Destination) String() string {
	switch d {
	case DestSection:
		return "section"
	case DestResults:
		return "results"
	case DestListing:
		return "listing"
	}
	return fmt.Sprintf("Destination(%d)", int(d))
}

// Route is a navigation request for the router collaborator.
type Route struct {
	Dest      Destination
	Kind      question.Kind
	TestID    string
	SectionID string
}

// NextRoute returns the route taken after finishing section n: the next
// section, or results once the kind's last section is done.
func NextRoute(kind question.Kind, testID string, n int) Route {
	if n >= kind.LastSection() {
		return Route{Dest: DestResults, Kind: kind, TestID: testID, SectionID: question.SectionID(n)}
	}
	return Route{Dest: DestSection, Kind: kind, TestID: testID, SectionID: question.SectionID(n + 1)}
}

// RouteAfter returns the route taken when sec is finished: its results
// when it is the last section of the test, otherwise the next section.
func RouteAfter(sec *question.TestSection) Route {
	if sec.IsLast() {
		return ResultsRoute(sec.Kind, sec.TestID, sec.ID)
	}
	return NextRoute(sec.Kind, sec.TestID, sec.SectionNumber)
}

// ResultsRoute points at the results of one section.
func ResultsRoute(kind question.Kind, testID, sectionID string) Route {
	return Route{Dest: DestResults, Kind: kind, TestID: testID, SectionID: sectionID}
}

// ListingRoute points back at the test listing.
func ListingRoute(kind question.Kind) Route {
	return Route{Dest: DestListing, Kind: kind}
}
