package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/ieltsprep/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider supplies the right-hand side of the header, e.g. a
// countdown and the save indicator.
type StatusProvider interface {
	Status() string
}

// Disposer is implemented by screens holding timers or other resources.
// The router calls Dispose when the screen leaves the stack.
type Disposer interface {
	Dispose()
}

// Refresher is implemented by screens that reload their data when they
// become active again after the screens above them are popped.
type Refresher interface {
	Refresh() tea.Cmd
}

// EscapeHandler lets a screen claim the esc key instead of the router
// popping it, e.g. to confirm leaving a running section.
type EscapeHandler interface {
	HandlesEscape() bool
}

// Closer is called when the program quits with the screen active.
type Closer interface {
	Close()
}
