package screen

import (
	"github.com/rs/zerolog"

	"github.com/abhisek/ieltsprep/internal/autosave"
	"github.com/abhisek/ieltsprep/internal/clock"
	"github.com/abhisek/ieltsprep/internal/content"
	"github.com/abhisek/ieltsprep/internal/progress"
	"github.com/abhisek/ieltsprep/internal/results"
)

// Deps are the services shared by every screen.
type Deps struct {
	Catalog  *content.Catalog
	Store    progress.Repository
	Clock    clock.Clock
	Logger   zerolog.Logger
	Autosave autosave.Config
	Policy   results.Policy
}
