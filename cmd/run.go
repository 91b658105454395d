package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/ieltsprep/internal/app"
	"github.com/abhisek/ieltsprep/internal/session"
)

// runApp opens the environment and launches the TUI, optionally straight
// into start.
func runApp(cmd *cobra.Command, start *session.Route) error {
	env, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	return app.Run(app.Options{Deps: env.deps(), Start: start})
}
