package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/ieltsprep/internal/app"
	"github.com/abhisek/ieltsprep/internal/session"
)

var practiceCmd = &cobra.Command{
	Use:   "practice <reading|listening> <test> [section]",
	Short: "Start or resume a test section",
	Long: `Open the TUI directly in a section. Without a section number the first
unfinished section of the test is chosen; a finished test opens its results.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, testID, sectionID, err := parseTarget(args)
		if err != nil {
			return err
		}

		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		route := session.Route{Dest: session.DestSection, Kind: kind, TestID: testID, SectionID: sectionID}
		if sectionID == "" {
			o, err := env.overview(cmd.Context(), kind, testID)
			if err != nil {
				return err
			}
			if next, ok := o.NextSection(); ok {
				route.SectionID = next.SectionID
			} else {
				route = session.ResultsRoute(kind, testID, o.Sections[len(o.Sections)-1].SectionID)
			}
		} else if _, err := env.catalog.Section(kind, testID, sectionID); err != nil {
			return fmt.Errorf("practice: %w", err)
		}

		return app.Run(app.Options{Deps: env.deps(), Start: &route})
	},
}
