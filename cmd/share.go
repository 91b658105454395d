package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/ieltsprep/internal/results"
)

var shareCmd = &cobra.Command{
	Use:   "share <reading|listening> <test> <section>",
	Short: "Print a one-line summary of a finished section",
	Args:  cobra.ExactArgs(3),
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

		o, err := env.overview(cmd.Context(), kind, testID)
		if err != nil {
			return err
		}
		for _, s := range o.Sections {
			if s.SectionID == sectionID && s.Status == results.StatusCompleted && s.Report != nil {
				fmt.Fprintln(cmd.OutOrStdout(), results.ShareText(*s.Report))
				return nil
			}
		}
		return fmt.Errorf("%s %s %s: %w", kind, testID, sectionID, errNoResults)
	},
}
