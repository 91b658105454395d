package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/ieltsprep/internal/progress"
	"github.com/abhisek/ieltsprep/internal/results"
)

var retryCmd = &cobra.Command{
	Use:   "retry <reading|listening> <test> <section>",
	Short: "Reset a section so it can be attempted again",
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

		if _, err := env.catalog.Section(kind, testID, sectionID); err != nil {
			return fmt.Errorf("retry: %w", err)
		}
		key := progress.Key{Kind: kind, TestID: testID, SectionID: sectionID}
		if _, err := results.Retry(cmd.Context(), env.store, key, time.Now()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Reset %s. Run `ieltsprep practice %s %s %s` to start again.\n",
			key, kind, testID, sectionID)
		return nil
	},
}
