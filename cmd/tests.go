package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/ieltsprep/internal/question"
	"github.com/abhisek/ieltsprep/internal/results"
)

var testsCmd = &cobra.Command{
	Use:   "tests",
	Short: "List available tests and your progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		kinds := question.Kinds
		if k, _ := cmd.Flags().GetString("kind"); k != "" {
			kind, err := question.ParseKind(k)
			if err != nil {
				return err
			}
			kinds = []question.Kind{kind}
		}

		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-10s  %-8s  %-40s  %-10s  %s\n", "Kind", "Test", "Title", "Progress", "Band")
		fmt.Fprintln(out, strings.Repeat("─", 82))

		count := 0
		for _, kind := range kinds {
			for _, info := range env.catalog.Tests(kind) {
				o, err := env.overview(cmd.Context(), kind, info.ID)
				if err != nil {
					return err
				}
				band := "-"
				if o.Completed > 0 {
					band = results.FormatBand(o.OverallBand)
				}
				title := info.Title
				if len(title) > 40 {
					title = title[:37] + "..."
				}
				fmt.Fprintf(out, "%-10s  %-8s  %-40s  %-10s  %s\n",
					kind.DisplayName(), info.ID, title,
					fmt.Sprintf("%d/%d", o.Completed, len(o.Sections)), band)
				count++
			}
		}

		fmt.Fprintf(out, "\n%d tests\n", count)
		return nil
	},
}

func init() {
	testsCmd.Flags().String("kind", "", "Filter by kind (reading or listening)")
}
