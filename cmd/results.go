package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/ieltsprep/internal/results"
	"github.com/abhisek/ieltsprep/internal/ui/layout"
)

var resultsCmd = &cobra.Command{
	Use:   "results <reading|listening> <test> [section]",
	Short: "Print scored results, optionally exporting them to XLSX",
	Args:  cobra.RangeArgs(2, 3),
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

		var reports []results.Report
		for _, s := range o.Sections {
			if s.Status != results.StatusCompleted || s.Report == nil {
				continue
			}
			if sectionID != "" && s.SectionID != sectionID {
				continue
			}
			reports = append(reports, *s.Report)
		}
		if len(reports) == 0 {
			return fmt.Errorf("%s %s: %w", kind, testID, errNoResults)
		}

		out := cmd.OutOrStdout()
		for _, r := range reports {
			printReport(out, r)
		}
		if sectionID == "" {
			fmt.Fprintf(out, "Overall band %s (%d/%d sections, %d/%d correct)\n",
				results.FormatBand(o.OverallBand), o.Completed, len(o.Sections), o.Correct, o.Total)
		}

		if path, _ := cmd.Flags().GetString("xlsx"); path != "" {
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create %s: %w", path, err)
			}
			defer f.Close()
			if err := results.ExportXLSX(f, reports); err != nil {
				return err
			}
			fmt.Fprintf(out, "Exported %d sections to %s\n", len(reports), path)
		}
		return nil
	},
}

func init() {
	resultsCmd.Flags().String("xlsx", "", "Write the breakdown to this .xlsx file")
}

// printReport writes one section's cards, skills and breakdown.
func printReport(out io.Writer, r results.Report) {
	fmt.Fprintf(out, "%s %s · Section %d: %s\n", r.Kind.DisplayName(), r.TestID, r.SectionNumber, r.SectionTitle)
	fmt.Fprintln(out, strings.Repeat("─", 72))
	fmt.Fprintf(out, "Band %s   %d/%d correct   %.0f%%   time %s\n",
		results.FormatBand(r.BandScore()), r.Correct(), r.Total(), r.Percentage(), layout.FormatClock(r.TimeSpent()))
	for _, sk := range r.Skills {
		fmt.Fprintf(out, "  %-24s %-18s %s\n", sk.Name, sk.Level, sk.Detail)
	}
	fmt.Fprintln(out)
	for i, q := range r.Breakdown.Questions {
		mark := "✗"
		if q.Correct {
			mark = "✓"
		}
		given := q.Given.String()
		if !q.Answered {
			given = "(no answer)"
		}
		fmt.Fprintf(out, "  %s %2d. %-44s you: %s", mark, i+1, clip(q.Prompt, 44), given)
		if !q.Correct {
			fmt.Fprintf(out, "   answer: %s", q.Expected.String())
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out)
}

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}
