package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/ieltsprep/internal/content"
	"github.com/abhisek/ieltsprep/internal/question"
	"github.com/abhisek/ieltsprep/internal/scoring"
)

var previewCmd = &cobra.Command{
	Use:   "preview <reading|listening> <test> <section>",
	Short: "Answer a section's questions on the console (no progress saved)",
	Long: `Print each question of a section and grade answers typed on stdin.

This is a stateless content-authoring tool: no store, no timer, no autosave.
Useful for checking answer keys after editing content files.`,
	Args: cobra.ExactArgs(3),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().Bool("answers", false, "Print the answer key instead of asking")
}

func runPreview(cmd *cobra.Command, args []string) error {
	kind, testID, sectionID, err := parseTarget(args)
	if err != nil {
		return err
	}
	showKey, _ := cmd.Flags().GetBool("answers")

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	var catalog *content.Catalog
	if cfg.ContentDir != "" {
		catalog, err = content.Load(os.DirFS(cfg.ContentDir))
	} else {
		catalog, err = content.Default()
	}
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	sec, err := catalog.Section(kind, testID, sectionID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s · Section %d: %s (%d questions)\n\n",
		kind.DisplayName(), testID, sec.SectionNumber, sec.Title, len(sec.Questions))

	if showKey {
		for i, q := range sec.Questions {
			fmt.Fprintf(out, "%2d. [%s] %s\n", i+1, q.ID, q.Prompt)
			if q.CorrectAnswer != nil {
				fmt.Fprintf(out, "    answer: %s\n", q.CorrectAnswer.String())
			}
		}
		return nil
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	answers := question.AnswerSet{}
	for i, q := range sec.Questions {
		fmt.Fprintf(out, "── Question %d/%d ──\n", i+1, len(sec.Questions))
		a, ok := askQuestion(out, scanner, q)
		if !ok {
			fmt.Fprintln(out, "\n(input closed)")
			break
		}
		if a.IsEmpty() {
			fmt.Fprintln(out, "(skipped)")
			fmt.Fprintln(out)
			continue
		}
		answers.Set(q.ID, a)

		if scoring.IsCorrect(q, a, true) {
			fmt.Fprintln(out, "\033[32m✓ Correct!\033[0m")
		} else if q.CorrectAnswer != nil {
			fmt.Fprintf(out, "\033[31m✗ Wrong.\033[0m Answer: %s\n", q.CorrectAnswer.String())
		}
		if q.Explanation != "" {
			fmt.Fprintf(out, "Explanation: %s\n", q.Explanation)
		}
		fmt.Fprintln(out)
	}

	b := scoring.Score(sec.Questions, answers, 0, kind, scoring.DefaultBandTable(kind))
	fmt.Fprintf(out, "── Summary: %d/%d correct, band %.1f ──\n", b.Correct, b.Total, b.BandScore)
	return nil
}

// askQuestion prints q and reads one answer. Choice questions accept the
// option number or its text; form questions read one line per field.
func askQuestion(out io.Writer, scanner *bufio.Scanner, q question.Question) (question.Answer, bool) {
	fmt.Fprintln(out, q.Prompt)

	if q.Type.IsForm() {
		parts := make([]string, len(q.Fields))
		for i, f := range q.Fields {
			fmt.Fprintf(out, "  %s: ", f)
			if !scanner.Scan() {
				return question.Answer{}, false
			}
			parts[i] = strings.TrimSpace(scanner.Text())
		}
		return question.Sequence(parts...), true
	}

	choices := q.Choices()
	for j, c := range choices {
		fmt.Fprintf(out, "  %d) %s\n", j+1, c)
	}
	fmt.Fprint(out, "\nYour answer: ")
	if !scanner.Scan() {
		return question.Answer{}, false
	}
	text := strings.TrimSpace(scanner.Text())
	if n, err := strconv.Atoi(text); err == nil && n >= 1 && n <= len(choices) {
		text = choices[n-1]
	}
	return question.Single(text), true
}
