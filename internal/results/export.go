package results

import (
	"fmt"
	"io"
	"strings"

	"github.com/jinzhu/copier"
	"github.com/xuri/excelize/v2"
)

const summarySheet = "Summary"

// summaryRow is one line of the summary sheet. Field names match Report
// fields and methods so copier can fill it.
type summaryRow struct {
	SectionID    string
	SectionTitle string
	Completed    bool
	ReplayCount  int
	Correct      int
	Total        int
	Percentage   float64
	BandScore    float64
}

var summaryHeader = []any{"Section", "Title", "Completed", "Replays", "Correct", "Total", "Percentage", "Band"}

// ExportXLSX writes a workbook with a summary sheet and one sheet per
// section listing every question.
func ExportXLSX(w io.Writer, reports []Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	if err := writeRow(f, summarySheet, 1, summaryHeader); err != nil {
		return err
	}
	f.SetCellStyle(summarySheet, "A1", "H1", bold)

	for i, r := range reports {
		var row summaryRow
		if err := copier.Copy(&row, &r); err != nil {
			return fmt.Errorf("copy report %s: %w", r.SectionID, err)
		}
		values := []any{
			row.SectionID, row.SectionTitle, row.Completed, row.ReplayCount,
			row.Correct, row.Total, fmt.Sprintf("%.1f", row.Percentage), row.BandScore,
		}
		if err := writeRow(f, summarySheet, i+2, values); err != nil {
			return err
		}
		if err := writeSectionSheet(f, r, bold); err != nil {
			return err
		}
	}
	f.SetColWidth(summarySheet, "B", "B", 36)
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSectionSheet(f *excelize.File, r Report, bold int) error {
	name := sheetName(r)
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	header := []any{"Question", "Type", "Prompt", "Your answer", "Correct answer", "Result"}
	if err := writeRow(f, name, 1, header); err != nil {
		return err
	}
	f.SetCellStyle(name, "A1", "F1", bold)

	for i, q := range r.Breakdown.Questions {
		result := "Incorrect"
		switch {
		case q.Correct:
			result = "Correct"
		case !q.Answered:
			result = "Unanswered"
		}
		row := []any{q.QuestionID, string(q.Type), q.Prompt, q.Given.String(), q.Expected.String(), result}
		if err := writeRow(f, name, i+2, row); err != nil {
			return err
		}
	}
	f.SetColWidth(name, "C", "C", 60)
	return nil
}

// sheetName names a section sheet, keeping within Excel's 31 character limit.
func sheetName(r Report) string {
	name := r.TestID + " " + r.SectionID
	if len(name) > 31 {
		name = strings.TrimSpace(name[len(name)-31:])
	}
	return name
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s!%s: %w", sheet, cell, err)
	}
	return nil
}
