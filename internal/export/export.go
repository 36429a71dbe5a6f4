// Package export writes job recommendations to an .xlsx workbook.
package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/erenakay1/CV-Analizer/internal"
)

const Sheet = "Recommendations"

var headers = []string{
	"Rank",
	"Title",
	"Company",
	"Location",
	"Employment",
	"Salary",
	"Posted",
	"Match Score",
	"Match Reasons",
	"URL",
}

// Workbook renders jobs as a single-sheet workbook, one row per job in rank
// order under a header row.
func Workbook(jobs []internal.JobRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", Sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(Sheet, cell, h)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetRowStyle(Sheet, 1, 1, style)
	}

	for i, j := range jobs {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(Sheet, cell, v)
		}
		write(1, j.Rank)
		write(2, j.Title)
		write(3, j.Company)
		write(4, j.Location)
		write(5, j.EmploymentType)
		write(6, j.SalaryText)
		write(7, j.PostedLabel)
		write(8, j.MatchScore)
		write(9, strings.Join(j.MatchReasons, "\n"))
		write(10, j.URL)
		if strings.HasPrefix(j.URL, "http") {
			cell, _ := excelize.CoordinatesToCellName(10, row)
			_ = f.SetCellHyperLink(Sheet, cell, j.URL, "External")
		}
	}

	_ = f.SetColWidth(Sheet, "A", "A", 6)
	_ = f.SetColWidth(Sheet, "B", "C", 32)
	_ = f.SetColWidth(Sheet, "D", "G", 18)
	_ = f.SetColWidth(Sheet, "H", "H", 12)
	_ = f.SetColWidth(Sheet, "I", "I", 48)
	_ = f.SetColWidth(Sheet, "J", "J", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func WriteFile(path string, jobs []internal.JobRecord) error {
	data, err := Workbook(jobs)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
