package leaderboard

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Leaderboard"

var exportHeader = []interface{}{"Rank", "Name", "Category", "Score", "Recorded At"}

// WriteWorkbook renders entries as an xlsx workbook with one row per entry.
func WriteWorkbook(w io.Writer, entries []Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{i + 1, e.Name, e.Category, e.Score, e.RecordedAt.UTC().Format(time.RFC3339)}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(exportSheet, "B", "B", 24); err != nil {
		return err
	}
	if err := f.SetColWidth(exportSheet, "E", "E", 22); err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
