package excel

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Write renders wb as an .xlsx file to w. The first row of each sheet is
// styled as a header and frozen.
func Write(w io.Writer, wb *Workbook) error {
	f := excelize.NewFile()
	defer f.Close()

	if len(wb.Sheets) == 0 {
		return fmt.Errorf("workbook has no sheets")
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, sheet := range wb.Sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet.Name, err)
		}

		rows := sheet.cells()
		for r := range rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheet.Name, cell, &rows[r]); err != nil {
				return fmt.Errorf("write %s row %d: %w", sheet.Name, r+1, err)
			}
		}

		if len(rows) > 0 && len(rows[0]) > 0 {
			end, _ := excelize.CoordinatesToCellName(len(rows[0]), 1)
			if err := f.SetCellStyle(sheet.Name, "A1", end, headerStyle); err != nil {
				return fmt.Errorf("style header: %w", err)
			}
			if err := f.SetPanes(sheet.Name, &excelize.Panes{
				Freeze:      true,
				YSplit:      1,
				TopLeftCell: "A2",
				ActivePane:  "bottomLeft",
			}); err != nil {
				return fmt.Errorf("freeze header: %w", err)
			}
		}
	}

	f.SetActiveSheet(0)
	_, err = f.WriteTo(w)
	return err
}
