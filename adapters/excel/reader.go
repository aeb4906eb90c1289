package excel

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// ReadWorkbook reads every sheet of an .xlsx or legacy .xls file
func ReadWorkbook(path string) (*Workbook, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xls":
		return readXLS(path)
	default:
		return readXLSX(path)
	}
}

func readXLSX(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: name, Rows: padRows(rows)})
	}
	return wb, nil
}

func readXLS(path string) (*Workbook, error) {
	f, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open XLS file: %w", err)
	}

	wb := &Workbook{}
	for i := 0; i < f.NumSheets(); i++ {
		sheet := f.GetSheet(i)
		if sheet == nil {
			continue
		}
		var rows [][]string
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := sheet.Row(r)
			if row == nil {
				continue
			}
			rows = append(rows, rowCells(row.FirstCol(), row.LastCol(), row.Col))
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: sheet.Name, Rows: padRows(rows)})
	}
	return wb, nil
}

// rowCells reads columns [0, last), leaving the blank leading cells before
// first empty so every row stays aligned on column A
func rowCells(first, last int, col func(int) string) []string {
	if last < 0 {
		last = 0
	}
	cells := make([]string, last)
	for c := first; c < last; c++ {
		if c >= 0 {
			cells[c] = col(c)
		}
	}
	return cells
}

// padRows makes every row as wide as the widest one; excelize trims trailing empty cells
func padRows(rows [][]string) [][]string {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	for i, r := range rows {
		for len(r) < width {
			r = append(r, "")
		}
		rows[i] = r
	}
	return rows
}
