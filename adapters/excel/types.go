package excel

// Sheet is one worksheet as a grid of cell strings. The first row is the header.
// Values, when set, replaces Rows on write so numbers and times keep their cell type.
type Sheet struct {
	Name   string
	Rows   [][]string
	Values [][]interface{}
}

// Workbook is every sheet of a spreadsheet in file order
type Workbook struct {
	Sheets []Sheet
}

// Header returns the first row, or nil for an empty sheet
func (s Sheet) Header() []string {
	if len(s.Rows) == 0 {
		return nil
	}
	return s.Rows[0]
}

func (s Sheet) cells() [][]interface{} {
	if s.Values != nil {
		return s.Values
	}
	out := make([][]interface{}, len(s.Rows))
	for r, row := range s.Rows {
		out[r] = make([]interface{}, len(row))
		for c, v := range row {
			out[r][c] = v
		}
	}
	return out
}
