package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"nuanswers/adapters/excel"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func readUTF8(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("file is not valid UTF-8")
	}
	return data, nil
}

// parseTXT decodes the file as UTF-8
func parseTXT(path string) (string, error) {
	data, err := readUTF8(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// parseCSV renders each record as its fields joined by ", ", one per line
func parseCSV(path string) (string, error) {
	data, err := readUTF8(path)
	if err != nil {
		return "", err
	}
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var sb strings.Builder
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse csv: %w", err)
		}
		sb.WriteString(strings.Join(rec, ", "))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// parseSpreadsheet emits a "Sheet: name" header and a column-aligned table per sheet
func parseSpreadsheet(path string) (string, error) {
	wb, err := excel.ReadWorkbook(path)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, sheet := range wb.Sheets {
		sb.WriteString("\nSheet: " + sheet.Name + "\n")
		sb.WriteString(renderTable(sheet.Rows))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// renderTable aligns rows into columns separated by two spaces
func renderTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return strings.Join(lines, "\n")
}
