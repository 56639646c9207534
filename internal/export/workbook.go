package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet worth of tabular output.
type Sheet struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// invalid in Excel sheet names
var sheetNameReplacer = strings.NewReplacer(
	"[", "", "]", "", ":", "", "*", "", "?", "", "/", "-", "\\", "-",
)

// sheetName sanitizes a title to something Excel accepts: forbidden
// characters dropped and the 31 character limit enforced.
func sheetName(title string, used map[string]bool) string {
	name := sheetNameReplacer.Replace(strings.TrimSpace(title))
	if name == "" {
		name = "Sheet"
	}
	if len([]rune(name)) > 31 {
		name = string([]rune(name)[:31])
	}
	base := name
	for i := 2; used[name]; i++ {
		suffix := fmt.Sprintf(" %d", i)
		trimmed := base
		if len([]rune(base))+len(suffix) > 31 {
			trimmed = string([]rune(base)[:31-len(suffix)])
		}
		name = trimmed + suffix
	}
	used[name] = true
	return name
}

// WorkbookBytes renders the sheets into one xlsx file, in order, each with a
// header row.
func WorkbookBytes(sheets []Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	used := make(map[string]bool)
	for i, sheet := range sheets {
		name := sheetName(sheet.Name, used)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return nil, fmt.Errorf("create sheet %q: %w", name, err)
			}
		}

		header := make([]interface{}, len(sheet.Columns))
		for j, c := range sheet.Columns {
			header[j] = c
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}

		for r, row := range sheet.Rows {
			cells := make([]interface{}, len(row))
			for j, v := range row {
				cells[j] = v
			}
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(name, cell, &cells); err != nil {
				return nil, fmt.Errorf("write row %d: %w", r, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// CSVBytes renders one table as UTF-8 CSV with a BOM so spreadsheet tools
// pick up Turkish characters.
func CSVBytes(columns []string, rows [][]string, delimiter rune) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("\xEF\xBB\xBF")

	w := csv.NewWriter(&buf)
	w.Comma = delimiter

	if err := w.Write(columns); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
