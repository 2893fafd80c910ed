package excel

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Date output layouts; both parse back through domain.ParseTime.
const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// Built-in number format ids that render dates or times. 27-36 and 50-58
// are the East Asian date formats.
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	45: true, 46: true, 47: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

// formatLiterals matches quoted text, escaped characters and bracketed
// sections such as colours or locales, none of which affect the type.
var formatLiterals = regexp.MustCompile(`"[^"]*"|\\.|\[[^\]]*\]`)

// xlsxBook reads Office Open XML workbooks. Cells are read raw so number
// formats such as percentages or thousands separators do not turn numeric
// columns into text; date-formatted serials are converted back to dates.
type xlsxBook struct {
	f        *excelize.File
	date1904 bool
	isDate   map[int]bool
}

func openXLSX(path string) (*xlsxBook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	b := &xlsxBook{f: f, isDate: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		b.date1904 = *props.Date1904
	}
	return b, nil
}

func (b *xlsxBook) SheetNames() []string {
	return b.f.GetSheetList()
}

func (b *xlsxBook) Rows(sheet string) ([][]string, error) {
	rows, err := b.f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	for r, row := range rows {
		for c, cell := range row {
			if converted, ok := b.dateCell(sheet, c+1, r+1, cell); ok {
				row[c] = converted
			}
		}
	}
	return rows, nil
}

func (b *xlsxBook) Close() error {
	return b.f.Close()
}

// dateCell converts a serial number in a date-formatted cell.
func (b *xlsxBook) dateCell(sheet string, col, row int, raw string) (string, bool) {
	serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", false
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", false
	}
	styleID, err := b.f.GetCellStyle(sheet, cell)
	if err != nil || !b.dateStyle(styleID) {
		return "", false
	}
	t, err := excelize.ExcelDateToTime(serial, b.date1904)
	if err != nil {
		return "", false
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format(dateLayout), true
	}
	return t.Format(dateTimeLayout), true
}

// dateStyle reports whether a cell style renders dates. Results are cached
// per style id.
func (b *xlsxBook) dateStyle(id int) bool {
	if id == 0 {
		return false
	}
	if v, ok := b.isDate[id]; ok {
		return v
	}
	v := false
	if style, err := b.f.GetStyle(id); err == nil && style != nil {
		if style.CustomNumFmt != nil {
			v = isDateFormatCode(*style.CustomNumFmt)
		} else {
			v = builtinDateFormats[style.NumFmt]
		}
	}
	b.isDate[id] = v
	return v
}

// isDateFormatCode reports whether a custom number format renders a date
// or time. Only the first section is considered.
func isDateFormatCode(code string) bool {
	code, _, _ = strings.Cut(code, ";")
	code = strings.ToLower(formatLiterals.ReplaceAllString(code, ""))
	if strings.ContainsAny(code, "ydhs") {
		return true
	}
	return strings.Contains(code, "m") && !strings.ContainsAny(code, "0#?")
}
