package excel

import (
	"fmt"
	"io"

	"github.com/extrame/xls"
)

// legacyCharset decodes byte strings in BIFF workbooks that do not declare
// a code page.
const legacyCharset = "utf-8"

// legacyBook reads BIFF8 (.xls) workbooks. The reader panics on some
// malformed files, so every call into it is guarded.
type legacyBook struct {
	wb     *xls.WorkBook
	closer io.Closer
	sheets map[string]*xls.WorkSheet
	names  []string
}

func openLegacy(path string) (book *legacyBook, err error) {
	defer recoverMalformed(&err)

	wb, closer, err := xls.OpenWithCloser(path, legacyCharset)
	if err != nil {
		return nil, err
	}
	b := &legacyBook{wb: wb, closer: closer, sheets: make(map[string]*xls.WorkSheet)}
	for i := 0; i < wb.NumSheets(); i++ {
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}
		b.sheets[sheet.Name] = sheet
		b.names = append(b.names, sheet.Name)
	}
	return b, nil
}

func (b *legacyBook) SheetNames() []string {
	return b.names
}

func (b *legacyBook) Rows(name string) (rows [][]string, err error) {
	defer recoverMalformed(&err)

	sheet, ok := b.sheets[name]
	if !ok {
		return nil, fmt.Errorf("sheet %q not found", name)
	}
	return legacyRecords(int(sheet.MaxRow), func(i int) legacyRow {
		if r := sheet.Row(i); r != nil {
			return r
		}
		return nil
	}), nil
}

func (b *legacyBook) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

// legacyRow is the part of a BIFF row the extractor reads.
type legacyRow interface {
	LastCol() int
	Col(i int) string
}

// legacyRecords lays out rows 0..maxRow as records anchored at column A.
// Missing rows become empty records so header detection sees the same
// grid as the xlsx path.
func legacyRecords(maxRow int, row func(i int) legacyRow) [][]string {
	records := make([][]string, 0, maxRow+1)
	for i := 0; i <= maxRow; i++ {
		r := row(i)
		if r == nil {
			records = append(records, nil)
			continue
		}
		record := make([]string, r.LastCol())
		for c := range record {
			record[c] = r.Col(c)
		}
		records = append(records, record)
	}
	return records
}

func recoverMalformed(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("malformed xls workbook: %v", r)
	}
}
