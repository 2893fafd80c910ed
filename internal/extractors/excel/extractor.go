// Package excel extracts one table per worksheet from .xlsx workbooks with
// excelize and from legacy .xls workbooks with extrame/xls.
package excel

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/custodia-labs/reportlens/internal/core/domain"
	"github.com/custodia-labs/reportlens/internal/core/ports/driven"
	"github.com/custodia-labs/reportlens/internal/extractors/tabular"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// workbook is an open spreadsheet of either format.
type workbook interface {
	SheetNames() []string
	// Rows returns a sheet's cells as text, numbers unformatted.
	Rows(sheet string) ([][]string, error)
	Close() error
}

// Extractor reads Excel workbooks. The format is chosen by extension.
type Extractor struct {
	log *log.Logger
}

// New creates a new Excel extractor. logger may be nil.
func New(logger *log.Logger) *Extractor {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Extractor{log: logger}
}

// FileType returns domain.FileTypeExcel.
func (e *Extractor) FileType() domain.FileType {
	return domain.FileTypeExcel
}

// Extract reads every worksheet of the workbook at path. The first
// non-empty row of a sheet is its header. A sheet that cannot be read is
// logged and skipped; sheets left empty after cleaning are omitted.
func (e *Extractor) Extract(ctx context.Context, path string) (*domain.ExtractedDataset, error) {
	var (
		book workbook
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".xls") {
		book, err = openLegacy(path)
	} else {
		book, err = openXLSX(path)
	}
	if err != nil {
		return nil, domain.NewExtractionError(path, "open", err)
	}
	defer book.Close()

	return e.extract(ctx, path, book)
}

func (e *Extractor) extract(ctx context.Context, path string, book workbook) (*domain.ExtractedDataset, error) {
	sheets := book.SheetNames()
	ds := domain.NewExtractedDataset(filepath.Base(path), domain.FileTypeExcel)
	ds.Metadata.SheetNames = append([]string(nil), sheets...)

	for _, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, domain.NewExtractionError(path, "cancelled", err)
		}

		rows, err := book.Rows(sheet)
		if err != nil {
			e.log.Warn("skipping unreadable sheet", "file", path, "sheet", sheet, "error", err)
			continue
		}

		t := tabular.FromRecords(sheet, trimLeadingBlank(rows))
		if t == nil {
			continue
		}
		cleaned := tabular.Clean(t)
		if cleaned.IsEmpty() {
			e.log.Debug("sheet has no data", "file", path, "sheet", sheet)
			continue
		}
		ds.AddTable(cleaned)
	}
	return ds, nil
}

// trimLeadingBlank drops rows before the first one with any content.
func trimLeadingBlank(rows [][]string) [][]string {
	for i, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				return rows[i:]
			}
		}
	}
	return nil
}
