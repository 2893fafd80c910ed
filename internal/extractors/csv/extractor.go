// Package csv extracts a single table from a comma-separated report.
package csv

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/reportlens/internal/core/domain"
	"github.com/custodia-labs/reportlens/internal/core/ports/driven"
	"github.com/custodia-labs/reportlens/internal/extractors/tabular"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor reads CSV files. The first record is the header and the
// table is named after the file without its extension.
type Extractor struct{}

// New creates a new CSV extractor.
func New() *Extractor {
	return &Extractor{}
}

// FileType returns domain.FileTypeCSV.
func (e *Extractor) FileType() domain.FileType {
	return domain.FileTypeCSV
}

// Extract reads and cleans the CSV file at path.
func (e *Extractor) Extract(ctx context.Context, path string) (*domain.ExtractedDataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.NewExtractionError(path, "open", err)
	}
	defer f.Close()

	records, err := tabular.ReadRecords(f, ',')
	if err != nil {
		return nil, domain.NewExtractionError(path, "parse", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, domain.NewExtractionError(path, "cancelled", err)
	}

	base := filepath.Base(path)
	ds := domain.NewExtractedDataset(base, domain.FileTypeCSV)

	name := strings.TrimSuffix(base, filepath.Ext(base))
	if t := tabular.FromRecords(name, records); t != nil {
		if cleaned := tabular.Clean(t); !cleaned.IsEmpty() {
			ds.AddTable(cleaned)
		}
	}
	return ds, nil
}
