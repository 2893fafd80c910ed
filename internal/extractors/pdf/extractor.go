// Package pdf extracts page text and text-embedded tables from PDF reports
// using pdftotext.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/custodia-labs/reportlens/internal/core/domain"
	"github.com/custodia-labs/reportlens/internal/core/ports/driven"
	"github.com/custodia-labs/reportlens/internal/extractors/tabular"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor reads PDF files. Page text is kept for key-term counting and
// delimited blocks within it are parsed as tables named Table_1, Table_2...
type Extractor struct {
	runner CommandRunner
	log    *log.Logger
}

// New creates a PDF extractor that shells out to pdftotext.
// logger may be nil.
func New(logger *log.Logger) *Extractor {
	return NewWithRunner(execRunner{}, logger)
}

// NewWithRunner creates a PDF extractor with a custom command runner.
func NewWithRunner(runner CommandRunner, logger *log.Logger) *Extractor {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Extractor{runner: runner, log: logger}
}

// FileType returns domain.FileTypePDF.
func (e *Extractor) FileType() domain.FileType {
	return domain.FileTypePDF
}

// Extract reads the text of every page in order and scans it for tables.
// A candidate table that fails to parse is logged and skipped.
func (e *Extractor) Extract(ctx context.Context, path string) (*domain.ExtractedDataset, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, domain.NewExtractionError(path, "open", err)
	}

	out, err := e.runner.Run(ctx, pdfToText, "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		if !errors.Is(err, ErrPDFToolNotFound) {
			err = fmt.Errorf("pdftotext failed: %w", err)
		}
		return nil, domain.NewExtractionError(path, "text", err)
	}

	pages := splitPages(string(out))
	text := strings.Join(pages, "\n")

	ds := domain.NewExtractedDataset(filepath.Base(path), domain.FileTypePDF)
	ds.Metadata.PageCount = len(pages)
	ds.Text = text

	for i, run := range findRuns(strings.Split(text, "\n")) {
		if err := ctx.Err(); err != nil {
			return nil, domain.NewExtractionError(path, "cancelled", err)
		}
		name := fmt.Sprintf("Table_%d", len(ds.Tables)+1)
		t, err := parseRun(name, run)
		if err != nil {
			e.log.Warn("skipping unparseable table", "file", path, "run", i+1, "error", err)
			continue
		}
		if t.IsEmpty() {
			continue
		}
		ds.AddTable(t)
	}

	e.log.Debug("pdf extracted",
		"file", path,
		"pages", ds.Metadata.PageCount,
		"tables", ds.Metadata.TableCount)
	return ds, nil
}

// splitPages splits pdftotext output on form feeds. The trailing form
// feed after the last page does not start a new page.
func splitPages(out string) []string {
	out = strings.TrimSuffix(out, "\f")
	if strings.TrimSpace(out) == "" {
		return nil
	}
	pages := strings.Split(out, "\f")
	for i, p := range pages {
		pages[i] = strings.TrimRight(p, "\n")
	}
	return pages
}

// parseRun turns a run of lines into a cleaned table. The delimiter is
// taken from the first line: comma, then tab, then runs of whitespace.
func parseRun(name string, lines []string) (*domain.Table, error) {
	var (
		records [][]string
		err     error
	)

	switch first := lines[0]; {
	case strings.Contains(first, ","):
		records, err = tabular.ReadRecords(strings.NewReader(strings.Join(lines, "\n")), ',')
	case strings.Contains(first, "\t"):
		records, err = tabular.ReadRecords(strings.NewReader(strings.Join(lines, "\n")), '\t')
	default:
		for _, line := range lines {
			records = append(records, strings.Fields(line))
		}
	}
	if err != nil {
		return nil, err
	}
	if len(records) < minRunLines {
		return nil, fmt.Errorf("%w: table has no data rows", domain.ErrInvalidInput)
	}

	return tabular.Clean(tabular.FromRecords(name, records)), nil
}
