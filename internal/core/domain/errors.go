package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown report file type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrConfiguration indicates the folder monitor was started without
	// a usable directory.
	ErrConfiguration = errors.New("configuration error")

	// Analysis Errors.

	// ErrNoData indicates a dataset had no tables or text to analyse.
	ErrNoData = errors.New("no data")

	// ErrStatistic indicates a statistic could not be computed for a table.
	ErrStatistic = errors.New("statistic cannot be computed")
)

// ExtractionError reports an unreadable or corrupt source file.
type ExtractionError struct {
	// Path is the file being extracted.
	Path string

	// Stage names the step that failed (open, parse, sheet, text).
	Stage string

	// Err is the underlying cause.
	Err error
}

// NewExtractionError wraps err with the path and stage it occurred in.
func NewExtractionError(path, stage string, err error) *ExtractionError {
	return &ExtractionError{Path: path, Stage: stage, Err: err}
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s (%s): %v", e.Path, e.Stage, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// AnalysisError reports a dataset or table that could not be analysed.
type AnalysisError struct {
	// File is the source file name.
	File string

	// Table is empty for dataset-level failures.
	Table string

	// Err is the underlying cause.
	Err error
}

// NewAnalysisError wraps err with the file and table it occurred in.
func NewAnalysisError(file, table string, err error) *AnalysisError {
	return &AnalysisError{File: file, Table: table, Err: err}
}

// Error implements the error interface.
func (e *AnalysisError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("analyse %s: %v", e.File, e.Err)
	}
	return fmt.Sprintf("analyse %s table %q: %v", e.File, e.Table, e.Err)
}

// Unwrap returns the underlying cause.
func (e *AnalysisError) Unwrap() error {
	return e.Err
}
