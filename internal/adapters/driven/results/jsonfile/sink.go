// Package jsonfile writes analysis results as JSON documents, one
// directory per processed report, and reads them back.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/reportlens/internal/core/domain"
	"github.com/custodia-labs/reportlens/internal/core/ports/driven"
)

// Ensure Sink implements the interface.
var _ driven.ResultSink = (*Sink)(nil)

// File names inside a report's output directory.
const (
	ResultFile   = "analysis.json"
	ManifestFile = "visualization_metadata.json"
)

// Sink writes <dir>/<report key>/analysis.json. The key is the report's
// path relative to the watched root with its extension folded into the
// last element, so a/q1.csv, b/q1.csv and q1.xlsx never share a directory.
type Sink struct {
	dir  string
	root string
}

// NewSink creates a sink writing under dir. Reports outside root, or all
// reports when root is empty, are keyed by file name alone.
func NewSink(dir, root string) *Sink {
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	return &Sink{dir: dir, root: root}
}

// ReportDir returns the output directory for the report at source.
func (s *Sink) ReportDir(source string) string {
	rel := filepath.Base(source)
	if s.root != "" {
		if abs, err := filepath.Abs(source); err == nil {
			if r, err := filepath.Rel(s.root, abs); err == nil && filepath.IsLocal(r) {
				rel = r
			}
		}
	}
	if ext := filepath.Ext(rel); ext != "" {
		rel = strings.TrimSuffix(rel, ext) + "_" + ext[1:]
	}
	return filepath.Join(s.dir, rel)
}

// Path returns where the result for the report at source is written.
func (s *Sink) Path(source string) string {
	return filepath.Join(s.ReportDir(source), ResultFile)
}

// Write stores result atomically: the JSON is written to a temporary
// file in the target directory and renamed over any previous result.
func (s *Sink) Write(ctx context.Context, result *domain.AnalysisResult) error {
	if result == nil {
		return fmt.Errorf("%w: nil result", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	source := result.SourcePath
	if source == "" {
		source = result.FileName
	}
	target := s.Path(source)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return writeAtomic(target, append(data, '\n'))
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}

// Result loads the stored result for the report at source.
func (s *Sink) Result(source string) (*domain.AnalysisResult, error) {
	var result domain.AnalysisResult
	if err := readJSON(s.Path(source), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Manifest loads the chart manifest the visualization generator leaves
// next to a report's result. It returns nil without error when no charts
// were rendered.
func (s *Sink) Manifest(source string) (*domain.VisualizationManifest, error) {
	var manifest domain.VisualizationManifest
	err := readJSON(filepath.Join(s.ReportDir(source), ManifestFile), &manifest)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &manifest, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
