package driving

import (
	"context"

	"github.com/custodia-labs/reportlens/internal/core/domain"
)

// ReportProcessor runs extraction and analysis for report files.
type ReportProcessor interface {
	// Process extracts, analyses and stores one file synchronously.
	Process(ctx context.Context, path string, fileType domain.FileType) (*domain.AnalysisResult, error)

	// Submit queues a file for a background worker. Returns false if the
	// processor is not running.
	Submit(file domain.WatchedFile, kind domain.EventKind) bool

	// Run starts the worker pool and blocks until ctx is cancelled and
	// running jobs have finished.
	Run(ctx context.Context) error
}
