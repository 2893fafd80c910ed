package driven

import (
	"time"

	"github.com/custodia-labs/reportlens/internal/core/domain"
)

// Metrics records pipeline activity.
type Metrics interface {
	// EventReceived counts a callback dispatched by the folder monitor.
	EventReceived(kind domain.EventKind, fileType domain.FileType)

	// EventSuppressed counts a modified event dropped by deduplication.
	EventSuppressed()

	// FileProcessed records one extraction and analysis attempt.
	// outcome is "ok", "extraction_error", "analysis_error" or "sink_error".
	FileProcessed(fileType domain.FileType, outcome string, duration time.Duration)

	// QueueDepth reports the number of files waiting for a worker.
	QueueDepth(n int)
}
