package driving

import (
	"context"

	"github.com/custodia-labs/reportlens/internal/core/domain"
)

// FileCallback is invoked once per accepted file event.
// Panics are recovered by the monitor and logged.
type FileCallback func(file domain.WatchedFile, kind domain.EventKind)

// FolderMonitor watches a directory for report files, deduplicates
// events and hands each file to a registered callback.
type FolderMonitor interface {
	// Configure sets the directory to watch. Takes effect on the next Start.
	Configure(directory string)

	// RegisterCallback sets the function invoked for accepted events.
	RegisterCallback(fn FileCallback)

	// Start begins watching and replays pre-existing files as
	// EventExisting. Fails with domain.ErrConfiguration when no directory
	// is configured or it does not exist.
	Start(ctx context.Context) error

	// Stop halts delivery and clears the in-flight set. Once it returns no
	// further callbacks start. Idempotent. Must not be called from inside
	// a callback.
	Stop()

	// IsActive reports whether the monitor is running.
	IsActive() bool

	// Complete marks a file's processing finished so later edits can
	// trigger it again. Must be called on success and failure alike.
	Complete(path string)

	// Release is Complete for a file handed out by the callback. It is
	// ignored when the file was dispatched by an earlier run.
	Release(file domain.WatchedFile)
}
