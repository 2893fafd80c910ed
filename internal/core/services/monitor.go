package services

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/custodia-labs/reportlens/internal/core/domain"
	"github.com/custodia-labs/reportlens/internal/core/ports/driven"
	"github.com/custodia-labs/reportlens/internal/core/ports/driving"
)

// Ensure FolderMonitor implements the interface.
var _ driving.FolderMonitor = (*FolderMonitor)(nil)

// FolderMonitor watches a directory tree for report files and hands
// accepted events to a callback. Modified events for files already in
// flight are suppressed until Complete is called for that path.
type FolderMonitor struct {
	watcher driven.Watcher
	metrics driven.Metrics
	log     *log.Logger

	mu        sync.Mutex
	directory string
	callback  driving.FileCallback
	active    bool
	run       uint64
	inflight  *InflightSet
	cancel    context.CancelFunc
	loopDone  chan struct{}

	// callbacks counts dispatches currently inside the callback.
	callbacks sync.WaitGroup
}

// NewFolderMonitor creates a monitor using the given watcher backend.
// metrics and logger may be nil.
func NewFolderMonitor(watcher driven.Watcher, metrics driven.Metrics, logger *log.Logger) *FolderMonitor {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &FolderMonitor{
		watcher:  watcher,
		metrics:  metrics,
		log:      logger.WithPrefix("monitor"),
		inflight: NewInflightSet(),
	}
}

// Configure sets the directory to watch. Takes effect on the next Start.
func (m *FolderMonitor) Configure(directory string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.directory = directory
}

// RegisterCallback sets the function invoked for accepted events.
func (m *FolderMonitor) RegisterCallback(fn driving.FileCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callback = fn
}

// Start begins watching and replays existing report files as
// EventExisting before returning. Starting an active monitor is a no-op.
func (m *FolderMonitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.active {
		m.mu.Unlock()
		return nil
	}

	root, err := resolveDirectory(m.directory)
	if err != nil {
		m.mu.Unlock()
		return err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	events, err := m.watcher.Watch(watchCtx, root, true)
	if err != nil {
		cancel()
		m.mu.Unlock()
		return fmt.Errorf("watch %s: %w", root, err)
	}

	inflight := NewInflightSet()
	done := make(chan struct{})
	m.run++
	m.inflight = inflight
	m.cancel = cancel
	m.loopDone = done
	m.active = true
	m.mu.Unlock()

	m.log.Info("watching", "dir", root)
	go m.eventLoop(events, inflight, done)

	m.scan(root)
	return nil
}

// Stop halts delivery, waits for running callbacks and clears the
// in-flight set. Idempotent. Calling Stop from inside a callback deadlocks.
func (m *FolderMonitor) Stop() {
	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		return
	}
	m.active = false
	cancel := m.cancel
	done := m.loopDone
	inflight := m.inflight
	m.mu.Unlock()

	cancel()
	<-done
	m.callbacks.Wait()
	inflight.Clear()
	m.log.Info("stopped")
}

// IsActive reports whether the monitor is running.
func (m *FolderMonitor) IsActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Complete marks path as processed in the current run. It is a no-op
// once the monitor has stopped.
func (m *FolderMonitor) Complete(path string) {
	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		return
	}
	inflight := m.inflight
	m.mu.Unlock()

	inflight.Remove(path)
}

// Release marks a dispatched file as processed. Files dispatched before
// the last Stop are ignored so a late completion cannot clear the same
// path in a later run.
func (m *FolderMonitor) Release(file domain.WatchedFile) {
	m.mu.Lock()
	if !m.active || file.Run != m.run {
		m.mu.Unlock()
		return
	}
	inflight := m.inflight
	m.mu.Unlock()

	inflight.Remove(file.Path)
}

// Inflight returns the number of paths currently in flight.
func (m *FolderMonitor) Inflight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inflight.Len()
}

// resolveDirectory validates the configured directory and makes it absolute.
func resolveDirectory(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("%w: no directory configured", domain.ErrConfiguration)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: directory %s does not exist", domain.ErrConfiguration, abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", domain.ErrConfiguration, abs)
	}
	return abs, nil
}

// eventLoop consumes watcher events until the channel closes.
func (m *FolderMonitor) eventLoop(events <-chan domain.FileEvent, inflight *InflightSet, done chan struct{}) {
	defer close(done)
	for ev := range events {
		m.handle(ev, inflight)
	}
	m.log.Debug("event stream closed")
}

// handle applies the dedup rules to a single event.
func (m *FolderMonitor) handle(ev domain.FileEvent, inflight *InflightSet) {
	if ev.IsDir {
		return
	}
	ft, ok := domain.FileTypeForPath(ev.Path)
	if !ok {
		return
	}
	file := domain.WatchedFile{Path: ev.Path, Type: ft}

	switch ev.Op {
	case domain.OpCreate:
		inflight.Add(ev.Path)
		m.dispatch(file, domain.EventCreated)
	case domain.OpWrite:
		if !inflight.AddIfAbsent(ev.Path) {
			m.metrics.EventSuppressed()
			m.log.Debug("suppressed duplicate", "path", ev.Path)
			return
		}
		m.dispatch(file, domain.EventModified)
	case domain.OpMove:
		inflight.Add(ev.Path)
		m.dispatch(file, domain.EventMoved)
	}
}

// scan emits EventExisting for every report file under root.
// Unreadable entries are logged and skipped.
func (m *FolderMonitor) scan(root string) {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			m.log.Warn("scan", "path", path, "err", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		ft, ok := domain.FileTypeForPath(path)
		if !ok {
			return nil
		}
		m.dispatch(domain.WatchedFile{Path: path, Type: ft}, domain.EventExisting)
		return nil
	})
	if err != nil {
		m.log.Warn("scan failed", "dir", root, "err", err)
	}
}

// dispatch invokes the callback unless the monitor has stopped.
// A panicking callback is logged and does not reach the event loop.
func (m *FolderMonitor) dispatch(file domain.WatchedFile, kind domain.EventKind) {
	m.mu.Lock()
	if !m.active || m.callback == nil {
		m.mu.Unlock()
		return
	}
	fn := m.callback
	file.Run = m.run
	m.callbacks.Add(1)
	m.mu.Unlock()

	defer m.callbacks.Done()
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("callback panicked", "path", file.Path, "kind", kind, "panic", r)
		}
	}()

	m.metrics.EventReceived(kind, file.Type)
	m.log.Debug("dispatch", "path", file.Path, "type", file.Type, "kind", kind)
	fn(file, kind)
}
