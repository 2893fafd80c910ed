// Package polling implements driven.Watcher by rescanning the tree on a
// fixed interval. It suits network shares and filesystems without native
// notifications.
package polling

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/reportlens/internal/core/domain"
	"github.com/custodia-labs/reportlens/internal/core/ports/driven"
)

// Ensure Watcher implements the interface.
var _ driven.Watcher = (*Watcher)(nil)

// entry is the observed state of one path.
type entry struct {
	size    int64
	modTime time.Time
	isDir   bool
}

// snapshot maps paths to their state at scan time.
type snapshot map[string]entry

// Watcher diffs successive snapshots of a directory tree.
type Watcher struct {
	interval time.Duration
	log      *log.Logger
}

// New creates a polling watcher. logger may be nil.
func New(interval time.Duration, logger *log.Logger) *Watcher {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Watcher{interval: interval, log: logger}
}

// Watch takes a baseline snapshot of root and reports differences from
// it every interval.
func (w *Watcher) Watch(ctx context.Context, root string, recursive bool) (<-chan domain.FileEvent, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("watch root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch root: %s is not a directory", root)
	}
	if w.interval <= 0 {
		return nil, fmt.Errorf("watch root: poll interval must be positive, got %s", w.interval)
	}

	prev, err := scan(root, recursive)
	if err != nil {
		return nil, err
	}

	out := make(chan domain.FileEvent)
	go func() {
		defer close(out)

		limiter := rate.NewLimiter(rate.Every(w.interval), 1)
		limiter.Allow()

		for {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			next, err := scan(root, recursive)
			if err != nil {
				w.log.Warn("rescan failed", "root", root, "error", err)
				continue
			}
			for _, ev := range diff(prev, next) {
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
			prev = next
		}
	}()
	return out, nil
}

// scan records every path below root, or only its direct children when
// recursive is false. Entries that vanish mid-walk are skipped.
func scan(root string, recursive bool) (snapshot, error) {
	snap := make(snapshot)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if path == root {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		snap[path] = entry{size: info.Size(), modTime: info.ModTime(), isDir: d.IsDir()}
		if d.IsDir() && !recursive {
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return snap, nil
}

// diff derives events between two snapshots in path order. A file that
// disappears while another with the same size and modification time
// appears is reported as a move to the new path.
func diff(prev, next snapshot) []domain.FileEvent {
	var removed, added, changed []string
	for path, old := range prev {
		cur, ok := next[path]
		switch {
		case !ok:
			removed = append(removed, path)
		case !old.isDir && (cur.size != old.size || !cur.modTime.Equal(old.modTime)):
			changed = append(changed, path)
		}
	}
	for path := range next {
		if _, ok := prev[path]; !ok {
			added = append(added, path)
		}
	}
	slices.Sort(removed)
	slices.Sort(added)
	slices.Sort(changed)

	var events []domain.FileEvent
	paired := make(map[string]bool)
	for _, path := range added {
		cur := next[path]
		op := domain.OpCreate
		if !cur.isDir {
			if src, ok := moveSource(prev, removed, paired, cur); ok {
				paired[src] = true
				op = domain.OpMove
			}
		}
		events = append(events, domain.FileEvent{Path: path, Op: op, IsDir: cur.isDir})
	}
	for _, path := range changed {
		events = append(events, domain.FileEvent{Path: path, Op: domain.OpWrite})
	}
	for _, path := range removed {
		if !paired[path] {
			events = append(events, domain.FileEvent{Path: path, Op: domain.OpRemove, IsDir: prev[path].isDir})
		}
	}
	return events
}

func moveSource(prev snapshot, removed []string, paired map[string]bool, cur entry) (string, bool) {
	for _, path := range removed {
		old := prev[path]
		if paired[path] || old.isDir {
			continue
		}
		if old.size == cur.size && old.modTime.Equal(cur.modTime) {
			return path, true
		}
	}
	return "", false
}
