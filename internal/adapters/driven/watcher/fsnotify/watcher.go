// Package fsnotify implements driven.Watcher with native filesystem
// notifications.
package fsnotify

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	fsn "github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/reportlens/internal/core/domain"
	"github.com/custodia-labs/reportlens/internal/core/ports/driven"
)

// Ensure Watcher implements the interface.
var _ driven.Watcher = (*Watcher)(nil)

// DefaultMoveWindow is how soon after a rename a create is reported as
// the destination of a move.
const DefaultMoveWindow = 100 * time.Millisecond

// eventBuffer is the capacity of the outgoing event channel.
const eventBuffer = 64

// Watcher streams events from an fsnotify watcher.
type Watcher struct {
	log        *log.Logger
	moveWindow time.Duration
}

// New creates a watcher. logger may be nil.
func New(logger *log.Logger) *Watcher {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Watcher{log: logger, moveWindow: DefaultMoveWindow}
}

// Watch subscribes to root and, when recursive, to every directory below
// it including ones created later. Files found in a newly created
// directory are reported as creates.
func (w *Watcher) Watch(ctx context.Context, root string, recursive bool) (<-chan domain.FileEvent, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("watch root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch root: %s is not a directory", root)
	}

	fw, err := fsn.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	s := &session{
		fw:         fw,
		out:        make(chan domain.FileEvent, eventBuffer),
		recursive:  recursive,
		moveWindow: w.moveWindow,
		log:        w.log,
	}
	if err := s.addTree(root); err != nil {
		_ = fw.Close()
		return nil, err
	}

	go s.run(ctx)
	return s.out, nil
}

// session is one Watch subscription.
type session struct {
	fw         *fsn.Watcher
	out        chan domain.FileEvent
	recursive  bool
	moveWindow time.Duration
	log        *log.Logger

	lastRename time.Time
}

func (s *session) run(ctx context.Context) {
	defer close(s.out)
	defer s.fw.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.fw.Events:
			if !ok {
				return
			}
			s.handle(ctx, ev, time.Now())
		case err, ok := <-s.fw.Errors:
			if !ok {
				return
			}
			s.log.Warn("watcher error", "error", err)
		}
	}
}

// handle translates one fsnotify event. A create that closely follows a
// rename is the destination of a move within the tree.
func (s *session) handle(ctx context.Context, ev fsn.Event, now time.Time) {
	switch {
	case ev.Has(fsn.Create):
		isDir := isDirectory(ev.Name)
		op := domain.OpCreate
		if !s.lastRename.IsZero() && now.Sub(s.lastRename) <= s.moveWindow {
			op = domain.OpMove
			s.lastRename = time.Time{}
		}
		s.send(ctx, domain.FileEvent{Path: ev.Name, Op: op, IsDir: isDir})
		if isDir && s.recursive {
			s.watchNewDir(ctx, ev.Name)
		}

	case ev.Has(fsn.Write):
		s.send(ctx, domain.FileEvent{Path: ev.Name, Op: domain.OpWrite, IsDir: isDirectory(ev.Name)})

	case ev.Has(fsn.Rename):
		s.lastRename = now
		s.send(ctx, domain.FileEvent{Path: ev.Name, Op: domain.OpRemove})

	case ev.Has(fsn.Remove):
		s.send(ctx, domain.FileEvent{Path: ev.Name, Op: domain.OpRemove})
	}
}

// watchNewDir subscribes to a directory created after Watch began and
// reports the files that landed in it before the subscription existed.
func (s *session) watchNewDir(ctx context.Context, dir string) {
	if err := s.addTree(dir); err != nil {
		s.log.Warn("cannot watch new directory", "dir", dir, "error", err)
		return
	}
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || path == dir {
			return nil
		}
		s.send(ctx, domain.FileEvent{Path: path, Op: domain.OpCreate, IsDir: d.IsDir()})
		return nil
	})
}

// addTree watches dir and, when recursive, its subdirectories.
func (s *session) addTree(dir string) error {
	if !s.recursive {
		if err := s.fw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		return nil
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			s.log.Debug("skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := s.fw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (s *session) send(ctx context.Context, ev domain.FileEvent) {
	select {
	case s.out <- ev:
	case <-ctx.Done():
	}
}

func isDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
