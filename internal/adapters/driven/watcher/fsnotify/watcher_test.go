package fsnotify

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	fsn "github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reportlens/internal/core/domain"
)

const waitFor = 2 * time.Second

// next returns the first event matching want, failing after waitFor.
func next(t *testing.T, events <-chan domain.FileEvent, want func(domain.FileEvent) bool) domain.FileEvent {
	t.Helper()
	deadline := time.After(waitFor)
	for {
		select {
		case ev, ok := <-events:
			require.True(t, ok, "channel closed before matching event")
			if want(ev) {
				return ev
			}
		case <-deadline:
			t.Fatal("timeout waiting for event")
		}
	}
}

func startWatch(t *testing.T, root string, recursive bool) <-chan domain.FileEvent {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	events, err := New(nil).Watch(ctx, root, recursive)
	require.NoError(t, err)
	return events
}

func TestWatch_Create(t *testing.T) {
	root := t.TempDir()
	events := startWatch(t, root, true)

	path := filepath.Join(root, "report.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n"), 0o600))

	ev := next(t, events, func(ev domain.FileEvent) bool { return ev.Path == path })
	assert.Equal(t, domain.OpCreate, ev.Op)
	assert.False(t, ev.IsDir)
}

func TestWatch_Write(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "report.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n"), 0o600))
	events := startWatch(t, root, true)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.WriteString("1,2\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	ev := next(t, events, func(ev domain.FileEvent) bool { return ev.Path == path })
	assert.Equal(t, domain.OpWrite, ev.Op)
}

func TestWatch_RenameIsMove(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "draft.csv")
	dst := filepath.Join(root, "final.csv")
	require.NoError(t, os.WriteFile(src, []byte("a,b\n"), 0o600))
	events := startWatch(t, root, true)

	require.NoError(t, os.Rename(src, dst))

	ev := next(t, events, func(ev domain.FileEvent) bool { return ev.Path == dst })
	assert.Equal(t, domain.OpMove, ev.Op)
}

func TestWatch_NewSubdirectory(t *testing.T) {
	root := t.TempDir()
	events := startWatch(t, root, true)

	sub := filepath.Join(root, "q1")
	require.NoError(t, os.Mkdir(sub, 0o755))
	dirEv := next(t, events, func(ev domain.FileEvent) bool { return ev.Path == sub })
	assert.True(t, dirEv.IsDir)

	path := filepath.Join(sub, "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o600))

	ev := next(t, events, func(ev domain.FileEvent) bool { return ev.Path == path })
	assert.Equal(t, domain.OpCreate, ev.Op)
}

func TestWatch_ExistingSubdirectoryIsWatched(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "nested", "deeper")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	events := startWatch(t, root, true)

	path := filepath.Join(sub, "report.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	ev := next(t, events, func(ev domain.FileEvent) bool { return ev.Path == path })
	assert.Equal(t, domain.OpCreate, ev.Op)
}

func TestWatch_Errors(t *testing.T) {
	_, err := New(nil).Watch(context.Background(), "/non/existent/path", true)
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file.csv")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	_, err = New(nil).Watch(context.Background(), file, true)
	assert.ErrorContains(t, err, "not a directory")
}

func TestWatch_ClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	events, err := New(nil).Watch(ctx, t.TempDir(), true)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-events:
		if ok {
			for range events {
			}
		}
	case <-time.After(waitFor):
		t.Fatal("channel did not close after context cancellation")
	}
}

func TestSession_Handle(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.csv")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	now := time.Now()

	tests := []struct {
		name       string
		event      fsn.Event
		lastRename time.Time
		want       []domain.FileEvent
	}{
		{"create", fsn.Event{Name: file, Op: fsn.Create}, time.Time{}, []domain.FileEvent{{Path: file, Op: domain.OpCreate}}},
		{"create after rename", fsn.Event{Name: file, Op: fsn.Create}, now.Add(-10 * time.Millisecond), []domain.FileEvent{{Path: file, Op: domain.OpMove}}},
		{"create long after rename", fsn.Event{Name: file, Op: fsn.Create}, now.Add(-time.Second), []domain.FileEvent{{Path: file, Op: domain.OpCreate}}},
		{"write", fsn.Event{Name: file, Op: fsn.Write}, time.Time{}, []domain.FileEvent{{Path: file, Op: domain.OpWrite}}},
		{"write with chmod", fsn.Event{Name: file, Op: fsn.Write | fsn.Chmod}, time.Time{}, []domain.FileEvent{{Path: file, Op: domain.OpWrite}}},
		{"remove", fsn.Event{Name: file, Op: fsn.Remove}, time.Time{}, []domain.FileEvent{{Path: file, Op: domain.OpRemove}}},
		{"rename source", fsn.Event{Name: file, Op: fsn.Rename}, time.Time{}, []domain.FileEvent{{Path: file, Op: domain.OpRemove}}},
		{"chmod ignored", fsn.Event{Name: file, Op: fsn.Chmod}, time.Time{}, nil},
		{"directory create", fsn.Event{Name: dir, Op: fsn.Create}, time.Time{}, []domain.FileEvent{{Path: dir, Op: domain.OpCreate, IsDir: true}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &session{
				out:        make(chan domain.FileEvent, 8),
				moveWindow: DefaultMoveWindow,
				log:        New(nil).log,
				lastRename: tt.lastRename,
			}

			s.handle(context.Background(), tt.event, now)
			close(s.out)

			var got []domain.FileEvent
			for ev := range s.out {
				got = append(got, ev)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSession_RenameArmsMove(t *testing.T) {
	s := &session{out: make(chan domain.FileEvent, 4), moveWindow: DefaultMoveWindow, log: New(nil).log}
	now := time.Now()
	dst := filepath.Join(t.TempDir(), "b.csv")

	s.handle(context.Background(), fsn.Event{Name: "/gone/a.csv", Op: fsn.Rename}, now)
	s.handle(context.Background(), fsn.Event{Name: dst, Op: fsn.Create}, now.Add(time.Millisecond))
	s.handle(context.Background(), fsn.Event{Name: dst, Op: fsn.Create}, now.Add(2*time.Millisecond))

	assert.Equal(t, domain.OpRemove, (<-s.out).Op)
	assert.Equal(t, domain.OpMove, (<-s.out).Op)
	assert.Equal(t, domain.OpCreate, (<-s.out).Op, "a rename pairs with one create only")
}
