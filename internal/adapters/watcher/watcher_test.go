package watcher_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/weft/internal/adapters/watcher"
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/weft/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

const eventTimeout = 5 * time.Second

func startWatcher(t *testing.T, paths ...string) (*watcher.Watcher, <-chan ports.WatchEvent) {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Error(gomock.Any()).AnyTimes()

	w := watcher.NewWatcher(log, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, w.Start(ctx, paths...))
	t.Cleanup(func() { _ = w.Stop() })

	out := make(chan ports.WatchEvent, 16)
	go func() {
		defer close(out)
		for event := range w.Events() {
			out <- event
		}
	}()
	return w, out
}

func next(t *testing.T, events <-chan ports.WatchEvent) ports.WatchEvent {
	t.Helper()
	select {
	case event, ok := <-events:
		require.True(t, ok, "watcher stopped before an event arrived")
		return event
	case <-time.After(eventTimeout):
		t.Fatal("timed out waiting for a file event")
		return ports.WatchEvent{}
	}
}

func TestWatcher_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "weft.yaml")
	require.NoError(t, os.WriteFile(target, []byte("modules: {}\n"), 0o600))

	_, events := startWatcher(t, target)

	// Changes to neighbours are dropped.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(target, []byte("modules:\n  app: {}\n"), 0o600))

	event := next(t, events)
	assert.Equal(t, target, event.Path)
}

func TestWatcher_ReportsRenameOver(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "weft.yaml")
	require.NoError(t, os.WriteFile(target, []byte("modules: {}\n"), 0o600))

	_, events := startWatcher(t, target)

	tmp := filepath.Join(dir, "weft.yaml.swp")
	require.NoError(t, os.WriteFile(tmp, []byte("modules:\n  app: {}\n"), 0o600))
	require.NoError(t, os.Rename(tmp, target))

	event := next(t, events)
	assert.Equal(t, target, event.Path)
	assert.Equal(t, ports.OpCreate, event.Operation)
}

func TestWatcher_StopEndsEvents(t *testing.T) {
	target := filepath.Join(t.TempDir(), "weft.yaml")
	w, events := startWatcher(t, target)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(eventTimeout):
		t.Fatal("events did not end after Stop")
	}
}

func TestWatcher_StartTwice(t *testing.T) {
	target := filepath.Join(t.TempDir(), "weft.yaml")
	w, _ := startWatcher(t, target)

	err := w.Start(context.Background(), target)
	assert.True(t, errors.Is(err, domain.ErrWatcherStarted), "got %v", err)
}

func TestWatcher_MissingDirectory(t *testing.T) {
	ctrl := gomock.NewController(t)
	w := watcher.NewWatcher(mocks.NewMockLogger(ctrl), time.Millisecond)

	err := w.Start(context.Background(), filepath.Join(t.TempDir(), "missing", "weft.yaml"))
	require.Error(t, err)
	assert.NoError(t, w.Stop())
}
