package watcher

import (
	"context"
	"iter"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

const eventChannelBuffer = 100

// Watcher implements ports.Watcher using fsnotify.
//
// fsnotify watches directories, so the watcher subscribes to the parent of
// every target and drops events for other entries. This also catches editors
// that save by renaming a temporary file over the target.
type Watcher struct {
	logger ports.Logger
	window time.Duration

	mu        sync.Mutex
	started   bool
	fsWatcher *fsnotify.Watcher
	targets   map[string]string
	debouncer *Debouncer

	events chan ports.WatchEvent
	done   chan struct{}
}

// NewWatcher creates a Watcher that coalesces events over window.
// No file system resources are held until Start.
func NewWatcher(log ports.Logger, window time.Duration) *Watcher {
	return &Watcher{
		logger: log,
		window: window,
		events: make(chan ports.WatchEvent, eventChannelBuffer),
		done:   make(chan struct{}),
	}
}

// Start begins watching paths. A Watcher can be started once.
func (w *Watcher) Start(ctx context.Context, paths ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return zerr.Wrap(domain.ErrWatcherStarted, "cannot start watcher")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return zerr.Wrap(err, "failed to create file watcher")
	}

	targets := make(map[string]string, len(paths))
	dirs := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = fsw.Close()
			return zerr.With(zerr.Wrap(err, "failed to resolve watched path"), "path", p)
		}
		targets[abs] = p

		dir := filepath.Dir(abs)
		if _, ok := dirs[dir]; ok {
			continue
		}
		dirs[dir] = struct{}{}
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return zerr.With(zerr.Wrap(err, "failed to watch directory"), "path", dir)
		}
	}

	w.started = true
	w.fsWatcher = fsw
	w.targets = targets
	w.debouncer = NewDebouncer(w.window, w.deliver)

	go w.processEvents(ctx, fsw)
	return nil
}

// Stop stops the watcher and releases all resources.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fsWatcher == nil {
		return nil
	}
	err := w.fsWatcher.Close()
	w.fsWatcher = nil
	if err != nil {
		return zerr.Wrap(err, "failed to close file watcher")
	}
	return nil
}

// Events returns an iterator of coalesced file events.
func (w *Watcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for {
			select {
			case <-w.done:
				return
			case event := <-w.events:
				if !yield(event) {
					return
				}
			}
		}
	}
}

func (w *Watcher) processEvents(ctx context.Context, fsw *fsnotify.Watcher) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			path, ok := w.targets[filepath.Clean(event.Name)]
			if !ok {
				continue
			}
			op, ok := convertOp(event.Op)
			if !ok {
				continue
			}
			w.debouncer.Add(ports.WatchEvent{Path: path, Operation: op})
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error(zerr.Wrap(err, "file watcher error"))
		}
	}
}

// deliver forwards a debounced batch until the watcher stops.
func (w *Watcher) deliver(events []ports.WatchEvent) {
	for _, event := range events {
		select {
		case w.events <- event:
		case <-w.done:
			return
		}
	}
}

func convertOp(op fsnotify.Op) (ports.WatchOp, bool) {
	switch {
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return ports.OpRemove, true
	case op.Has(fsnotify.Create):
		return ports.OpCreate, true
	case op.Has(fsnotify.Write):
		return ports.OpWrite, true
	default:
		return 0, false
	}
}
