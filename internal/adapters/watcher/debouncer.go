// Package watcher implements file watching for re-planning on configuration changes.
package watcher

import (
	"slices"
	"strings"
	"sync"
	"time"
	"unique"

	"go.trai.ch/weft/internal/core/ports"
)

// DefaultDebounceWindow is the default time window for coalescing file events.
const DefaultDebounceWindow = 50 * time.Millisecond

// Debouncer coalesces rapid file events into batches, keeping the last operation per path.
// The callback must not call Flush.
type Debouncer struct {
	mu      sync.Mutex
	pending map[unique.Handle[string]]ports.WatchOp
	timer   *time.Timer
	// armed counts timers that will fire or are delivering.
	armed    int
	settled  *sync.Cond
	window   time.Duration
	callback func(events []ports.WatchEvent)
}

// NewDebouncer creates a new debouncer with the given time window and callback.
func NewDebouncer(window time.Duration, callback func(events []ports.WatchEvent)) *Debouncer {
	d := &Debouncer{
		pending:  make(map[unique.Handle[string]]ports.WatchOp),
		window:   window,
		callback: callback,
	}
	d.settled = sync.NewCond(&d.mu)
	return d
}

// Add records an event and restarts the window.
func (d *Debouncer) Add(event ports.WatchEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[unique.Make(event.Path)] = event.Operation

	if d.timer != nil && d.timer.Stop() {
		d.armed--
	}
	d.timer = time.AfterFunc(d.window, d.fire)
	d.armed++
}

// fire runs on the timer's goroutine when the window expires.
func (d *Debouncer) fire() {
	d.mu.Lock()
	events := d.drain()
	d.mu.Unlock()

	if len(events) > 0 && d.callback != nil {
		d.callback(events)
	}

	d.mu.Lock()
	d.armed--
	if d.armed == 0 {
		d.settled.Broadcast()
	}
	d.mu.Unlock()
}

// Flush delivers pending events immediately and waits for every callback
// already started by an expired window to return.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil && d.timer.Stop() {
		d.armed--
	}
	d.timer = nil
	events := d.drain()
	d.mu.Unlock()

	if len(events) > 0 && d.callback != nil {
		d.callback(events)
	}

	d.mu.Lock()
	for d.armed > 0 {
		d.settled.Wait()
	}
	d.mu.Unlock()
}

// drain empties the pending set into a batch sorted by path. The caller holds mu.
func (d *Debouncer) drain() []ports.WatchEvent {
	if len(d.pending) == 0 {
		return nil
	}
	events := make([]ports.WatchEvent, 0, len(d.pending))
	for handle, op := range d.pending {
		events = append(events, ports.WatchEvent{Path: handle.Value(), Operation: op})
	}
	clear(d.pending)
	slices.SortFunc(events, func(a, b ports.WatchEvent) int {
		return strings.Compare(a.Path, b.Path)
	})
	return events
}
