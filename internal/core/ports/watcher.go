package ports

import (
	"context"
	"iter"
)

// WatchOp represents the type of file system operation.
type WatchOp uint8

const (
	// OpCreate indicates a file was created, which includes being renamed into place.
	OpCreate WatchOp = iota
	// OpWrite indicates a file was modified.
	OpWrite
	// OpRemove indicates a file was removed or renamed away.
	OpRemove
)

// WatchEvent is a coalesced change to one watched file.
type WatchEvent struct {
	// Path is the watched path that changed, as passed to Start.
	Path string
	// Operation is the last operation seen for Path.
	Operation WatchOp
}

// Watcher reports changes to a set of files.
//
//go:generate mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type Watcher interface {
	// Start begins watching the given files until ctx is done or Stop is called.
	Start(ctx context.Context, paths ...string) error
	// Stop stops the watcher and releases all resources.
	Stop() error
	// Events returns an iterator of file events. It ends once the watcher stops.
	Events() iter.Seq[WatchEvent]
}
