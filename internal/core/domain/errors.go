package domain

import "go.trai.ch/zerr"

var (
	// ErrInvalidArity is returned when a tuple operation receives fewer key components than it needs.
	ErrInvalidArity = zerr.New("invalid tuple arity")

	// ErrUnroutableKey is returned when a value cannot be classified as a strong or weak key.
	ErrUnroutableKey = zerr.New("value cannot be used as a tuple key")

	// ErrBrokenInvariant is returned when the root finder produces no roots for a non-empty input.
	// It indicates a defect in the implementation, not a user error.
	ErrBrokenInvariant = zerr.New("graph root finder is broken")

	// ErrModuleAlreadyExists is returned when attempting to add a module with a name that already exists.
	ErrModuleAlreadyExists = zerr.New("module already exists")

	// ErrMissingDependency is returned when a module references a dependency that doesn't exist in the graph.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrMissingExport is returned when a module imports a name its provider does not export.
	ErrMissingExport = zerr.New("missing export")

	// ErrModuleNotFound is returned when a requested module is not found in the graph.
	ErrModuleNotFound = zerr.New("module not found")

	// ErrNoEntries is returned when there is nothing to analyze.
	ErrNoEntries = zerr.New("module graph has no entries")

	// ErrWatcherStarted is returned when a file watcher is started a second time.
	ErrWatcherStarted = zerr.New("watcher already started")

	// ErrAnalysisFailed is returned when the analyzer could not produce a plan.
	ErrAnalysisFailed = zerr.New("analysis failed")
)
