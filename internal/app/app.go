// Package app implements the application layer for weft.
package app

import (
	"context"
	"time"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/weft/internal/engine/analyzer"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	analyzer     *analyzer.Analyzer
	logger       ports.Logger
	telemetry    ports.Telemetry
	store        ports.StateStore
	watcher      ports.Watcher
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	a *analyzer.Analyzer,
	log ports.Logger,
	telemetry ports.Telemetry,
	store ports.StateStore,
	watcher ports.Watcher,
) *App {
	return &App{
		configLoader: loader,
		analyzer:     a,
		logger:       log,
		telemetry:    telemetry,
		store:        store,
		watcher:      watcher,
	}
}

// PlanOptions configures a plan run.
type PlanOptions struct {
	// ConfigPath is the module graph definition to load. Empty means weft.yaml.
	ConfigPath string
	// Parallelism limits how many chunks are analyzed at once. Zero means GOMAXPROCS.
	Parallelism int
}

// Roots loads the module graph and returns its entry modules.
func (a *App) Roots(ctx context.Context, configPath string) ([]domain.InternedString, error) {
	graph, err := a.load(configPath)
	if err != nil {
		return nil, err
	}
	if graph.Len() == 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrNoEntries, "nothing to analyze"), "config", configPath)
	}

	entries, err := a.analyzer.Entries(ctx, graph)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to find entries")
	}
	return entries, nil
}

// Plan loads the module graph and analyzes it.
func (a *App) Plan(ctx context.Context, opts PlanOptions) (*domain.Plan, error) {
	graph, err := a.load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	a.analyzer.SetParallelism(opts.Parallelism)
	plan, err := a.analyzer.Analyze(ctx, graph)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to analyze module graph")
	}

	for _, ref := range plan.UnusedExports {
		a.logger.Warn("unused export " + ref.Module.String() + "." + ref.Export.String())
	}

	if err := a.recordChanges(graph, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Watch plans once and then again each time the configuration file changes,
// handing every plan to emit. A failed re-plan is logged and watching goes on.
// Watch returns when ctx is done, the watcher stops, or emit fails.
func (a *App) Watch(ctx context.Context, opts PlanOptions, emit func(*domain.Plan) error) error {
	if opts.ConfigPath == "" {
		opts.ConfigPath = domain.ConfigFileName
	}

	plan, err := a.Plan(ctx, opts)
	if err != nil {
		return err
	}
	if err := emit(plan); err != nil {
		return err
	}

	if err := a.watcher.Start(ctx, opts.ConfigPath); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to watch configuration"), "config", opts.ConfigPath)
	}
	defer func() {
		if err := a.watcher.Stop(); err != nil {
			a.logger.Error(err)
		}
	}()
	a.logger.Info("watching " + opts.ConfigPath)

	for event := range a.watcher.Events() {
		if event.Operation == ports.OpRemove {
			a.logger.Warn(event.Path + " was removed")
			continue
		}

		plan, err := a.Plan(ctx, opts)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			a.logger.Error(err)
			continue
		}
		if err := emit(plan); err != nil {
			return err
		}
	}
	return nil
}

// recordChanges fills plan.Changed from the state store and records the new fingerprints.
func (a *App) recordChanges(graph *domain.ModuleGraph, plan *domain.Plan) error {
	now := time.Now()
	var changed []domain.ModuleState
	for _, name := range graph.Names() {
		fp := plan.Fingerprints[name.String()]
		prev, err := a.store.Get(name.String())
		if err != nil {
			return zerr.Wrap(err, "failed to read module state")
		}
		if prev != nil && prev.Fingerprint == fp {
			continue
		}
		plan.Changed = append(plan.Changed, name)
		changed = append(changed, domain.ModuleState{Module: name.String(), Fingerprint: fp, Timestamp: now})
	}

	if len(changed) == 0 {
		return nil
	}
	if err := a.store.Put(changed...); err != nil {
		return zerr.Wrap(err, "failed to record module state")
	}
	return nil
}

// SetLogLevel changes the logger's minimum level if the logger supports it.
func (a *App) SetLogLevel(level domain.LogLevel) {
	if l, ok := a.logger.(interface{ SetLevel(domain.LogLevel) }); ok {
		l.SetLevel(level)
	}
}

// Close flushes telemetry.
func (a *App) Close() error {
	return a.telemetry.Close()
}

func (a *App) load(configPath string) (*domain.ModuleGraph, error) {
	graph, err := a.configLoader.Load(configPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	return graph, nil
}
