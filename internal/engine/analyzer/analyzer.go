// Package analyzer turns a module graph into a chunk plan.
package analyzer

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/weft/internal/incr/arena"
	"go.trai.ch/weft/internal/incr/memo"
	"go.trai.ch/weft/internal/incr/overlay"
	"go.trai.ch/weft/internal/incr/roots"
	"go.trai.ch/weft/internal/incr/tuple"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

const fingerprintFact = "fingerprint"

// Analyzer computes entries, chunks and unused exports of module graphs.
//
// An Analyzer remembers module fingerprints between calls to Analyze. A
// module whose definition is unchanged keeps its handle and its cached
// fingerprint; changed and removed modules are released and their cache
// entries swept.
type Analyzer struct {
	fingerprinter ports.Fingerprinter
	telemetry     ports.Telemetry
	logger        ports.Logger
	parallelism   int

	mu           sync.Mutex
	modules      *arena.Arena[domain.Module]
	handles      map[domain.InternedString]arena.Handle[domain.Module]
	fingerprints *memo.Cache[string]
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer(fingerprinter ports.Fingerprinter, telemetry ports.Telemetry, logger ports.Logger) *Analyzer {
	return &Analyzer{
		fingerprinter: fingerprinter,
		telemetry:     telemetry,
		logger:        logger,
		parallelism:   runtime.GOMAXPROCS(0),
		modules:       arena.New[domain.Module](),
		handles:       make(map[domain.InternedString]arena.Handle[domain.Module]),
		fingerprints:  memo.New[string](),
	}
}

// SetParallelism limits the number of chunks analyzed at once. Values below 1 mean GOMAXPROCS.
func (a *Analyzer) SetParallelism(n int) {
	if n < 1 {
		n = runtime.GOMAXPROCS(0)
	}
	a.parallelism = n
}

// Entries returns the modules a traversal of g has to start from.
func (a *Analyzer) Entries(ctx context.Context, g *domain.ModuleGraph) ([]domain.InternedString, error) {
	_, vertex := a.telemetry.Record(ctx, "entries")

	entries, err := findEntries(g)
	vertex.Complete(err)
	return entries, err
}

// Analyze validates g and computes its plan.
func (a *Analyzer) Analyze(ctx context.Context, g *domain.ModuleGraph) (plan *domain.Plan, err error) {
	if g.Len() == 0 {
		return nil, zerr.Wrap(domain.ErrNoEntries, "nothing to analyze")
	}
	if err := g.Validate(); err != nil {
		return nil, failed("validate", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	ctx, vertex := a.telemetry.Record(ctx, "analyze")
	defer func() { vertex.Complete(err) }()

	a.syncModules(g)

	entries, err := a.Entries(ctx, g)
	if err != nil {
		return nil, failed("entries", err)
	}

	fingerprints, err := a.fingerprintModules(ctx, g)
	if err != nil {
		return nil, failed("fingerprints", err)
	}

	unused, err := a.unusedExports(ctx, g)
	if err != nil {
		return nil, failed("exports", err)
	}

	chunks, err := a.buildChunks(ctx, g, entries)
	if err != nil {
		return nil, failed("chunks", err)
	}

	vertex.Log(domain.LogLevelInfo, fmt.Sprintf("%d entries, %d modules", len(entries), g.Len()))
	return &domain.Plan{
		Entries:       entries,
		Chunks:        chunks,
		UnusedExports: unused,
		Fingerprints:  fingerprints,
	}, nil
}

// failed marks err as an analysis failure of phase. The cause stays matchable with errors.Is.
func failed(phase string, err error) error {
	return zerr.With(fmt.Errorf("%w: %w", domain.ErrAnalysisFailed, err), "phase", phase)
}

func findEntries(g *domain.ModuleGraph) ([]domain.InternedString, error) {
	return roots.Find(g.Names(), g.Dependencies)
}

// syncModules keeps handles of unchanged modules and releases the rest.
func (a *Analyzer) syncModules(g *domain.ModuleGraph) {
	seen := make(map[domain.InternedString]struct{}, g.Len())
	released := 0

	for m := range g.Modules() {
		seen[m.Name] = struct{}{}
		if h, ok := a.handles[m.Name]; ok {
			if old, alive := h.Value(); alive && old.Equal(&m) {
				continue
			}
			a.modules.Release(h)
			released++
		}
		a.handles[m.Name] = a.modules.Put(m)
	}

	for name, h := range a.handles {
		if _, ok := seen[name]; ok {
			continue
		}
		a.modules.Release(h)
		delete(a.handles, name)
		released++
	}

	if released > 0 {
		swept := a.fingerprints.Sweep()
		a.logger.Debug(fmt.Sprintf("released %d modules, swept %d cached facts", released, swept))
	}
}

func (a *Analyzer) fingerprintKeys(name domain.InternedString, salt string) []tuple.Key {
	return []tuple.Key{a.handles[name].WeakKey(), tuple.Strong(fingerprintFact), tuple.Strong(salt)}
}

// fingerprintModules returns the fingerprint of every module, computing
// only those not cached by an earlier run.
func (a *Analyzer) fingerprintModules(ctx context.Context, g *domain.ModuleGraph) (map[string]string, error) {
	_, vertex := a.telemetry.Record(ctx, "fingerprints")

	salt := g.Version()
	out := make(map[string]string, g.Len())
	computed := 0
	for m := range g.Modules() {
		h := a.handles[m.Name]
		fp, err := a.fingerprints.Provide(a.fingerprintKeys(m.Name, salt), func([]tuple.Key) (string, error) {
			module, ok := h.Value()
			if !ok {
				return "", zerr.With(zerr.Wrap(domain.ErrBrokenInvariant, "module handle released"),
					"module", m.Name.String())
			}
			computed++
			return a.fingerprinter.Fingerprint(&module, salt), nil
		})
		if err != nil {
			vertex.Complete(err)
			return nil, err
		}
		out[m.Name.String()] = fp
	}

	if computed == 0 {
		vertex.Cached()
	}
	vertex.Log(domain.LogLevelDebug, fmt.Sprintf("computed %d of %d fingerprints", computed, g.Len()))
	vertex.Complete(nil)
	return out, nil
}

// unusedExports lists the exports no module imports.
func (a *Analyzer) unusedExports(ctx context.Context, g *domain.ModuleGraph) ([]domain.ExportRef, error) {
	_, vertex := a.telemetry.Record(ctx, "exports")

	// (provider, export) for every import.
	imported := tuple.NewSet()
	for m := range g.Modules() {
		for _, imp := range m.Imports {
			if err := imported.Add(tuple.MustNew(a.handles[imp.From].WeakKey(), tuple.Strong(imp.Name))); err != nil {
				vertex.Complete(err)
				return nil, err
			}
		}
	}

	var unused []domain.ExportRef
	for m := range g.Modules() {
		provider := a.handles[m.Name].WeakKey()
		for _, export := range m.Exports {
			if !imported.Has(tuple.MustNew(provider, tuple.Strong(export))) {
				unused = append(unused, domain.ExportRef{Module: m.Name, Export: export})
			}
		}
	}

	vertex.Log(domain.LogLevelDebug, fmt.Sprintf("%d imported exports, %d unused", imported.Len(), len(unused)))
	vertex.Complete(nil)
	return unused, nil
}

// buildChunks traverses the graph once per entry, in parallel.
func (a *Analyzer) buildChunks(
	ctx context.Context,
	g *domain.ModuleGraph,
	entries []domain.InternedString,
) ([]domain.Chunk, error) {
	chunks := make([]domain.Chunk, len(entries))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(a.parallelism)
	for i, entry := range entries {
		eg.Go(func() error {
			_, vertex := a.telemetry.Record(egCtx, "chunk "+entry.String())
			chunk, err := buildChunk(egCtx, g, entry)
			vertex.Complete(err)
			if err != nil {
				return zerr.With(err, "entry", entry.String())
			}
			chunks[i] = chunk
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	markShared(chunks)
	return chunks, nil
}

// buildChunk collects the modules reachable from entry. Every module is
// reached with the set of modules on the path from entry to it; a
// dependency on one of those is recorded as circular.
func buildChunk(ctx context.Context, g *domain.ModuleGraph, entry domain.InternedString) (domain.Chunk, error) {
	chunk := domain.Chunk{Entry: entry, Modules: []domain.InternedString{entry}}

	root := overlay.New[domain.InternedString, struct{}]()
	root.Add(entry)
	paths := map[domain.InternedString]*overlay.Map[domain.InternedString, struct{}]{entry: root}

	work := tuple.NewQueue()
	if err := work.Enqueue(tuple.MustNew(tuple.Strong(entry), tuple.Strong(entry))); err != nil {
		return domain.Chunk{}, err
	}

	for {
		item, ok := work.Dequeue()
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			return domain.Chunk{}, err
		}

		name, _ := item[1].Value().(domain.InternedString)
		path := paths[name]
		for _, dep := range g.Dependencies(name) {
			if path.Has(dep) {
				chunk.Circular = append(chunk.Circular, domain.Edge{From: name, To: dep})
				continue
			}
			if _, seen := paths[dep]; seen {
				continue
			}

			next := path.CreateChild()
			next.Add(dep)
			paths[dep] = next
			chunk.Modules = append(chunk.Modules, dep)
			if err := work.Enqueue(tuple.MustNew(tuple.Strong(entry), tuple.Strong(dep))); err != nil {
				return domain.Chunk{}, err
			}
		}
	}

	return chunk, nil
}

// markShared fills each chunk's Shared list with the modules that also belong to another chunk.
func markShared(chunks []domain.Chunk) {
	counts := make(map[domain.InternedString]int)
	for _, c := range chunks {
		for _, m := range c.Modules {
			counts[m]++
		}
	}
	for i := range chunks {
		for _, m := range chunks[i].Modules {
			if counts[m] > 1 {
				chunks[i].Shared = append(chunks[i].Shared, m)
			}
		}
	}
}
