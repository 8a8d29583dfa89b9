// Package domain contains the core domain models for the module dependency graph.
package domain

import (
	"iter"
	"slices"

	"go.trai.ch/zerr"
)

// ModuleGraph represents a dependency graph of modules. Cycles are allowed.
type ModuleGraph struct {
	modules map[InternedString]Module
	order   []InternedString
	version string
}

// NewModuleGraph creates a new empty ModuleGraph.
func NewModuleGraph() *ModuleGraph {
	return &ModuleGraph{
		modules: make(map[InternedString]Module),
	}
}

// SetVersion sets the definition version. It salts module fingerprints.
func (g *ModuleGraph) SetVersion(version string) {
	g.version = version
}

// Version returns the definition version.
func (g *ModuleGraph) Version() string {
	return g.version
}

// AddModule adds a module to the graph.
// It returns an error if a module with the same name already exists.
func (g *ModuleGraph) AddModule(m *Module) error {
	if _, exists := g.modules[m.Name]; exists {
		return zerr.With(zerr.Wrap(ErrModuleAlreadyExists, "cannot add module"), "module", m.Name.String())
	}
	g.modules[m.Name] = *m
	g.order = append(g.order, m.Name)
	return nil
}

// Module returns the module with the given name.
func (g *ModuleGraph) Module(name InternedString) (Module, error) {
	m, ok := g.modules[name]
	if !ok {
		return Module{}, zerr.With(zerr.Wrap(ErrModuleNotFound, "cannot look up module"), "module", name.String())
	}
	return m, nil
}

// Len returns the number of modules.
func (g *ModuleGraph) Len() int {
	return len(g.order)
}

// Names returns the module names in insertion order.
func (g *ModuleGraph) Names() []InternedString {
	return slices.Clone(g.order)
}

// Modules returns an iterator over the modules in insertion order.
func (g *ModuleGraph) Modules() iter.Seq[Module] {
	return func(yield func(Module) bool) {
		for _, name := range g.order {
			if !yield(g.modules[name]) {
				return
			}
		}
	}
}

// Dependencies returns the dependencies of the named module, or nil if it is unknown.
func (g *ModuleGraph) Dependencies(name InternedString) []InternedString {
	return g.modules[name].Dependencies
}

// Validate checks that every dependency and import refers to a known module,
// and that every import names an export of its provider.
func (g *ModuleGraph) Validate() error {
	for _, name := range g.order {
		m := g.modules[name]
		for _, dep := range m.Dependencies {
			if _, ok := g.modules[dep]; !ok {
				return zerr.With(zerr.With(zerr.Wrap(ErrMissingDependency, "invalid module graph"),
					"module", name.String()), "dependency", dep.String())
			}
		}
		for _, imp := range m.Imports {
			provider, ok := g.modules[imp.From]
			if !ok {
				return zerr.With(zerr.With(zerr.Wrap(ErrMissingDependency, "invalid import"),
					"module", name.String()), "dependency", imp.From.String())
			}
			if !slices.Contains(provider.Exports, imp.Name) {
				return zerr.With(zerr.With(zerr.Wrap(ErrMissingExport, "invalid import"),
					"module", name.String()), "export", imp.From.String()+"."+imp.Name.String())
			}
		}
	}
	return nil
}
