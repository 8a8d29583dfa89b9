// Package config provides the configuration loader for weft.
package config

import (
	"bytes"
	"cmp"
	"errors"
	"io"
	"os"
	"slices"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader.
func NewLoader(log ports.Logger) *Loader {
	return &Loader{Logger: log}
}

// Load reads the configuration file at path and returns a validated domain.ModuleGraph.
func (l *Loader) Load(path string) (*domain.ModuleGraph, error) {
	if path == "" {
		path = domain.ConfigFileName
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read config file"), "path", path)
	}

	weftfile, err := parse(data)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}

	g, err := l.buildGraph(weftfile)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}

	l.Logger.Debug("loaded " + path)
	return g, nil
}

func parse(data []byte) (*Weftfile, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var weftfile Weftfile
	if err := dec.Decode(&weftfile); err != nil && !errors.Is(err, io.EOF) {
		return nil, zerr.Wrap(err, "failed to parse config file")
	}
	return &weftfile, nil
}

func (l *Loader) buildGraph(weftfile *Weftfile) (*domain.ModuleGraph, error) {
	g := domain.NewModuleGraph()
	g.SetVersion(weftfile.Version)

	for _, dto := range weftfile.Modules {
		imports := canonicalizeImports(dto.Imports)

		// Every import source is a dependency, declared or not.
		deps := slices.Clone(dto.DependsOn)
		for _, imp := range imports {
			deps = append(deps, imp.From.String())
		}

		exports := canonicalizeStrings(dto.Exports)
		if len(exports) < len(dto.Exports) {
			l.Logger.Warn("module " + dto.Name + " declares duplicate exports")
		}

		module := &domain.Module{
			Name:         domain.NewInternedString(dto.Name),
			Dependencies: canonicalizeStrings(deps),
			Exports:      exports,
			Imports:      imports,
		}
		if err := g.AddModule(module); err != nil {
			return nil, err
		}
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func canonicalizeStrings(strs []string) []domain.InternedString {
	if len(strs) == 0 {
		return nil
	}

	sorted := slices.Clone(strs)
	slices.Sort(sorted)
	return domain.NewInternedStrings(slices.Compact(sorted))
}

func canonicalizeImports(dtos []ImportDTO) []domain.Import {
	if len(dtos) == 0 {
		return nil
	}

	sorted := slices.Clone(dtos)
	slices.SortFunc(sorted, func(a, b ImportDTO) int {
		return cmp.Or(cmp.Compare(a.From, b.From), cmp.Compare(a.Name, b.Name))
	})
	sorted = slices.Compact(sorted)

	res := make([]domain.Import, len(sorted))
	for i, dto := range sorted {
		res[i] = domain.Import{
			From: domain.NewInternedString(dto.From),
			Name: domain.NewInternedString(dto.Name),
		}
	}
	return res
}
