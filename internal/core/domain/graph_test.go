package domain_test

import (
	"errors"
	"testing"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/zerr"
)

func names(ss ...string) []domain.InternedString {
	return domain.NewInternedStrings(ss)
}

func TestModuleGraph_AddModule(t *testing.T) {
	g := domain.NewModuleGraph()
	m := domain.Module{Name: domain.NewInternedString("app")}

	if err := g.AddModule(&m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := g.AddModule(&m)
	if err == nil {
		t.Fatal("expected error when adding duplicate module, got nil")
	}
	if !errors.Is(err, domain.ErrModuleAlreadyExists) {
		t.Errorf("expected ErrModuleAlreadyExists, got %v", err)
	}

	// Verify error is of correct type
	zErr, ok := err.(*zerr.Error)
	if !ok {
		t.Fatalf("expected *zerr.Error, got %T", err)
	}
	// Verify metadata
	meta := zErr.Metadata()
	if name, ok := meta["module"].(string); !ok || name != "app" {
		t.Errorf("expected metadata module=app, got %v", meta["module"])
	}
}

func TestModuleGraph_ModulesKeepInsertionOrder(t *testing.T) {
	g := domain.NewModuleGraph()
	for _, name := range []string{"c", "a", "b"} {
		if err := g.AddModule(&domain.Module{Name: domain.NewInternedString(name)}); err != nil {
			t.Fatalf("failed to add module %s: %v", name, err)
		}
	}

	var got []string
	for m := range g.Modules() {
		got = append(got, m.Name.String())
	}

	if len(got) != 3 || got[0] != "c" || got[1] != "a" || got[2] != "b" {
		t.Errorf("unexpected module order: %v", got)
	}
	if g.Len() != 3 {
		t.Errorf("expected 3 modules, got %d", g.Len())
	}
}

func TestModuleGraph_ValidateAllowsCycles(t *testing.T) {
	g := domain.NewModuleGraph()
	_ = g.AddModule(&domain.Module{Name: domain.NewInternedString("A"), Dependencies: names("B")})
	_ = g.AddModule(&domain.Module{Name: domain.NewInternedString("B"), Dependencies: names("A")})

	if err := g.Validate(); err != nil {
		t.Fatalf("cycles must be valid, got: %v", err)
	}

	deps := g.Dependencies(domain.NewInternedString("A"))
	if len(deps) != 1 || deps[0].String() != "B" {
		t.Errorf("unexpected dependencies of A: %v", deps)
	}
}

func TestModuleGraph_ValidateMissingDependency(t *testing.T) {
	g := domain.NewModuleGraph()
	_ = g.AddModule(&domain.Module{Name: domain.NewInternedString("A"), Dependencies: names("ghost")})

	err := g.Validate()
	if !errors.Is(err, domain.ErrMissingDependency) {
		t.Fatalf("expected ErrMissingDependency, got %v", err)
	}

	var zErr *zerr.Error
	if !errors.As(err, &zErr) {
		t.Fatalf("expected *zerr.Error, got %T", err)
	}
	if dep := zErr.Metadata()["dependency"]; dep != "ghost" {
		t.Errorf("expected metadata dependency=ghost, got %v", dep)
	}
}

func TestModuleGraph_ValidateImports(t *testing.T) {
	g := domain.NewModuleGraph()
	_ = g.AddModule(&domain.Module{
		Name:    domain.NewInternedString("lib"),
		Exports: names("render"),
	})
	_ = g.AddModule(&domain.Module{
		Name:         domain.NewInternedString("app"),
		Dependencies: names("lib"),
		Imports: []domain.Import{
			{From: domain.NewInternedString("lib"), Name: domain.NewInternedString("parse")},
		},
	})

	if err := g.Validate(); !errors.Is(err, domain.ErrMissingExport) {
		t.Fatalf("expected ErrMissingExport, got %v", err)
	}
}

func TestModuleGraph_ModuleNotFound(t *testing.T) {
	g := domain.NewModuleGraph()
	if _, err := g.Module(domain.NewInternedString("nope")); !errors.Is(err, domain.ErrModuleNotFound) {
		t.Errorf("expected ErrModuleNotFound, got %v", err)
	}
}

func TestModule_Equal(t *testing.T) {
	a := domain.Module{Name: domain.NewInternedString("app"), Dependencies: names("lib")}
	b := domain.Module{Name: domain.NewInternedString("app"), Dependencies: names("lib")}
	if !a.Equal(&b) {
		t.Error("expected equal modules")
	}

	b.Exports = names("main")
	if a.Equal(&b) {
		t.Error("expected modules with different exports to differ")
	}
}
