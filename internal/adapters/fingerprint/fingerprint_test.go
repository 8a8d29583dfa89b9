package fingerprint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/weft/internal/adapters/fingerprint"
	"go.trai.ch/weft/internal/core/domain"
)

func module(name string, deps, exports []string, imports ...domain.Import) *domain.Module {
	return &domain.Module{
		Name:         domain.NewInternedString(name),
		Dependencies: domain.NewInternedStrings(deps),
		Exports:      domain.NewInternedStrings(exports),
		Imports:      imports,
	}
}

func TestHasher_Fingerprint(t *testing.T) {
	h := fingerprint.New()
	base := module("app", []string{"lib"}, []string{"main"})

	sum := h.Fingerprint(base, "1")
	assert.Len(t, sum, 16)
	assert.Equal(t, sum, h.Fingerprint(module("app", []string{"lib"}, []string{"main"}), "1"),
		"equal modules must hash equally")

	tests := []struct {
		name   string
		module *domain.Module
		salt   string
	}{
		{name: "salt", module: base, salt: "2"},
		{name: "name", module: module("cli", []string{"lib"}, []string{"main"}), salt: "1"},
		{name: "dependencies", module: module("app", []string{"util"}, []string{"main"}), salt: "1"},
		{name: "exports", module: module("app", []string{"lib"}, []string{"run"}), salt: "1"},
		{
			name: "imports",
			module: module("app", []string{"lib"}, []string{"main"}, domain.Import{
				From: domain.NewInternedString("lib"),
				Name: domain.NewInternedString("render"),
			}),
			salt: "1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, sum, h.Fingerprint(tt.module, tt.salt))
		})
	}
}

func TestHasher_SectionsDoNotBleed(t *testing.T) {
	h := fingerprint.New()

	// The same string moved from dependencies to exports must change the digest.
	a := module("m", []string{"x"}, nil)
	b := module("m", nil, []string{"x"})
	assert.NotEqual(t, h.Fingerprint(a, ""), h.Fingerprint(b, ""))
}
