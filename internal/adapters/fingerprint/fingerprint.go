// Package fingerprint computes module definition digests with xxhash.
package fingerprint

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
)

var _ ports.Fingerprinter = (*Hasher)(nil)

// Hasher fingerprints modules.
type Hasher struct{}

// New creates a new Hasher.
func New() *Hasher {
	return &Hasher{}
}

// Fingerprint hashes the salt and the module's name, dependencies, exports and imports.
// List order matters; the config loader canonicalizes lists before they get here.
func (h *Hasher) Fingerprint(module *domain.Module, salt string) string {
	hasher := xxhash.New()

	_, _ = hasher.WriteString(salt)
	_, _ = hasher.Write([]byte{0})

	_, _ = hasher.WriteString(module.Name.String())
	_, _ = hasher.Write([]byte{0})

	writeList(hasher, module.Dependencies)
	writeList(hasher, module.Exports)

	for _, imp := range module.Imports {
		_, _ = hasher.WriteString(imp.From.String())
		_, _ = hasher.Write([]byte{'.'})
		_, _ = hasher.WriteString(imp.Name.String())
		_, _ = hasher.Write([]byte{0})
	}
	_, _ = hasher.Write([]byte{0})

	return fmt.Sprintf("%016x", hasher.Sum64())
}

func writeList(hasher *xxhash.Digest, items []domain.InternedString) {
	for _, item := range items {
		_, _ = hasher.WriteString(item.String())
		_, _ = hasher.Write([]byte{0})
	}
	_, _ = hasher.Write([]byte{0}) // Section separator
}
