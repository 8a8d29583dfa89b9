package ports

import "go.trai.ch/weft/internal/core/domain"

// Fingerprinter computes stable digests of module definitions.
//
//go:generate mockgen -destination=mocks/mock_fingerprinter.go -package=mocks -source=fingerprinter.go
type Fingerprinter interface {
	// Fingerprint returns a digest of the module's name, dependencies, exports and imports.
	// Two calls with equal modules and salt return the same string.
	Fingerprint(module *domain.Module, salt string) string
}
