package ports

import "go.trai.ch/weft/internal/core/domain"

// StateStore persists module fingerprints between runs.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type StateStore interface {
	// Get retrieves the state recorded for a module.
	// Returns nil, nil if not found.
	Get(module string) (*domain.ModuleState, error)

	// Put records the given states, replacing earlier ones for the same modules.
	Put(states ...domain.ModuleState) error
}
