package ports

import "go.trai.ch/weft/internal/core/domain"

// ConfigLoader defines the interface for loading the module graph definition.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration file at path and returns the validated module graph.
	Load(path string) (*domain.ModuleGraph, error)
}
