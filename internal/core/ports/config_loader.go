package ports

import "go.trai.ch/cdnloader/internal/core/domain"

// ConfigLoader defines the interface for loading cache configurations.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration file at path.
	// Relative output directories are resolved against the directory of path.
	Load(path string) (*domain.Config, error)
}
