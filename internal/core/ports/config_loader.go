package ports

import "go.trai.ch/knot/internal/core/domain"

// ConfigLoader defines the interface for loading the project configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load discovers the configuration file from the given working directory upwards
	// and returns the resolved configuration.
	Load(cwd string) (*domain.Config, error)
}
