package loader

import (
	"go.trai.ch/knot/internal/core/domain"
	"go.trai.ch/knot/internal/core/ports"
)

// Factory builds registries around shared, stateless collaborators.
// Each registry it returns owns its own cache.
type Factory struct {
	compiler  ports.UnitCompiler
	hasher    ports.Hasher
	artifacts ports.ArtifactStore
	telemetry ports.Telemetry
	logger    ports.Logger
}

// NewFactory creates a new Factory.
func NewFactory(
	compiler ports.UnitCompiler,
	hasher ports.Hasher,
	artifacts ports.ArtifactStore,
	telemetry ports.Telemetry,
	logger ports.Logger,
) *Factory {
	return &Factory{
		compiler:  compiler,
		hasher:    hasher,
		artifacts: artifacts,
		telemetry: telemetry,
		logger:    logger,
	}
}

// New creates a registry over units. The artifact store is used when cfg
// enables it and noCache is unset.
func (f *Factory) New(units ports.UnitStore, cfg *domain.Config, noCache bool) *Registry {
	opts := []Option{
		WithTelemetry(f.telemetry),
		WithLogger(f.logger),
		WithSelfReferencePolicy(cfg.SelfReference),
	}
	if cfg.ArtifactsEnabled() && !noCache {
		opts = append(opts, WithArtifactStore(f.artifacts, f.hasher, cfg.TargetDir))
	}
	return NewRegistry(units, f.compiler, opts...)
}
