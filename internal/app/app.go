// Package app implements the application layer for knot.
package app

import (
	"context"
	"strconv"

	"go.trai.ch/knot/internal/core/domain"
	"go.trai.ch/knot/internal/core/ports"
	"go.trai.ch/knot/internal/engine/loader"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	sources      ports.SourceLoader
	registries   *loader.Factory
	artifacts    ports.ArtifactStore
	telemetry    ports.Telemetry
	logger       ports.Logger
	workDir      string
}

// New creates a new App instance.
func New(
	configLoader ports.ConfigLoader,
	sources ports.SourceLoader,
	registries *loader.Factory,
	artifacts ports.ArtifactStore,
	telemetry ports.Telemetry,
	logger ports.Logger,
) *App {
	return &App{
		configLoader: configLoader,
		sources:      sources,
		registries:   registries,
		artifacts:    artifacts,
		telemetry:    telemetry,
		logger:       logger,
		workDir:      ".",
	}
}

// WithWorkDir sets the directory configuration discovery starts from.
func (a *App) WithWorkDir(dir string) *App {
	a.workDir = dir
	return a
}

// ResolveOptions controls a Resolve call.
type ResolveOptions struct {
	// Lazy resolves each unit one at a time instead of batch by batch.
	Lazy bool
	// NoCache ignores and does not write the artifact directory.
	NoCache bool
}

// Resolve loads the project's unit sources and resolves names, or every unit
// when names is empty. It returns every artifact the resolution produced, sorted
// by unit name.
func (a *App) Resolve(ctx context.Context, names []string, opts ResolveOptions) ([]*domain.Artifact, error) {
	cfg, store, targets, err := a.prepare(ctx, names)
	if err != nil {
		return nil, err
	}

	reg := a.registries.New(store, cfg, opts.NoCache)
	if opts.Lazy {
		for _, name := range targets {
			if _, err := reg.Resolve(ctx, name); err != nil {
				return nil, zerr.Wrap(err, "lazy resolution failed")
			}
		}
	} else if _, err := reg.ResolveAll(ctx, targets); err != nil {
		return nil, zerr.Wrap(err, "batch resolution failed")
	}

	var artifacts []*domain.Artifact
	for _, name := range store.Names() {
		if art, ok := reg.Lookup(name); ok {
			artifacts = append(artifacts, art)
		}
	}
	a.logger.Info("resolved " + strconv.Itoa(len(artifacts)) + " units")
	return artifacts, nil
}

// Plan is the batch order for a set of units.
type Plan struct {
	Batches []domain.Batch
	graph   *domain.Graph
}

// CyclePath describes one reference cycle through b, or "" when b is acyclic.
func (p *Plan) CyclePath(b domain.Batch) string {
	return p.graph.CyclePath(b)
}

// Plan computes the batches for names and everything they reference, or for
// every unit when names is empty. Nothing is compiled.
func (a *App) Plan(ctx context.Context, names []string) (*Plan, error) {
	cfg, store, targets, err := a.prepare(ctx, names)
	if err != nil {
		return nil, err
	}

	units, err := loader.Closure(store, targets)
	if err != nil {
		return nil, err
	}
	graph, err := domain.BuildGraph(units, cfg.SelfReference)
	if err != nil {
		return nil, err
	}
	return &Plan{Batches: graph.StronglyConnectedComponents(), graph: graph}, nil
}

// Clean removes the artifact directory.
func (a *App) Clean(_ context.Context) error {
	cfg, err := a.configLoader.Load(a.workDir)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}
	if !cfg.ArtifactsEnabled() {
		a.logger.Info("artifact directory disabled, nothing to clean")
		return nil
	}
	if err := a.artifacts.Clean(cfg.TargetDir); err != nil {
		return err
	}
	a.logger.Info("removed " + cfg.TargetDir)
	return nil
}

// Close flushes telemetry.
func (a *App) Close() error {
	return a.telemetry.Close()
}

// prepare loads the configuration and the unit sources, and parses names.
func (a *App) prepare(
	ctx context.Context,
	names []string,
) (*domain.Config, ports.UnitStore, []domain.UnitName, error) {
	cfg, err := a.configLoader.Load(a.workDir)
	if err != nil {
		return nil, nil, nil, zerr.Wrap(err, "failed to load configuration")
	}

	store, err := a.sources.Load(ctx, cfg.SourceDir, cfg.Extension, cfg.Parallelism)
	if err != nil {
		return nil, nil, nil, zerr.Wrap(err, "failed to load unit sources")
	}

	targets := make([]domain.UnitName, 0, len(names))
	for _, n := range names {
		name, err := domain.ParseUnitName(n)
		if err != nil {
			return nil, nil, nil, err
		}
		targets = append(targets, name)
	}
	if len(targets) == 0 {
		targets = store.Names()
	}
	if len(targets) == 0 {
		return nil, nil, nil, domain.ErrNoTargetsSpecified
	}
	return cfg, store, targets, nil
}
