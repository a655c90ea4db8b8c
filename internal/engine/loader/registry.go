// Package loader implements the registry that resolves units into artifacts.
package loader

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.trai.ch/knot/internal/adapters/telemetry" //nolint:depguard // No-op default for library callers
	"go.trai.ch/knot/internal/core/domain"
	"go.trai.ch/knot/internal/core/ports"
	"go.trai.ch/zerr"
)

// Registry resolves unit names into artifacts and caches the results for its
// lifetime. Every exported method holds the registry lock for its whole
// duration, so calls on one registry never interleave.
type Registry struct {
	units     ports.UnitStore
	compiler  ports.UnitCompiler
	hasher    ports.Hasher
	artifacts ports.ArtifactStore
	target    string
	telemetry ports.Telemetry
	logger    ports.Logger
	policy    domain.SelfReferencePolicy

	mu        sync.Mutex
	cache     map[domain.UnitName]*domain.Artifact
	states    map[domain.UnitName]domain.UnitState
	resolving []domain.UnitName
}

// Option configures a Registry.
type Option func(*Registry)

// WithArtifactStore makes the registry reuse artifacts stored below target when
// their fingerprints still match, and store every artifact it compiles.
func WithArtifactStore(store ports.ArtifactStore, hasher ports.Hasher, target string) Option {
	return func(r *Registry) {
		r.artifacts = store
		r.hasher = hasher
		r.target = target
	}
}

// WithTelemetry records one vertex per compiled unit or batch.
// A nil t keeps the no-op default.
func WithTelemetry(t ports.Telemetry) Option {
	return func(r *Registry) {
		if t != nil {
			r.telemetry = t
		}
	}
}

// WithLogger reports artifact store problems, which never fail a resolution.
func WithLogger(l ports.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// WithSelfReferencePolicy sets how units that reference themselves are treated.
func WithSelfReferencePolicy(p domain.SelfReferencePolicy) Option {
	return func(r *Registry) {
		r.policy = p
	}
}

// NewRegistry creates an empty Registry over units.
func NewRegistry(units ports.UnitStore, compiler ports.UnitCompiler, opts ...Option) *Registry {
	r := &Registry{
		units:     units,
		compiler:  compiler,
		telemetry: telemetry.NewNoOp(),
		policy:    domain.SelfReferenceReject,
		cache:     make(map[domain.UnitName]*domain.Artifact),
		states:    make(map[domain.UnitName]domain.UnitState),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the artifact for name, compiling it and, recursively, every
// unit it references one at a time. Re-entering a unit that is still being
// resolved fails with domain.ErrCircularReference; use ResolveAll for units
// that reference each other.
func (r *Registry) Resolve(ctx context.Context, name domain.UnitName) (*domain.Artifact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.resolve(ctx, name)
}

func (r *Registry) resolve(ctx context.Context, name domain.UnitName) (*domain.Artifact, error) {
	if art, ok := r.cache[name]; ok {
		return art, nil
	}
	if i := slices.Index(r.resolving, name); i >= 0 {
		path := append(slices.Clone(r.resolving[i:]), name)
		err := zerr.With(zerr.Wrap(domain.ErrCircularReference, name.String()), "unit", name.String())
		return nil, zerr.With(err, "cycle", domain.FormatCycle(path))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	unit, err := r.unit(name)
	if err != nil {
		r.states[name] = domain.StateFailed
		return nil, err
	}
	if unit.ReferencesSelf() && r.policy != domain.SelfReferenceAllow {
		r.states[name] = domain.StateFailed
		return nil, zerr.With(zerr.Wrap(domain.ErrSelfReference, "self reference rejected"), "unit", name.String())
	}

	r.states[name] = domain.StateResolving
	r.resolving = append(r.resolving, name)
	defer func() {
		r.resolving = r.resolving[:len(r.resolving)-1]
	}()

	batch := domain.Batch{Units: []domain.UnitName{name}, SelfReferential: unit.ReferencesSelf()}
	vctx, vertex := r.telemetry.Record(ctx, domain.VertexName(batch))

	art, reused, err := r.reuse(vctx, unit)
	if err == nil && !reused {
		art, err = r.compiler.CompileSingle(vctx, unit, r.resolve)
	}
	if reused {
		vertex.Cached()
	}
	vertex.Complete(err)
	if err != nil {
		r.states[name] = domain.StateFailed
		return nil, err
	}

	r.commit(map[domain.UnitName]*domain.Artifact{name: art}, !reused)
	return art, nil
}

// unit fetches name from the store. A name requested while another unit is
// being resolved is a reference, so a missing unit is reported as unknown.
func (r *Registry) unit(name domain.UnitName) (*domain.Unit, error) {
	unit, err := r.units.Get(name)
	if err == nil {
		return unit, nil
	}
	if len(r.resolving) == 0 || !errors.Is(err, domain.ErrUnitNotFound) {
		return nil, err
	}
	referrer := r.resolving[len(r.resolving)-1]
	return nil, unknownReference(name, referrer)
}

func unknownReference(name, referrer domain.UnitName) error {
	err := zerr.With(zerr.Wrap(domain.ErrUnknownReference, name.String()), "reference", name.String())
	return zerr.With(err, "referenced_by", referrer.String())
}

// ResolveAll returns artifacts for names and every unit they reach through
// references. The units are compiled batch by batch in dependency order, so
// units that reference each other land in one batch and compile together.
// Batches that are already cached are skipped. When a batch fails, the batches
// before it stay cached and the error wraps domain.ErrBatchCompileFailed.
func (r *Registry) ResolveAll(
	ctx context.Context,
	names []domain.UnitName,
) (map[domain.UnitName]*domain.Artifact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	units, err := Closure(r.units, names)
	if err != nil {
		return nil, err
	}
	graph, err := domain.BuildGraph(units, r.policy)
	if err != nil {
		return nil, err
	}

	for i, batch := range graph.StronglyConnectedComponents() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if r.cached(batch) {
			continue
		}
		if err := r.resolveBatch(ctx, graph, batch); err != nil {
			wrapped := zerr.With(fmt.Errorf("%w: %w", domain.ErrBatchCompileFailed, err), "batch", i)
			return nil, zerr.With(wrapped, "units", batch.String())
		}
	}

	out := make(map[domain.UnitName]*domain.Artifact, len(units))
	for _, u := range units {
		out[u.Name] = r.cache[u.Name]
	}
	return out, nil
}

func (r *Registry) cached(b domain.Batch) bool {
	for _, name := range b.Units {
		if _, ok := r.cache[name]; !ok {
			return false
		}
	}
	return true
}

func (r *Registry) resolveBatch(ctx context.Context, graph *domain.Graph, b domain.Batch) error {
	units := make([]*domain.Unit, 0, len(b.Units))
	for _, name := range b.Units {
		u, _ := graph.Unit(name)
		units = append(units, u)
		r.states[name] = domain.StateResolving
	}

	vctx, vertex := r.telemetry.Record(ctx, domain.VertexName(b))

	if arts := r.reuseBatch(units); arts != nil {
		vertex.Cached()
		vertex.Complete(nil)
		r.commit(arts, false)
		return nil
	}

	arts, err := r.compiler.CompileBatch(vctx, units, r.completed)
	vertex.Complete(err)
	if err != nil {
		for _, name := range b.Units {
			r.states[name] = domain.StateFailed
		}
		return err
	}
	r.commit(arts, true)
	return nil
}

// completed answers references from earlier batches, which are always cached
// by the time a later batch compiles.
func (r *Registry) completed(_ context.Context, name domain.UnitName) (*domain.Artifact, error) {
	if art, ok := r.cache[name]; ok {
		return art, nil
	}
	err := zerr.With(zerr.Wrap(domain.ErrUnresolvedReference, "dependency not resolved"), "reference", name.String())
	return nil, err
}

// commit caches arts and, when persist is set, writes them to the artifact store.
// Units that are already cached keep their artifact.
func (r *Registry) commit(arts map[domain.UnitName]*domain.Artifact, persist bool) {
	for _, name := range domain.SortUnitNames(mapKeys(arts)) {
		if _, ok := r.cache[name]; ok {
			continue
		}
		art := arts[name]
		r.cache[name] = art
		r.states[name] = domain.StateResolved
		if persist {
			r.store(art)
		}
	}
}

func mapKeys(m map[domain.UnitName]*domain.Artifact) []domain.UnitName {
	keys := make([]domain.UnitName, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// Lookup returns the cached artifact for name without resolving it.
func (r *Registry) Lookup(name domain.UnitName) (*domain.Artifact, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	art, ok := r.cache[name]
	return art, ok
}

// State returns the resolution state of name.
func (r *Registry) State(name domain.UnitName) domain.UnitState {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.states[name]; ok {
		return s
	}
	return domain.StateUnknown
}

// Len returns the number of cached artifacts.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.cache)
}

// Clear drops every cached artifact and recorded state.
// Stored artifacts are left in place.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.cache)
	clear(r.states)
	r.resolving = r.resolving[:0]
}
