package loader_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/knot/internal/adapters/cas"
	"go.trai.ch/knot/internal/adapters/fs"
	"go.trai.ch/knot/internal/adapters/script"
	"go.trai.ch/knot/internal/adapters/unitstore"
	"go.trai.ch/knot/internal/core/domain"
	"go.trai.ch/knot/internal/core/ports"
	"go.trai.ch/knot/internal/core/ports/mocks"
	"go.trai.ch/knot/internal/engine/compiler"
	"go.trai.ch/knot/internal/engine/loader"
	"go.uber.org/mock/gomock"
)

const sourceB = `
package: pkg1
imports: [pkg2.A]
class: B
constants:
  Prop: ABCDDD
nested:
  - class: NestedInB
    constants:
      NestedProp: ABCD
init:
  - new: A
`

const sourceA = `
package: pkg2
imports: [pkg1.B]
class: A
annotations:
  - name: SuppressWarnings
    value: B.NestedInB.NestedProp
init:
  - classname: B.NestedInB
  - print: B.NestedInB.NestedProp
`

const sourceBase = `
package: lib
class: Base
constants:
  Greeting: hello
`

const sourceUser = `
package: app
imports: [lib.Base]
class: User
init:
  - new: Base
  - print: Base.Greeting
`

var artifactOpts = cmp.Options{
	cmp.Comparer(func(a, b domain.UnitName) bool { return a == b }),
	cmpopts.EquateEmpty(),
}

func name(s string) domain.UnitName {
	return domain.NewUnitName(s)
}

func newStore(t *testing.T, sources map[string]string) *unitstore.Store {
	t.Helper()
	store := unitstore.NewStore()
	parser := script.NewParser()
	for n, src := range sources {
		refs, err := parser.References(name(n), src)
		require.NoError(t, err)
		require.NoError(t, store.Add(domain.NewUnit(name(n), src, refs)))
	}
	return store
}

func newCompiler() *compiler.Compiler {
	return compiler.New(script.NewParser(), fs.NewHasher())
}

func scenario(t *testing.T) *unitstore.Store {
	t.Helper()
	return newStore(t, map[string]string{"pkg1.B": sourceB, "pkg2.A": sourceA})
}

func TestRegistry_Resolve_CircularReference(t *testing.T) {
	t.Parallel()

	reg := loader.NewRegistry(scenario(t), newCompiler())

	_, err := reg.Resolve(context.Background(), name("pkg2.A"))
	require.ErrorIs(t, err, domain.ErrCircularReference)

	cycle, ok := domain.Metadata(err, "cycle")
	require.True(t, ok)
	assert.Equal(t, "pkg2.A -> pkg1.B -> pkg2.A", cycle)

	assert.Equal(t, domain.StateFailed, reg.State(name("pkg2.A")))
	assert.Equal(t, domain.StateFailed, reg.State(name("pkg1.B")))
	assert.Equal(t, 0, reg.Len())
	assert.Empty(t, reg.Resolving())
}

func TestRegistry_ResolveAll_CyclicBatch(t *testing.T) {
	t.Parallel()

	reg := loader.NewRegistry(scenario(t), newCompiler())

	// A failed lazy attempt is not cached, so batch mode still succeeds afterwards.
	_, err := reg.Resolve(context.Background(), name("pkg2.A"))
	require.ErrorIs(t, err, domain.ErrCircularReference)

	arts, err := reg.ResolveAll(context.Background(), []domain.UnitName{name("pkg1.B"), name("pkg2.A")})
	require.NoError(t, err)
	require.Len(t, arts, 2)

	b := arts[name("pkg1.B")]
	prop, ok := b.Constant("pkg1.B.Prop")
	require.True(t, ok)
	assert.Equal(t, "ABCDDD", prop)

	a := arts[name("pkg2.A")]
	require.Len(t, a.Handle.Init, 2)
	assert.Equal(t, "pkg1.B$NestedInB", a.Handle.Init[0].Value)
	assert.Equal(t, domain.Instruction{
		Op:    domain.OpPrint,
		Ref:   "pkg1.B.NestedInB.NestedProp",
		Value: "ABCD",
	}, a.Handle.Init[1])
	assert.Equal(t, "ABCD", a.Handle.Annotations[0].Value)

	assert.Equal(t, domain.StateResolved, reg.State(name("pkg2.A")))
	assert.Equal(t, domain.StateResolved, reg.State(name("pkg1.B")))

	// Once cached, lazy resolution is a cache hit.
	cached, err := reg.Resolve(context.Background(), name("pkg2.A"))
	require.NoError(t, err)
	assert.Same(t, a, cached)
}

func TestRegistry_ResolveAll_UnknownReference(t *testing.T) {
	t.Parallel()

	store := newStore(t, map[string]string{
		"pkg1.B": "package: pkg1\nimports: [pkg3.C]\nclass: B\n",
	})
	reg := loader.NewRegistry(store, newCompiler())

	_, err := reg.ResolveAll(context.Background(), []domain.UnitName{name("pkg1.B")})
	require.ErrorIs(t, err, domain.ErrUnknownReference)
	assert.ErrorContains(t, err, "pkg3.C")

	ref, ok := domain.Metadata(err, "reference")
	require.True(t, ok)
	assert.Equal(t, "pkg3.C", ref)

	_, err = reg.Resolve(context.Background(), name("pkg1.B"))
	require.ErrorIs(t, err, domain.ErrUnknownReference)
	by, ok := domain.Metadata(err, "referenced_by")
	require.True(t, ok)
	assert.Equal(t, "pkg1.B", by)
	assert.Equal(t, domain.StateFailed, reg.State(name("pkg1.B")))
	assert.Equal(t, domain.StateFailed, reg.State(name("pkg3.C")))
}

func TestRegistry_RequestedUnitMissing(t *testing.T) {
	t.Parallel()

	reg := loader.NewRegistry(unitstore.NewStore(), newCompiler())

	_, err := reg.ResolveAll(context.Background(), []domain.UnitName{name("pkg9.Missing")})
	require.ErrorIs(t, err, domain.ErrUnitNotFound)
	assert.Equal(t, domain.StateUnknown, reg.State(name("pkg9.Missing")))

	_, err = reg.Resolve(context.Background(), name("pkg9.Missing"))
	require.ErrorIs(t, err, domain.ErrUnitNotFound)
	assert.Equal(t, domain.StateFailed, reg.State(name("pkg9.Missing")))
	assert.Empty(t, reg.Resolving())
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_Resolve_Idempotent(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mockCompiler := mocks.NewMockUnitCompiler(ctrl)

	store := newStore(t, map[string]string{"lib.Base": sourceBase})
	unit, err := store.Get(name("lib.Base"))
	require.NoError(t, err)

	art := &domain.Artifact{UnitName: unit.Name, Fingerprint: "fp", Handle: &domain.CompiledUnit{Name: "lib.Base"}}
	mockCompiler.EXPECT().CompileSingle(gomock.Any(), unit, gomock.Any()).Return(art, nil).Times(1)

	reg := loader.NewRegistry(store, mockCompiler)

	first, err := reg.Resolve(context.Background(), unit.Name)
	require.NoError(t, err)
	second, err := reg.Resolve(context.Background(), unit.Name)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, reg.Len())

	got, ok := reg.Lookup(unit.Name)
	require.True(t, ok)
	assert.Same(t, art, got)
}

func TestRegistry_ResolveAll_SkipsCachedBatches(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	mockCompiler := mocks.NewMockUnitCompiler(ctrl)

	store := newStore(t, map[string]string{"lib.Base": sourceBase, "app.User": sourceUser})
	base := &domain.Artifact{UnitName: name("lib.Base"), Handle: &domain.CompiledUnit{}}
	user := &domain.Artifact{UnitName: name("app.User"), Handle: &domain.CompiledUnit{}}

	gomock.InOrder(
		mockCompiler.EXPECT().CompileBatch(gomock.Any(), gomock.Len(1), gomock.Any()).
			Return(map[domain.UnitName]*domain.Artifact{base.UnitName: base}, nil),
		mockCompiler.EXPECT().CompileBatch(gomock.Any(), gomock.Len(1), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ []*domain.Unit, resolve ports.Resolver) (map[domain.UnitName]*domain.Artifact, error) {
				dep, err := resolve(ctx, base.UnitName)
				require.NoError(t, err)
				assert.Same(t, base, dep)
				return map[domain.UnitName]*domain.Artifact{user.UnitName: user}, nil
			}),
	)

	reg := loader.NewRegistry(store, mockCompiler)

	first, err := reg.ResolveAll(context.Background(), []domain.UnitName{name("app.User")})
	require.NoError(t, err)
	assert.Len(t, first, 2)

	second, err := reg.ResolveAll(context.Background(), []domain.UnitName{name("app.User"), name("lib.Base")})
	require.NoError(t, err)
	assert.Same(t, first[name("app.User")], second[name("app.User")])
}

func TestRegistry_ModesAgree(t *testing.T) {
	t.Parallel()

	sources := map[string]string{"lib.Base": sourceBase, "app.User": sourceUser}
	lazy := loader.NewRegistry(newStore(t, sources), newCompiler())
	batch := loader.NewRegistry(newStore(t, sources), newCompiler())

	single, err := lazy.Resolve(context.Background(), name("app.User"))
	require.NoError(t, err)
	assert.Equal(t, 2, lazy.Len())

	all, err := batch.ResolveAll(context.Background(), []domain.UnitName{name("app.User")})
	require.NoError(t, err)

	if diff := cmp.Diff(single, all[name("app.User")], artifactOpts); diff != "" {
		t.Errorf("artifact mismatch (-lazy +batch):\n%s", diff)
	}
}

func TestRegistry_ResolveAll_PartialProgress(t *testing.T) {
	t.Parallel()

	store := newStore(t, map[string]string{
		"lib.Base": sourceBase,
		"pkg1.B":   "package: pkg1\nimports: [pkg2.A, lib.Base]\nclass: B\ninit:\n  - new: Base\n",
		"pkg2.A":   "package: pkg2\nimports: [pkg1.B]\nclass: A\ninit:\n  - print: B.Missing\n",
	})
	reg := loader.NewRegistry(store, newCompiler())

	_, err := reg.ResolveAll(context.Background(), []domain.UnitName{name("pkg2.A")})
	require.ErrorIs(t, err, domain.ErrBatchCompileFailed)
	require.ErrorIs(t, err, domain.ErrUnresolvedReference)

	batch, ok := domain.Metadata(err, "batch")
	require.True(t, ok)
	assert.Equal(t, 1, batch)
	units, ok := domain.Metadata(err, "units")
	require.True(t, ok)
	assert.Equal(t, "pkg1.B, pkg2.A", units)

	_, ok = reg.Lookup(name("lib.Base"))
	assert.True(t, ok)
	assert.Equal(t, domain.StateResolved, reg.State(name("lib.Base")))
	assert.Equal(t, domain.StateFailed, reg.State(name("pkg1.B")))
	assert.Equal(t, domain.StateFailed, reg.State(name("pkg2.A")))
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_SelfReferencePolicy(t *testing.T) {
	t.Parallel()

	const source = "package: rec\nimports: [rec.Node]\nclass: Node\ninit:\n  - new: Node\n"

	reject := loader.NewRegistry(newStore(t, map[string]string{"rec.Node": source}), newCompiler())
	_, err := reject.Resolve(context.Background(), name("rec.Node"))
	require.ErrorIs(t, err, domain.ErrSelfReference)
	_, err = reject.ResolveAll(context.Background(), []domain.UnitName{name("rec.Node")})
	require.ErrorIs(t, err, domain.ErrSelfReference)

	allow := loader.NewRegistry(
		newStore(t, map[string]string{"rec.Node": source}),
		newCompiler(),
		loader.WithSelfReferencePolicy(domain.SelfReferenceAllow),
	)
	art, err := allow.Resolve(context.Background(), name("rec.Node"))
	require.NoError(t, err)
	assert.Equal(t, "rec.Node", art.Handle.Init[0].Ref)

	allow.Clear()
	arts, err := allow.ResolveAll(context.Background(), []domain.UnitName{name("rec.Node")})
	require.NoError(t, err)
	if diff := cmp.Diff(art, arts[name("rec.Node")], artifactOpts); diff != "" {
		t.Errorf("artifact mismatch (-lazy +batch):\n%s", diff)
	}
}

func TestRegistry_Clear(t *testing.T) {
	t.Parallel()

	reg := loader.NewRegistry(scenario(t), newCompiler())
	first, err := reg.ResolveAll(context.Background(), []domain.UnitName{name("pkg2.A")})
	require.NoError(t, err)
	require.Equal(t, 2, reg.Len())

	reg.Clear()
	assert.Equal(t, 0, reg.Len())
	assert.Equal(t, domain.StateUnknown, reg.State(name("pkg2.A")))
	_, ok := reg.Lookup(name("pkg2.A"))
	assert.False(t, ok)

	second, err := reg.ResolveAll(context.Background(), []domain.UnitName{name("pkg2.A")})
	require.NoError(t, err)
	assert.NotSame(t, first[name("pkg2.A")], second[name("pkg2.A")])
	if diff := cmp.Diff(first, second, artifactOpts); diff != "" {
		t.Errorf("artifact mismatch after clear (-first +second):\n%s", diff)
	}
}

func TestRegistry_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reg := loader.NewRegistry(scenario(t), newCompiler())

	_, err := reg.Resolve(ctx, name("pkg2.A"))
	require.ErrorIs(t, err, context.Canceled)
	_, err = reg.ResolveAll(ctx, []domain.UnitName{name("pkg2.A")})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_Telemetry(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	tel := mocks.NewMockTelemetry(ctrl)
	vertex := mocks.NewMockVertex(ctrl)

	tel.EXPECT().Record(gomock.Any(), "compile batch [pkg1.B, pkg2.A]").
		DoAndReturn(func(ctx context.Context, _ string) (context.Context, ports.Vertex) {
			return ports.ContextWithVertex(ctx, vertex), vertex
		})
	vertex.EXPECT().Log(domain.LogLevelDebug, gomock.Any()).AnyTimes()
	vertex.EXPECT().Complete(nil)

	reg := loader.NewRegistry(scenario(t), newCompiler(), loader.WithTelemetry(tel))
	_, err := reg.ResolveAll(context.Background(), []domain.UnitName{name("pkg1.B")})
	require.NoError(t, err)
}

func TestRegistry_ArtifactStore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	hasher := fs.NewHasher()
	withStore := loader.WithArtifactStore(cas.NewStore(), hasher, dir)
	targets := []domain.UnitName{name("pkg1.B"), name("pkg2.A")}

	compiled, err := loader.NewRegistry(scenario(t), newCompiler(), withStore).
		ResolveAll(context.Background(), targets)
	require.NoError(t, err)

	// Subtests share the target directory and run in order.
	t.Run("fresh artifacts are loaded instead of compiled", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		tel := mocks.NewMockTelemetry(ctrl)
		vertex := mocks.NewMockVertex(ctrl)
		tel.EXPECT().Record(gomock.Any(), "compile batch [pkg1.B, pkg2.A]").Return(context.Background(), vertex)
		vertex.EXPECT().Cached()
		vertex.EXPECT().Complete(nil)

		reg := loader.NewRegistry(scenario(t), mocks.NewMockUnitCompiler(ctrl), withStore, loader.WithTelemetry(tel))
		loaded, err := reg.ResolveAll(context.Background(), targets)
		require.NoError(t, err)
		if diff := cmp.Diff(compiled, loaded, artifactOpts); diff != "" {
			t.Errorf("artifact mismatch (-compiled +loaded):\n%s", diff)
		}
	})

	t.Run("lazy resolution still detects the cycle", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		reg := loader.NewRegistry(scenario(t), mocks.NewMockUnitCompiler(ctrl), withStore)
		_, err := reg.Resolve(context.Background(), name("pkg2.A"))
		require.ErrorIs(t, err, domain.ErrCircularReference)
	})

	t.Run("changed sources are recompiled", func(t *testing.T) {
		changed := newStore(t, map[string]string{
			"pkg1.B": sourceB + "# touched\n",
			"pkg2.A": sourceA,
		})

		stale := loader.NewRegistry(changed, newCompiler(), withStore)
		arts, err := stale.ResolveAll(context.Background(), targets)
		require.NoError(t, err)
		assert.NotEqual(t, compiled[name("pkg1.B")].Fingerprint, arts[name("pkg1.B")].Fingerprint)
		assert.Equal(t,
			arts[name("pkg1.B")].Fingerprint,
			arts[name("pkg2.A")].Handle.DependencyFingerprints["pkg1.B"],
		)
	})
}

func TestFactory_New(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	artifacts := mocks.NewMockArtifactStore(ctrl)
	log := mocks.NewMockLogger(ctrl)
	dir := t.TempDir()

	factory := loader.NewFactory(newCompiler(), fs.NewHasher(), artifacts, nil, log)
	cfg := &domain.Config{TargetDir: dir, SelfReference: domain.SelfReferenceReject}
	store := newStore(t, map[string]string{"lib.Base": sourceBase})

	t.Run("store enabled", func(t *testing.T) {
		artifacts.EXPECT().Get(dir, name("lib.Base")).Return(nil, nil)
		artifacts.EXPECT().Put(dir, gomock.Any()).Return(assert.AnError)
		log.EXPECT().Warn(gomock.Any())

		_, err := factory.New(store, cfg, false).Resolve(context.Background(), name("lib.Base"))
		require.NoError(t, err)
	})

	t.Run("no cache", func(t *testing.T) {
		_, err := factory.New(store, cfg, true).Resolve(context.Background(), name("lib.Base"))
		require.NoError(t, err)
	})
}

func TestClosure(t *testing.T) {
	t.Parallel()

	store := newStore(t, map[string]string{
		"lib.Base": sourceBase,
		"app.User": sourceUser,
		"pkg1.B":   sourceB,
		"pkg2.A":   sourceA,
	})

	units, err := loader.Closure(store, []domain.UnitName{name("app.User"), name("app.User")})
	require.NoError(t, err)

	got := make([]string, 0, len(units))
	for _, u := range units {
		got = append(got, u.Name.String())
	}
	assert.Equal(t, []string{"app.User", "lib.Base"}, got)

	units, err = loader.Closure(store, nil)
	require.NoError(t, err)
	assert.Empty(t, units)
}

func TestClosure_StoreError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	store := mocks.NewMockUnitStore(ctrl)

	user := domain.NewUnit(name("app.User"), sourceUser, []domain.UnitName{name("lib.Base")})
	errRead := errors.New("read failed")
	gomock.InOrder(
		store.EXPECT().Get(name("app.User")).Return(user, nil),
		store.EXPECT().Get(name("lib.Base")).Return(nil, errRead),
	)

	_, err := loader.Closure(store, []domain.UnitName{name("app.User")})
	require.ErrorIs(t, err, errRead)
	assert.NotErrorIs(t, err, domain.ErrUnknownReference)
}
