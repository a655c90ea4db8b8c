package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/knot/internal/core/domain"
)

func unit(name string, refs ...string) *domain.Unit {
	return domain.NewUnit(domain.NewUnitName(name), "", domain.NewUnitNames(refs))
}

func batchNames(batches []domain.Batch) [][]string {
	out := make([][]string, len(batches))
	for i, b := range batches {
		out[i] = domain.UnitNameStrings(b.Units)
	}
	return out
}

func TestBuildGraph_DuplicateUnit(t *testing.T) {
	t.Parallel()

	_, err := domain.BuildGraph([]*domain.Unit{unit("a.A"), unit("a.A")}, domain.SelfReferenceReject)
	require.ErrorIs(t, err, domain.ErrUnitAlreadyExists)

	v, ok := domain.Metadata(err, "unit")
	require.True(t, ok)
	assert.Equal(t, "a.A", v)
}

func TestBuildGraph_UnknownReference(t *testing.T) {
	t.Parallel()

	_, err := domain.BuildGraph([]*domain.Unit{unit("pkg1.B", "pkg3.C")}, domain.SelfReferenceReject)
	require.ErrorIs(t, err, domain.ErrUnknownReference)

	ref, ok := domain.Metadata(err, "reference")
	require.True(t, ok)
	assert.Equal(t, "pkg3.C", ref)

	by, ok := domain.Metadata(err, "referenced_by")
	require.True(t, ok)
	assert.Equal(t, "pkg1.B", by)
}

func TestBuildGraph_SelfReferencePolicy(t *testing.T) {
	t.Parallel()

	units := []*domain.Unit{unit("a.A", "a.A")}

	_, err := domain.BuildGraph(units, domain.SelfReferenceReject)
	require.ErrorIs(t, err, domain.ErrSelfReference)

	g, err := domain.BuildGraph(units, domain.SelfReferenceAllow)
	require.NoError(t, err)

	batches := g.StronglyConnectedComponents()
	require.Len(t, batches, 1)
	assert.False(t, batches[0].Cyclic)
	assert.True(t, batches[0].SelfReferential)
	assert.Equal(t, "a.A -> a.A", g.CyclePath(batches[0]))
}

func TestGraph_StronglyConnectedComponents(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		units  []*domain.Unit
		want   [][]string
		cyclic []bool
	}{
		{
			name:   "chain",
			units:  []*domain.Unit{unit("A", "B"), unit("B", "C"), unit("C")},
			want:   [][]string{{"C"}, {"B"}, {"A"}},
			cyclic: []bool{false, false, false},
		},
		{
			name:   "two cycle",
			units:  []*domain.Unit{unit("pkg2.A", "pkg1.B"), unit("pkg1.B", "pkg2.A")},
			want:   [][]string{{"pkg1.B", "pkg2.A"}},
			cyclic: []bool{true},
		},
		{
			name: "cycle with dependency and dependent",
			units: []*domain.Unit{
				unit("x.Top", "x.Left"),
				unit("x.Left", "x.Right", "x.Base"),
				unit("x.Right", "x.Left"),
				unit("x.Base"),
			},
			want:   [][]string{{"x.Base"}, {"x.Left", "x.Right"}, {"x.Top"}},
			cyclic: []bool{false, true, false},
		},
		{
			name:   "independent units tie-break lexically",
			units:  []*domain.Unit{unit("z"), unit("m"), unit("a")},
			want:   [][]string{{"a"}, {"m"}, {"z"}},
			cyclic: []bool{false, false, false},
		},
		{
			name: "ready batches ordered by smallest member",
			units: []*domain.Unit{
				unit("c", "d"),
				unit("d", "c"),
				unit("b"),
				unit("e", "b"),
			},
			want:   [][]string{{"b"}, {"c", "d"}, {"e"}},
			cyclic: []bool{false, true, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g, err := domain.BuildGraph(tt.units, domain.SelfReferenceReject)
			require.NoError(t, err)

			batches := g.StronglyConnectedComponents()
			assert.Equal(t, tt.want, batchNames(batches))
			for i, b := range batches {
				assert.Equal(t, tt.cyclic[i], b.Cyclic, "batch %d", i)
			}
		})
	}
}

func TestGraph_StronglyConnectedComponents_Deterministic(t *testing.T) {
	t.Parallel()

	units := []*domain.Unit{
		unit("p.E", "p.D"),
		unit("p.D", "p.C", "p.E"),
		unit("p.C", "p.A"),
		unit("p.B", "p.A"),
		unit("p.A"),
		unit("p.F"),
	}
	g, err := domain.BuildGraph(units, domain.SelfReferenceReject)
	require.NoError(t, err)

	first := batchNames(g.StronglyConnectedComponents())
	for range 20 {
		assert.Equal(t, first, batchNames(g.StronglyConnectedComponents()))
	}
	assert.Equal(t, [][]string{{"p.A"}, {"p.B"}, {"p.C"}, {"p.D", "p.E"}, {"p.F"}}, first)
}

func TestGraph_EveryUnitInExactlyOneBatch(t *testing.T) {
	t.Parallel()

	units := []*domain.Unit{
		unit("a", "b"), unit("b", "c"), unit("c", "a"),
		unit("d", "a"), unit("e"), unit("f", "e", "d"),
	}
	g, err := domain.BuildGraph(units, domain.SelfReferenceReject)
	require.NoError(t, err)

	seen := make(map[string]int)
	position := make(map[domain.UnitName]int)
	batches := g.StronglyConnectedComponents()
	for i, b := range batches {
		for _, u := range b.Units {
			seen[u.String()]++
			position[u] = i
		}
	}
	assert.Len(t, seen, g.Len())
	for name, count := range seen {
		assert.Equal(t, 1, count, name)
	}

	for i, b := range batches {
		for _, u := range b.Units {
			for _, dep := range g.Dependencies(u) {
				if b.Contains(dep) {
					continue
				}
				assert.Less(t, position[dep], i, "%s depends on %s", u, dep)
			}
		}
	}
}

func TestGraph_DependenciesAndDependents(t *testing.T) {
	t.Parallel()

	g, err := domain.BuildGraph([]*domain.Unit{
		unit("A", "C", "B"), unit("B", "C"), unit("C"),
	}, domain.SelfReferenceReject)
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "C"}, domain.UnitNameStrings(g.Dependencies(domain.NewUnitName("A"))))
	assert.Equal(t, []string{"A", "B"}, domain.UnitNameStrings(g.Dependents(domain.NewUnitName("C"))))
	assert.Empty(t, g.Dependents(domain.NewUnitName("A")))
	assert.Nil(t, g.Dependencies(domain.NewUnitName("missing")))
	assert.Equal(t, []string{"A", "B", "C"}, domain.UnitNameStrings(g.Units()))
}

func TestGraph_CyclePath(t *testing.T) {
	t.Parallel()

	g, err := domain.BuildGraph([]*domain.Unit{
		unit("pkg2.A", "pkg1.B"), unit("pkg1.B", "pkg2.A"), unit("pkg0.Z"),
	}, domain.SelfReferenceReject)
	require.NoError(t, err)

	batches := g.StronglyConnectedComponents()
	require.Len(t, batches, 2)
	assert.Empty(t, g.CyclePath(batches[0]))
	assert.Equal(t, "pkg1.B -> pkg2.A -> pkg1.B", g.CyclePath(batches[1]))
}

func TestMetadata_NotZerr(t *testing.T) {
	t.Parallel()

	_, ok := domain.Metadata(errors.New("plain"), "unit")
	assert.False(t, ok)
}
