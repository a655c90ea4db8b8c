package unitstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/knot/internal/adapters/unitstore"
	"go.trai.ch/knot/internal/core/domain"
	"go.trai.ch/knot/internal/core/ports"
)

func TestInterfaceSatisfaction(_ *testing.T) {
	var _ ports.UnitStore = (*unitstore.Store)(nil)
}

func TestStore_AddGet(t *testing.T) {
	t.Parallel()

	s := unitstore.NewStore()
	b := domain.NewUnit(domain.NewUnitName("pkg1.B"), "class: B", nil)
	a := domain.NewUnit(domain.NewUnitName("pkg2.A"), "class: A", nil)

	require.NoError(t, s.Add(b))
	require.NoError(t, s.Add(a))
	assert.Equal(t, 2, s.Len())

	got, err := s.Get(domain.NewUnitName("pkg1.B"))
	require.NoError(t, err)
	assert.Same(t, b, got)

	assert.Equal(t, []string{"pkg1.B", "pkg2.A"}, domain.UnitNameStrings(s.Names()))
}

func TestStore_Errors(t *testing.T) {
	t.Parallel()

	s := unitstore.NewStore()
	u := domain.NewUnit(domain.NewUnitName("pkg1.B"), "", nil)
	require.NoError(t, s.Add(u))

	err := s.Add(u)
	require.ErrorIs(t, err, domain.ErrUnitAlreadyExists)

	_, err = s.Get(domain.NewUnitName("pkg3.C"))
	require.ErrorIs(t, err, domain.ErrUnitNotFound)
	v, ok := domain.Metadata(err, "unit")
	require.True(t, ok)
	assert.Equal(t, "pkg3.C", v)
}
