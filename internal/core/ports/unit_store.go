package ports

import "go.trai.ch/knot/internal/core/domain"

// UnitStore holds the source units, addressable by name.
//
//go:generate mockgen -source=unit_store.go -destination=mocks/mock_unit_store.go -package=mocks
type UnitStore interface {
	// Get returns the unit stored under name, or domain.ErrUnitNotFound.
	Get(name domain.UnitName) (*domain.Unit, error)

	// Names returns every stored unit name in ascending order.
	Names() []domain.UnitName
}
