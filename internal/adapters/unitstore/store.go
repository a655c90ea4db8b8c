// Package unitstore holds unit sources in memory and loads them from a source tree.
package unitstore

import (
	"slices"
	"sync"

	"go.trai.ch/knot/internal/core/domain"
	"go.trai.ch/knot/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.UnitStore = (*Store)(nil)

// Store is an in-memory ports.UnitStore. Units are immutable once added.
type Store struct {
	mu    sync.RWMutex
	units map[domain.UnitName]*domain.Unit
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{units: make(map[domain.UnitName]*domain.Unit)}
}

// Add stores unit. Adding a second unit under the same name fails with domain.ErrUnitAlreadyExists.
func (s *Store) Add(unit *domain.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.units[unit.Name]; exists {
		return zerr.With(zerr.Wrap(domain.ErrUnitAlreadyExists, "duplicate unit"), "unit", unit.Name.String())
	}
	s.units[unit.Name] = unit
	return nil
}

// Get returns the unit stored under name.
func (s *Store) Get(name domain.UnitName) (*domain.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.units[name]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnitNotFound, name.String()), "unit", name.String())
	}
	return u, nil
}

// Names returns every stored unit name in ascending order.
func (s *Store) Names() []domain.UnitName {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]domain.UnitName, 0, len(s.units))
	for n := range s.units {
		names = append(names, n)
	}
	slices.SortFunc(names, domain.UnitName.Compare)
	return names
}

// Len returns the number of stored units.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.units)
}
