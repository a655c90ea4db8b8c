package loader

import (
	"errors"
	"slices"

	"go.trai.ch/knot/internal/core/domain"
	"go.trai.ch/knot/internal/core/ports"
)

// Closure returns the units named by names and every unit they reach through
// references, sorted by name. A requested name missing from the store fails with
// domain.ErrUnitNotFound, a missing reference with domain.ErrUnknownReference.
func Closure(store ports.UnitStore, names []domain.UnitName) ([]*domain.Unit, error) {
	seen := make(map[domain.UnitName]*domain.Unit)
	queue := slices.Clone(names)
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		unit, err := store.Get(name)
		if err != nil {
			return nil, err
		}
		seen[name] = unit
	}

	for len(queue) > 0 {
		unit := seen[queue[0]]
		queue = queue[1:]
		for _, ref := range unit.References {
			if _, ok := seen[ref]; ok {
				continue
			}
			dep, err := store.Get(ref)
			if errors.Is(err, domain.ErrUnitNotFound) {
				return nil, unknownReference(ref, unit.Name)
			}
			if err != nil {
				return nil, err
			}
			seen[ref] = dep
			queue = append(queue, ref)
		}
	}

	units := make([]*domain.Unit, 0, len(seen))
	for _, u := range seen {
		units = append(units, u)
	}
	slices.SortFunc(units, func(a, b *domain.Unit) int {
		return a.Name.Compare(b.Name)
	})
	return units, nil
}
