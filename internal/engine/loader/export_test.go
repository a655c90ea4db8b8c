package loader

import "go.trai.ch/knot/internal/core/domain"

// Resolving returns a copy of the in-flight resolution stack.
// This is exported for testing purposes only.
func (r *Registry) Resolving() []domain.UnitName {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.UnitName, len(r.resolving))
	copy(out, r.resolving)
	return out
}
