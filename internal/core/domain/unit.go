package domain

import "go.trai.ch/zerr"

// Unit is a named, immutable source fragment together with the unit names it references.
// References are sorted and free of duplicates.
type Unit struct {
	Name       UnitName
	Source     string
	References []UnitName
}

// NewUnit builds a Unit, normalizing the reference list.
func NewUnit(name UnitName, source string, refs []UnitName) *Unit {
	return &Unit{
		Name:       name,
		Source:     source,
		References: SortUnitNames(refs),
	}
}

// ReferencesSelf reports whether the unit lists its own name among its references.
func (u *Unit) ReferencesSelf() bool {
	for _, ref := range u.References {
		if ref == u.Name {
			return true
		}
	}
	return false
}

// UnitState is the resolution state of a unit name inside a registry.
type UnitState string

const (
	// StateUnknown means the registry has never tried to resolve the unit.
	StateUnknown UnitState = "unknown"
	// StateResolving means a resolution of the unit is in flight.
	StateResolving UnitState = "resolving"
	// StateResolved means the unit's artifact is cached.
	StateResolved UnitState = "resolved"
	// StateFailed means the last resolution failed. Failures are never cached.
	StateFailed UnitState = "failed"
)

// IsTerminal reports whether s ends a resolution attempt.
func (s UnitState) IsTerminal() bool {
	return s == StateResolved || s == StateFailed
}

// SelfReferencePolicy decides how a unit that references itself is treated.
type SelfReferencePolicy string

const (
	// SelfReferenceReject fails graph construction with ErrSelfReference.
	SelfReferenceReject SelfReferencePolicy = "reject"
	// SelfReferenceAllow treats a self reference as a trivial single-member cycle.
	SelfReferenceAllow SelfReferencePolicy = "allow"
)

// ParseSelfReferencePolicy converts a configuration value to a policy.
// The empty string selects SelfReferenceReject.
func ParseSelfReferencePolicy(s string) (SelfReferencePolicy, error) {
	switch SelfReferencePolicy(s) {
	case "", SelfReferenceReject:
		return SelfReferenceReject, nil
	case SelfReferenceAllow:
		return SelfReferenceAllow, nil
	default:
		return "", zerr.With(zerr.Wrap(ErrInvalidSelfReferencePolicy, "unsupported policy"), "policy", s)
	}
}
