package ports

import "go.trai.ch/knot/internal/core/domain"

// Hasher defines the interface for computing unit fingerprints.
//
//go:generate mockgen -destination=mocks/mock_hasher.go -package=mocks -source=hasher.go
type Hasher interface {
	// Fingerprint returns a stable digest of the unit's name and source.
	Fingerprint(unit *domain.Unit) string
}
