package ports

import "go.trai.ch/knot/internal/core/domain"

// ArtifactStore persists compiled artifacts below a target directory.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type ArtifactStore interface {
	// Get loads the artifact for name.
	// Returns nil, nil if not found.
	Get(root string, name domain.UnitName) (*domain.Artifact, error)

	// Put stores the artifact.
	Put(root string, artifact *domain.Artifact) error

	// Clean removes every stored artifact.
	Clean(root string) error
}
