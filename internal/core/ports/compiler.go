package ports

import (
	"context"

	"go.trai.ch/knot/internal/core/domain"
)

// Resolver returns the completed artifact of a referenced unit.
// The registry's resolver fails with domain.ErrCircularReference when the unit
// is already being resolved further up the call chain.
type Resolver func(ctx context.Context, name domain.UnitName) (*domain.Artifact, error)

// UnitCompiler compiles units into artifacts. Implementations keep no state between calls.
//
//go:generate mockgen -source=compiler.go -destination=mocks/mock_compiler.go -package=mocks
type UnitCompiler interface {
	// CompileSingle compiles one unit. Every reference must be obtainable from resolve.
	CompileSingle(ctx context.Context, unit *domain.Unit, resolve Resolver) (*domain.Artifact, error)

	// CompileBatch compiles units together: every unit's surface is declared before
	// any body is resolved, so units in the batch may reference each other freely.
	// References outside the batch go through resolve. The result is all or nothing.
	CompileBatch(
		ctx context.Context,
		units []*domain.Unit,
		resolve Resolver,
	) (map[domain.UnitName]*domain.Artifact, error)
}
