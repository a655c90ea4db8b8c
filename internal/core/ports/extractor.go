package ports

import "go.trai.ch/knot/internal/core/domain"

// ReferenceExtractor returns the unit names a source statically references.
//
//go:generate mockgen -source=extractor.go -destination=mocks/mock_extractor.go -package=mocks
type ReferenceExtractor interface {
	References(name domain.UnitName, source string) ([]domain.UnitName, error)
}

// Parser turns a unit source into its declaration.
// Malformed sources fail with domain.ErrCompile.
type Parser interface {
	Parse(name domain.UnitName, source string) (*domain.Declaration, error)
}
