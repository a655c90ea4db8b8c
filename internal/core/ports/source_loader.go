package ports

import "context"

// SourceLoader reads unit sources from a directory tree into a UnitStore.
//
//go:generate mockgen -source=source_loader.go -destination=mocks/mock_source_loader.go -package=mocks
type SourceLoader interface {
	// Load reads every file below dir whose name ends in ext. At most
	// parallelism files are read at once.
	Load(ctx context.Context, dir, ext string, parallelism int) (UnitStore, error)
}
