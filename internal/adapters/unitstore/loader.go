package unitstore

import (
	"context"
	"io/fs"
	"os"
	"runtime"

	knotfs "go.trai.ch/knot/internal/adapters/fs"
	"go.trai.ch/knot/internal/core/domain"
	"go.trai.ch/knot/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

var _ ports.SourceLoader = (*Loader)(nil)

// Loader reads unit sources from a file tree into a Store.
type Loader struct {
	walker    *knotfs.Walker
	extractor ports.ReferenceExtractor
	logger    ports.Logger
}

// NewLoader creates a new Loader.
func NewLoader(walker *knotfs.Walker, extractor ports.ReferenceExtractor, logger ports.Logger) *Loader {
	return &Loader{walker: walker, extractor: extractor, logger: logger}
}

// Load reads the unit sources below dir on the local filesystem.
func (l *Loader) Load(ctx context.Context, dir, ext string, parallelism int) (ports.UnitStore, error) {
	store, err := l.LoadFS(ctx, os.DirFS(dir), ext, parallelism)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// LoadFS reads every file ending in ext below fsys, extracts its references, and
// returns a Store holding the resulting units. Files are read by at most
// parallelism workers; a value below one means runtime.NumCPU.
func (l *Loader) LoadFS(ctx context.Context, fsys fs.FS, ext string, parallelism int) (*Store, error) {
	if parallelism < 1 {
		parallelism = runtime.NumCPU()
	}

	type entry struct {
		path string
		name domain.UnitName
	}
	var entries []entry
	for p := range l.walker.WalkFiles(fsys, nil) {
		name, ok := domain.ParseUnitPath(p, ext)
		if !ok {
			continue
		}
		entries = append(entries, entry{path: p, name: name})
	}

	units := make([]*domain.Unit, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, e := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := fs.ReadFile(fsys, e.path)
			if err != nil {
				return zerr.With(zerr.Wrap(err, domain.ErrSourceReadFailed.Error()), "path", e.path)
			}
			source := string(data)
			refs, err := l.extractor.References(e.name, source)
			if err != nil {
				return zerr.With(err, "path", e.path)
			}
			units[i] = domain.NewUnit(e.name, source, refs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	store := NewStore()
	for _, u := range units {
		if err := store.Add(u); err != nil {
			return nil, err
		}
	}
	if l.logger != nil && store.Len() == 0 {
		l.logger.Warn("no unit sources found with extension " + ext)
	}
	return store, nil
}
