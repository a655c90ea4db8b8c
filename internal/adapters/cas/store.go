// Package cas implements the on-disk artifact store.
package cas

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
	"go.trai.ch/knot/internal/core/domain"
	"go.trai.ch/knot/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ArtifactStore = (*Store)(nil)

// Store implements ports.ArtifactStore using a file-per-unit strategy:
// the artifact of "pkg1.B" lives at <root>/pkg1/B.art.
type Store struct{}

// NewStore creates a new Store.
func NewStore() *Store {
	return &Store{}
}

// record is the encoded form of an artifact.
type record struct {
	Unit        string               `msgpack:"unit"`
	Fingerprint string               `msgpack:"fingerprint"`
	Handle      *domain.CompiledUnit `msgpack:"handle"`
}

// Get loads the artifact for name.
// Returns nil, nil if it was never stored.
func (s *Store) Get(root string, name domain.UnitName) (*domain.Artifact, error) {
	filename := s.getFilename(root, name)
	//nolint:gosec // Path is built from the target directory and a validated unit name
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "path", filename)
	}

	var rec record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreDecodeFailed.Error()), "path", filename)
	}
	if rec.Unit != name.String() || rec.Handle == nil {
		err := zerr.With(zerr.New(domain.ErrStoreDecodeFailed.Error()), "path", filename)
		return nil, zerr.With(err, "unit", rec.Unit)
	}

	return &domain.Artifact{
		UnitName:    name,
		Fingerprint: rec.Fingerprint,
		Handle:      rec.Handle,
	}, nil
}

// Put stores the artifact, replacing any previous version.
func (s *Store) Put(root string, artifact *domain.Artifact) error {
	data, err := msgpack.Marshal(record{
		Unit:        artifact.UnitName.String(),
		Fingerprint: artifact.Fingerprint,
		Handle:      artifact.Handle,
	})
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreEncodeFailed.Error())
	}

	filename := s.getFilename(root, artifact.UnitName)
	if err := os.MkdirAll(filepath.Dir(filename), domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}

	//nolint:gosec // Path is built from the target directory and a validated unit name
	if err := os.WriteFile(filename, data, domain.FilePerm); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	return nil
}

// Clean removes the target directory and everything in it.
func (s *Store) Clean(root string) error {
	if err := os.RemoveAll(root); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreCleanFailed.Error()), "path", root)
	}
	return nil
}

func (s *Store) getFilename(root string, name domain.UnitName) string {
	return filepath.Join(root, domain.ArtifactPath(name))
}
