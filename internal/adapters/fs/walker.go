// Package fs provides file system adapters for walking unit sources and fingerprinting units.
package fs

import (
	"io/fs"
	"iter"
	"path"
)

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields the slash-separated paths of all regular files in fsys,
// skipping version control directories, the .knot directory, and anything whose
// base name matches one of ignores.
func (w *Walker) WalkFiles(fsys fs.FS, ignores []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if p != "." {
				if skip, action := w.shouldSkip(d, ignores); skip {
					return action
				}
			}

			if d.IsDir() {
				return nil
			}

			if !yield(p) {
				return fs.SkipAll
			}
			return nil
		})
	}
}

// shouldSkip reports whether the entry is excluded and the walk action to take for it.
func (w *Walker) shouldSkip(d fs.DirEntry, ignores []string) (bool, error) {
	name := d.Name()

	if d.IsDir() {
		switch name {
		case ".git", ".jj", ".knot":
			return true, fs.SkipDir
		}
	}

	for _, ignore := range ignores {
		if matched, _ := path.Match(ignore, name); matched {
			if d.IsDir() {
				return true, fs.SkipDir
			}
			return true, nil
		}
	}
	return false, nil
}
