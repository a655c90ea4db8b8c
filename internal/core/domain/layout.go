package domain

import "path/filepath"

const (
	// KnotDirName is the name of the internal workspace directory.
	KnotDirName = ".knot"

	// ClassesDirName is the name of the compiled artifact directory.
	ClassesDirName = "classes"

	// KnotFileName is the name of the YAML project configuration file.
	KnotFileName = "knot.yaml"

	// KnotTOMLFileName is the name of the TOML project configuration file.
	KnotTOMLFileName = "knot.toml"

	// DefaultUnitExtension is the file suffix of unit sources.
	DefaultUnitExtension = ".unit.yaml"

	// ArtifactExtension is the file suffix of stored artifacts.
	ArtifactExtension = ".art"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultTargetPath returns the default artifact directory, relative to the project root.
// It joins .knot and classes.
func DefaultTargetPath() string {
	return filepath.Join(KnotDirName, ClassesDirName)
}

// ArtifactPath maps a unit name to its artifact file below the target directory:
// "pkg1.B" becomes "pkg1/B.art".
func ArtifactPath(name UnitName) string {
	return filepath.FromSlash(name.Path(ArtifactExtension))
}
