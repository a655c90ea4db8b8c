package domain

// Config is the resolved project configuration.
// All paths are absolute.
type Config struct {
	// Root is the directory that contains the configuration file.
	Root string
	// SourceDir is the root of the unit source tree.
	SourceDir string
	// TargetDir is the artifact directory. Empty disables the artifact store.
	TargetDir string
	// Extension is the file suffix of unit sources.
	Extension string
	// SelfReference decides how self-referencing units are treated.
	SelfReference SelfReferencePolicy
	// Parallelism bounds concurrent source reads.
	Parallelism int
}

// ArtifactsEnabled reports whether compiled artifacts are persisted.
func (c *Config) ArtifactsEnabled() bool {
	return c.TargetDir != ""
}
