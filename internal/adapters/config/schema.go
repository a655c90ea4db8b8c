package config

// Knotfile is the structure of knot.yaml and knot.toml.
type Knotfile struct {
	Version string `yaml:"version" toml:"version"`
	// Sources is the unit source root, relative to the config file.
	Sources string `yaml:"sources" toml:"sources"`
	// Target is the artifact directory. Absent selects the default; empty disables it.
	Target        *string `yaml:"target" toml:"target"`
	Extension     string  `yaml:"extension" toml:"extension"`
	SelfReference string  `yaml:"selfReference" toml:"selfReference"`
	Parallelism   int     `yaml:"parallelism" toml:"parallelism"`
}

// SupportedVersion is the config version this loader understands.
const SupportedVersion = "1"
