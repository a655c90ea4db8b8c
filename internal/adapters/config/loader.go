// Package config provides the configuration loader for knot.
package config

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"go.trai.ch/knot/internal/core/domain"
	"go.trai.ch/knot/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader for knot.yaml and knot.toml.
type Loader struct {
	Logger ports.Logger
	FS     FileSystem
}

// NewLoader creates a new Loader backed by the OS filesystem.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger, FS: NewOSFS()}
}

// Load walks up from cwd to the first directory holding knot.yaml or knot.toml
// (knot.yaml wins when both exist) and resolves its settings against that directory.
func (l *Loader) Load(cwd string) (*domain.Config, error) {
	configPath, err := l.findConfiguration(cwd)
	if err != nil {
		return nil, err
	}

	var knotfile Knotfile
	if filepath.Base(configPath) == domain.KnotTOMLFileName {
		err = l.readAndUnmarshalTOML(configPath, &knotfile)
	} else {
		err = readAndUnmarshalYAML(l.FS, configPath, &knotfile)
	}
	if err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	return l.resolve(configPath, &knotfile)
}

func (l *Loader) findConfiguration(cwd string) (string, error) {
	currentDir, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrConfigNotFound.Error()), "cwd", cwd)
	}
	for {
		for _, name := range []string{domain.KnotFileName, domain.KnotTOMLFileName} {
			candidate := filepath.Join(currentDir, name)
			if _, err := l.FS.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}
	return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "searched up to the filesystem root"), "cwd", cwd)
}

func (l *Loader) resolve(configPath string, knotfile *Knotfile) (*domain.Config, error) {
	if knotfile.Version != "" && knotfile.Version != SupportedVersion {
		l.Logger.Warn(fmt.Sprintf("unknown config version %q in %s, reading it as version %s",
			knotfile.Version, filepath.Base(configPath), SupportedVersion))
	}

	policy, err := domain.ParseSelfReferencePolicy(knotfile.SelfReference)
	if err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	ext := knotfile.Extension
	if ext == "" {
		ext = domain.DefaultUnitExtension
	}
	if !strings.HasPrefix(ext, ".") || strings.ContainsAny(ext, `/\`) {
		err := zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, "extension must start with a dot"), "extension", ext)
		return nil, zerr.With(err, "path", configPath)
	}

	parallelism := knotfile.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	root := filepath.Dir(configPath)
	target := domain.DefaultTargetPath()
	if knotfile.Target != nil {
		target = *knotfile.Target
	}

	cfg := &domain.Config{
		Root:          root,
		SourceDir:     resolvePath(root, knotfile.Sources),
		Extension:     ext,
		SelfReference: policy,
		Parallelism:   parallelism,
	}
	if target != "" {
		cfg.TargetDir = resolvePath(root, target)
	}
	return cfg, nil
}

// resolvePath resolves configured against root; empty selects root itself.
func resolvePath(root, configured string) string {
	if configured == "" {
		return filepath.Clean(root)
	}
	if filepath.IsAbs(configured) {
		return filepath.Clean(configured)
	}
	return filepath.Clean(filepath.Join(root, configured))
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](fsys FileSystem, configPath string, target *T) error {
	data, err := fsys.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(data, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}
	return nil
}

func (l *Loader) readAndUnmarshalTOML(configPath string, target *Knotfile) error {
	data, err := l.FS.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	meta, err := toml.Decode(string(data), target)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		l.Logger.Warn(fmt.Sprintf("ignoring unknown keys in %s: %v", domain.KnotTOMLFileName, undecoded))
	}
	return nil
}
