// Package project reads emerge.toml, the per-project configuration of the
// emerge CLI.
package project

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Manifest is a loaded emerge.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

type Config struct {
	Package PackageConfig `toml:"package"`
	Check   CheckConfig   `toml:"check"`
	Trace   TraceConfig   `toml:"trace"`
}

type PackageConfig struct {
	Name string `toml:"name"`
	// Sources lists files or directories relative to the manifest; empty means the root.
	Sources []string `toml:"sources"`
}

type CheckConfig struct {
	MaxDiagnostics   int  `toml:"max_diagnostics"`
	WarningsAsErrors bool `toml:"warnings_as_errors"`
	// Lints defaults to true; nil means unset.
	Lints *bool `toml:"lints"`
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Mode   string `toml:"mode"`
	Output string `toml:"output"`
}

// LintsEnabled reports whether lint warnings should be kept.
func (c CheckConfig) LintsEnabled() bool {
	return c.Lints == nil || *c.Lints
}

// Load finds emerge.toml from startDir upwards and decodes it.
// It returns ErrNoManifest when there is none.
func Load(startDir string) (*Manifest, error) {
	manifestPath, err := FindManifest(startDir)
	if err != nil {
		return nil, err
	}
	cfg, err := LoadConfig(manifestPath)
	if err != nil {
		return nil, err
	}
	return &Manifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, nil
}

// LoadConfig decodes one manifest file. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if !meta.IsDefined("package") {
		return Config{}, fmt.Errorf("%s: missing [package]", path)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return Config{}, fmt.Errorf("%s: missing [package].name", path)
	}
	if cfg.Check.MaxDiagnostics < 0 {
		return Config{}, fmt.Errorf("%s: [check].max_diagnostics must not be negative", path)
	}
	return cfg, nil
}

// SourcePaths resolves [package].sources against the manifest directory.
func (m *Manifest) SourcePaths() []string {
	if len(m.Config.Package.Sources) == 0 {
		return []string{m.Root}
	}
	out := make([]string, len(m.Config.Package.Sources))
	for i, s := range m.Config.Package.Sources {
		out[i] = filepath.Join(m.Root, filepath.FromSlash(s))
	}
	return out
}
