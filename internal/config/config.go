// Package config resolves console3's per-user configuration directory and
// loads its top-level preferences document.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds console3's application-wide preferences: the shell used when
// a session config doesn't specify one, the default scrollback retention,
// and named profiles a session can reference by name.
type Config struct {
	DefaultShell           string                   `yaml:"default_shell,omitempty"`
	DefaultScrollbackLines int                      `yaml:"default_scrollback_lines,omitempty"`
	Profiles               map[string]ProfileConfig `yaml:"profiles,omitempty"`
}

// ProfileConfig is a named, reusable shell launch configuration.
type ProfileConfig struct {
	Shell      string   `yaml:"shell,omitempty"`
	Args       []string `yaml:"args,omitempty"`
	WorkingDir string   `yaml:"working_dir,omitempty"`
}

const defaultScrollbackLines = 10000

// ConfigDir returns console3's configuration directory (~/.console3/),
// falling back to a relative path if the home directory can't be resolved.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".console3")
	}
	return filepath.Join(home, ".console3")
}

// RootDir resolves console3's configuration directory and ensures it
// exists, creating it with mode 0755 if necessary. Callers that
// need a place to read or write cache/state files (session persistence,
// terminal color hints) use this rather than ConfigDir directly.
func RootDir() (string, error) {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// Load reads console3's config from ~/.console3/config.yaml, returning
// defensive defaults (never an error) if the file is missing or malformed.
func Load() *Config {
	cfg, err := LoadFrom(filepath.Join(ConfigDir(), "config.yaml"))
	if err != nil {
		return defaultConfig()
	}
	return cfg
}

// LoadFrom reads a config document from path. A missing file yields
// defaults; a malformed file yields an error so callers that want strict
// validation (e.g. a "console3 config check" subcommand) can still see it.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		DefaultShell:           defaultShellPath(),
		DefaultScrollbackLines: defaultScrollbackLines,
	}
}

func (c *Config) applyDefaults() {
	if c.DefaultShell == "" {
		c.DefaultShell = defaultShellPath()
	}
	if c.DefaultScrollbackLines <= 0 {
		c.DefaultScrollbackLines = defaultScrollbackLines
	}
}

func defaultShellPath() string {
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/sh"
}
