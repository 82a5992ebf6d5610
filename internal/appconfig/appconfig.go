// Package appconfig holds small, persisted harness-level preferences — the
// ambient quality-of-life layer every CLI in this corpus carries (c.f. the
// teacher's internal/config). This is distinct from a job's configuration:
// it only seeds harness.Context defaults before CLI/INI parsing overrides
// them, and is never reloaded mid-run (no runtime reconfiguration).
package appconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config represents ~/.config/iobench/config.toml.
type Config struct {
	DefaultIOEngine   string `toml:"default_ioengine,omitempty"`
	DefaultOutputPath string `toml:"default_output_path,omitempty"`
	Terse             bool   `toml:"terse,omitempty"`
	LockMemMiB        int    `toml:"lock_mem_mib,omitempty"`
}

var configDirOverride string

// SetConfigDir lets an embedding harness (or a test) override the config
// directory used by Load/Save.
func SetConfigDir(dir string) { configDirOverride = dir }

// ConfigDir returns the directory config.toml lives in.
// Precedence: SetConfigDir > $XDG_CONFIG_HOME/iobench > ~/.config/iobench.
func ConfigDir() string {
	if configDirOverride != "" {
		return configDirOverride
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "iobench")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "iobench")
	}
	return filepath.Join(home, ".config", "iobench")
}

func configPath() string { return filepath.Join(ConfigDir(), "config.toml") }

// Load reads config.toml, returning zero-value defaults if it does not
// exist.
func Load() (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(configPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}
	return cfg, nil
}

// Save writes cfg back to config.toml, creating the config directory if
// needed.
func Save(cfg *Config) error {
	if err := os.MkdirAll(ConfigDir(), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(configPath(), data, 0o644)
}
