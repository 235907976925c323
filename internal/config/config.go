package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config represents the optional dirdiff configuration file.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults" yaml:"defaults"`
	Theme    ThemeConfig    `toml:"theme"    yaml:"theme"`
}

// DefaultsConfig holds persistent flag defaults. A nil field means the
// flag's own default applies.
type DefaultsConfig struct {
	Verify  *bool    `toml:"verify"  yaml:"verify"`
	Hidden  *bool    `toml:"hidden"  yaml:"hidden"`
	System  *bool    `toml:"system"  yaml:"system"`
	BWLimit *string  `toml:"bwlimit" yaml:"bwlimit"`
	Locale  *string  `toml:"locale"  yaml:"locale"`
	Exclude []string `toml:"exclude" yaml:"exclude"`
}

// ThemeConfig holds optional color overrides for the tree renderer.
type ThemeConfig struct {
	Added    *string `toml:"added"    yaml:"added"`
	Removed  *string `toml:"removed"  yaml:"removed"`
	Modified *string `toml:"modified" yaml:"modified"`
	Failure  *string `toml:"failure"  yaml:"failure"`
	Dir      *string `toml:"dir"      yaml:"dir"`
	Muted    *string `toml:"muted"    yaml:"muted"`
}

// Path returns the resolved path to the config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "dirdiff", "config.toml")
}

// Load reads the config file from the XDG path. Returns a zero Config
// (no error) if the file does not exist. Config is always optional.
func Load() (Config, error) {
	path := Path()
	if path == "" {
		return Config{}, nil
	}
	cfg, err := LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Config{}, nil
	}
	return cfg, err
}

// LoadFile reads an explicit config file. Files ending in .yaml or .yml are
// decoded as YAML, anything else as TOML.
func LoadFile(path string) (Config, error) {
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return Config{}, err
			}
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return cfg, nil
}
