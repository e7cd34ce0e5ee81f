// Package config loads the inspect tool's configuration. The loader
// binary itself reads no configuration at all: its resolution is
// deterministic and compile-fixed, and adding a config read to every
// program launch would defeat the point of a sub-millisecond shim.
// Packagers use this file to point inspections at staging trees.
package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"

	"github.com/jrelvas-ipc/hwcaps-loader/pkg/paths"
)

// Environment variable names
const (
	// EnvConfigFile overrides the config file location.
	EnvConfigFile = "HWCAPS_INSPECT_CONFIG"

	// EnvPrefix overrides the installation prefix for inspections.
	EnvPrefix = "HWCAPS_INSPECT_PREFIX"
)

// ConfigFileName is the config file name under the XDG config dir.
const ConfigFileName = "config.toml"

// Config holds the inspect tool's settings.
type Config struct {
	// Prefix is the installation prefix to inspect. Defaults to the
	// standard /usr installation.
	Prefix string `toml:"prefix"`

	// Color controls table/verdict styling: "auto", "always", "never".
	Color string `toml:"color"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Prefix: paths.DefaultPrefix,
		Color:  "auto",
	}
}

// Load reads configuration in precedence order: built-in defaults,
// then the config file (if present), then environment overrides.
func Load() (Config, error) {
	cfg := Default()

	path := ConfigFilePath()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	case !os.IsNotExist(err):
		return Config{}, err
	}

	if prefix := os.Getenv(EnvPrefix); prefix != "" {
		cfg.Prefix = prefix
	}

	if cfg.Prefix == "" {
		cfg.Prefix = paths.DefaultPrefix
	}
	if cfg.Color == "" {
		cfg.Color = "auto"
	}

	return cfg, nil
}

// ConfigFilePath returns the config file location, honoring the
// override variable.
func ConfigFilePath() string {
	if path := os.Getenv(EnvConfigFile); path != "" {
		return path
	}
	return filepath.Join(xdg.ConfigHome, "hwcaps-loader", ConfigFileName)
}

// Layout returns the paths layout the configuration selects.
func (c Config) Layout() paths.Layout {
	return paths.NewLayout(c.Prefix)
}
