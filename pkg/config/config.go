// Package config loads tool configuration from a TOML file. Flags still win;
// the file only supplies defaults.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/vizcli/viz/pkg/errors"
)

// FileName is the config file searched for in the working directory.
const FileName = "viz.toml"

// Config carries the file-backed defaults.
type Config struct {
	// Renderer is the default renderer name.
	Renderer string `toml:"renderer"`

	// CacheDir overrides the artifact cache location.
	CacheDir string `toml:"cache_dir"`

	// Seed is the default layout seed for network graphs.
	Seed uint64 `toml:"seed"`

	// Web configures the built-in HTTP server.
	Web WebConfig `toml:"web"`
}

// WebConfig holds server settings.
type WebConfig struct {
	// Listen is the address the server binds, host:port.
	Listen string `toml:"listen"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Renderer: "plotly",
		Seed:     42,
		Web:      WebConfig{Listen: "localhost:8080"},
	}
}

// Load reads the config file at path. An empty path searches ./viz.toml and
// then the user config directory; a missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = locate()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	return cfg, nil
}

// locate finds the first config file in the search path.
func locate() string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}
	if dir, err := os.UserConfigDir(); err == nil {
		p := filepath.Join(dir, "viz", FileName)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// CachePath returns the artifact cache directory, honoring the override.
func (c Config) CachePath() string {
	if c.CacheDir != "" {
		return c.CacheDir
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "viz-cache")
	}
	return filepath.Join(dir, "viz")
}
