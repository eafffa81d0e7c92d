// Package config loads tool configuration from an optional TOML file.
//
// All values have working defaults, so a config file is only needed to
// change spacing constants or to point the cache at a shared Redis
// instance. The file is looked up at the path given on the command line
// or at $XDG_CONFIG_HOME/gedmd/config.toml.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	apperrors "github.com/AlexKucera/gedcom-to-markdown/pkg/errors"
)

// Layout holds the spacing constants for canvas generation.
// These are configuration values, never computed from the data.
type Layout struct {
	// NodeWidth is the width of every canvas node in pixels.
	NodeWidth float64 `toml:"node_width"`

	// NodeHeight is the base height of a canvas node without a portrait.
	NodeHeight float64 `toml:"node_height"`

	// ImageHeight is the height of a canvas node that embeds a portrait.
	ImageHeight float64 `toml:"image_height"`

	// GenerationSpacing is the horizontal distance between generations.
	GenerationSpacing float64 `toml:"generation_spacing"`

	// SiblingSpacing is the vertical distance between slots in a generation.
	SiblingSpacing float64 `toml:"sibling_spacing"`

	// ClusterSpacing is the vertical gap between disconnected family clusters.
	ClusterSpacing float64 `toml:"cluster_spacing"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	// Backend is one of "file", "redis", or "none".
	Backend string `toml:"backend"`

	// RedisAddr is the host:port of the Redis server (backend = "redis").
	RedisAddr string `toml:"redis_addr"`

	// RedisPassword authenticates against Redis, if required.
	RedisPassword string `toml:"redis_password"`

	// RedisDB selects the Redis logical database.
	RedisDB int `toml:"redis_db"`

	// Scope prefixes all cache keys, isolating vaults that share a backend.
	Scope string `toml:"scope"`
}

// Config is the full tool configuration.
type Config struct {
	Layout Layout      `toml:"layout"`
	Cache  CacheConfig `toml:"cache"`
}

// Backend names accepted in CacheConfig.Backend.
const (
	CacheBackendFile  = "file"
	CacheBackendRedis = "redis"
	CacheBackendNone  = "none"
)

// Default returns the built-in configuration.
// The layout constants match the node dimensions Obsidian renders well at
// the default canvas zoom.
func Default() Config {
	return Config{
		Layout: Layout{
			NodeWidth:         250,
			NodeHeight:        60,
			ImageHeight:       150,
			GenerationSpacing: 350,
			SiblingSpacing:    110,
			ClusterSpacing:    400,
		},
		Cache: CacheConfig{
			Backend: CacheBackendFile,
		},
	}
}

// Load reads the config file at path, layered over the defaults.
// An empty path falls back to the default location; a missing file at the
// default location is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = defaultPath()
		if path == "" {
			return cfg, nil
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return cfg, apperrors.New(apperrors.ErrCodeFileNotFound, "config file not found: %s", path)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "decode config %s", path)
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Cache.Backend {
	case CacheBackendFile, CacheBackendRedis, CacheBackendNone:
	default:
		return apperrors.New(apperrors.ErrCodeInvalidConfig,
			"cache backend must be one of file, redis, none; got %q", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheBackendRedis && c.Cache.RedisAddr == "" {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "redis backend requires redis_addr")
	}
	if c.Layout.NodeWidth <= 0 || c.Layout.NodeHeight <= 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "node dimensions must be positive")
	}
	if c.Layout.GenerationSpacing <= 0 || c.Layout.SiblingSpacing <= 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "layout spacing must be positive")
	}
	return nil
}

// defaultPath returns the XDG config file location, or "" if no home
// directory is available.
func defaultPath() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "gedmd", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "gedmd", "config.toml")
}
