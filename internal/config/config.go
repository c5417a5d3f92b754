// Package config loads the YAML configuration shared by the REPL and HTTP
// front ends: the database file path, buffer cache capacity, and (for the
// server) the listen address.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidCacheCapacity is returned by Load when a config file sets
// cache_capacity below 1.
var ErrInvalidCacheCapacity = errors.New("config: cache_capacity must be >= 1")

const (
	defaultDBPath        = "pagebase.db"
	defaultCacheCapacity = 100
	defaultHTTPAddr      = ":8080"
)

// Config is the set of knobs either front end reads at startup.
type Config struct {
	DBPath        string `yaml:"db_path"`
	CacheCapacity int    `yaml:"cache_capacity"`
	HTTPAddr      string `yaml:"http_addr"`
	LogLevel      string `yaml:"log_level"`
}

// Default returns a Config populated with the documented defaults.
func Default() Config {
	return Config{
		DBPath:        defaultDBPath,
		CacheCapacity: defaultCacheCapacity,
		HTTPAddr:      defaultHTTPAddr,
		LogLevel:      "info",
	}
}

// Load reads a YAML config file at path, filling any field the file omits
// with the value from Default. A missing file is not an error: callers get
// the defaults back.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if cfg.CacheCapacity < 1 {
		return cfg, fmt.Errorf("%w: got %d", ErrInvalidCacheCapacity, cfg.CacheCapacity)
	}
	return cfg, nil
}
