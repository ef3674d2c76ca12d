// Package config loads godocsearch settings from defaults, an optional TOML
// file and GODOCSEARCH_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "GODOCSEARCH_"

// Config is the top-level configuration
type Config struct {
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	Index  IndexConfig  `toml:"index"`
	Search SearchConfig `toml:"search"`
	Watch  WatchConfig  `toml:"watch"`
}

// IndexConfig controls index builds
type IndexConfig struct {
	Workers      int    `toml:"workers"`
	IncludeTests bool   `toml:"include_tests"`
	Output       string `toml:"output"`
	Format       string `toml:"format"` // "js" or "json"; empty picks by extension
	CatalogPath  string `toml:"catalog_path"`
	SnippetLimit int    `toml:"snippet_limit"`
}

// SearchConfig tunes the query engine
type SearchConfig struct {
	ChunkSize int `toml:"chunk_size"`
	Capacity  int `toml:"capacity"`
	CacheSize int `toml:"cache_size"`
}

// WatchConfig controls rebuilds in watch mode
type WatchConfig struct {
	Debounce    time.Duration `toml:"debounce"`
	MinInterval time.Duration `toml:"min_interval"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Index: IndexConfig{
			Workers:      runtime.NumCPU(),
			Output:       "doc/js/search_index.js",
			CatalogPath:  ":memory:",
			SnippetLimit: 130,
		},
		Search: SearchConfig{
			ChunkSize: 500,
			Capacity:  20,
			CacheSize: 256,
		},
		Watch: WatchConfig{
			Debounce:    300 * time.Millisecond,
			MinInterval: 2 * time.Second,
		},
	}
}

// Load builds the configuration. An empty path falls back to
// GODOCSEARCH_CONFIG; with neither set only defaults and environment apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode TOML file %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides reads GODOCSEARCH_* variables over the current values
func (c *Config) ApplyEnvOverrides() error {
	strs := map[string]*string{
		"LOG_LEVEL":    &c.LogLevel,
		"LOG_FORMAT":   &c.LogFormat,
		"OUTPUT":       &c.Index.Output,
		"FORMAT":       &c.Index.Format,
		"CATALOG_PATH": &c.Index.CatalogPath,
	}
	for key, target := range strs {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			*target = v
		}
	}

	ints := map[string]*int{
		"WORKERS":       &c.Index.Workers,
		"SNIPPET_LIMIT": &c.Index.SnippetLimit,
		"CHUNK_SIZE":    &c.Search.ChunkSize,
		"CAPACITY":      &c.Search.Capacity,
		"CACHE_SIZE":    &c.Search.CacheSize,
	}
	for key, target := range ints {
		v := os.Getenv(EnvPrefix + key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
		}
		*target = n
	}

	if v := os.Getenv(EnvPrefix + "INCLUDE_TESTS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sINCLUDE_TESTS: %w", EnvPrefix, err)
		}
		c.Index.IncludeTests = b
	}

	return nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be text or json, got %q", c.LogFormat))
	}

	if c.Index.Workers < 1 {
		errs = append(errs, errors.New("index.workers must be >= 1"))
	}
	if c.Index.Output == "" {
		errs = append(errs, errors.New("index.output is required"))
	}
	switch strings.ToLower(c.Index.Format) {
	case "", "js", "json":
	default:
		errs = append(errs, fmt.Errorf("index.format must be js or json, got %q", c.Index.Format))
	}
	if c.Index.SnippetLimit < 10 {
		errs = append(errs, errors.New("index.snippet_limit must be >= 10"))
	}

	if c.Search.ChunkSize < 100 || c.Search.ChunkSize > 1000 {
		errs = append(errs, fmt.Errorf("search.chunk_size must be between 100 and 1000, got %d", c.Search.ChunkSize))
	}
	if c.Search.Capacity < 1 {
		errs = append(errs, errors.New("search.capacity must be >= 1"))
	}
	if c.Search.CacheSize < 1 {
		errs = append(errs, errors.New("search.cache_size must be >= 1"))
	}

	if c.Watch.Debounce < 0 || c.Watch.MinInterval < 0 {
		errs = append(errs, errors.New("watch durations cannot be negative"))
	}

	return errors.Join(errs...)
}
