// Package config provides configuration management for the descriptor loader.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Config represents the descriptor loader's configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
	Ingest  IngestConfig  `yaml:"ingest"`
}

// StorageConfig selects and configures the ingestion-record persistence backend.
type StorageConfig struct {
	Type       string           `yaml:"type"` // memory, postgresql, mysql
	PostgreSQL PostgreSQLConfig `yaml:"postgresql"`
	MySQL      MySQLConfig      `yaml:"mysql"`
}

// PostgreSQLConfig represents PostgreSQL connection configuration.
type PostgreSQLConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Database     string `yaml:"database"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	SSLMode      string `yaml:"ssl_mode"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// MySQLConfig represents MySQL connection configuration.
type MySQLConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Database     string `yaml:"database"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	TLS          string `yaml:"tls"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// CacheConfig configures the in-memory LRU cache of parsed definition graphs.
type CacheConfig struct {
	Size       int `yaml:"size"`
	TTLSeconds int `yaml:"ttl_seconds"`
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Level      string `yaml:"level"`  // debug, info, warn, error
	Format     string `yaml:"format"` // json, text
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// IngestConfig holds ingestion settings. MaxNestingDepth is validated and
// passed to the ingest metrics; the descriptor parser does not read it, its
// nesting bound is fixed in internal/descriptor.
type IngestConfig struct {
	MaxNestingDepth int `yaml:"max_nesting_depth"`
}

// DefaultConfig returns the baseline configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Type: "memory",
		},
		Cache: CacheConfig{
			Size:       1024,
			TTLSeconds: 300,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Ingest: IngestConfig{
			MaxNestingDepth: 64,
		},
	}
}

// Load loads configuration from a YAML file and environment variables.
// Environment variables override file configuration. An empty path loads
// defaults only.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		// #nosec G304 -- path is operator-supplied command-line input
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DESCRIPTOR_LOADER_STORAGE_TYPE"); v != "" {
		c.Storage.Type = v
	}
	if v := os.Getenv("DESCRIPTOR_LOADER_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("DESCRIPTOR_LOADER_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("DESCRIPTOR_LOADER_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Cache.Size = n
		}
	}
	if v := os.Getenv("DESCRIPTOR_LOADER_MAX_NESTING_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Ingest.MaxNestingDepth = n
		}
	}

	if v := os.Getenv("DESCRIPTOR_LOADER_PG_HOST"); v != "" {
		c.Storage.PostgreSQL.Host = v
	}
	if v := os.Getenv("DESCRIPTOR_LOADER_PG_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Storage.PostgreSQL.Port = port
		}
	}
	if v := os.Getenv("DESCRIPTOR_LOADER_PG_DATABASE"); v != "" {
		c.Storage.PostgreSQL.Database = v
	}
	if v := os.Getenv("DESCRIPTOR_LOADER_PG_USER"); v != "" {
		c.Storage.PostgreSQL.User = v
	}
	if v := os.Getenv("DESCRIPTOR_LOADER_PG_PASSWORD"); v != "" {
		c.Storage.PostgreSQL.Password = v
	}

	if v := os.Getenv("DESCRIPTOR_LOADER_MYSQL_HOST"); v != "" {
		c.Storage.MySQL.Host = v
	}
	if v := os.Getenv("DESCRIPTOR_LOADER_MYSQL_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Storage.MySQL.Port = port
		}
	}
	if v := os.Getenv("DESCRIPTOR_LOADER_MYSQL_DATABASE"); v != "" {
		c.Storage.MySQL.Database = v
	}
	if v := os.Getenv("DESCRIPTOR_LOADER_MYSQL_USER"); v != "" {
		c.Storage.MySQL.User = v
	}
	if v := os.Getenv("DESCRIPTOR_LOADER_MYSQL_PASSWORD"); v != "" {
		c.Storage.MySQL.Password = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validStorageTypes := map[string]bool{"memory": true, "postgresql": true, "mysql": true}
	if !validStorageTypes[c.Storage.Type] {
		return fmt.Errorf("invalid storage type: %s", c.Storage.Type)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.Cache.Size < 0 {
		return fmt.Errorf("cache size must not be negative: %d", c.Cache.Size)
	}

	if c.Ingest.MaxNestingDepth < 1 {
		return fmt.Errorf("max nesting depth must be at least 1: %d", c.Ingest.MaxNestingDepth)
	}

	return nil
}

// Watcher reloads a Config from disk whenever the backing file changes,
// handing each successfully parsed generation to onReload. Parse/validate
// failures are reported but do not replace the previously loaded Config.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onReload func(*Config)
	onError  func(error)

	mu      sync.Mutex
	current *Config
}

// NewWatcher loads path once and arms an fsnotify watch on it. Call Close to
// stop watching. onError may be nil.
func NewWatcher(path string, onReload func(*Config), onError func(error)) (*Watcher, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(path); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch config file: %w", err)
	}

	w := &Watcher{
		path:     path,
		watcher:  fw,
		onReload: onReload,
		onError:  onError,
		current:  cfg,
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				if w.onError != nil {
					w.onError(fmt.Errorf("reload %s: %w", w.path, err))
				}
				continue
			}
			w.mu.Lock()
			w.current = cfg
			w.mu.Unlock()
			if w.onReload != nil {
				w.onReload(cfg)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

// Current returns the most recently loaded configuration.
func (w *Watcher) Current() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Close stops the underlying file watch.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
