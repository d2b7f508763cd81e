// ABOUTME: Fitplan configuration management with backend selection.
// ABOUTME: Handles the config file, .env and environment overrides, and storage/content factories.

package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/harperreed/fitplan/internal/content"
	"github.com/harperreed/fitplan/internal/storage"
)

// Backend names.
const (
	BackendSQLite   = "sqlite"
	BackendBadger   = "badger"
	BackendPostgres = "postgres"
)

// DefaultListenAddr is where `fitplan serve` listens when nothing is configured.
const DefaultListenAddr = ":8080"

// LogConfig controls the process logger.
type LogConfig struct {
	Level      string `json:"level,omitempty"`
	File       string `json:"file,omitempty"`
	Console    bool   `json:"console,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty"`
	MaxAgeDays int    `json:"max_age_days,omitempty"`
}

// Config stores fitplan configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default), "badger" or "postgres".
	Backend string `json:"backend,omitempty"`

	// DataDir is the root directory for data storage.
	// SQLite puts fitplan.db here. Badger puts its files in badger/.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/fitplan.
	DataDir string `json:"data_dir,omitempty"`

	// DatabaseURL is the Postgres connection string.
	DatabaseURL string `json:"database_url,omitempty"`

	// ContentDir holds meals/*.json and workouts.json. Empty uses the
	// catalogs compiled into the binary.
	ContentDir string `json:"content_dir,omitempty"`

	// CacheContent keeps loaded catalogs until they are invalidated. Nil means true.
	CacheContent *bool `json:"cache_content,omitempty"`

	// User is the profile CLI commands act on when --user is not given.
	User string `json:"user,omitempty"`

	ListenAddr string    `json:"listen_addr,omitempty"`
	Log        LogConfig `json:"log,omitzero"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendSQLite
	}
	return strings.ToLower(c.Backend)
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// DefaultUser is the profile id used when nothing else is configured.
const DefaultUser = "me"

// GetUser returns the configured default user id.
func (c *Config) GetUser() string {
	if c.User == "" {
		return DefaultUser
	}
	return c.User
}

// GetListenAddr returns the HTTP listen address.
func (c *Config) GetListenAddr() string {
	if c.ListenAddr == "" {
		return DefaultListenAddr
	}
	return c.ListenAddr
}

// CachesContent reports whether catalogs are cached between loads.
func (c *Config) CachesContent() bool {
	return c.CacheContent == nil || *c.CacheContent
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage creates a Repository implementation based on the configured backend.
func (c *Config) OpenStorage(ctx context.Context) (storage.Repository, error) {
	return c.OpenBackend(ctx, c.GetBackend())
}

// OpenBackend opens the named backend with this config's locations.
func (c *Config) OpenBackend(ctx context.Context, backend string) (storage.Repository, error) {
	dataDir := c.GetDataDir()

	switch strings.ToLower(backend) {
	case BackendSQLite:
		return storage.Open(storage.SQLitePath(dataDir))
	case BackendBadger:
		return storage.OpenBadger(filepath.Join(dataDir, "badger"))
	case BackendPostgres:
		return storage.OpenPostgres(ctx, c.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// OpenContent creates the catalog loader for the configured content source.
func (c *Config) OpenContent(logger *slog.Logger) *content.Loader {
	var store content.Store = content.Embedded()
	if c.ContentDir != "" {
		store = content.Dir(ExpandPath(c.ContentDir))
	}
	return content.NewLoader(store,
		content.WithCache(c.CachesContent()),
		content.WithLogger(logger))
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "fitplan", "config.json")
}

// Load reads .env, the config file and environment overrides.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFile(GetConfigPath())
}

// LoadFile reads config from path and applies environment overrides. A
// missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	envOverride(&c.Backend, "FITPLAN_BACKEND")
	envOverride(&c.DataDir, "FITPLAN_DATA_DIR")
	envOverride(&c.DatabaseURL, "FITPLAN_DATABASE_URL")
	envOverride(&c.ContentDir, "FITPLAN_CONTENT_DIR")
	envOverride(&c.ListenAddr, "FITPLAN_LISTEN_ADDR")
	envOverride(&c.User, "FITPLAN_USER")
	envOverride(&c.Log.Level, "LOG_LEVEL")
	envOverride(&c.Log.File, "LOG_FILE")
	if v := os.Getenv("FITPLAN_CACHE_CONTENT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.CacheContent = &b
		}
	}
}

func envOverride(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
