// Package config loads application configuration from ~/.oscar,
// with environment overrides under the OSCAR_ prefix.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config is the resolved application configuration.
type Config struct {
	// DBPath is the sqlite database file for the local store.
	DBPath string

	// RedisURL is the remote store address.
	RedisURL string

	// Identity is the sync identity. Empty means logged out: records
	// stay local and nothing is queued.
	Identity string

	// DrainInterval is how often the daemon replays the pending queue.
	DrainInterval time.Duration

	// ResyncDelay is how long after daemon startup to run the initial
	// full sync.
	ResyncDelay time.Duration

	// ImportDir, when set, is watched by the daemon for dropped
	// snapshot files.
	ImportDir string

	// LogFile, when set, receives rotated daemon logs instead of
	// stderr.
	LogFile string
}

// DefaultDir returns the per-user configuration directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".oscar"
	}
	return filepath.Join(home, ".oscar")
}

// Load reads config.yaml from the default directory. A missing file
// is not an error; defaults and OSCAR_* environment variables apply.
func Load() (*Config, error) {
	return LoadFrom(DefaultDir())
}

// LoadFrom reads config.yaml from the given directory.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix("OSCAR")
	v.AutomaticEnv()

	v.SetDefault("db_path", filepath.Join(dir, "oscar.db"))
	v.SetDefault("redis_url", "redis://localhost:6379/0")
	v.SetDefault("identity", "")
	v.SetDefault("drain_interval", 30*time.Second)
	v.SetDefault("resync_delay", time.Second)
	v.SetDefault("import_dir", "")
	v.SetDefault("log_file", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		DBPath:        v.GetString("db_path"),
		RedisURL:      v.GetString("redis_url"),
		Identity:      v.GetString("identity"),
		DrainInterval: v.GetDuration("drain_interval"),
		ResyncDelay:   v.GetDuration("resync_delay"),
		ImportDir:     v.GetString("import_dir"),
		LogFile:       v.GetString("log_file"),
	}
	if cfg.DrainInterval <= 0 {
		return nil, fmt.Errorf("drain_interval must be positive (got %v)", cfg.DrainInterval)
	}
	return cfg, nil
}
