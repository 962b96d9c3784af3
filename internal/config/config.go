package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/nutrisync/internal/common"
)

// Config holds runtime settings for the sync engine and the CLI.
type Config struct {
	DatabasePath        string        `mapstructure:"database_path"`
	ServerEndpointAddr  string        `mapstructure:"server_endpoint_addr"`
	OnlineCheckInterval time.Duration `mapstructure:"online_check_interval"`
	SyncInterval        time.Duration `mapstructure:"sync_interval"`
	BatchSize           int           `mapstructure:"batch_size"`
	MaxRetries          int           `mapstructure:"max_retries"`
	BaseDelay           time.Duration `mapstructure:"base_delay"`
	MaxDelay            time.Duration `mapstructure:"max_delay"`
	SyncedDisplay       time.Duration `mapstructure:"synced_display"`
	CompletedRetention  time.Duration `mapstructure:"completed_retention"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
	LogLevel            string        `mapstructure:"log_level"`
	LogFile             string        `mapstructure:"log_file"`
	LockFile            string        `mapstructure:"lock_file"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "nutrisync.db"
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.SyncInterval = 15 * time.Minute
	c.BatchSize = 50
	c.MaxRetries = 3
	c.BaseDelay = time.Second
	c.MaxDelay = 30 * time.Second
	c.SyncedDisplay = 2 * time.Second
	c.CompletedRetention = 24 * time.Hour
	c.RequestTimeout = 10 * time.Second
	c.LogLevel = "info"
	c.LogFile = ""
	c.LockFile = ""
}

// Default returns a Config with defaults applied.
func Default() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

// LockPath is the file guarding a single daemon per database.
func (c *Config) LockPath() string {
	if c.LockFile != "" {
		return c.LockFile
	}
	return c.DatabasePath + ".lock"
}

// Validate checks that sizes and intervals are usable.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", common.ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	switch {
	case c.DatabasePath == "":
		return invalid("database_path is required")
	case c.ServerEndpointAddr == "":
		return invalid("server_endpoint_addr is required")
	case c.OnlineCheckInterval <= 0:
		return invalid("online_check_interval must be positive, got %s", c.OnlineCheckInterval)
	case c.SyncInterval <= 0:
		return invalid("sync_interval must be positive, got %s", c.SyncInterval)
	case c.BatchSize <= 0:
		return invalid("batch_size must be positive, got %d", c.BatchSize)
	case c.MaxRetries <= 0:
		return invalid("max_retries must be positive, got %d", c.MaxRetries)
	case c.BaseDelay <= 0:
		return invalid("base_delay must be positive, got %s", c.BaseDelay)
	case c.BaseDelay > c.MaxDelay:
		return invalid("base_delay %s exceeds max_delay %s", c.BaseDelay, c.MaxDelay)
	case c.SyncedDisplay < 0:
		return invalid("synced_display must not be negative")
	case c.CompletedRetention <= 0:
		return invalid("completed_retention must be positive, got %s", c.CompletedRetention)
	case c.RequestTimeout <= 0:
		return invalid("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	return nil
}
