package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "NUTRISYNC"

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"db":                    "database_path",
	"server":                "server_endpoint_addr",
	"online-check-interval": "online_check_interval",
	"sync-interval":         "sync_interval",
	"batch-size":            "batch_size",
	"max-retries":           "max_retries",
	"base-delay":            "base_delay",
	"max-delay":             "max_delay",
	"synced-display":        "synced_display",
	"completed-retention":   "completed_retention",
	"request-timeout":       "request_timeout",
	"log-level":             "log_level",
	"log-file":              "log_file",
	"lock-file":             "lock_file",
}

// RegisterFlags defines the configuration flags on fs, using defaults for
// the help text.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()

	fs.StringP("db", "d", d.DatabasePath, "path to the local database file")
	fs.StringP("server", "a", d.ServerEndpointAddr, "address and port of the sync server")
	fs.Duration("online-check-interval", d.OnlineCheckInterval, "how often reachability is probed")
	fs.Duration("sync-interval", d.SyncInterval, "periodic sync interval")
	fs.Int("batch-size", d.BatchSize, "entries fetched per pass")
	fs.Int("max-retries", d.MaxRetries, "failed attempts before an entry is parked")
	fs.Duration("base-delay", d.BaseDelay, "base retry backoff")
	fs.Duration("max-delay", d.MaxDelay, "retry backoff cap")
	fs.Duration("synced-display", d.SyncedDisplay, "how long the synced state is shown")
	fs.Duration("completed-retention", d.CompletedRetention, "age after which completed entries are purged")
	fs.Duration("request-timeout", d.RequestTimeout, "per-call timeout for remote requests")
	fs.String("log-level", d.LogLevel, "log level (debug, info, warn, error)")
	fs.String("log-file", d.LogFile, "optional rotating log file")
	fs.String("lock-file", d.LockFile, "daemon lock file (defaults to <db>.lock)")
}

// LoadOptions selects the optional sources for Load.
type LoadOptions struct {
	// ConfigFile is a JSON file overlaid on defaults.
	ConfigFile string
	// EnvFile is a dotenv file; missing files are ignored.
	EnvFile string
	// Flags holds flags registered with RegisterFlags. Only flags the user
	// set override other sources.
	Flags *pflag.FlagSet
}

// Load builds a Config from defaults, the JSON file, the environment and
// flags, then validates it.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()

	d := Default()
	v.SetDefault("database_path", d.DatabasePath)
	v.SetDefault("server_endpoint_addr", d.ServerEndpointAddr)
	v.SetDefault("online_check_interval", d.OnlineCheckInterval)
	v.SetDefault("sync_interval", d.SyncInterval)
	v.SetDefault("batch_size", d.BatchSize)
	v.SetDefault("max_retries", d.MaxRetries)
	v.SetDefault("base_delay", d.BaseDelay)
	v.SetDefault("max_delay", d.MaxDelay)
	v.SetDefault("synced_display", d.SyncedDisplay)
	v.SetDefault("completed_retention", d.CompletedRetention)
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("lock_file", d.LockFile)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config read '%s': %w", opts.ConfigFile, err)
		}
	}

	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file '%s': %w", opts.EnvFile, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
