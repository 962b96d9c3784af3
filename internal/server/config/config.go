// Package config handles configuration for the reference server,
// including defaults, JSON overlay, and command-line flags.
package config

// Config holds runtime settings for the reference server.
//
// Fields:
//   - EndpointAddrGRPC: bind address for the gRPC endpoint.
//   - LogLevel: debug, info, warn or error.
//   - LogJSON: write JSON records instead of coloured console output.
//   - LogFile: optional rotated log file.
type Config struct {
	EndpointAddrGRPC string
	LogLevel         string
	LogJSON          bool
	LogFile          string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.LogLevel = "info"
	c.LogJSON = true
	c.LogFile = ""
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file (-c) and finally from command-line flags.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if path, _ := fs.GetString("config"); path != "" {
		if err := parseJson(cfg, path); err != nil {
			return nil, err
		}
	}

	applyFlags(cfg, fs)
	return cfg, nil
}
