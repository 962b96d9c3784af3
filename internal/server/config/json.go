package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// JsonConfig is the on-disk shape of the server configuration. Fields that
// are absent keep their current value.
type JsonConfig struct {
	EndpointAddrGRPC string `json:"endpoint_addr_grpc"`
	LogLevel         string `json:"log_level"`
	LogJSON          *bool  `json:"log_json"`
	LogFile          string `json:"log_file"`
}

// parseJson overlays the values found in the JSON file at path.
func parseJson(config *Config, path string) error {
	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if c.EndpointAddrGRPC != "" {
		config.EndpointAddrGRPC = c.EndpointAddrGRPC
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
	if c.LogJSON != nil {
		config.LogJSON = *c.LogJSON
	}
	if c.LogFile != "" {
		config.LogFile = c.LogFile
	}
	return nil
}
