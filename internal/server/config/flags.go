package config

import (
	"github.com/spf13/pflag"
)

// newFlagSet defines the server flags.
//
// Supported flags:
//
//	-a, --address string     gRPC bind address (e.g., ":50051")
//	-l, --log-level string   log level
//	    --log-json           JSON log output
//	    --log-file string    rotated log file
//	-c, --config string      JSON config file
//
// Unknown flags are ignored so the server can share argv with other
// components.
func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("devserver", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true

	fs.StringP("address", "a", "", "address and port to run server")
	fs.StringP("log-level", "l", "", "log level (debug, info, warn, error)")
	fs.Bool("log-json", false, "write logs as JSON")
	fs.String("log-file", "", "rotated log file")
	fs.StringP("config", "c", "", "JSON config file")

	return fs
}

// applyFlags copies every flag set on the command line into config.
func applyFlags(config *Config, fs *pflag.FlagSet) {
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "address":
			config.EndpointAddrGRPC = f.Value.String()
		case "log-level":
			config.LogLevel = f.Value.String()
		case "log-json":
			config.LogJSON, _ = fs.GetBool("log-json")
		case "log-file":
			config.LogFile = f.Value.String()
		}
	})
}
