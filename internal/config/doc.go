// Package config loads runtime configuration for the nutrisync client.
//
// Sources & precedence (later wins)
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with --config.
//  3. A .env file in the working directory and NUTRISYNC_* environment
//     variables, e.g. NUTRISYNC_BATCH_SIZE=20.
//  4. Command-line flags registered with RegisterFlags.
//
// Durations accept Go duration strings such as "3s" or "15m":
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "sync_interval": "15m"
//	}
package config
