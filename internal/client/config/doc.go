// Package config loads runtime configuration for the kinsync client CLI.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file given with --config (or $KINSYNC_CONFIG).
//  3. KINSYNC_* environment variables.
//  4. Command-line flags registered with AddFlags.
//
// The JSON loader uses timex.Duration, so intervals may be written as "3s"
// or as integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:3000",
//	  "workspace_id": "0b6c...",
//	  "token": "eyJ...",
//	  "database_path": "~/.kinsync/kinsync.db",
//	  "online_check_interval": "3s",
//	  "request_timeout": "10s"
//	}
package config
