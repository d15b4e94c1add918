// Package config loads runtime configuration for the snip CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file: the path given with --config, else
//     ~/.config/snip/config.json when it exists.
//  3. SNIP_* environment variables (and EDITOR).
//  4. Command-line flags, applied by the CLI on top of the loaded Config.
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "30s" or integer
// nanoseconds. Keys absent from the file keep their previous value:
//
//	{
//	  "db_path": "/home/me/.local/snip/data.db",
//	  "sync_enabled": true,
//	  "sync_addr": "sync.example.com:7443",
//	  "sync_token": "eyJhbGciOi...",
//	  "timeout": "60s",
//	  "insecure_skip_verify": false,
//	  "ca_file": "/etc/snip/peer.pem",
//	  "editor": "vim"
//	}
//
// # Environment
//
//	SNIP_DB, SNIP_SYNC, SNIP_SYNC_ADDR, SNIP_SYNC_TOKEN, SNIP_SYNC_TIMEOUT,
//	SNIP_INSECURE_SKIP_VERIFY, SNIP_CA_FILE, EDITOR
package config
