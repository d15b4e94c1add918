package config

import (
	"fmt"
	"strconv"
	"time"
)

// parseEnv overlays cfg with the environment variables that are set.
func parseEnv(cfg *Config, getenv func(string) string) error {
	strs := []struct {
		key string
		dst *string
	}{
		{"SNIP_DB", &cfg.DBPath},
		{"SNIP_SYNC_ADDR", &cfg.SyncAddr},
		{"SNIP_SYNC_TOKEN", &cfg.SyncToken},
		{"SNIP_CA_FILE", &cfg.CAFile},
		{"EDITOR", &cfg.Editor},
	}
	for _, s := range strs {
		if v := getenv(s.key); v != "" {
			*s.dst = v
		}
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"SNIP_SYNC", &cfg.SyncEnabled},
		{"SNIP_INSECURE_SKIP_VERIFY", &cfg.InsecureSkipVerify},
	}
	for _, b := range bools {
		v := getenv(b.key)
		if v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", b.key, err)
		}
		*b.dst = parsed
	}

	if v := getenv("SNIP_SYNC_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SNIP_SYNC_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}
	return nil
}
