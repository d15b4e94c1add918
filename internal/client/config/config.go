package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/snip/internal/common"
)

// Config holds runtime settings for the snip CLI.
type Config struct {
	DBPath string

	// SyncEnabled switches the push path on. With it off, sync fails with
	// common.SyncDisabled.
	SyncEnabled        bool
	SyncAddr           string
	SyncToken          string
	Timeout            time.Duration
	InsecureSkipVerify bool
	CAFile             string

	Editor string
}

// DefaultEditor is used when neither the config nor $EDITOR names one.
const DefaultEditor = "/usr/bin/editor"

// LoadDefaults populates c with defaults rooted at the user's home directory.
func (c *Config) LoadDefaults(home string) {
	c.DBPath = filepath.Join(home, ".local", "snip", "data.db")
	c.SyncEnabled = false
	c.SyncAddr = ""
	c.SyncToken = ""
	c.Timeout = common.DefaultSyncTimeoutSeconds * time.Second
	c.InsecureSkipVerify = false
	c.CAFile = ""
	c.Editor = DefaultEditor
}

// DefaultPath is the config file read when no --config is given.
func DefaultPath(home string) string {
	return filepath.Join(home, ".config", "snip", "config.json")
}

// Load builds a Config from defaults, the JSON file and the environment. An
// explicitly given path must exist; the default one is optional.
func Load(path string, getenv func(string) string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("locate home directory: %w", err)
	}

	cfg := &Config{}
	cfg.LoadDefaults(home)

	explicit := path != ""
	if !explicit {
		path = DefaultPath(home)
	}
	if err := parseJson(cfg, path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if err := parseEnv(cfg, getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}
