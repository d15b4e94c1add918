package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/snip/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	DBPath             string         `json:"db_path"`
	SyncEnabled        bool           `json:"sync_enabled"`
	SyncAddr           string         `json:"sync_addr"`
	SyncToken          string         `json:"sync_token"`
	Timeout            timex.Duration `json:"timeout"`
	InsecureSkipVerify bool           `json:"insecure_skip_verify"`
	CAFile             string         `json:"ca_file"`
	Editor             string         `json:"editor"`
}

// parseJson overlays cfg with the values of the JSON file at path. The DTO
// starts from the current values so that absent keys leave them untouched.
func parseJson(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	jc := JsonConfig{
		DBPath:             cfg.DBPath,
		SyncEnabled:        cfg.SyncEnabled,
		SyncAddr:           cfg.SyncAddr,
		SyncToken:          cfg.SyncToken,
		Timeout:            timex.Duration{Duration: cfg.Timeout},
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		CAFile:             cfg.CAFile,
		Editor:             cfg.Editor,
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.DBPath = jc.DBPath
	cfg.SyncEnabled = jc.SyncEnabled
	cfg.SyncAddr = jc.SyncAddr
	cfg.SyncToken = jc.SyncToken
	cfg.Timeout = time.Duration(jc.Timeout.Duration)
	cfg.InsecureSkipVerify = jc.InsecureSkipVerify
	cfg.CAFile = jc.CAFile
	cfg.Editor = jc.Editor
	return nil
}
