package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/snip/internal/flagx"
	"github.com/dmitrijs2005/snip/internal/timex"
)

// JsonConfig is the JSON form of Config. Durations use timex.Duration, so
// both "60s" and integer nanoseconds are accepted.
type JsonConfig struct {
	ListenAddr     string         `json:"listen_addr"`
	DatabaseDSN    string         `json:"database_dsn"`
	SecretKey      string         `json:"secret_key"`
	TLSCertFile    string         `json:"tls_cert_file"`
	TLSKeyFile     string         `json:"tls_key_file"`
	Timeout        timex.Duration `json:"timeout"`
	MaxPayload     int            `json:"max_payload"`
	TokenValidity  timex.Duration `json:"token_validity"`
	LogFile        string         `json:"log_file"`
	S3RootUser     string         `json:"s3_root_user"`
	S3RootPassword string         `json:"s3_root_password"`
	S3Bucket       string         `json:"s3_bucket"`
	S3Region       string         `json:"s3_region"`
	S3BaseEndpoint string         `json:"s3_base_endpoint"`
}

// parseJson loads the file named by -c/-config into config. Keys missing
// from the file keep their current value. It panics on unreadable or
// malformed files.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{
		ListenAddr:     config.ListenAddr,
		DatabaseDSN:    config.DatabaseDSN,
		SecretKey:      config.SecretKey,
		TLSCertFile:    config.TLSCertFile,
		TLSKeyFile:     config.TLSKeyFile,
		Timeout:        timex.Duration{Duration: config.Timeout},
		MaxPayload:     config.MaxPayload,
		TokenValidity:  timex.Duration{Duration: config.TokenValidity},
		LogFile:        config.LogFile,
		S3RootUser:     config.S3RootUser,
		S3RootPassword: config.S3RootPassword,
		S3Bucket:       config.S3Bucket,
		S3Region:       config.S3Region,
		S3BaseEndpoint: config.S3BaseEndpoint,
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.ListenAddr = c.ListenAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.TLSCertFile = c.TLSCertFile
	config.TLSKeyFile = c.TLSKeyFile
	config.Timeout = c.Timeout.Duration
	config.MaxPayload = c.MaxPayload
	config.TokenValidity = c.TokenValidity.Duration
	config.LogFile = c.LogFile
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
}
