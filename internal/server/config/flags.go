package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/snip/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   sync listener address (e.g., ":7443")
//	-d string   PostgreSQL DSN
//	-s string   token HMAC secret key
//	-x string   TLS certificate file
//	-k string   TLS key file
//	-t int      connection timeout, seconds
//	-l string   log file (rotated)
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket for the change set archive
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-issue user print a sync token for user and exit
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-d", "-s", "-x", "-k", "-t", "-l", "-u", "-p", "-b", "-g", "-e", "-issue",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ListenAddr, "a", config.ListenAddr, "address and port to listen on")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.TLSCertFile, "x", config.TLSCertFile, "TLS certificate file")
	fs.StringVar(&config.TLSKeyFile, "k", config.TLSKeyFile, "TLS key file")

	timeout := fs.Int("t", int(config.Timeout.Seconds()), "connection timeout (in seconds)")

	fs.StringVar(&config.LogFile, "l", config.LogFile, "log file")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 archive bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.IssueFor, "issue", config.IssueFor, "print a sync token for the user and exit")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.Timeout = time.Duration(*timeout) * time.Second
}
