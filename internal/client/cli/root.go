package cli

import (
	"context"
	"os"

	"github.com/dmitrijs2005/snip/internal/buildinfo"
	"github.com/dmitrijs2005/snip/internal/client/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath         string
	DBPath             string
	Verbose            bool
	SyncAddr           string
	CAFile             string
	InsecureSkipVerify bool

	getenv     func(string) string
	isTerminal func() bool
}

func defaultOptions() *RootOptions {
	return &RootOptions{
		getenv: os.Getenv,
		isTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

// NewRootCommand creates the root command for the snip CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(defaultOptions())
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "snip",
		Short:         "snip - personal snippet store",
		Long:          "Keep named text snippets with tags in a local database and push changes to a sync peer.",
		Version:       buildinfo.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.ConfigPath, "config", "", "path to config file (default ~/.config/snip/config.json)")
	pf.StringVar(&opts.DBPath, "db", "", "path to the snippet database")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	pf.StringVar(&opts.SyncAddr, "sync-addr", "", "host:port of the sync peer")
	pf.StringVar(&opts.CAFile, "ca-file", "", "PEM file with the sync peer's CA certificate")
	pf.BoolVar(&opts.InsecureSkipVerify, "insecure-skip-verify", false, "do not verify the sync peer's certificate")

	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewTagsCommand(opts))
	cmd.AddCommand(NewRenameCommand(opts))
	cmd.AddCommand(NewEditCommand(opts))
	cmd.AddCommand(NewTagCommand(opts))
	cmd.AddCommand(NewUntagCommand(opts))
	cmd.AddCommand(NewRetagCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))

	return cmd
}

// loadConfig resolves the configuration and lets changed flags win.
func (o *RootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.ConfigPath, o.getenv)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DBPath = o.DBPath
	}
	if flags.Changed("sync-addr") {
		cfg.SyncAddr = o.SyncAddr
	}
	if flags.Changed("ca-file") {
		cfg.CAFile = o.CAFile
	}
	if flags.Changed("insecure-skip-verify") {
		cfg.InsecureSkipVerify = o.InsecureSkipVerify
	}
	return cfg, nil
}

// Execute runs the CLI and returns the process exit status.
func Execute(ctx context.Context) int {
	cmd := NewRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		Report(cmd.ErrOrStderr(), err)
		return 1
	}
	return 0
}
