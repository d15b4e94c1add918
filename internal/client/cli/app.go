package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strconv"

	"github.com/dmitrijs2005/snip/internal/client/client"
	"github.com/dmitrijs2005/snip/internal/client/config"
	"github.com/dmitrijs2005/snip/internal/client/content"
	"github.com/dmitrijs2005/snip/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/snip/internal/client/services"
	"github.com/dmitrijs2005/snip/internal/logging"
	"github.com/spf13/cobra"
)

// App is the state one command runs with.
type App struct {
	config   *config.Config
	db       *sql.DB
	snippets services.SnippetService
	sync     services.SyncService
	content  *content.Source
	logger   logging.Logger
	out      io.Writer
}

func newApp(ctx context.Context, opts *RootOptions, cmd *cobra.Command) (*App, error) {
	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := logging.NewTextLogger(cmd.ErrOrStderr(), opts.Verbose)

	db, err := repomanager.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open snippet database: %w", err)
	}
	repos := repomanager.NewSQLiteRepositoryManager()

	// A nil Client switches sync off.
	var c client.Client
	if cfg.SyncEnabled {
		tc, err := client.NewTLSClient(client.Options{
			Addr:               cfg.SyncAddr,
			Token:              cfg.SyncToken,
			Timeout:            cfg.Timeout,
			CAFile:             cfg.CAFile,
			InsecureSkipVerify: cfg.InsecureSkipVerify,
			Logger:             logger,
		})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("configure sync: %w", err)
		}
		c = tc
	}

	src := content.New(cfg.Editor)
	src.Stdin, src.Stdout, src.Stderr = cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr()
	src.IsTerminal = opts.isTerminal

	return &App{
		config:   cfg,
		db:       db,
		snippets: services.NewSnippetService(db, repos, logger),
		sync: services.NewSyncService(db, repos, c, logger,
			services.WithStateHook(func(s client.State) {
				logger.Debug(ctx, "sync finished", "state", s.String())
			})),
		content: src,
		logger:  logger,
		out:     cmd.OutOrStdout(),
	}, nil
}

func (a *App) Close() error {
	return a.db.Close()
}

// run opens the App for the duration of fn.
func run(opts *RootOptions, cmd *cobra.Command, fn func(ctx context.Context, a *App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, opts, cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid snippet id %q", s)
	}
	return id, nil
}
