// Package server assembles snipd: it opens the replica database, sets up the
// optional push archive and runs the TLS sync listener until a shutdown
// signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/snip/internal/logging"
	"github.com/dmitrijs2005/snip/internal/server/archive"
	"github.com/dmitrijs2005/snip/internal/server/auth"
	"github.com/dmitrijs2005/snip/internal/server/config"
	"github.com/dmitrijs2005/snip/internal/server/listener"
	"github.com/dmitrijs2005/snip/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/snip/internal/server/services"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	listener *listener.Server
	closers  []io.Closer
}

// NewLogger returns the JSON logger of snipd and, when logging to a file,
// the writer to close on shutdown.
func NewLogger(c *config.Config) (logging.Logger, io.Closer) {
	if c.LogFile == "" {
		return logging.NewJSONLogger(os.Stdout), nil
	}
	w := logging.RotatingFile(c.LogFile)
	return logging.NewJSONLogger(w), w
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, logCloser := NewLogger(c)
	app := &App{config: c, logger: logger}
	if logCloser != nil {
		app.closers = append(app.closers, logCloser)
	}

	tlsConfig, err := listener.LoadTLSConfig(c.TLSCertFile, c.TLSKeyFile)
	if err != nil {
		app.Close()
		return nil, err
	}

	repos := repomanager.NewPostgresRepositoryManager()
	db, err := repomanager.Open(ctx, c.DatabaseDSN, repos)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app.db = db
	app.closers = append(app.closers, db)

	archiver := archive.Nop()
	if c.S3Bucket != "" {
		a, err := archive.NewS3Archiver(ctx, archive.Options{
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			RootUser:     c.S3RootUser,
			RootPassword: c.S3RootPassword,
		})
		if err != nil {
			app.Close()
			return nil, err
		}
		archiver = a
	}

	ps := services.NewPushService(db, repos, archiver, logger)
	secret := []byte(c.SecretKey)
	authenticate := func(token string) (string, error) {
		return auth.GetUserIDFromToken(token, secret)
	}

	app.listener = listener.NewServer(c.ListenAddr, tlsConfig, ps, authenticate, logger,
		listener.WithTimeout(c.Timeout),
		listener.WithMaxPayload(c.MaxPayload),
	)
	return app, nil
}

// Close releases the database and log file.
func (app *App) Close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		_ = app.closers[i].Close()
	}
	app.closers = nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.listener.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()
	app.logger.Info(ctx, "App stopped")
	app.Close()
}
