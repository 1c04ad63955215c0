// Package server wires the document server: PostgreSQL storage, schema
// migrations, the document service and the gRPC endpoint, with graceful
// shutdown on SIGINT/SIGTERM/SIGQUIT.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/moviekeeper/internal/logging"
	"github.com/dmitrijs2005/moviekeeper/internal/server/config"
	"github.com/dmitrijs2005/moviekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/moviekeeper/internal/server/services"

	gs "github.com/dmitrijs2005/moviekeeper/internal/server/grpc"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	documents *services.DocumentService
}

// Seams for tests.
var (
	sqlOpen              = sql.Open
	newRepositoryManager = repomanager.NewPostgresRepositoryManager
)

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := sqlOpen("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	ds := services.NewDocumentService(db, rm, logger)

	return &App{config: c, logger: logger, db: db, documents: ds}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "Signal received", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.documents, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server stopped", "err", err)
		cancelFunc()
		return err
	}
	return nil
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// closes the database.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	var (
		wg     sync.WaitGroup
		runErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "closing database", "err", err)
	}
	app.logger.Info(ctx, "App stopped")
	return runErr
}
