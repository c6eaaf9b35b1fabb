// Package server initializes and runs the EchoSphere backend: it opens the
// database, applies migrations, wires the services to the realtime registry,
// and runs the HTTP server and the expiry janitor until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/echosphere/echosphere/internal/logging"
	"github.com/echosphere/echosphere/internal/server/config"
	"github.com/echosphere/echosphere/internal/server/httpapi"
	"github.com/echosphere/echosphere/internal/server/janitor"
	"github.com/echosphere/echosphere/internal/server/realtime"
	"github.com/echosphere/echosphere/internal/server/repositories/repomanager"
	"github.com/echosphere/echosphere/internal/server/services"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	httpSrv *httpapi.Server
	janitor *janitor.Janitor
}

func NewApp(cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := openDB(context.Background(), cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	registry := realtime.NewRegistry(logger)
	rtHandler := realtime.NewHandler(registry, logger)

	sms := services.NewLogSMSSender(logger)
	auth := services.NewAuthService(db, repos, cfg, sms, logger)
	pins := services.NewPinService(db, repos, cfg, registry, logger)
	connections := services.NewConnectionService(db, repos, registry, logger)
	safety := services.NewSafetyService(db, repos, logger)
	storage := services.NewStorageService(cfg)
	rooms := services.NewRoomService(cfg)

	httpSrv := httpapi.NewServer(cfg, logger, auth, pins, connections, safety, storage, rooms, rtHandler)

	jan := janitor.New(cfg.CleanupInterval, logger,
		janitor.Target{Name: "voice_pins", Store: repos.Pins(db)},
		janitor.Target{Name: "phone_verifications", Store: repos.Verifications(db)},
	)

	return &App{
		config:  cfg,
		logger:  logger,
		db:      db,
		httpSrv: httpSrv,
		janitor: jan,
	}, nil
}

// openDB opens the pool and pings it with a bounded fibonacci backoff, so a
// database that is still starting up does not kill the process.
func openDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	backoff := retry.WithMaxRetries(5, retry.NewFibonacci(time.Second))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
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
		if err := app.httpSrv.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.janitor.Run(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
