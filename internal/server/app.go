// Package server wires the auth service together: configuration, logging,
// the account store, and the HTTP transport, with graceful shutdown on
// OS signals.
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

	"github.com/dmitrijs2005/authkit/internal/logging"
	"github.com/dmitrijs2005/authkit/internal/server/auth"
	"github.com/dmitrijs2005/authkit/internal/server/config"
	"github.com/dmitrijs2005/authkit/internal/server/httpapi"
	"github.com/dmitrijs2005/authkit/internal/server/migrations"
	"github.com/dmitrijs2005/authkit/internal/server/password"
	"github.com/dmitrijs2005/authkit/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/authkit/internal/server/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"
)

type App struct {
	config *config.Config
	logger logging.Logger
	http   *httpapi.Server
	db     *sql.DB // nil when running on the in-memory store
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	var repo accounts.Repository
	var db *sql.DB

	if cfg.DatabaseDSN == "" {
		logger.Warn(ctx, "No database DSN configured, using in-memory account store")
		repo = accounts.NewInMemoryRepository()
	} else {
		var err error
		db, err = openDatabase(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		if err := runMigrations(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("db migration error: %w", err)
		}
		repo = accounts.NewPostgresRepository(db)
	}

	tokens := auth.NewManager([]byte(cfg.SecretKey), cfg.TokenValidityDuration)
	hasher := password.NewHasher(cfg.BcryptCost)
	authService := services.NewAuthService(repo, hasher, tokens)

	httpServer := httpapi.NewServer(cfg.EndpointAddrHTTP, logger, authService)

	return &App{config: cfg, logger: logger, http: httpServer, db: db}, nil
}

// openDatabase opens a pgx connection pool and pings it with bounded
// exponential backoff, so the server survives a database that is still
// starting up alongside it.
func openDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	backoff := retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))
	if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// runMigrations sets up goose with the embedded migrations and applies them.
func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
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
		if err := app.http.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "Error closing database", "error", err.Error())
		}
	}
}
