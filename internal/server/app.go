// Package server initializes and runs the auth service. It selects the
// configured storage backends, applies database migrations, and starts the
// HTTP server with graceful shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/manishrnl/authservice/internal/logging"
	"github.com/manishrnl/authservice/internal/server/auth"
	"github.com/manishrnl/authservice/internal/server/config"
	"github.com/manishrnl/authservice/internal/server/httpapi"
	"github.com/manishrnl/authservice/internal/server/migrations"
	"github.com/manishrnl/authservice/internal/server/password"
	"github.com/manishrnl/authservice/internal/server/repositories/accounts"
	"github.com/manishrnl/authservice/internal/server/repositories/refreshtokens"
	"github.com/manishrnl/authservice/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	handler http.Handler
	db      *sql.DB
	redis   *redis.Client
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	app := &App{config: cfg, logger: logger}

	accountRepo, tokenRepo, err := app.initRepositories()
	if err != nil {
		return nil, err
	}

	refreshSvc := services.NewRefreshTokenService(accountRepo, tokenRepo, cfg)
	accessSvc := auth.NewTokenService([]byte(cfg.SecretKey), cfg.AccessTokenValidityDuration)
	hasher := password.NewBcryptHasher(bcrypt.DefaultCost)

	authSvc, err := services.NewAuthService(accountRepo, refreshSvc, hasher, accessSvc, logger)
	if err != nil {
		return nil, fmt.Errorf("auth service init error: %w", err)
	}

	app.handler = httpapi.NewAPI(authSvc, accessSvc, logger).Routes()
	return app, nil
}

// initRepositories opens the configured backends. Accounts always live in
// Postgres except in the all-memory configuration; the refresh-token store
// follows TokenStoreBackend.
func (app *App) initRepositories() (accounts.Repository, refreshtokens.Repository, error) {
	switch app.config.TokenStoreBackend {
	case config.BackendMemory:
		return accounts.NewInMemoryRepository(), refreshtokens.NewInMemoryRepository(), nil

	case config.BackendRedis:
		db, err := app.openDatabase()
		if err != nil {
			return nil, nil, err
		}
		client := redis.NewClient(&redis.Options{Addr: app.config.RedisAddr})
		app.redis = client
		return accounts.NewPostgresRepository(db), refreshtokens.NewRedisRepository(client), nil

	case config.BackendPostgres:
		db, err := app.openDatabase()
		if err != nil {
			return nil, nil, err
		}
		return accounts.NewPostgresRepository(db), refreshtokens.NewPostgresRepository(db), nil

	default:
		return nil, nil, fmt.Errorf("unknown token store backend: %q", app.config.TokenStoreBackend)
	}
}

func (app *App) openDatabase() (*sql.DB, error) {
	db, err := sql.Open("pgx", app.config.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := app.runMigrations(db); err != nil {
		return nil, fmt.Errorf("db migration error: %w", err)
	}
	app.db = db
	return db, nil
}

func (app *App) runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.Up(db, ".")
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	srv := &http.Server{
		Addr:    app.config.EndpointAddrHTTP,
		Handler: app.handler,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "starting http server", "addr", srv.Addr, "backend", app.config.TokenStoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "http shutdown error", "error", err)
	}

	app.close()
	return nil
}

func (app *App) close() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(context.Background(), "db close error", "error", err)
		}
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error(context.Background(), "redis close error", "error", err)
		}
	}
}
