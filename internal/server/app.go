// Package server initializes and runs the storage gateway: it wires the
// config, database, remote blob store, ledger client and HTTP server
// together and handles graceful shutdown.
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

	"github.com/secureboxed/secureboxed/internal/cryptox"
	"github.com/secureboxed/secureboxed/internal/logging"
	"github.com/secureboxed/secureboxed/internal/server/blobstore"
	"github.com/secureboxed/secureboxed/internal/server/config"
	"github.com/secureboxed/secureboxed/internal/server/httpapi"
	"github.com/secureboxed/secureboxed/internal/server/ledger"
	"github.com/secureboxed/secureboxed/internal/server/repositories/repomanager"
	"github.com/secureboxed/secureboxed/internal/server/services"
)

// encryptionSalt is the fixed argon2 salt for deriving the payload key from
// a configured secret. Changing it invalidates every object at rest.
var encryptionSalt = []byte("secureboxed.storage.v1")

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	ledger *ledger.Client
	server *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	lc, err := ledger.NewClient(cfg.LedgerRPCEndpoint)
	if err != nil {
		return nil, fmt.Errorf("ledger client error: %w", err)
	}

	store, err := blobstore.NewS3Store(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("blob store error: %w", err)
	}

	us := services.NewUserService(db, m, cfg)
	ss := services.NewStorageService(store, encryptionKey(ctx, cfg, logger))

	srv := httpapi.NewServer(cfg.EndpointAddr, logger, us, ss)

	return &App{config: cfg, logger: logger, db: db, ledger: lc, server: srv}, nil
}

// encryptionKey picks the payload key: derived from the configured secret
// when one is set, otherwise random and valid only for this process.
func encryptionKey(ctx context.Context, cfg *config.Config, logger logging.Logger) []byte {
	if cfg.EncryptionSecret != "" {
		return cryptox.DeriveKey([]byte(cfg.EncryptionSecret), encryptionSalt)
	}
	logger.Warn(ctx, "no encryption secret configured, using a per-process key; stored objects will not survive a restart")
	return cryptox.NewKey()
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

	checkCtx, checkCancel := context.WithTimeout(ctx, 5*time.Second)
	if err := app.ledger.Check(checkCtx); err != nil {
		app.logger.Warn(ctx, "identity ledger not reachable", "endpoint", app.config.LedgerRPCEndpoint, "error", err)
	}
	checkCancel()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, "http server error", "error", err)
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.ledger.Close(); err != nil {
		app.logger.Error(ctx, "ledger close error", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
}
