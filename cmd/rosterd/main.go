package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/lborres/roster"
	fiberadapter "github.com/lborres/roster/adapters/fiber"
	"github.com/lborres/roster/adapters/memory"
	pgxadapter "github.com/lborres/roster/adapters/pgx"
	"github.com/lborres/roster/adapters/sqlite"
	"github.com/lborres/roster/internal/config"
	"github.com/lborres/roster/pkg/federated"
	"github.com/lborres/roster/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "rosterd:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.With(ctx, log)

	storage, closeStorage, err := openStorage(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer closeStorage()

	var google roster.FederatedVerifier
	if cfg.GoogleClientID != "" {
		verifier, err := federated.NewGoogleVerifier(ctx, cfg.GoogleClientID)
		if err != nil {
			return fmt.Errorf("google verifier: %w", err)
		}
		google = verifier
	} else {
		log.Warn("google client id not set, google sign-in disabled")
	}

	app := fiberadapter.NewApp()
	if _, err := roster.New(roster.Config{
		Secret:        cfg.SessionSecret,
		Storage:       storage,
		HTTP:          fiberadapter.New(app, fiberadapter.Options{Logger: log, AllowOrigins: cfg.Origins()}),
		Google:        google,
		SessionConfig: &roster.SessionConfig{MaxAge: cfg.SessionMaxAge},
	}); err != nil {
		return fmt.Errorf("could not create roster instance: %w", err)
	}

	errc := make(chan error, 1)
	go func() {
		addr := ":" + strconv.Itoa(cfg.Port)
		log.Info("listening", zap.String("addr", addr))
		errc <- app.Listen(addr)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("app.Listen: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

// openStorage picks the backend named by the database URL scheme.
func openStorage(ctx context.Context, url string) (roster.StorageAdapter, func(), error) {
	log := logging.FromContext(ctx)

	store, err := config.ParseStore(url)
	if err != nil {
		return nil, nil, err
	}

	switch store.Kind {
	case config.StorePostgres:
		pool, err := pgxadapter.Connect(ctx, store.DSN)
		if err != nil {
			return nil, nil, err
		}
		adapter := pgxadapter.New(pool)
		if err := adapter.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		log.Info("using postgres storage")
		return adapter, pool.Close, nil

	case config.StoreSQLite:
		adapter, err := sqlite.Open(ctx, store.DSN)
		if err != nil {
			return nil, nil, err
		}
		log.Info("using sqlite storage", zap.String("path", store.DSN))
		return adapter, func() { _ = adapter.Close() }, nil

	default:
		log.Warn("using in-memory storage, data is lost on restart")
		return memory.New(), func() {}, nil
	}
}
