package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"network-registry/internal/adapter/auth"
	deliveryhttp "network-registry/internal/adapter/delivery/http"
	handlerhttp "network-registry/internal/adapter/handler/http"
	"network-registry/internal/adapter/storage/memory"
	"network-registry/internal/adapter/storage/sqlstore"
	"network-registry/internal/application"
	"network-registry/internal/config"
	domainRepo "network-registry/internal/domain/repository"
	"network-registry/internal/logger"
	"network-registry/internal/pkg/metrics"
)

func main() {
	cfgPath := flag.String("config", "configs", "directory containing config.yaml")
	flag.Parse()

	// --- Configuration ---
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration from %s: %v", *cfgPath, err)
	}

	// --- Logger ---
	appLogger, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to setup logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()
	appLogger.Info("Logger initialized",
		zap.String("app", cfg.App.Name), zap.String("version", cfg.App.Version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *cfg, appLogger); err != nil {
		appLogger.Fatal("Application stopped with error", zap.Error(err))
	}
	appLogger.Info("Application stopped")
}

func run(ctx context.Context, cfg config.Config, appLogger *zap.Logger) error {
	// --- Storage ---
	appLogger.Info("Initializing dependencies...")
	repo, closeStore, err := newRepository(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.Cache.Enabled {
		repo = memory.NewCachedNetworkRepository(repo, cfg.Cache, appLogger)
	}

	// --- Services & Handlers ---
	networkService := application.NewNetworkService(repo, appLogger)
	networkHandler := handlerhttp.NewNetworkHandler(networkService, cfg.Server.RequestTimeout, appLogger)
	authenticator := auth.NewJWTAuthenticator(cfg.JWT, appLogger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewHTTPMetrics("network_registry", registry)

	// --- HTTP Server ---
	appLogger.Info("Setting up HTTP router...")
	handler := deliveryhttp.NewHandler(cfg, deliveryhttp.Dependencies{
		Handler:       networkHandler,
		Authenticator: authenticator,
		Metrics:       httpMetrics,
		Gatherer:      registry,
	}, appLogger)

	server := &fasthttp.Server{
		Handler:      handler,
		Name:         cfg.App.Name,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := cfg.Server.Address()
		appLogger.Info("Starting HTTP server", zap.String("address", addr))
		ln, err := net.Listen("tcp4", addr)
		if err != nil {
			return err
		}
		return server.Serve(ln)
	})
	g.Go(func() error {
		<-gCtx.Done()
		appLogger.Info("Shutting down HTTP server", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// newRepository selects the storage backend and returns a cleanup func for it.
func newRepository(
	ctx context.Context,
	cfg config.Config,
	appLogger *zap.Logger,
) (domainRepo.NetworkRepository, func(), error) {
	if cfg.Storage.Type != config.StorageSQL {
		appLogger.Info("Using in-memory network storage")
		return memory.NewNetworkRepository(appLogger), func() {}, nil
	}

	db, err := sqlstore.Open(ctx, cfg.Database, appLogger)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if err := db.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
			appLogger.Warn("Failed to close database", zap.Error(err))
		}
	}

	if cfg.Database.EnsureSchema {
		if err := sqlstore.EnsureSchema(ctx, db, cfg.Database.Driver); err != nil {
			closeDB()
			return nil, nil, err
		}
		appLogger.Info("Database schema ensured", zap.String("driver", cfg.Database.Driver))
	}

	return sqlstore.NewNetworkRepository(db, cfg.Database.Driver, appLogger), closeDB, nil
}
