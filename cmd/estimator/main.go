// Package main is the entry point for the estimator server. It wires the
// config store, cache manager, broadcaster, and HTTP transport together and
// runs the server until shutdown.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/groundworks/estimator/internal/broadcast"
	"github.com/groundworks/estimator/internal/cache"
	"github.com/groundworks/estimator/internal/config"
	"github.com/groundworks/estimator/internal/configstore"
	"github.com/groundworks/estimator/internal/observability"
	"github.com/groundworks/estimator/internal/transport"
	"github.com/groundworks/estimator/model"
)

// Build-time variables set via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc1234"
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return 1
	}

	logger, err := observability.NewLogger(cfg.Observability.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	var metrics *observability.Metrics
	if cfg.Observability.Metrics.Enabled {
		metrics = observability.InitMetrics(prometheus.DefaultRegisterer)
	}

	tracingShutdown, err := observability.InitTracing(ctx, cfg.Observability.Tracing, "estimator", version)
	if err != nil {
		logger.Error("tracing initialization failed", zap.Error(err))
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracingShutdown(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown error", zap.Error(err))
		}
	}()

	auth, err := buildAuth(cfg.Auth)
	if err != nil {
		logger.Error("auth initialization failed", zap.Error(err))
		return 1
	}

	store, storeCloser, readyCheck, err := buildConfigStore(ctx, cfg.ConfigStore, logger)
	if err != nil {
		logger.Error("config store initialization failed", zap.Error(err))
		return 1
	}
	if storeCloser != nil {
		defer storeCloser()
	}

	broadcaster := broadcast.NewBroadcaster(logger)

	// The cache loads through the config service, and the config service
	// evicts through the cache; the loader closure breaks the construction
	// cycle.
	var configService *configstore.Service
	manager := cache.NewManager(
		func(ctx context.Context, serviceID, companyID string) (model.ServiceConfig, error) {
			return configService.Get(ctx, serviceID, companyID)
		},
		broadcaster, logger, metrics,
	)

	publisher := configstore.Publisher(broadcaster)
	if cfg.Relay.Enabled {
		addr := os.Getenv(cfg.Relay.AddrEnv)
		if addr == "" {
			logger.Error("relay enabled but redis address is not set",
				zap.String("env", cfg.Relay.AddrEnv))
			return 1
		}
		redisClient := redis.NewClient(&redis.Options{Addr: addr})
		defer redisClient.Close()

		relay := broadcast.NewRelay(redisClient, cfg.Relay.Channel, manager.Invalidate, logger)
		go func() {
			if err := relay.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("config change relay stopped", zap.Error(err))
			}
		}()
		publisher = broadcast.NewRelayedPublisher(broadcaster, relay, logger)
		logger.Info("config change relay enabled", zap.String("channel", cfg.Relay.Channel))
	}

	configService = configstore.NewService(store, manager, publisher, logger)

	router := transport.NewRouter(transport.Dependencies{
		Cache:      manager,
		Configs:    configService,
		Logger:     logger,
		Metrics:    metrics,
		ReadyCheck: readyCheck,
		Auth:       auth,
		Tracing:    cfg.Observability.Tracing.Enabled,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	logger.Info("server started",
		zap.Int("port", cfg.Server.Port),
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("config_store", cfg.ConfigStore.Driver),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown initiated")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		return 1
	}

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout == 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	logger.Info("shutdown complete")
	return 0
}

// buildAuth resolves the JWT signing secret from the environment when auth
// is enabled.
func buildAuth(cfg config.AuthConfig) (*transport.AuthConfig, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	secret := os.Getenv(cfg.SecretEnv)
	if secret == "" {
		return nil, fmt.Errorf("auth: environment variable %s is not set", cfg.SecretEnv)
	}
	return &transport.AuthConfig{
		Secret:   []byte(secret),
		Issuer:   cfg.Issuer,
		Audience: cfg.Audience,
	}, nil
}

// buildConfigStore creates the persistence backend based on config.
func buildConfigStore(ctx context.Context, cfg config.ConfigStoreConfig, logger *zap.Logger) (configstore.Store, func(), func(context.Context) error, error) {
	switch cfg.Driver {
	case "memory":
		logger.Info("using in-memory config store")
		return configstore.NewMemoryStore(), nil, nil, nil
	case "postgres", "":
		dsn := os.Getenv(cfg.DSNEnv)
		if dsn == "" {
			logger.Warn("config store DSN not configured, using in-memory store")
			return configstore.NewMemoryStore(), nil, nil, nil
		}

		poolCfg, err := pgxpool.ParseConfig(dsn)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("config store: parse DSN: %w", err)
		}
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
		poolCfg.MinConns = int32(cfg.MaxIdleConns)
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("config store: connect: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("config store: ping: %w", err)
		}

		store := configstore.NewPgStore(pool)
		return store, pool.Close, store.Ping, nil
	default:
		return nil, nil, nil, fmt.Errorf("unsupported config store driver: %q", cfg.Driver)
	}
}
