package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shareit/internal/api"
	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/export"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/repository"
	"shareit/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout     = 10 * time.Second
	storeHealthInterval = 15 * time.Second
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	db, err := database.NewDB(cfg.Database.Path, logging.Component(&logger, "database"))
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	bus := initEventBus(cfg, &logger)

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer (func() { _ = repository.Close(redisClient) })()
	}

	deps := api.Dependencies{
		Users:    service.NewUserService(db, bus, logging.Component(&logger, "users")),
		Items:    service.NewItemService(db, bus, logging.Component(&logger, "items")),
		Bookings: service.NewBookingService(db, bus, logging.Component(&logger, "bookings")),
		Requests: service.NewRequestService(db, bus, logging.Component(&logger, "requests")),
		Store:    db,
		Limiter:  initLimiter(cfg, redisClient, &logger),
		Exporter: export.NewXLSXExporter(),
	}

	httpServer := api.NewHTTPServer(&cfg.API, deps, &logger)

	var grpcServer *api.GRPCServer
	if cfg.API.GRPC.Enabled {
		grpcServer, err = api.NewGRPCServer(&cfg.API, db, &logger)
		if err != nil {
			logger.Error().Err(err).Msg("create grpc server")
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, db, httpServer, grpcServer, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func initEventBus(cfg *config.Config, logger *zerolog.Logger) *events.EventBus {
	bus := events.NewEventBus(logging.Component(logger, "events"))
	bus.SubscribeAll(events.AuditHandler(logging.Component(logger, "audit")))
	if cfg.Monitoring.PrometheusEnabled {
		bus.SubscribeAll(metrics.EventHandler)
	}
	return bus
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	client := repository.NewRedisClient(cfg.Redis)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := repository.Ping(ctx, client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing with local rate limits")
		_ = client.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return client
}

// initLimiter prefers the shared redis limiter and falls back to a local one.
func initLimiter(cfg *config.Config, client *redis.Client, logger *zerolog.Logger) domain.RateLimiter {
	local := repository.NewMemoryRateLimiter(cfg.API.RateLimit.Burst)
	if client == nil {
		return local
	}
	return repository.NewFailoverRateLimiter(
		repository.NewRedisRateLimiter(client),
		local,
		logging.Component(logger, "rate_limit"),
	)
}

func serve(
	ctx context.Context,
	cfg *config.Config,
	db *database.DB,
	httpServer *api.HTTPServer,
	grpcServer *api.GRPCServer,
	logger *zerolog.Logger,
) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(httpServer.Start)

	if grpcServer != nil {
		g.Go(grpcServer.Serve)
		g.Go(func() error {
			grpcServer.WatchStore(gctx, storeHealthInterval)
			return nil
		})
	}

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		metricsServer := newMetricsServer(cfg.Monitoring.PrometheusPort)
		g.Go(func() error {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			return metricsServer.Shutdown(shutdownCtx)
		})
	}

	if cfg.Database.Backup.Enabled {
		backups := database.NewBackupService(db, cfg.Database.Backup, logging.Component(logger, "backup"))
		g.Go(func() error {
			backups.Start(gctx)
			return nil
		})
	}

	logger.Info().Str("http_addr", httpServer.Addr()).Bool("grpc", grpcServer != nil).Msg("API server started")

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if grpcServer != nil {
			grpcServer.Shutdown(shutdownCtx)
		}
		return httpServer.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	logger.Info().Msg("API server stopped")
	return err
}

func newMetricsServer(port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
