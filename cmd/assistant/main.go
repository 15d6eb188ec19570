package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/kannou1/PFE/internal/aggregate"
	"github.com/kannou1/PFE/internal/completion"
	"github.com/kannou1/PFE/internal/config"
	"github.com/kannou1/PFE/internal/filter"
	"github.com/kannou1/PFE/internal/filter/injection"
	"github.com/kannou1/PFE/internal/filter/secrets"
	"github.com/kannou1/PFE/internal/gateway"
	"github.com/kannou1/PFE/internal/health"
	"github.com/kannou1/PFE/internal/history"
	"github.com/kannou1/PFE/internal/ratelimit"
	"github.com/kannou1/PFE/internal/telemetry"
	"github.com/kannou1/PFE/internal/upstream"
)

var version = "dev"

func main() {
	configDir := flag.String("config", "configs", "path to configuration directory")
	envFile := flag.String("env", ".env", "optional dotenv file loaded before the config")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to read %s: %v\n", *envFile, err)
	}

	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Load configuration
	loader := config.NewLoader(*configDir, logger)
	if err := loader.Load(); err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	level.Set(parseLevel(loader.Config().Telemetry.LogLevel))
	loader.OnReload(func() {
		level.Set(parseLevel(loader.Config().Telemetry.LogLevel))
	})

	if err := loader.Watch(); err != nil {
		logger.Warn("failed to start config watcher", "error", err)
	}

	cfg := loader.Config()

	shutdownTracing, err := telemetry.InitTracing(context.Background(), cfg.Telemetry, version)
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
	}

	metrics := telemetry.NewMetrics()
	go serveMetrics(logger, cfg.Telemetry.MetricsPort)

	// Connect to PostgreSQL
	var db history.DB
	if cfg.Database.Host != "" {
		poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
		if err != nil {
			logger.Error("invalid database configuration", "error", err)
			os.Exit(1)
		}
		if cfg.Database.MaxOpenConns > 0 {
			poolCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
		}
		poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime

		dbPool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer dbPool.Close()

		if err := dbPool.Ping(context.Background()); err != nil {
			logger.Warn("database not reachable (conversation log will fail)", "error", err)
		} else {
			logger.Info("database connected")
		}
		db = dbPool
	} else {
		logger.Info("database not configured, conversation log disabled")
	}

	// Connect to Redis
	var rdb *redis.Client
	if len(cfg.Redis.Addresses) > 0 && cfg.Redis.Addresses[0] != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addresses[0],
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis not reachable (rate limiting and history cache disabled)", "error", err)
			rdb = nil
		} else {
			logger.Info("redis connected")
		}
	}

	tracker := health.NewTracker(cfg.Health.FailureThreshold, cfg.Health.RecoveryInterval)

	backend := upstream.NewClient(loader.Backend, upstream.NewHTTPClient(cfg.Backend), metrics).WithHealth(tracker)
	completer := completion.NewClient(cfg.Completion, metrics).WithHealth(tracker)

	scanner := secrets.NewScanner(loader.Secrets)
	chain := filter.NewChain(scanner, injection.NewScanner(loader.Injection))

	handler := gateway.NewHandler(aggregate.New(backend), completer, gateway.Deps{
		Log:         history.NewStore(db, rdb),
		FilterChain: chain,
		Redactor:    scanner,
		Health:      tracker,
		Metrics:     metrics,
		MaxUpload:   func() int64 { return loader.Config().Server.MaxUploadBytes },
		Version:     version,
	})

	r := gateway.NewRouter(handler, gateway.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimit:      ratelimit.Middleware(ratelimit.NewLimiter(rdb), loader.RateLimit, metrics),
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(r, "assistant"),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("assistant starting",
			"addr", addr,
			"version", version,
			"backend", cfg.Backend.BaseURL,
			"provider", completer.Provider(),
			"model", cfg.Completion.Model,
		)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	if shutdownTracing != nil {
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}
	logger.Info("assistant stopped")
}

func serveMetrics(logger *slog.Logger, port int) {
	if port <= 0 {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", port)
	logger.Info("metrics listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics server error", "error", err)
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
