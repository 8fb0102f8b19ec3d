package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/razalrahmanp/palaka-sub014/internal/accounting"
	"github.com/razalrahmanp/palaka-sub014/internal/app"
	"github.com/razalrahmanp/palaka-sub014/internal/observability"
	"github.com/razalrahmanp/palaka-sub014/internal/platform/cache"
	"github.com/razalrahmanp/palaka-sub014/internal/platform/db"
	"github.com/razalrahmanp/palaka-sub014/jobs"
	"github.com/razalrahmanp/palaka-sub014/migrations"
)

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	if cfg.AutoMigrate && !app.InTestMode() {
		if err := db.Migrate(cfg.PGDSN, migrations.FS, logger); err != nil {
			logger.Error("migrate", slog.Any("error", err))
			os.Exit(1)
		}
	}

	dbpool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: cfg.PGMaxConns, ApplicationName: "palaka-api"})
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		logger.Warn("redis unavailable, report cache disabled", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	metrics := observability.NewMetrics()
	ledger := accounting.NewModule(accounting.Deps{
		Pool:             dbpool,
		Redis:            redisClient,
		Logger:           logger,
		FiscalStartMonth: cfg.FiscalStartMonth,
		ReportCacheTTL:   cfg.ReportCacheTTL,
		RecalcLockTTL:    cfg.RecalcLockTTL,
		Observer:         observability.NewLedgerMetrics(metrics.Registerer()),
	})
	if !app.InTestMode() {
		if err := ledger.Cache.ListenForInvalidation(ctx); err != nil {
			logger.Warn("cache invalidation listener", slog.Any("error", err))
		}
	}

	checks := map[string]app.Pinger{"postgres": dbpool}
	var jobHandler *jobs.Handler
	if redisClient != nil {
		checks["redis"] = redisPinger{client: redisClient}
		inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
		jobHandler = jobs.NewHandler(inspector, logger)
	} else {
		jobHandler = jobs.NewHandler(nil, logger)
	}

	router := app.NewRouter(app.RouterParams{
		Logger:     logger,
		Config:     cfg,
		Accounting: ledger.Handler(),
		Jobs:       jobHandler,
		Metrics:    metrics,
		Checks:     checks,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
