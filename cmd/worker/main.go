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

	"github.com/razalrahmanp/palaka-sub014/internal/accounting"
	"github.com/razalrahmanp/palaka-sub014/internal/app"
	jobmetrics "github.com/razalrahmanp/palaka-sub014/internal/jobs"
	"github.com/razalrahmanp/palaka-sub014/internal/observability"
	"github.com/razalrahmanp/palaka-sub014/internal/platform/cache"
	"github.com/razalrahmanp/palaka-sub014/internal/platform/db"
	"github.com/razalrahmanp/palaka-sub014/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg).With(slog.String("process", "worker"))

	pool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: cfg.PGMaxConns, ApplicationName: "palaka-worker"})
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	ledger := accounting.NewModule(accounting.Deps{
		Pool:             pool,
		Redis:            redisClient,
		Logger:           logger,
		FiscalStartMonth: cfg.FiscalStartMonth,
		ReportCacheTTL:   cfg.ReportCacheTTL,
		RecalcLockTTL:    cfg.RecalcLockTTL,
	})
	exporter := observability.NewMetrics()
	metrics := jobmetrics.NewMetrics(exporter.Registerer())
	recalcJob := jobs.NewBalanceRecalcJob(ledger.Balances, logger, metrics)
	integrityJob := jobs.NewGLIntegrityJob(jobs.NewPGIntegritySource(pool), logger, metrics)

	recalcTask, err := jobs.NewBalanceRecalcTask(jobs.BalanceRecalcPayload{Subtypes: cfg.RecalcSubtypes})
	if err != nil {
		logger.Error("build recalc task", slog.Any("error", err))
		os.Exit(1)
	}
	integrityTask, err := jobs.NewGLIntegrityTask(time.Time{})
	if err != nil {
		logger.Error("build integrity task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskBalanceRecalc, Handler: recalcJob.Handle},
			{Type: jobs.TaskGLIntegrity, Handler: integrityJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.RecalcCron, Task: recalcTask},
			{Spec: cfg.IntegrityCron, Task: integrityTask},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if cfg.WorkerMetricsAddr != "" {
		metricsServer := &http.Server{Addr: cfg.WorkerMetricsAddr, Handler: exporter.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("worker metrics listener", slog.Any("error", err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsServer.Shutdown(shutdownCtx)
		}()
	}

	logger.Info("worker started", slog.String("recalc_cron", cfg.RecalcCron), slog.String("integrity_cron", cfg.IntegrityCron))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
