package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/farmdeck-erp/farmdeck-erp/internal/app"
	garisales "github.com/farmdeck-erp/farmdeck-erp/internal/gari/sales"
	jobmetrics "github.com/farmdeck-erp/farmdeck-erp/internal/jobs"
	"github.com/farmdeck-erp/farmdeck-erp/internal/platform/cache"
	"github.com/farmdeck-erp/farmdeck-erp/internal/platform/db"
	"github.com/farmdeck-erp/farmdeck-erp/internal/production/cycles"
	"github.com/farmdeck-erp/farmdeck-erp/internal/production/harvests"
	"github.com/farmdeck-erp/farmdeck-erp/internal/shared"
	"github.com/farmdeck-erp/farmdeck-erp/jobs"
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

	logger := app.NewLogger(cfg)
	rules := cfg.Ruleset()

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, availability caching disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)
	metrics := jobmetrics.NewMetrics(nil)

	cycleRepo := cycles.NewRepository(pool)
	cycleService := cycles.NewService(cycleRepo, rules, auditLogger)
	harvestRepo := harvests.NewRepository(pool)

	availabilityCache := garisales.NewCache(redisClient, cfg.AvailabilityCacheTTL)
	saleService := garisales.NewService(garisales.NewRepository(pool), rules, availabilityCache, nil, auditLogger, logger)

	refreshJob := jobs.NewCycleStatusRefreshJob(cycleRepo, cycleService, harvestRepo, rules, logger, metrics)
	staleScanJob := jobs.NewHarvestStaleScanJob(harvestRepo, pool, logger, metrics)
	warmupJob := jobs.NewAvailabilityWarmupJob(saleService, logger, metrics)

	refreshTask, err := jobs.NewCycleStatusRefreshTask(jobs.CycleStatusRefreshPayload{GraceDays: 3})
	if err != nil {
		logger.Error("build refresh task", slog.Any("error", err))
		os.Exit(1)
	}
	staleScanTask, err := jobs.NewHarvestStaleScanTask(jobs.HarvestStaleScanPayload{MaxAgeDays: 2})
	if err != nil {
		logger.Error("build stale scan task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskCycleStatusRefresh, Handler: refreshJob.Handle},
			{Type: jobs.TaskHarvestStaleScan, Handler: staleScanJob.Handle},
			{Type: jobs.TaskGariAvailabilityWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "15 1 * * *", Task: refreshTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "45 1 * * *", Task: staleScanTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
