package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/farmdeck-erp/farmdeck-erp/internal/app"
	"github.com/farmdeck-erp/farmdeck-erp/internal/gari/batches"
	garisales "github.com/farmdeck-erp/farmdeck-erp/internal/gari/sales"
	"github.com/farmdeck-erp/farmdeck-erp/internal/masterdata/boreholes"
	"github.com/farmdeck-erp/farmdeck-erp/internal/masterdata/farms"
	"github.com/farmdeck-erp/farmdeck-erp/internal/masterdata/greenhouses"
	"github.com/farmdeck-erp/farmdeck-erp/internal/masterdata/sites"
	"github.com/farmdeck-erp/farmdeck-erp/internal/observability"
	"github.com/farmdeck-erp/farmdeck-erp/internal/platform/cache"
	"github.com/farmdeck-erp/farmdeck-erp/internal/platform/db"
	"github.com/farmdeck-erp/farmdeck-erp/internal/production/cycles"
	"github.com/farmdeck-erp/farmdeck-erp/internal/production/harvests"
	"github.com/farmdeck-erp/farmdeck-erp/internal/sales/customers"
	"github.com/farmdeck-erp/farmdeck-erp/internal/sales/orders"
	"github.com/farmdeck-erp/farmdeck-erp/internal/shared"
	"github.com/farmdeck-erp/farmdeck-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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
		logger.Error("connect postgres", slog.Any("error", err))
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
	idempotencyStore := shared.NewIdempotencyStore(pool)

	farmService := farms.NewService(farms.NewRepository(pool))
	farmHandler := farms.NewHandler(farmService, logger)

	siteService := sites.NewService(sites.NewRepository(pool))
	siteHandler := sites.NewHandler(siteService, logger)

	greenhouseService := greenhouses.NewService(greenhouses.NewRepository(pool))
	greenhouseHandler := greenhouses.NewHandler(greenhouseService, logger)

	boreholeService := boreholes.NewService(boreholes.NewRepository(pool))
	boreholeHandler := boreholes.NewHandler(boreholeService, logger)

	cycleRepo := cycles.NewRepository(pool)
	cycleService := cycles.NewService(cycleRepo, rules, auditLogger)
	cycleHandler := cycles.NewHandler(cycleService, logger)

	harvestService := harvests.NewService(harvests.NewRepository(pool), cycleRepo, rules, auditLogger)
	harvestHandler := harvests.NewHandler(harvestService, logger)

	customerRepo := customers.NewRepository(pool)
	customerService := customers.NewService(customerRepo)
	customerHandler := customers.NewHandler(customerService, logger)

	orderService := orders.NewService(orders.NewRepository(pool), customerRepo, auditLogger)
	orderHandler := orders.NewHandler(orderService, logger)

	availabilityCache := garisales.NewCache(redisClient, cfg.AvailabilityCacheTTL)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	batchService := batches.NewService(batches.NewRepository(pool), availabilityCache, jobClient, auditLogger, logger)
	batchHandler := batches.NewHandler(batchService, logger)

	saleService := garisales.NewService(garisales.NewRepository(pool), rules, availabilityCache, idempotencyStore, auditLogger, logger)
	saleHandler := garisales.NewHandler(saleService, logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		FarmsHandler:      farmHandler,
		SitesHandler:      siteHandler,
		GreenhouseHandler: greenhouseHandler,
		BoreholeHandler:   boreholeHandler,
		CycleHandler:      cycleHandler,
		HarvestHandler:    harvestHandler,
		CustomerHandler:   customerHandler,
		OrderHandler:      orderHandler,
		GariBatchHandler:  batchHandler,
		GariSaleHandler:   saleHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
