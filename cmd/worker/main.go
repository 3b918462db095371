package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/surtidor-erp/surtidor-erp/internal/app"
	"github.com/surtidor-erp/surtidor-erp/internal/observability"
	"github.com/surtidor-erp/surtidor-erp/internal/platform/cache"
	"github.com/surtidor-erp/surtidor-erp/internal/platform/db"
	"github.com/surtidor-erp/surtidor-erp/internal/settings"
	"github.com/surtidor-erp/surtidor-erp/internal/settlement"
	"github.com/surtidor-erp/surtidor-erp/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	settingsRepo := settings.NewRepository(pool)
	settingsCache := settings.NewCache(redisClient, cfg.SettingsCacheTTL)
	settingsService := settings.NewService(settingsRepo, settingsCache, logger)
	warmupJob := jobs.NewSettingsWarmupJob(settingsService, logger, metrics)

	engine := settlement.NewEngine(logger, settlement.EngineConfig{})
	settlementRepo := settlement.NewRepository(pool)
	settlementService := settlement.NewService(engine, settlementRepo, settingsService, nil, nil, nil, logger)
	receiptJob := jobs.NewReceiptNotifyJob(settlementService, logger, metrics)

	warmupTask, err := jobs.NewSettingsWarmupTask(jobs.SettingsWarmupPayload{BranchIDs: cfg.WarmupBranches})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskReceiptNotify, Handler: receiptJob.Handle},
			{Type: jobs.TaskSettingsWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "15 1 * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
