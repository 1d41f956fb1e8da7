package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/meridian-books/meridian-books/internal/accounts"
	"github.com/meridian-books/meridian-books/internal/app"
	"github.com/meridian-books/meridian-books/internal/invoices"
	jobmetrics "github.com/meridian-books/meridian-books/internal/jobs"
	"github.com/meridian-books/meridian-books/internal/platform/cache"
	"github.com/meridian-books/meridian-books/internal/platform/db"
	"github.com/meridian-books/meridian-books/internal/reports"
	"github.com/meridian-books/meridian-books/internal/vouchers"
	"github.com/meridian-books/meridian-books/jobs"
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

	pool, err := db.NewPool(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
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

	vouchersRepo := vouchers.NewRepository(pool)
	accountsRepo := accounts.NewRepository(pool)
	accountsService := accounts.NewService(accountsRepo, vouchersRepo)
	vouchersService := vouchers.NewService(vouchersRepo, accountsService)
	invoicesService := invoices.NewService(invoices.NewRepository(pool))

	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	reportsService := reports.NewService(accountsService, vouchersService, invoicesService, reportCache, nil)

	jobMetrics := jobmetrics.NewMetrics(nil)
	warmupJob := jobs.NewReportsWarmupJob(reportsService, logger, jobMetrics)

	warmupTask, err := jobs.NewReportsWarmupTask(jobs.ReportsWarmupPayload{Tenants: cfg.WarmupTenants})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	warmupSpec := "@every " + cfg.WarmupInterval.String()

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskReportsWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: warmupSpec, Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
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
