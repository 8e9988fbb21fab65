package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/storeledger/backoffice/internal/app"
	"github.com/storeledger/backoffice/internal/platform/cache"
	"github.com/storeledger/backoffice/internal/platform/db"
	"github.com/storeledger/backoffice/internal/reporting"
	"github.com/storeledger/backoffice/internal/store"
	"github.com/storeledger/backoffice/jobs"
)

func main() {
	envFile := flag.String("env", "", "path to an env file (default .env)")
	flag.Parse()

	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig(*envFile)
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisOptions())
	if err != nil {
		// the queue lives in redis, nothing to do without it
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	reportCache := reporting.NewCache(redisClient, cfg.ReportCacheTTL)
	reportService := reporting.NewService(
		store.NewSalesStore(pool),
		store.NewExpenseStore(pool),
		store.NewEmployeeStore(pool),
		reportCache,
		reporting.Options{
			TopProducts: cfg.ReportTopProducts,
			Location:    cfg.Location(),
			Logger:      logger,
		},
	)

	queueOpt := cache.QueueOpt(cfg.RedisOptions())
	client := jobs.NewClient(queueOpt)
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	// Rebuild the hot reports shortly after any record change.
	if err := reportCache.ListenForInvalidation(ctx, "", func(version int64) {
		if _, err := client.EnqueueReportWarmup(ctx); err != nil && !errors.Is(err, asynq.ErrDuplicateTask) {
			logger.Warn("enqueue report warmup", slog.Int64("version", version), slog.Any("error", err))
		}
	}); err != nil {
		logger.Warn("subscribe report invalidations", slog.Any("error", err))
	}

	warmupJob := jobs.NewReportWarmupJob(reportService, logger, nil)
	exportJob := jobs.NewReportExportJob(reportService, cfg.ReportStorageDir, logger, nil)

	warmupTask, err := jobs.NewReportWarmupTask()
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}
	monthlyExportTask, err := jobs.NewReportExportTask(jobs.ReportExportPayload{
		Granularity: string(reporting.Monthly),
		Format:      "xlsx",
	})
	if err != nil {
		logger.Error("build export task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: queueOpt,
		Logger:    logger,
		Location:  cfg.Location(),
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskReportWarmup, Handler: warmupJob.Handle},
			{Type: jobs.TaskReportExport, Handler: exportJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/15 * * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(1)}},
			{Spec: "0 2 1 * *", Task: monthlyExportTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker started", slog.String("storage", cfg.ReportStorageDir))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
