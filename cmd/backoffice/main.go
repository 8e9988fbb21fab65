package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/storeledger/backoffice/internal/app"
	"github.com/storeledger/backoffice/internal/employees"
	"github.com/storeledger/backoffice/internal/expenses"
	"github.com/storeledger/backoffice/internal/observability"
	"github.com/storeledger/backoffice/internal/platform/cache"
	"github.com/storeledger/backoffice/internal/platform/db"
	"github.com/storeledger/backoffice/internal/reporting"
	reportinghttp "github.com/storeledger/backoffice/internal/reporting/http"
	"github.com/storeledger/backoffice/internal/sales"
	"github.com/storeledger/backoffice/internal/store"
	"github.com/storeledger/backoffice/jobs"
)

func main() {
	envFile := flag.String("env", "", "path to an env file (default .env)")
	migrateOnly := flag.Bool("migrate", false, "apply the schema and exit")
	flag.Parse()

	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	dbpool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	if err := store.Migrate(ctx, dbpool); err != nil {
		logger.Error("apply schema", slog.Any("error", err))
		os.Exit(1)
	}
	if *migrateOnly {
		logger.Info("schema applied")
		return
	}

	redisClient, err := cache.New(ctx, cfg.RedisOptions())
	if err != nil {
		// reports still work uncached
		logger.Warn("redis unavailable, report cache disabled", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	metrics := observability.NewMetrics()
	loc := cfg.Location()

	salesStore := store.NewSalesStore(dbpool)
	productStore := store.NewProductStore(dbpool)
	expenseStore := store.NewExpenseStore(dbpool)
	employeeStore := store.NewEmployeeStore(dbpool)

	reportCache := reporting.NewCache(redisClient, cfg.ReportCacheTTL)
	reportService := reporting.NewService(salesStore, expenseStore, employeeStore, reportCache, reporting.Options{
		TopProducts:  cfg.ReportTopProducts,
		Location:     loc,
		Logger:       logger,
		Metrics:      reporting.NewMetrics(metrics.Registerer()),
		BuildTimeout: cfg.AppRequestTimeout,
	})
	if err := reportCache.ListenForInvalidation(ctx, "", func(version int64) {
		logger.Debug("report cache invalidated", slog.Int64("version", version))
	}); err != nil {
		logger.Warn("subscribe report invalidations", slog.Any("error", err))
	}

	salesService := sales.NewService(salesStore, productStore, employeeStore, reportService, loc, logger)
	expenseService := expenses.NewService(expenseStore, reportService, loc, logger)
	employeeService := employees.NewService(employeeStore, reportService, loc, logger)

	checks := map[string]app.Pinger{"postgres": dbpool}
	var jobHandler *jobs.Handler
	if redisClient != nil {
		checks["redis"] = app.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })

		queueOpt := cache.QueueOpt(cfg.RedisOptions())
		inspector := asynq.NewInspector(queueOpt)
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
		jobClient := jobs.NewClient(queueOpt)
		defer func() {
			if err := jobClient.Close(); err != nil {
				logger.Warn("job client close", slog.Any("error", err))
			}
		}()
		jobHandler = jobs.NewHandler(inspector, jobClient, logger)
	}

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SalesHandler:     sales.NewHandler(logger, salesService),
		ExpensesHandler:  expenses.NewHandler(logger, expenseService),
		EmployeesHandler: employees.NewHandler(logger, employeeService),
		ReportingHandler: reportinghttp.NewHandler(logger, reportService, cfg.AppRequestTimeout),
		JobHandler:       jobHandler,
		Metrics:          metrics,
		Checks:           checks,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("env", cfg.AppEnv))
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
