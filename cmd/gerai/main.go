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

	"github.com/gerai-erp/gerai/internal/app"
	"github.com/gerai-erp/gerai/internal/catalog"
	"github.com/gerai-erp/gerai/internal/finance"
	"github.com/gerai-erp/gerai/internal/importer"
	"github.com/gerai-erp/gerai/internal/ledger"
	"github.com/gerai-erp/gerai/internal/platform/cache"
	"github.com/gerai-erp/gerai/internal/platform/db"
	"github.com/gerai-erp/gerai/internal/pos"
	"github.com/gerai-erp/gerai/internal/purchasing"
	"github.com/gerai-erp/gerai/internal/reports"
	"github.com/gerai-erp/gerai/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	// The cache is an optimization: the API stays correct without Redis,
	// just slower on report reads.
	var cacheStore *cache.Store
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, caching disabled", slog.Any("error", err))
	} else {
		cacheStore = cache.NewStore(redisClient, cfg.CacheTTL)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	catalogService := catalog.NewService(catalog.NewRepository(pool))
	ledgerStore := ledger.NewStore(pool)
	ledgerService := ledger.NewService(ledgerStore, catalogService, cacheStore, logger)
	posService := pos.NewService(pos.NewRepository(pool), catalogService, cacheStore, logger)
	purchasingService := purchasing.NewService(purchasing.NewRepository(pool), catalogService, cacheStore, logger)
	financeService := finance.NewService(finance.NewRepository(pool), cacheStore, logger)
	reportsService := reports.NewService(reports.NewRepository(pool), cacheStore, logger)
	importService := importer.NewService(ledgerService, purchasingService, catalogService, logger)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobsClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		LedgerHandler:     ledger.NewHandler(logger, ledgerService),
		CatalogHandler:    catalog.NewHandler(logger, catalogService),
		PurchasingHandler: purchasing.NewHandler(logger, purchasingService),
		POSHandler:        pos.NewHandler(logger, posService),
		FinanceHandler:    finance.NewHandler(logger, financeService),
		ReportsHandler:    reports.NewHandler(logger, reportsService),
		ImportHandler:     importer.NewHandler(logger, importService),
		JobsHandler:       jobs.NewHandler(inspector, jobsClient, logger),
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
