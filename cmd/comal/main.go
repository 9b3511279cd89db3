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

	"github.com/comal-erp/comal-erp/internal/app"
	"github.com/comal-erp/comal-erp/internal/costing"
	costingdb "github.com/comal-erp/comal-erp/internal/costing/db"
	costinghttp "github.com/comal-erp/comal-erp/internal/costing/http"
	"github.com/comal-erp/comal-erp/internal/masterdata/categories"
	"github.com/comal-erp/comal-erp/internal/masterdata/products"
	"github.com/comal-erp/comal-erp/internal/masterdata/units"
	"github.com/comal-erp/comal-erp/internal/observability"
	"github.com/comal-erp/comal-erp/internal/platform/cache"
	platformdb "github.com/comal-erp/comal-erp/internal/platform/db"
	"github.com/comal-erp/comal-erp/internal/production"
	"github.com/comal-erp/comal-erp/internal/recipes"
	"github.com/comal-erp/comal-erp/jobs"
	"github.com/comal-erp/comal-erp/report"
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

	dbpool, err := platformdb.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	// The cost cache degrades to pass-through without Redis, so a failed
	// connection is a warning rather than a startup failure.
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("connect redis", slog.Any("error", err))
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	costingRepo := costingdb.New(dbpool)
	costCache := costing.NewCache(redisClient, cfg.CostCacheTTL)
	costingService := costing.NewService(costingRepo, costCache, logger)
	costingHandler := costinghttp.NewHandler(logger, costingService, metrics, jobsClient)

	categoriesRepo := categories.NewRepository(dbpool)
	categoriesService := categories.NewService(categoriesRepo)
	categoriesHandler := categories.NewHandler(logger, categoriesService)

	unitsRepo := units.NewRepository(dbpool)
	unitsService := units.NewService(unitsRepo)
	unitsHandler := units.NewHandler(logger, unitsService)

	productsRepo := products.NewRepository(dbpool)
	productsService := products.NewService(productsRepo, costingService, costingService, logger)
	productsHandler := products.NewHandler(logger, productsService)

	recipesRepo := recipes.NewRepository(dbpool)
	recipesService := recipes.NewService(recipesRepo, costingService, costingService, logger)
	recipesHandler := recipes.NewHandler(logger, recipesService)

	productionRepo := production.NewRepository(dbpool)
	productionService := production.NewService(productionRepo, costingService, logger)
	productionHandler := production.NewHandler(logger, productionService)

	reportClient := report.NewClient(cfg.GotenbergURL)
	reportHandler := report.NewHandler(reportClient, costingService, logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobsClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		CostingHandler:    costingHandler,
		RecipesHandler:    recipesHandler,
		ProductionHandler: productionHandler,
		CategoriesHandler: categoriesHandler,
		UnitsHandler:      unitsHandler,
		ProductsHandler:   productsHandler,
		ReportHandler:     reportHandler,
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
