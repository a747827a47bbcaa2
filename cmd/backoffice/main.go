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
	"github.com/joho/godotenv"

	"github.com/nomadexpress/backoffice/internal/app"
	"github.com/nomadexpress/backoffice/internal/deliveries"
	"github.com/nomadexpress/backoffice/internal/goods"
	"github.com/nomadexpress/backoffice/internal/media"
	"github.com/nomadexpress/backoffice/internal/observability"
	"github.com/nomadexpress/backoffice/internal/platform/cache"
	"github.com/nomadexpress/backoffice/internal/platform/db"
	"github.com/nomadexpress/backoffice/internal/reports"
	"github.com/nomadexpress/backoffice/internal/status"
	"github.com/nomadexpress/backoffice/internal/users"
	"github.com/nomadexpress/backoffice/jobs"
)

func main() {
	_ = godotenv.Load()

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

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, caching disabled", slog.Any("error", err))
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

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(logger, usersRepo, cfg.JWTSecret, cfg.JWTTTL)
	usersHandler := users.NewHandler(logger, usersService)

	statusRepo := status.NewRepository(pool)
	statusHandler := status.NewHandler(logger, statusRepo)

	goodsRepo := goods.NewRepository(pool)
	goodsHandler := goods.NewHandler(logger, goodsRepo)

	var uploader media.Uploader
	if mediaClient := media.NewClient(cfg.MediaUploadURL, cfg.MediaAPIKey, cfg.MediaAPISecret, cfg.MediaFolder); mediaClient.Enabled() {
		uploader = mediaClient
	} else {
		logger.Warn("media upload not configured, delivery photos disabled")
	}

	deliveriesRepo := deliveries.NewRepository(pool)
	deliveriesService := deliveries.NewService(logger, deliveriesRepo, uploader)
	deliveriesHandler := deliveries.NewHandler(logger, deliveriesService, cfg.MaxUploadBytes)

	reportCache := cache.NewJSONCache(redisClient, cfg.SummaryCacheTTL)
	reportsRepo := reports.NewRepository(pool)
	reportsService := reports.NewService(logger, reportsRepo, statusRepo, reportCache)
	reportsHandler := reports.NewHandler(logger, reportsService)

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
		UsersHandler:      usersHandler,
		StatusHandler:     statusHandler,
		GoodsHandler:      goodsHandler,
		DeliveriesHandler: deliveriesHandler,
		ReportsHandler:    reportsHandler,
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
