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

	"github.com/lotuskitchen/lotuskitchen/internal/app"
	"github.com/lotuskitchen/lotuskitchen/internal/auth"
	"github.com/lotuskitchen/lotuskitchen/internal/customers"
	"github.com/lotuskitchen/lotuskitchen/internal/dashboard"
	"github.com/lotuskitchen/lotuskitchen/internal/inventory"
	"github.com/lotuskitchen/lotuskitchen/internal/menu"
	"github.com/lotuskitchen/lotuskitchen/internal/observability"
	"github.com/lotuskitchen/lotuskitchen/internal/orders"
	"github.com/lotuskitchen/lotuskitchen/internal/platform/cache"
	"github.com/lotuskitchen/lotuskitchen/internal/platform/db"
	"github.com/lotuskitchen/lotuskitchen/internal/reservations"
	"github.com/lotuskitchen/lotuskitchen/internal/shared"
	"github.com/lotuskitchen/lotuskitchen/jobs"
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

	sessionManager := shared.NewSessionManager(redisClient, "lotus_session", cfg.SessionTTL, cfg.IsProduction())
	auditLogger := shared.NewAuditLogger(pool)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	inventoryRepo := inventory.NewRepository(pool)
	inventoryStore := inventory.NewStore(inventoryRepo)
	inventoryService := inventory.NewService(inventoryRepo, inventoryStore, auditLogger)
	inventoryHandler := inventory.NewHandler(logger, inventoryService)

	menuRepo := menu.NewRepository(pool)
	menuService := menu.NewService(menuRepo)
	menuHandler := menu.NewHandler(logger, menuService)

	orderRepo := orders.NewRepository(pool)
	orderService := orders.NewService(orderRepo, menuRepo)
	orderHandler := orders.NewHandler(logger, orderService)

	customerRepo := customers.NewRepository(pool)
	customerService := customers.NewService(customerRepo, orderRepo)
	customerHandler := customers.NewHandler(logger, customerService, sessionManager)

	reservationRepo := reservations.NewRepository(pool)
	reservationService := reservations.NewService(reservationRepo)
	reservationHandler := reservations.NewHandler(logger, reservationService)

	dashboardRepo := dashboard.NewRepository(pool)
	dashboardCache := dashboard.NewCache(redisClient, cfg.DashboardCacheTTL)
	dashboardService := dashboard.NewService(dashboardRepo)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService, dashboardCache)

	// Ledger and order writes invalidate the cached aggregates.
	inventoryService.WithCache(dashboardCache)
	orderService.WithCache(dashboardCache)

	metrics := observability.NewMetrics()

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		AuthHandler:        authHandler,
		CustomerHandler:    customerHandler,
		InventoryHandler:   inventoryHandler,
		MenuHandler:        menuHandler,
		OrderHandler:       orderHandler,
		ReservationHandler: reservationHandler,
		DashboardHandler:   dashboardHandler,
		JobHandler:         jobHandler,
		Metrics:            metrics,
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
