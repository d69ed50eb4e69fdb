package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	financeapp "github.com/erp/cashdesk/internal/application/finance"
	"github.com/erp/cashdesk/internal/domain/finance"
	"github.com/erp/cashdesk/internal/domain/shared/valueobject"
	"github.com/erp/cashdesk/internal/infrastructure/cache"
	"github.com/erp/cashdesk/internal/infrastructure/config"
	"github.com/erp/cashdesk/internal/infrastructure/event"
	"github.com/erp/cashdesk/internal/infrastructure/export"
	"github.com/erp/cashdesk/internal/infrastructure/logger"
	"github.com/erp/cashdesk/internal/infrastructure/persistence"
	"github.com/erp/cashdesk/internal/infrastructure/scheduler"
	"github.com/erp/cashdesk/internal/infrastructure/telemetry"
	"github.com/erp/cashdesk/internal/interfaces/http/handler"
	"github.com/erp/cashdesk/internal/interfaces/http/middleware"
	"github.com/erp/cashdesk/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log, cfg.App.Env)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, err := telemetry.New(ctx, cfg.Telemetry, cfg.App.Name, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			log.Error("Telemetry shutdown failed", zap.Error(err))
		}
	}()
	log = provider.WrapLogger(log)

	profiler, err := telemetry.NewProfiler(cfg.Telemetry.ProfilingEnabled, cfg.Telemetry.ProfilingAddress, cfg.App.Name, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() { _ = profiler.Stop() }()

	log.Info("Starting cash desk",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	loc, err := cfg.Business.Location()
	if err != nil {
		log.Fatal("Invalid business timezone", zap.Error(err))
	}
	currency := valueobject.Currency(cfg.Business.Currency)

	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), 200*time.Millisecond)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog, persistence.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if provider.Enabled() {
		if err := telemetry.InstrumentGorm(db.DB, cfg.Database.Driver); err != nil {
			log.Fatal("Failed to instrument database", zap.Error(err))
		}
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	closingRepo := persistence.NewGormCashClosingRepository(db.DB)
	paymentRepo := persistence.NewGormSalePaymentRepository(db.DB)
	expenseRepo := persistence.NewGormCashExpenseRepository(db.DB)

	sessionStore, err := cache.NewSettlementStoreFactory(cfg.Settlement, cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to create settlement session store", zap.Error(err))
	}
	defer func() { _ = sessionStore.Close() }()

	eventBus := event.NewInMemoryEventBus(log)

	alertService := finance.NewClosingAlertService(
		finance.WithLargeDifferenceThreshold(cfg.Alerts.LargeDifferenceThreshold),
		finance.WithReminderHour(cfg.Alerts.ReminderHour),
		finance.WithOverdueDays(cfg.Alerts.OverdueDays),
		finance.WithLocation(loc),
	)

	closingService := financeapp.NewCashClosingService(closingRepo, paymentRepo, expenseRepo, alertService, currency)
	closingService.SetEventPublisher(eventBus)
	closingService.SetExporter(export.NewClosingExcelExporter())
	closingService.SetLogger(log)

	settlementService := financeapp.NewSettlementService(sessionStore, paymentRepo, closingRepo, currency, loc)
	settlementService.SetEventPublisher(eventBus)
	settlementService.SetLogger(log)

	alertMonitor := financeapp.NewClosingAlertMonitor(alertService, closingService, log, closingRepo, paymentRepo)
	eventBus.Subscribe(alertMonitor, alertMonitor.EventTypes()...)

	if provider.Enabled() {
		cashMetrics, err := telemetry.NewCashMetrics(provider.Meter(cfg.App.Name))
		if err != nil {
			log.Fatal("Failed to register cash metrics", zap.Error(err))
		}
		eventBus.Subscribe(cashMetrics, cashMetrics.EventTypes()...)
	}

	if cfg.Alerts.Enabled {
		alertScheduler, err := scheduler.NewAlertRefreshScheduler(scheduler.AlertRefreshConfig{
			Interval:   cfg.Alerts.RefreshInterval,
			RunOnStart: true,
			Timeout:    time.Minute,
		}, alertMonitor, log)
		if err != nil {
			log.Fatal("Failed to create alert scheduler", zap.Error(err))
		}
		if err := alertScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start alert scheduler", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = alertScheduler.Stop(stopCtx)
		}()
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	routerCfg := router.DefaultConfig()
	routerCfg.ServiceName = cfg.App.Name
	routerCfg.TracingEnabled = provider.Enabled()
	routerCfg.CORS.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	routerCfg.MaxBodySize = cfg.HTTP.MaxBodySize
	routerCfg.TrustedProxies = cfg.HTTP.TrustedProxies
	if cfg.HTTP.DefaultTenantID != "" {
		routerCfg.Tenant.DefaultTenantID, err = uuid.Parse(cfg.HTTP.DefaultTenantID)
		if err != nil {
			log.Fatal("Invalid default tenant", zap.Error(err))
		}
	}

	engine, err := router.New(routerCfg, router.Handlers{
		Closing:    handler.NewCashClosingHandler(closingService),
		Settlement: handler.NewSettlementHandler(settlementService),
		Alert:      handler.NewAlertHandler(alertMonitor),
		System:     handler.NewSystemHandler(cfg.App.Name, version, db),
	}, log)
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
	case err := <-serverErr:
		log.Error("HTTP server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}
	log.Info("Server exited gracefully")
}
