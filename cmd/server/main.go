package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cashboxapp "github.com/estudio/backend/internal/application/cashbox"
	catalogapp "github.com/estudio/backend/internal/application/catalog"
	expenseapp "github.com/estudio/backend/internal/application/expense"
	receiptapp "github.com/estudio/backend/internal/application/receipt"
	reportapp "github.com/estudio/backend/internal/application/report"
	"github.com/estudio/backend/internal/domain/shared"
	auditsink "github.com/estudio/backend/internal/infrastructure/audit"
	"github.com/estudio/backend/internal/infrastructure/auth"
	"github.com/estudio/backend/internal/infrastructure/cache"
	"github.com/estudio/backend/internal/infrastructure/clock"
	"github.com/estudio/backend/internal/infrastructure/config"
	"github.com/estudio/backend/internal/infrastructure/logger"
	"github.com/estudio/backend/internal/infrastructure/persistence"
	"github.com/estudio/backend/internal/infrastructure/scheduler"
	"github.com/estudio/backend/internal/interfaces/http/handler"
	"github.com/estudio/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("business_timezone", cfg.Business.Timezone),
	)

	// Database, with GORM logging routed through zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Business clock: all drawer dates follow the practice's timezone
	businessClock := clock.New(cfg.Business.Timezone)

	// Idempotency store for receipt submission
	var idemStore shared.IdempotencyStore
	if cfg.Redis.Enabled {
		idemStore, err = cache.NewRedisIdempotencyStore(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		log.Info("Redis idempotency store connected", zap.String("addr", cfg.Redis.Addr()))
	} else {
		idemStore = cache.NewInMemoryIdempotencyStore()
		log.Info("Using in-memory idempotency store")
	}
	defer func() {
		if err := idemStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Repositories
	drawerRepo := persistence.NewGormDrawerRepository(db.DB)
	movementRepo := persistence.NewGormMovementRepository(db.DB)
	receiptRepo := persistence.NewGormReceiptRepository(db.DB)
	counterRepo := persistence.NewGormCounterRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	methodRepo := persistence.NewGormPaymentMethodRepository(db.DB)
	conceptRepo := persistence.NewGormConceptRepository(db.DB)
	reportRepo := persistence.NewGormReportRepository(db.DB)
	auditRepo := persistence.NewGormAuditLogRepository(db.DB)
	txManager := persistence.NewGormTransactionManager(db.DB)

	// Audit writes never fail a business operation
	sink := auditsink.NewBestEffortSink(auditRepo, log)

	// Application services
	drawerService := cashboxapp.NewDrawerService(drawerRepo, movementRepo, txManager, businessClock, sink, log)
	receiptService := receiptapp.NewReceiptService(receiptRepo, counterRepo, drawerRepo, movementRepo, clientRepo, methodRepo, txManager, businessClock, sink)
	expenseService := expenseapp.NewExpenseService(expenseRepo, drawerRepo, movementRepo, methodRepo, txManager, businessClock, sink)
	catalogService := catalogapp.NewCatalogService(clientRepo, methodRepo, conceptRepo)
	reportService := reportapp.NewReportService(reportRepo, businessClock)

	jwtService := auth.NewJWTService(cfg.JWT)

	// Auto-close scheduler
	var autoCloseScheduler *scheduler.AutoCloseScheduler
	if cfg.Scheduler.Enabled {
		hour, minute, err := scheduler.ParseCronSchedule(cfg.Scheduler.AutoCloseSchedule)
		if err != nil {
			log.Fatal("Invalid auto-close schedule", zap.Error(err))
		}
		autoCloseScheduler = scheduler.NewAutoCloseScheduler(scheduler.AutoCloseSchedulerConfig{
			Enabled:    true,
			CronHour:   hour,
			CronMinute: minute,
			JobTimeout: cfg.Scheduler.JobTimeout,
		}, drawerService, businessClock, log)
		if err := autoCloseScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start auto-close scheduler", zap.Error(err))
		}
		defer func() {
			if err := autoCloseScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping auto-close scheduler", zap.Error(err))
			}
		}()
		log.Info("Auto-close scheduler started",
			zap.Int("hour", hour),
			zap.Int("minute", minute),
		)
	}

	// HTTP layer
	engine := router.NewEngine(cfg, log, jwtService)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewDrawerHandler(drawerService)).
		Register(handler.NewReceiptHandler(receiptService, idemStore, shared.DefaultIdempotencyConfig())).
		Register(handler.NewExpenseHandler(expenseService)).
		Register(handler.NewCatalogHandler(catalogService)).
		Register(handler.NewReportHandler(reportService)).
		Register(handler.NewSystemHandler(db.DB, autoCloseScheduler, version))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
