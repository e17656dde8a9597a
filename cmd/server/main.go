package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appledger "github.com/erp/cashbook/internal/application/ledger"
	"github.com/erp/cashbook/internal/domain/ledger"
	"github.com/erp/cashbook/internal/infrastructure/cache"
	"github.com/erp/cashbook/internal/infrastructure/config"
	"github.com/erp/cashbook/internal/infrastructure/event"
	"github.com/erp/cashbook/internal/infrastructure/logger"
	"github.com/erp/cashbook/internal/infrastructure/migration"
	"github.com/erp/cashbook/internal/infrastructure/persistence"
	"github.com/erp/cashbook/internal/infrastructure/scheduler"
	"github.com/erp/cashbook/internal/infrastructure/storage"
	"github.com/erp/cashbook/internal/infrastructure/telemetry"
	"github.com/erp/cashbook/internal/interfaces/http/handler"
	"github.com/erp/cashbook/internal/interfaces/http/middleware"
	"github.com/erp/cashbook/internal/interfaces/http/router"
	"github.com/erp/cashbook/migrations"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()

	// The log bridge needs a logger to report its own setup; a bootstrap
	// logger covers that window.
	logCfg := &logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize log bridge", zap.Error(err))
	}

	log, err := logger.New(logCfg, logProvider.ZapCore(logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting cashbook",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Initialize tracing and metrics
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	// Initialize database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
	)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected", zap.String("driver", db.Driver()))

	if err := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        db.Driver(),
	}, log).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	meter := meterProvider.Meter("cashbook")
	dbMetrics, err := telemetry.NewDBMetrics(meter, telemetry.DBMetricsConfig{
		SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
	}, log)
	if err != nil {
		log.Fatal("Failed to create database metrics", zap.Error(err))
	}
	if err := dbMetrics.Register(db.DB); err != nil {
		log.Fatal("Failed to register database metrics", zap.Error(err))
	}
	if meterProvider.IsEnabled() {
		dbMetrics.StartPoolStatsCollection(ctx)
	}

	if err := prepareSchema(db, &cfg.Database, log); err != nil {
		log.Fatal("Failed to prepare database schema", zap.Error(err))
	}

	// Initialize repositories
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	runRepo := persistence.NewGormReconciliationRunRepository(db.DB)
	store := persistence.NewLedgerStore(db.DB)

	runLock, err := cache.NewRunLockFactory(cfg.Redis, cache.WithLogger(log)).Create()
	if err != nil {
		log.Fatal("Failed to create reconciliation lock", zap.Error(err))
	}

	eventBus := event.NewInMemoryEventBus(log)

	reconciliationMetrics, err := telemetry.NewReconciliationMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create reconciliation metrics", zap.Error(err))
	}

	// Initialize application services
	reconciler := appledger.NewReconciler(store,
		appledger.WithSettleDelay(cfg.Reconciliation.SettleDelay),
		appledger.WithRunLock(runLock, cfg.Reconciliation.LockTTL),
		appledger.WithRunRepository(runRepo),
		appledger.WithEventPublisher(eventBus),
		appledger.WithRunObserver(reconciliationMetrics),
		appledger.WithLogger(log.Named("reconciler")),
	)

	balances := appledger.NewBalanceCalculator(ledger.NewBucketResolver(cfg.Ledger.BankAccounts...))
	alerts := appledger.NewAlertEvaluator(balances, cfg.Ledger.Currency)

	transactionService := appledger.NewTransactionService(
		transactionRepo, reconciler, balances, alerts, cfg.Ledger.Currency, log,
	).WithEventPublisher(eventBus)

	var archive appledger.ExportArchive
	if cfg.Storage.Enabled {
		s3Archive, err := storage.NewS3ExportArchive(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to create export archive", zap.Error(err))
		}
		if err := s3Archive.EnsureBucket(ctx); err != nil {
			log.Warn("Export archive bucket is not ready", zap.Error(err))
		}
		archive = s3Archive
	}
	exporter := appledger.NewExporter(transactionRepo, archive, log)

	// Register event handlers
	eventBus.Subscribe(appledger.NewAlertNotifier(reconciler, balances, alerts, log))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Load the snapshot so the dashboard answers before the first run
	if err := reconciler.Refresh(ctx); err != nil {
		log.Warn("Initial ledger snapshot failed", zap.Error(err))
	}

	trigger, err := scheduler.NewReconcileTrigger(scheduler.ReconcileTriggerConfig{
		Interval:   cfg.Reconciliation.Interval,
		MinSpacing: cfg.Reconciliation.MinSpacing,
		RunOnStart: cfg.Reconciliation.RunOnStart,
		Timeout:    cfg.Reconciliation.Timeout,
	}, reconciler, log.Named("scheduler"))
	if err != nil {
		log.Fatal("Invalid reconciliation configuration", zap.Error(err))
	}
	if cfg.Reconciliation.Enabled {
		if err := trigger.Start(ctx); err != nil {
			log.Fatal("Failed to start reconciliation trigger", zap.Error(err))
		}
	} else {
		log.Info("Automatic reconciliation disabled")
	}

	// Setup HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}
	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     tracerProvider.IsEnabled(),
		}),
		middleware.SpanEnricher(),
		logger.GinMiddleware(log),
		middleware.HTTPMetrics(meterProvider),
		middleware.Secure(),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.HTTP.CORSAllowOrigins,
			AllowMethods: cfg.HTTP.CORSAllowMethods,
			AllowHeaders: cfg.HTTP.CORSAllowHeaders,
		}),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	handlers := handler.Handlers{
		System:         handler.NewSystemHandler(db, version),
		Institution:    handler.NewInstitutionHandler(),
		Transaction:    handler.NewTransactionHandler(transactionService, exporter),
		Account:        handler.NewAccountHandler(transactionService),
		Reconciliation: handler.NewReconciliationHandler(trigger, runRepo),
	}

	r := router.NewRouter(engine)
	for _, group := range handlers.Groups() {
		r.Register(group)
	}
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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if trigger.IsRunning() {
		if err := trigger.Stop(shutdownCtx); err != nil {
			log.Warn("Reconciliation trigger did not stop cleanly", zap.Error(err))
		}
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus did not stop cleanly", zap.Error(err))
	}
	dbMetrics.Stop()
	if err := runLock.Close(); err != nil {
		log.Warn("Error closing reconciliation lock", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down tracer provider", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down log provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// prepareSchema creates sqlite tables from the models and, when asked,
// applies the embedded PostgreSQL migrations over a dedicated connection.
func prepareSchema(db *persistence.Database, cfg *config.DatabaseConfig, log *zap.Logger) error {
	if db.Driver() == config.DriverSQLite {
		return db.AutoMigrate()
	}
	if !cfg.MigrateOnStart {
		return nil
	}

	sqlDB, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return err
	}
	m, err := migration.NewEmbedded(sqlDB, migrations.FS, log)
	if err != nil {
		_ = sqlDB.Close()
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Error closing migrator", zap.Error(err))
		}
	}()
	return m.Up()
}
