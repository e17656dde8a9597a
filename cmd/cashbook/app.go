package main

import (
	"fmt"
	"io"
	"os"
	"sync"

	appledger "github.com/erp/cashbook/internal/application/ledger"
	"github.com/erp/cashbook/internal/domain/ledger"
	"github.com/erp/cashbook/internal/domain/shared"
	"github.com/erp/cashbook/internal/infrastructure/cache"
	"github.com/erp/cashbook/internal/infrastructure/config"
	"github.com/erp/cashbook/internal/infrastructure/logger"
	"github.com/erp/cashbook/internal/infrastructure/persistence"
	"github.com/erp/cashbook/internal/infrastructure/storage"
	"go.uber.org/zap"
)

// app is the wired ledger a command operates on
type app struct {
	currency     string
	log          *zap.Logger
	db           *persistence.Database
	lock         shared.RunLock
	reconciler   *appledger.Reconciler
	transactions *appledger.TransactionService
	exporter     *appledger.Exporter
}

// newApp wires the services over an open database. lock and archive may be nil.
func newApp(cfg *config.Config, db *persistence.Database, lock shared.RunLock, archive appledger.ExportArchive, log *zap.Logger) *app {
	store := persistence.NewLedgerStore(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)

	opts := []appledger.ReconcilerOption{
		appledger.WithSettleDelay(cfg.Reconciliation.SettleDelay),
		appledger.WithRunRepository(persistence.NewGormReconciliationRunRepository(db.DB)),
		appledger.WithLogger(log),
	}
	if lock != nil {
		opts = append(opts, appledger.WithRunLock(lock, cfg.Reconciliation.LockTTL))
	}
	reconciler := appledger.NewReconciler(store, opts...)

	balances := appledger.NewBalanceCalculator(ledger.NewBucketResolver(cfg.Ledger.BankAccounts...))
	alerts := appledger.NewAlertEvaluator(balances, cfg.Ledger.Currency)

	return &app{
		currency:     cfg.Ledger.Currency,
		log:          log,
		db:           db,
		lock:         lock,
		reconciler:   reconciler,
		transactions: appledger.NewTransactionService(transactionRepo, reconciler, balances, alerts, cfg.Ledger.Currency, log),
		exporter:     appledger.NewExporter(transactionRepo, archive, log),
	}
}

// loadApp reads the configuration and opens the database. Logs go to stderr
// so command output can be piped.
func loadApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: "console",
		Output: "stderr",
	})
	if err != nil {
		return nil, err
	}

	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(logger.NewGormLogger(log, logger.MapGormLogLevel("error"))),
	)
	if err != nil {
		return nil, err
	}
	if db.Driver() == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	lock, err := cache.NewRunLockFactory(cfg.Redis, cache.WithLogger(log)).Create()
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	var archive appledger.ExportArchive
	if cfg.Storage.Enabled {
		s3Archive, err := storage.NewS3ExportArchive(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			_ = lock.Close()
			_ = db.Close()
			return nil, err
		}
		archive = s3Archive
	}

	return newApp(cfg, db, lock, archive, log), nil
}

func (a *app) close() {
	if a.lock != nil {
		if err := a.lock.Close(); err != nil {
			a.log.Warn("Error closing reconciliation lock", zap.Error(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.log.Warn("Error closing database", zap.Error(err))
	}
	_ = a.log.Sync()
}

// session opens the app on first use, so help and flag errors never touch
// the database.
type session struct {
	out  io.Writer
	errw io.Writer
	load func() (*app, error)

	once sync.Once
	app  *app
	err  error
}

func newSession(out io.Writer, load func() (*app, error)) *session {
	return &session{out: out, errw: os.Stderr, load: load}
}

func (s *session) App() (*app, error) {
	s.once.Do(func() {
		s.app, s.err = s.load()
	})
	return s.app, s.err
}

func (s *session) Close() {
	if s.app != nil {
		s.app.close()
	}
}

func (s *session) fail(format string, args ...any) {
	fmt.Fprintf(s.errw, format+"\n", args...)
}
