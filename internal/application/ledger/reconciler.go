package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erp/cashbook/internal/domain/ledger"
	"github.com/erp/cashbook/internal/domain/partner"
	"github.com/erp/cashbook/internal/domain/shared"
	"github.com/erp/cashbook/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ErrReconciliationInProgress is returned when a run is already active,
// either in this process or, through the run lock, in another one.
var ErrReconciliationInProgress = errors.New("reconciliation already in progress")

const (
	// RunLockKey is the key held in the run lock for the duration of a run
	RunLockKey = "cashbook:reconciliation:lock"

	DefaultSettleDelay = time.Second
	DefaultLockTTL     = 10 * time.Minute
)

// RunObserver receives every finished run, for metrics
type RunObserver interface {
	ObserveRun(ctx context.Context, run *ledger.ReconciliationRun)
}

// Reconciler projects paid sales and purchases into the ledger and keeps
// customer and supplier master data in sync. It owns the in-memory snapshot
// that balances and alerts are computed from.
type Reconciler struct {
	store       Store
	runs        ledger.ReconciliationRunRepository
	events      shared.EventPublisher
	lock        shared.RunLock
	observer    RunObserver
	logger      *zap.Logger
	settleDelay time.Duration
	lockTTL     time.Duration
	sleep       func(time.Duration)

	mu       sync.RWMutex
	snapshot Snapshot

	running   atomic.Bool
	attempted atomic.Bool
}

// ReconcilerOption configures a Reconciler
type ReconcilerOption func(*Reconciler)

// WithSettleDelay sets the pause before the final reload. Zero disables it.
func WithSettleDelay(d time.Duration) ReconcilerOption {
	return func(r *Reconciler) {
		r.settleDelay = d
	}
}

// WithRunLock enables cross-process mutual exclusion
func WithRunLock(lock shared.RunLock, ttl time.Duration) ReconcilerOption {
	return func(r *Reconciler) {
		r.lock = lock
		if ttl > 0 {
			r.lockTTL = ttl
		}
	}
}

// WithRunRepository records every run
func WithRunRepository(repo ledger.ReconciliationRunRepository) ReconcilerOption {
	return func(r *Reconciler) {
		r.runs = repo
	}
}

// WithEventPublisher publishes transaction and run events
func WithEventPublisher(p shared.EventPublisher) ReconcilerOption {
	return func(r *Reconciler) {
		r.events = p
	}
}

// WithRunObserver reports finished runs to o
func WithRunObserver(o RunObserver) ReconcilerOption {
	return func(r *Reconciler) {
		r.observer = o
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewReconciler creates a Reconciler over store
func NewReconciler(store Store, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		store:       store,
		logger:      zap.NewNop(),
		settleDelay: DefaultSettleDelay,
		lockTTL:     DefaultLockTTL,
		sleep:       time.Sleep,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Snapshot returns the current in-memory view
func (r *Reconciler) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

// Refresh reloads transactions, sales and purchases from the store
func (r *Reconciler) Refresh(ctx context.Context) error {
	txns, err := r.store.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list transactions: %w", err)
	}
	sales, err := r.store.ListSales(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sales: %w", err)
	}
	purchases, err := r.store.ListPurchases(ctx)
	if err != nil {
		return fmt.Errorf("failed to list purchases: %w", err)
	}

	r.mu.Lock()
	r.snapshot = Snapshot{
		Transactions: txns,
		Sales:        sales,
		Purchases:    purchases,
		LoadedAt:     time.Now(),
	}
	r.mu.Unlock()
	return nil
}

// IsRunning reports whether a run is active in this process
func (r *Reconciler) IsRunning() bool {
	return r.running.Load()
}

// Reconcile runs one full reconciliation pass. Per-record failures are
// collected in the summary; only failures that prevent the pass from running
// at all are returned as errors.
func (r *Reconciler) Reconcile(ctx context.Context, trigger ledger.RunTrigger) (*ledger.Summary, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciler", "reconcile",
		telemetry.WithAttribute(telemetry.SpanAttrTrigger, string(trigger)),
	)
	defer span.End()

	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrReconciliationInProgress
	}
	defer r.running.Store(false)

	if r.lock != nil {
		acquired, err := r.lock.Acquire(ctx, RunLockKey, r.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire reconciliation lock: %w", err)
		}
		if !acquired {
			return nil, ErrReconciliationInProgress
		}
		defer func() {
			if err := r.lock.Release(context.WithoutCancel(ctx), RunLockKey); err != nil {
				r.logger.Warn("failed to release reconciliation lock", zap.Error(err))
			}
		}()
	}

	firstRun := !r.attempted.Swap(true)
	run := ledger.StartReconciliationRun(trigger)
	telemetry.SetAttributes(span, telemetry.SpanAttrRunID, run.ID.String())
	log := r.logger.With(
		zap.String("run_id", run.ID.String()),
		zap.String("trigger", string(run.Trigger)),
	)

	summary, err := r.reconcile(ctx, log)
	if err != nil {
		run.Fail(err)
		r.finish(ctx, run)

		if firstRun {
			log.Error("reconciliation failed", zap.Error(err))
		} else {
			log.Warn("reconciliation failed", zap.Error(err))
		}
		r.publish(ctx, log, ledger.NewReconciliationFailedEvent(run, firstRun))
		telemetry.RecordError(span, err)
		return nil, err
	}

	run.Complete(summary)
	r.finish(ctx, run)
	telemetry.SetAttributes(span,
		"status", string(run.Status),
		"transactions_created", summary.TransactionsCreated(),
		"failed", len(summary.Failed),
	)

	if summary.HasChanges() {
		log.Info("reconciliation completed",
			zap.Int("customers_created", summary.CustomersCreated),
			zap.Int("suppliers_created", summary.SuppliersCreated),
			zap.Int("sales_synced", summary.SalesSynced),
			zap.Int("purchases_synced", summary.PurchasesSynced),
			zap.Int("expenses_synced", summary.ExpensesSynced),
			zap.Strings("failed", summary.Failed),
			zap.Duration("duration", run.Duration()),
		)
		r.publish(ctx, log, ledger.NewReconciliationCompletedEvent(run))
	} else {
		log.Debug("reconciliation found nothing to sync", zap.Duration("duration", run.Duration()))
	}

	return &summary, nil
}

func (r *Reconciler) reconcile(ctx context.Context, log *zap.Logger) (ledger.Summary, error) {
	var summary ledger.Summary

	if err := r.Refresh(ctx); err != nil {
		return summary, err
	}
	snap := r.Snapshot()

	customers, err := r.store.ListCustomers(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to list customers: %w", err)
	}
	suppliers, err := r.store.ListSuppliers(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to list suppliers: %w", err)
	}

	customerNames := partner.CustomerNames(customers)
	for _, sale := range snap.Sales {
		name := sale.CustomerName()
		if !sale.HasNamedCustomer() || customerNames.Contains(name) {
			continue
		}
		customerNames.Add(name)
		if err := r.createCustomer(ctx, log, name); err != nil {
			log.Warn("failed to create customer", zap.String("name", name), zap.Error(err))
			summary.RecordFailure("customer:" + name)
			continue
		}
		summary.CustomersCreated++
	}

	supplierNames := partner.SupplierNames(suppliers)
	for _, purchase := range snap.Purchases {
		name := purchase.PartyName()
		if name == "" || supplierNames.Contains(name) {
			continue
		}
		supplierNames.Add(name)
		if err := r.createSupplier(ctx, log, name); err != nil {
			log.Warn("failed to create supplier", zap.String("name", name), zap.Error(err))
			summary.RecordFailure("supplier:" + name)
			continue
		}
		summary.SuppliersCreated++
	}

	synced := ledger.NewReferenceIndex(snap.Transactions)

	for _, sale := range snap.Sales {
		if !sale.IsPaid() {
			continue
		}
		ref := ledger.SaleReference(sale.ID)
		if synced.Contains(ref) {
			continue
		}
		txn, err := ledger.NewSaleTransaction(sale)
		if err == nil {
			err = r.createTransaction(ctx, log, txn)
		}
		if err != nil {
			log.Warn("failed to sync sale", zap.String("reference", ref), zap.Error(err))
			summary.RecordFailure(ref)
			continue
		}
		synced.Add(ref)
		summary.SalesSynced++
	}

	for _, purchase := range snap.Purchases {
		if !purchase.IsPaid() {
			continue
		}
		ref := ledger.PurchaseReference(purchase.ID)
		if synced.Contains(ref) {
			continue
		}
		txn, err := ledger.NewPurchaseTransaction(purchase)
		if err == nil {
			err = r.createTransaction(ctx, log, txn)
		}
		if err != nil {
			log.Warn("failed to sync purchase", zap.String("reference", ref), zap.Error(err))
			summary.RecordFailure(ref)
			continue
		}
		synced.Add(ref)
		if txn.SyncedFrom == ledger.SyncSourceExpenses {
			summary.ExpensesSynced++
		} else {
			summary.PurchasesSynced++
		}
	}

	if r.settleDelay > 0 {
		r.sleep(r.settleDelay)
	}
	if err := r.Refresh(ctx); err != nil {
		log.Warn("failed to reload snapshot after reconciliation", zap.Error(err))
	}

	return summary, nil
}

func (r *Reconciler) createCustomer(ctx context.Context, log *zap.Logger, name string) error {
	customer, err := partner.NewSyncedCustomer(name)
	if err != nil {
		return err
	}
	if _, err := r.store.CreateCustomer(ctx, customer); err != nil {
		return err
	}
	r.publish(ctx, log, customer.GetDomainEvents()...)
	customer.ClearDomainEvents()
	return nil
}

func (r *Reconciler) createSupplier(ctx context.Context, log *zap.Logger, name string) error {
	supplier, err := partner.NewSyncedSupplier(name)
	if err != nil {
		return err
	}
	if _, err := r.store.CreateSupplier(ctx, supplier); err != nil {
		return err
	}
	r.publish(ctx, log, supplier.GetDomainEvents()...)
	supplier.ClearDomainEvents()
	return nil
}

func (r *Reconciler) createTransaction(ctx context.Context, log *zap.Logger, txn *ledger.Transaction) error {
	events := txn.GetDomainEvents()
	if _, err := r.store.CreateTransaction(ctx, txn); err != nil {
		return err
	}
	txn.ClearDomainEvents()
	r.publish(ctx, log, events...)
	return nil
}

func (r *Reconciler) finish(ctx context.Context, run *ledger.ReconciliationRun) {
	if r.runs != nil {
		if err := r.runs.Save(context.WithoutCancel(ctx), run); err != nil {
			r.logger.Warn("failed to record reconciliation run",
				zap.String("run_id", run.ID.String()),
				zap.Error(err),
			)
		}
	}
	if r.observer != nil {
		r.observer.ObserveRun(ctx, run)
	}
}

func (r *Reconciler) publish(ctx context.Context, log *zap.Logger, events ...shared.DomainEvent) {
	if r.events == nil || len(events) == 0 {
		return
	}
	if err := r.events.Publish(ctx, events...); err != nil {
		log.Warn("failed to publish events", zap.Error(err))
	}
}
