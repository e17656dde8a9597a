package telemetry

import (
	"context"

	"github.com/erp/cashbook/internal/domain/ledger"
	"go.opentelemetry.io/otel/metric"
)

// ReconciliationMetrics records the outcome of every reconciliation run. It
// is attached to the reconciler as its run observer.
type ReconciliationMetrics struct {
	runs      *Counter
	duration  *Histogram
	synced    *Counter
	created   *Counter
	failures  *Counter
	lastRunAt *Gauge
}

// NewReconciliationMetrics creates the reconciliation instruments on meter
func NewReconciliationMetrics(meter metric.Meter) (*ReconciliationMetrics, error) {
	m := &ReconciliationMetrics{}
	var err error
	if m.runs, err = NewCounter(meter, "reconciliation_runs_total", "Reconciliation runs by trigger and status", "{run}"); err != nil {
		return nil, err
	}
	if m.duration, err = NewHistogram(meter, HistogramOpts{
		Name:        "reconciliation_run_duration_seconds",
		Description: "Reconciliation run duration",
		Unit:        "s",
		Boundaries:  RunDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.synced, err = NewCounter(meter, "reconciliation_transactions_synced_total", "Ledger entries created from sales and purchases", "{transaction}"); err != nil {
		return nil, err
	}
	if m.created, err = NewCounter(meter, "reconciliation_partners_created_total", "Customers and suppliers created from source records", "{partner}"); err != nil {
		return nil, err
	}
	if m.failures, err = NewCounter(meter, "reconciliation_record_failures_total", "Source records that could not be synced", "{record}"); err != nil {
		return nil, err
	}
	if m.lastRunAt, err = NewGauge(meter, "reconciliation_last_run_timestamp_seconds", "Unix time the last run finished", "s"); err != nil {
		return nil, err
	}
	return m, nil
}

// ObserveRun records a finished run
func (m *ReconciliationMetrics) ObserveRun(ctx context.Context, run *ledger.ReconciliationRun) {
	if run == nil {
		return
	}
	trigger := AttrRunTrigger.String(string(run.Trigger))

	m.runs.Inc(ctx, trigger, AttrRunStatus.String(string(run.Status)))
	m.duration.RecordDuration(ctx, run.Duration(), trigger)
	if run.FinishedAt != nil {
		m.lastRunAt.Record(ctx, run.FinishedAt.Unix(), trigger)
	}

	s := run.Summary
	m.synced.Add(ctx, int64(s.SalesSynced), AttrSyncKind.String(string(ledger.SyncSourceSales)))
	m.synced.Add(ctx, int64(s.PurchasesSynced), AttrSyncKind.String(string(ledger.SyncSourcePurchases)))
	m.synced.Add(ctx, int64(s.ExpensesSynced), AttrSyncKind.String(string(ledger.SyncSourceExpenses)))
	m.created.Add(ctx, int64(s.CustomersCreated), AttrSyncKind.String("customer"))
	m.created.Add(ctx, int64(s.SuppliersCreated), AttrSyncKind.String("supplier"))
	m.failures.Add(ctx, int64(len(s.Failed)))
}
