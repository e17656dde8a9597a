package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/cashbook/internal/domain/ledger"
	"github.com/erp/cashbook/internal/domain/partner"
	"github.com/erp/cashbook/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReconciler(store Store, opts ...ReconcilerOption) *Reconciler {
	opts = append([]ReconcilerOption{WithSettleDelay(0)}, opts...)
	return NewReconciler(store, opts...)
}

func TestReconciler_AcmeScenario(t *testing.T) {
	store := newMemStore()
	store.sales = []trade.Sale{{
		ID: "S1", Customer: "Acme", Amount: amt(1000), Status: trade.StatusPaid,
		Method: trade.PaymentMethodCash, Date: day(2026, 10, 1),
	}}

	r := newTestReconciler(store)
	summary, err := r.Reconcile(context.Background(), ledger.RunTriggerManual)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.CustomersCreated)
	assert.Equal(t, 1, summary.SalesSynced)
	assert.Empty(t, summary.Failed)

	require.Len(t, store.customers, 1)
	assert.Equal(t, "Acme", store.customers[0].Name)
	assert.True(t, store.customers[0].CreditLimit.Equal(decimal.NewFromInt(50000)))
	assert.True(t, store.customers[0].Debt.IsZero())

	txn := store.findByReference("SALE-S1")
	require.NotNil(t, txn)
	assert.Equal(t, ledger.TransactionTypeInflow, txn.Type)
	assert.Equal(t, "Cash", txn.Account)
	assert.True(t, txn.Amount.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, ledger.CategorySales, txn.Category)
	assert.Equal(t, ledger.SyncSourceSales, txn.SyncedFrom)

	assert.Len(t, r.Snapshot().Transactions, 1)
}

func TestReconciler_SecondRunCreatesNothing(t *testing.T) {
	store := newMemStore()
	store.sales = []trade.Sale{
		{ID: "S1", Customer: "Acme", Amount: amt(1000), Status: trade.StatusPaid, Method: trade.PaymentMethodCash},
		{ID: "S2", Customer: "Beta", Amount: amt(250), Status: trade.StatusPaid, Method: trade.PaymentMethodMPesa},
	}
	store.purchases = []trade.Purchase{
		{ID: "P1", Supplier: "Wholesaler", Amount: amt(400), Status: trade.StatusPaid, PaymentMethod: trade.PaymentMethodBank},
	}

	r := newTestReconciler(store)
	first, err := r.Reconcile(context.Background(), ledger.RunTriggerScheduled)
	require.NoError(t, err)
	assert.Equal(t, 3, first.TransactionsCreated())

	second, err := r.Reconcile(context.Background(), ledger.RunTriggerScheduled)
	require.NoError(t, err)
	assert.False(t, second.HasChanges())
	assert.Len(t, store.txns, 3)
	assert.Len(t, store.customers, 2)
	assert.Len(t, store.suppliers, 1)

	refs := map[string]int{}
	for _, txn := range store.txns {
		refs[txn.Reference]++
	}
	for ref, n := range refs {
		assert.Equal(t, 1, n, ref)
	}
}

func TestReconciler_Classification(t *testing.T) {
	store := newMemStore()
	store.sales = []trade.Sale{
		{ID: "M1", Amount: amt(300), Status: trade.StatusPaid, Method: trade.PaymentMethodMPesa},
		{ID: "C1", Amount: amt(300), Status: trade.StatusPaid, Method: trade.PaymentMethodCheque},
		{ID: "U1", Amount: amt(300), Status: "Pending", Method: trade.PaymentMethodCash},
	}
	store.purchases = []trade.Purchase{
		{ID: "R1", Payee: "Landlord", Amount: amt(30000), Status: trade.StatusPaid, Category: "Rent", Type: "purchase"},
		{ID: "X1", Payee: "Fuel", Amount: amt(500), Status: trade.StatusPaid, Type: "expense"},
		{ID: "I1", Supplier: "Wholesaler", Amount: amt(900), Status: trade.StatusPaid, Category: "Stock"},
	}

	r := newTestReconciler(store)
	summary, err := r.Reconcile(context.Background(), ledger.RunTriggerManual)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.SalesSynced)
	assert.Equal(t, 2, summary.ExpensesSynced)
	assert.Equal(t, 1, summary.PurchasesSynced)
	assert.Nil(t, store.findByReference("SALE-U1"))

	mpesa := store.findByReference("SALE-M1")
	require.NotNil(t, mpesa)
	assert.Equal(t, "M-Pesa", mpesa.Account)
	assert.Equal(t, ledger.AccountTypeMobile, mpesa.AccountType)
	assert.Equal(t, "mpesa", mpesa.InstitutionID)

	cheque := store.findByReference("SALE-C1")
	require.NotNil(t, cheque)
	assert.Equal(t, "Bank", cheque.Account)

	rent := store.findByReference("PURCHASE-R1")
	require.NotNil(t, rent)
	assert.Equal(t, ledger.CategoryExpenses, rent.Category)
	assert.Equal(t, ledger.SyncSourceExpenses, rent.SyncedFrom)
	assert.Equal(t, "Expense: Rent - Landlord", rent.Description)

	stock := store.findByReference("PURCHASE-I1")
	require.NotNil(t, stock)
	assert.Equal(t, ledger.CategoryPurchases, stock.Category)
	assert.Equal(t, "Purchase from Wholesaler", stock.Description)
}

func TestReconciler_PartnerNames(t *testing.T) {
	store := newMemStore()
	existing, err := partner.NewCustomer("acme ltd")
	require.NoError(t, err)
	store.customers = []*partner.Customer{existing}
	store.sales = []trade.Sale{
		{ID: "1", Customer: "ACME LTD"},
		{ID: "2", Customer: trade.WalkInCustomer},
		{ID: "3", Customer: ""},
		{ID: "4", Customer: "Zed"},
		{ID: "5", Customer: "zed"},
	}
	store.purchases = []trade.Purchase{
		{ID: "1", Supplier: "Kiambu Farms"},
		{ID: "2", Payee: "KIAMBU FARMS"},
		{ID: "3"},
	}

	r := newTestReconciler(store)
	summary, err := r.Reconcile(context.Background(), ledger.RunTriggerManual)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.CustomersCreated)
	assert.Equal(t, 1, summary.SuppliersCreated)
	assert.Equal(t, "Zed", store.customers[1].Name)
	assert.Equal(t, partner.SourceAutoSync, store.customers[1].Source)
	assert.Equal(t, "Kiambu Farms", store.suppliers[0].Name)
	assert.Equal(t, "30", store.suppliers[0].PaymentTerms)
}

func TestReconciler_BlankPartnerNamesAreSkipped(t *testing.T) {
	store := newMemStore()
	store.sales = []trade.Sale{
		{ID: "S1", Customer: "   ", Amount: amt(100), Status: trade.StatusPaid},
		{ID: "S2", Customer: " Walk-in Customer ", Amount: amt(100), Status: trade.StatusPaid},
		{ID: "S3", Customer: " Acme ", Amount: amt(100), Status: trade.StatusPaid},
	}
	store.purchases = []trade.Purchase{
		{ID: "P1", Supplier: "  ", Payee: "\t", Amount: amt(50), Status: trade.StatusPaid, Category: "Stock"},
	}

	r := newTestReconciler(store)
	first, err := r.Reconcile(context.Background(), ledger.RunTriggerScheduled)
	require.NoError(t, err)

	assert.Empty(t, first.Failed)
	assert.Equal(t, 1, first.CustomersCreated)
	assert.Equal(t, 0, first.SuppliersCreated)
	assert.Equal(t, 3, first.SalesSynced)
	assert.Equal(t, 1, first.PurchasesSynced)
	require.Len(t, store.customers, 1)
	assert.Equal(t, "Acme", store.customers[0].Name)
	assert.Equal(t, "Sale to Acme", store.findByReference("SALE-S3").Description)

	second, err := r.Reconcile(context.Background(), ledger.RunTriggerScheduled)
	require.NoError(t, err)
	assert.False(t, second.HasChanges())
	assert.Empty(t, second.Failed)
}

func TestReconciler_PerRecordFailuresAreNonFatal(t *testing.T) {
	store := newMemStore()
	store.failRefs["SALE-S2"] = true
	store.failCustomerNames["Broken"] = true
	store.sales = []trade.Sale{
		{ID: "S1", Amount: amt(10), Status: trade.StatusPaid},
		{ID: "S2", Amount: amt(20), Status: trade.StatusPaid},
		{ID: "S3", Customer: "Broken", Amount: amt(30), Status: trade.StatusPaid},
		{ID: "S4", Amount: amt(-5), Status: trade.StatusPaid},
	}
	runs := &memRunRepo{}

	r := newTestReconciler(store, WithRunRepository(runs))
	summary, err := r.Reconcile(context.Background(), ledger.RunTriggerManual)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.SalesSynced)
	assert.ElementsMatch(t, []string{"customer:Broken", "SALE-S2", "SALE-S4"}, summary.Failed)
	assert.NotNil(t, store.findByReference("SALE-S3"))

	require.Len(t, runs.runs, 1)
	assert.Equal(t, ledger.RunStatusPartial, runs.runs[0].Status)
}

func TestReconciler_CatastrophicFailure(t *testing.T) {
	store := newMemStore()
	store.listCustomersErr = errStoreDown
	events := &recordingPublisher{}
	runs := &memRunRepo{}

	r := newTestReconciler(store, WithEventPublisher(events), WithRunRepository(runs))

	summary, err := r.Reconcile(context.Background(), ledger.RunTriggerStartup)
	require.Error(t, err)
	assert.Nil(t, summary)
	assert.ErrorIs(t, err, errStoreDown)

	_, err = r.Reconcile(context.Background(), ledger.RunTriggerScheduled)
	require.Error(t, err)

	failed := events.ofType(ledger.EventTypeReconciliationFailed)
	require.Len(t, failed, 2)
	assert.True(t, failed[0].(*ledger.ReconciliationFailedEvent).Notify)
	assert.False(t, failed[1].(*ledger.ReconciliationFailedEvent).Notify)

	require.Len(t, runs.runs, 2)
	assert.Equal(t, ledger.RunStatusFailed, runs.runs[0].Status)
	assert.Contains(t, runs.runs[0].Error, "failed to list customers")
}

func TestReconciler_SnapshotLoadFailure(t *testing.T) {
	store := newMemStore()
	store.listTxnsErr = errStoreDown

	r := newTestReconciler(store)
	_, err := r.Reconcile(context.Background(), ledger.RunTriggerManual)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list transactions")
}

func TestReconciler_PublishesEventsOnlyWithChanges(t *testing.T) {
	store := newMemStore()
	store.sales = []trade.Sale{{ID: "S1", Amount: amt(10), Status: trade.StatusPaid}}
	events := &recordingPublisher{}

	r := newTestReconciler(store, WithEventPublisher(events))
	_, err := r.Reconcile(context.Background(), ledger.RunTriggerManual)
	require.NoError(t, err)
	_, err = r.Reconcile(context.Background(), ledger.RunTriggerManual)
	require.NoError(t, err)

	assert.Len(t, events.ofType(ledger.EventTypeTransactionRecorded), 1)
	assert.Len(t, events.ofType(ledger.EventTypeReconciliationCompleted), 1)
}

func TestReconciler_MutualExclusion(t *testing.T) {
	t.Run("in-process run in flight", func(t *testing.T) {
		r := newTestReconciler(newMemStore())
		r.running.Store(true)

		_, err := r.Reconcile(context.Background(), ledger.RunTriggerManual)
		assert.ErrorIs(t, err, ErrReconciliationInProgress)
	})

	t.Run("lock held elsewhere", func(t *testing.T) {
		lock := &stubLock{acquire: false}
		r := newTestReconciler(newMemStore(), WithRunLock(lock, time.Minute))

		_, err := r.Reconcile(context.Background(), ledger.RunTriggerManual)
		assert.ErrorIs(t, err, ErrReconciliationInProgress)
		assert.False(t, r.IsRunning())
	})

	t.Run("lock error", func(t *testing.T) {
		lock := &stubLock{err: errors.New("redis down")}
		r := newTestReconciler(newMemStore(), WithRunLock(lock, time.Minute))

		_, err := r.Reconcile(context.Background(), ledger.RunTriggerManual)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrReconciliationInProgress)
	})

	t.Run("lock acquired and released", func(t *testing.T) {
		lock := &stubLock{acquire: true}
		r := newTestReconciler(newMemStore(), WithRunLock(lock, time.Minute))

		_, err := r.Reconcile(context.Background(), ledger.RunTriggerManual)
		require.NoError(t, err)
		assert.Equal(t, []string{RunLockKey}, lock.acquired)
		assert.Equal(t, []string{RunLockKey}, lock.released)
	})
}

func TestReconciler_SettleDelay(t *testing.T) {
	r := NewReconciler(newMemStore(), WithSettleDelay(250*time.Millisecond))
	var slept []time.Duration
	r.sleep = func(d time.Duration) { slept = append(slept, d) }

	_, err := r.Reconcile(context.Background(), ledger.RunTriggerManual)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{250 * time.Millisecond}, slept)
}

type observerFunc func(run *ledger.ReconciliationRun)

func (f observerFunc) ObserveRun(ctx context.Context, run *ledger.ReconciliationRun) { f(run) }

func TestReconciler_ObservesRuns(t *testing.T) {
	var observed []*ledger.ReconciliationRun
	r := newTestReconciler(newMemStore(), WithRunObserver(observerFunc(func(run *ledger.ReconciliationRun) {
		observed = append(observed, run)
	})))

	_, err := r.Reconcile(context.Background(), ledger.RunTriggerScheduled)
	require.NoError(t, err)

	require.Len(t, observed, 1)
	assert.Equal(t, ledger.RunStatusCompleted, observed[0].Status)
	assert.Equal(t, ledger.RunTriggerScheduled, observed[0].Trigger)
}
