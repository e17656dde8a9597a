package ledger

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/erp/cashbook/internal/domain/ledger"
	"github.com/erp/cashbook/internal/domain/partner"
	"github.com/erp/cashbook/internal/domain/shared"
	"github.com/erp/cashbook/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

var errStoreDown = errors.New("store unavailable")

// memStore is an in-memory Store with failure injection
type memStore struct {
	mu        sync.Mutex
	txns      []*ledger.Transaction
	sales     []trade.Sale
	purchases []trade.Purchase
	customers []*partner.Customer
	suppliers []*partner.Supplier

	failRefs          map[string]bool
	failCustomerNames map[string]bool
	listCustomersErr  error
	listTxnsErr       error
}

func newMemStore() *memStore {
	return &memStore{failRefs: map[string]bool{}, failCustomerNames: map[string]bool{}}
}

func (s *memStore) ListTransactions(ctx context.Context) ([]*ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listTxnsErr != nil {
		return nil, s.listTxnsErr
	}
	return append([]*ledger.Transaction(nil), s.txns...), nil
}

func (s *memStore) CreateTransaction(ctx context.Context, txn *ledger.Transaction) (*ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failRefs[txn.Reference] {
		return nil, errStoreDown
	}
	s.txns = append(s.txns, txn)
	return txn, nil
}

func (s *memStore) ListSales(ctx context.Context) ([]trade.Sale, error) {
	return s.sales, nil
}

func (s *memStore) ListPurchases(ctx context.Context) ([]trade.Purchase, error) {
	return s.purchases, nil
}

func (s *memStore) ListCustomers(ctx context.Context) ([]*partner.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listCustomersErr != nil {
		return nil, s.listCustomersErr
	}
	return append([]*partner.Customer(nil), s.customers...), nil
}

func (s *memStore) CreateCustomer(ctx context.Context, c *partner.Customer) (*partner.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCustomerNames[c.Name] {
		return nil, errStoreDown
	}
	s.customers = append(s.customers, c)
	return c, nil
}

func (s *memStore) ListSuppliers(ctx context.Context) ([]*partner.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*partner.Supplier(nil), s.suppliers...), nil
}

func (s *memStore) CreateSupplier(ctx context.Context, sp *partner.Supplier) (*partner.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suppliers = append(s.suppliers, sp)
	return sp, nil
}

func (s *memStore) findByReference(ref string) *ledger.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.txns {
		if t.Reference == ref {
			return t
		}
	}
	return nil
}

// recordingPublisher captures published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) ofType(eventType string) []shared.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []shared.DomainEvent
	for _, e := range p.events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

// memRunRepo keeps saved runs in memory
type memRunRepo struct {
	mu   sync.Mutex
	runs []*ledger.ReconciliationRun
}

func (r *memRunRepo) Save(ctx context.Context, run *ledger.ReconciliationRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
	return nil
}

func (r *memRunRepo) FindRecent(ctx context.Context, limit int) ([]*ledger.ReconciliationRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs, nil
}

// stubLock is a RunLock that reports a fixed outcome
type stubLock struct {
	acquire  bool
	err      error
	acquired []string
	released []string
}

func (l *stubLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	if l.acquire {
		l.acquired = append(l.acquired, key)
	}
	return l.acquire, nil
}

func (l *stubLock) Release(ctx context.Context, key string) error {
	l.released = append(l.released, key)
	return nil
}

func (l *stubLock) Close() error { return nil }

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByReference(ctx context.Context, reference string) (*ledger.Transaction, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindAll(ctx context.Context) ([]*ledger.Transaction, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindWithFilter(ctx context.Context, filter ledger.TransactionFilter) ([]*ledger.Transaction, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Count(ctx context.Context, filter ledger.TransactionFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) ExistsByReference(ctx context.Context, reference string) (bool, error) {
	args := m.Called(ctx, reference)
	return args.Bool(0), args.Error(1)
}

func (m *MockTransactionRepository) Save(ctx context.Context, txn *ledger.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// staticSnapshot is a SnapshotSource over fixed data
type staticSnapshot struct {
	snap       Snapshot
	refreshes  int
	refreshErr error
}

func (s *staticSnapshot) Snapshot() Snapshot { return s.snap }

func (s *staticSnapshot) Refresh(ctx context.Context) error {
	s.refreshes++
	if s.refreshErr != nil {
		return s.refreshErr
	}
	s.snap.LoadedAt = time.Now()
	return nil
}

func amt(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func manualTxn(typ ledger.TransactionType, account string, amount int64, date time.Time) *ledger.Transaction {
	return &ledger.Transaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              typ,
		Description:       "manual",
		Account:           account,
		AccountType:       ledger.AccountTypeCash,
		Amount:            decimal.NewFromInt(amount),
		Date:              date,
		Category:          ledger.CategoryOther,
	}
}
