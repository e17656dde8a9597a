package persistence

import (
	"context"

	appledger "github.com/erp/cashbook/internal/application/ledger"
	"github.com/erp/cashbook/internal/domain/ledger"
	"github.com/erp/cashbook/internal/domain/partner"
	"github.com/erp/cashbook/internal/domain/trade"
	"gorm.io/gorm"
)

// LedgerStore is the reconciler's view of the database: the ledger it writes,
// the sales and purchases it reads, and the partner master data it extends.
type LedgerStore struct {
	transactions *GormTransactionRepository
	sales        *GormSaleRepository
	purchases    *GormPurchaseRepository
	customers    *GormCustomerRepository
	suppliers    *GormSupplierRepository
}

// NewLedgerStore creates a LedgerStore over db
func NewLedgerStore(db *gorm.DB) *LedgerStore {
	return &LedgerStore{
		transactions: NewGormTransactionRepository(db),
		sales:        NewGormSaleRepository(db),
		purchases:    NewGormPurchaseRepository(db),
		customers:    NewGormCustomerRepository(db),
		suppliers:    NewGormSupplierRepository(db),
	}
}

// ListTransactions returns every ledger transaction
func (s *LedgerStore) ListTransactions(ctx context.Context) ([]*ledger.Transaction, error) {
	return s.transactions.FindAll(ctx)
}

// CreateTransaction inserts txn, failing on a duplicate reference
func (s *LedgerStore) CreateTransaction(ctx context.Context, txn *ledger.Transaction) (*ledger.Transaction, error) {
	if err := s.transactions.Create(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// ListSales returns every sales record
func (s *LedgerStore) ListSales(ctx context.Context) ([]trade.Sale, error) {
	return s.sales.FindAll(ctx)
}

// ListPurchases returns every purchase and expense record
func (s *LedgerStore) ListPurchases(ctx context.Context) ([]trade.Purchase, error) {
	return s.purchases.FindAll(ctx)
}

// ListCustomers returns every customer
func (s *LedgerStore) ListCustomers(ctx context.Context) ([]*partner.Customer, error) {
	return s.customers.FindAll(ctx)
}

// CreateCustomer inserts a customer
func (s *LedgerStore) CreateCustomer(ctx context.Context, c *partner.Customer) (*partner.Customer, error) {
	if err := s.customers.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListSuppliers returns every supplier
func (s *LedgerStore) ListSuppliers(ctx context.Context) ([]*partner.Supplier, error) {
	return s.suppliers.FindAll(ctx)
}

// CreateSupplier inserts a supplier
func (s *LedgerStore) CreateSupplier(ctx context.Context, sp *partner.Supplier) (*partner.Supplier, error) {
	if err := s.suppliers.Create(ctx, sp); err != nil {
		return nil, err
	}
	return sp, nil
}

var _ appledger.Store = (*LedgerStore)(nil)
