package ledger

import (
	"context"
	"time"

	"github.com/erp/cashbook/internal/domain/ledger"
	"github.com/erp/cashbook/internal/domain/partner"
	"github.com/erp/cashbook/internal/domain/trade"
)

// Store is the persistence contract the reconciliation engine consumes.
// Create operations return the persisted record.
type Store interface {
	ListTransactions(ctx context.Context) ([]*ledger.Transaction, error)
	CreateTransaction(ctx context.Context, txn *ledger.Transaction) (*ledger.Transaction, error)
	ListSales(ctx context.Context) ([]trade.Sale, error)
	ListPurchases(ctx context.Context) ([]trade.Purchase, error)
	ListCustomers(ctx context.Context) ([]*partner.Customer, error)
	CreateCustomer(ctx context.Context, customer *partner.Customer) (*partner.Customer, error)
	ListSuppliers(ctx context.Context) ([]*partner.Supplier, error)
	CreateSupplier(ctx context.Context, supplier *partner.Supplier) (*partner.Supplier, error)
}

// Snapshot is the in-memory view of the ledger and its source records
type Snapshot struct {
	Transactions []*ledger.Transaction
	Sales        []trade.Sale
	Purchases    []trade.Purchase
	LoadedAt     time.Time
}

// IsLoaded reports whether the snapshot has been populated from the store
func (s Snapshot) IsLoaded() bool {
	return !s.LoadedAt.IsZero()
}

// SnapshotSource exposes the current snapshot and reloads it on demand
type SnapshotSource interface {
	Snapshot() Snapshot
	Refresh(ctx context.Context) error
}
