package ledger

import (
	"context"
	"time"

	"github.com/erp/cashbook/internal/domain/shared"
	"github.com/google/uuid"
)

// TransactionFilter defines filtering options for transaction queries
type TransactionFilter struct {
	shared.Filter
	Type          *TransactionType
	Account       string
	AccountType   *AccountType
	Category      string
	SyncedFrom    *SyncSource
	PaymentMethod *PaymentMethod
	Status        *ChequeStatus
	FromDate      *time.Time
	ToDate        *time.Time
}

// DefaultTransactionFilter returns a filter for the first page, newest first
func DefaultTransactionFilter() TransactionFilter {
	return TransactionFilter{Filter: shared.DefaultFilter()}
}

// TransactionRepository defines the interface for transaction persistence
type TransactionRepository interface {
	// FindByID finds a transaction by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// FindByReference finds the transaction carrying a dedup key
	FindByReference(ctx context.Context, reference string) (*Transaction, error)

	// FindAll returns every transaction, newest first
	FindAll(ctx context.Context) ([]*Transaction, error)

	// FindWithFilter returns one page of transactions matching the filter
	FindWithFilter(ctx context.Context, filter TransactionFilter) ([]*Transaction, error)

	// Count counts transactions matching the filter
	Count(ctx context.Context, filter TransactionFilter) (int64, error)

	// ExistsByReference checks whether a transaction already carries the reference
	ExistsByReference(ctx context.Context, reference string) (bool, error)

	// Save creates or updates a transaction. Creating a second transaction with
	// an existing reference fails with shared.ErrAlreadyExists.
	Save(ctx context.Context, txn *Transaction) error

	// Delete removes a transaction
	Delete(ctx context.Context, id uuid.UUID) error
}

// ReconciliationRunRepository persists reconciliation audit records
type ReconciliationRunRepository interface {
	// Save creates or updates a run
	Save(ctx context.Context, run *ReconciliationRun) error

	// FindRecent returns the most recent runs, newest first
	FindRecent(ctx context.Context, limit int) ([]*ReconciliationRun, error)
}
