package handler

import (
	"context"
	"io"

	appledger "github.com/erp/cashbook/internal/application/ledger"
	"github.com/erp/cashbook/internal/domain/ledger"
	"github.com/erp/cashbook/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) Create(ctx context.Context, req appledger.TransactionRequest) (*appledger.TransactionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appledger.TransactionResponse), args.Error(1)
}

func (m *MockTransactionService) GetByID(ctx context.Context, id uuid.UUID) (*appledger.TransactionResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appledger.TransactionResponse), args.Error(1)
}

func (m *MockTransactionService) List(ctx context.Context, f appledger.TransactionListFilter) (shared.Paginated[appledger.TransactionResponse], error) {
	args := m.Called(ctx, f)
	return args.Get(0).(shared.Paginated[appledger.TransactionResponse]), args.Error(1)
}

func (m *MockTransactionService) Update(ctx context.Context, id uuid.UUID, req appledger.TransactionRequest) (*appledger.TransactionResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appledger.TransactionResponse), args.Error(1)
}

func (m *MockTransactionService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTransactionService) ClearCheque(ctx context.Context, id uuid.UUID) (*appledger.TransactionResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appledger.TransactionResponse), args.Error(1)
}

func (m *MockTransactionService) BounceCheque(ctx context.Context, id uuid.UUID) (*appledger.TransactionResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appledger.TransactionResponse), args.Error(1)
}

type MockExporter struct {
	mock.Mock
}

func (m *MockExporter) Export(ctx context.Context, f appledger.TransactionListFilter, w io.Writer) (int, error) {
	args := m.Called(ctx, f, w)
	if body := args.String(2); body != "" {
		_, _ = io.WriteString(w, body)
	}
	return args.Int(0), args.Error(1)
}

func (m *MockExporter) Archive(ctx context.Context, f appledger.TransactionListFilter) (*appledger.ArchivedExport, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appledger.ArchivedExport), args.Error(1)
}

func (m *MockExporter) Filename() string {
	return "transactions-20250301-120000.csv"
}

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) Accounts(ctx context.Context) (*appledger.AccountsResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appledger.AccountsResponse), args.Error(1)
}

func (m *MockAccountService) AccountBalance(ctx context.Context, name string) (*appledger.AccountBalance, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appledger.AccountBalance), args.Error(1)
}

func (m *MockAccountService) Alerts(ctx context.Context) ([]appledger.Alert, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appledger.Alert), args.Error(1)
}

type MockTrigger struct {
	mock.Mock
}

func (m *MockTrigger) TriggerManual(ctx context.Context) (*ledger.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Summary), args.Error(1)
}

type MockRunRepository struct {
	mock.Mock
}

func (m *MockRunRepository) Save(ctx context.Context, run *ledger.ReconciliationRun) error {
	return m.Called(ctx, run).Error(0)
}

func (m *MockRunRepository) FindRecent(ctx context.Context, limit int) ([]*ledger.ReconciliationRun, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.ReconciliationRun), args.Error(1)
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping() error {
	return p.err
}
