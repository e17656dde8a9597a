package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/erp/cashbook/internal/domain/ledger"
	"github.com/erp/cashbook/internal/domain/shared"
	"github.com/erp/cashbook/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// staleAfter is how old a snapshot may be before the dashboard reloads it
const staleAfter = time.Minute

// TransactionService handles manual ledger entries, cheque lifecycle and the
// accounts dashboard
type TransactionService struct {
	repo     ledger.TransactionRepository
	state    SnapshotSource
	balances *BalanceCalculator
	alerts   *AlertEvaluator
	currency string
	events   shared.EventPublisher
	logger   *zap.Logger
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(
	repo ledger.TransactionRepository,
	state SnapshotSource,
	balances *BalanceCalculator,
	alerts *AlertEvaluator,
	currency string,
	logger *zap.Logger,
) *TransactionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransactionService{
		repo:     repo,
		state:    state,
		balances: balances,
		alerts:   alerts,
		currency: currency,
		logger:   logger,
	}
}

// WithEventPublisher sets the publisher for transaction events
func (s *TransactionService) WithEventPublisher(p shared.EventPublisher) *TransactionService {
	s.events = p
	return s
}

// Create validates and records a manual entry
func (s *TransactionService) Create(ctx context.Context, req TransactionRequest) (*TransactionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "transaction", "create")
	defer span.End()

	resp, err := s.create(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTransactionID, resp.ID,
		telemetry.SpanAttrAccount, resp.Account,
	)
	return resp, nil
}

func (s *TransactionService) create(ctx context.Context, req TransactionRequest) (*TransactionResponse, error) {
	d, err := req.toDetails()
	if err != nil {
		return nil, err
	}
	if err := checkManualReference(d.Reference); err != nil {
		return nil, err
	}

	txn, err := ledger.NewTransaction(d)
	if err != nil {
		return nil, err
	}

	if txn.HasReference() {
		exists, err := s.repo.ExistsByReference(ctx, txn.Reference)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "A transaction with this reference already exists")
		}
	}

	if err := s.save(ctx, txn); err != nil {
		return nil, err
	}

	s.logger.Info("transaction recorded",
		zap.String("transaction_id", txn.ID.String()),
		zap.String("type", string(txn.Type)),
		zap.String("account", txn.Account),
		zap.String("amount", txn.Amount.String()),
	)

	resp := ToTransactionResponse(txn)
	return &resp, nil
}

// GetByID returns a single transaction
func (s *TransactionService) GetByID(ctx context.Context, id uuid.UUID) (*TransactionResponse, error) {
	txn, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToTransactionResponse(txn)
	return &resp, nil
}

// List returns a page of transactions
func (s *TransactionService) List(ctx context.Context, f TransactionListFilter) (shared.Paginated[TransactionResponse], error) {
	filter, err := f.ToDomain()
	if err != nil {
		return shared.Paginated[TransactionResponse]{}, err
	}

	txns, err := s.repo.FindWithFilter(ctx, filter)
	if err != nil {
		return shared.Paginated[TransactionResponse]{}, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[TransactionResponse]{}, err
	}

	return shared.NewPaginated(ToTransactionResponses(txns), total, filter.Page, filter.PageSize), nil
}

// Update replaces the editable fields of a transaction
func (s *TransactionService) Update(ctx context.Context, id uuid.UUID, req TransactionRequest) (*TransactionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "transaction", "update",
		telemetry.WithAttribute(telemetry.SpanAttrTransactionID, id),
	)
	defer span.End()

	txn, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	d, err := req.toDetails()
	if err != nil {
		return nil, err
	}
	if !txn.IsSynced() && d.Reference != txn.Reference {
		if err := checkManualReference(d.Reference); err != nil {
			return nil, err
		}
		if d.Reference != "" {
			exists, err := s.repo.ExistsByReference(ctx, strings.TrimSpace(d.Reference))
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, shared.NewDomainError("ALREADY_EXISTS", "A transaction with this reference already exists")
			}
		}
	}

	if err := txn.Update(d); err != nil {
		return nil, err
	}
	if err := s.save(ctx, txn); err != nil {
		return nil, err
	}

	resp := ToTransactionResponse(txn)
	return &resp, nil
}

// Delete removes a transaction. A deleted synced transaction is recreated by
// the next reconciliation while its source record stays paid.
func (s *TransactionService) Delete(ctx context.Context, id uuid.UUID) error {
	txn, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, txn.ID); err != nil {
		return err
	}

	s.logger.Info("transaction deleted",
		zap.String("transaction_id", txn.ID.String()),
		zap.String("reference", txn.Reference),
	)
	s.refresh(ctx)
	return nil
}

// ClearCheque marks a pending cheque as cleared
func (s *TransactionService) ClearCheque(ctx context.Context, id uuid.UUID) (*TransactionResponse, error) {
	return s.transitionCheque(ctx, id, (*ledger.Transaction).ClearCheque)
}

// BounceCheque marks a pending cheque as bounced
func (s *TransactionService) BounceCheque(ctx context.Context, id uuid.UUID) (*TransactionResponse, error) {
	return s.transitionCheque(ctx, id, (*ledger.Transaction).BounceCheque)
}

func (s *TransactionService) transitionCheque(
	ctx context.Context,
	id uuid.UUID,
	transition func(*ledger.Transaction) error,
) (*TransactionResponse, error) {
	txn, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := transition(txn); err != nil {
		return nil, err
	}
	if err := s.save(ctx, txn); err != nil {
		return nil, err
	}
	resp := ToTransactionResponse(txn)
	return &resp, nil
}

// Accounts returns the balance of every known account
func (s *TransactionService) Accounts(ctx context.Context) (*AccountsResponse, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	balances := s.balances.Balances(snap.Transactions, snap.Sales, snap.Purchases)
	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(b.Balance)
	}
	return &AccountsResponse{
		Accounts: balances,
		Total:    total,
		Currency: s.currency,
		AsOf:     snap.LoadedAt,
	}, nil
}

// AccountBalance returns the balance of a single account. Unknown accounts
// report their ledger-only balance, which is zero when nothing was booked.
func (s *TransactionService) AccountBalance(ctx context.Context, accountName string) (*AccountBalance, error) {
	accountName = strings.TrimSpace(accountName)
	if accountName == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account cannot be empty")
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	balances := s.balances.Balances(snap.Transactions, snap.Sales, snap.Purchases)
	if b, ok := FindBalance(balances, accountName); ok {
		return &b, nil
	}
	return &AccountBalance{
		Account: accountName,
		Balance: s.balances.ComputeBalance(accountName, snap.Transactions, snap.Sales, snap.Purchases),
	}, nil
}

// Alerts evaluates the alert rules over the current snapshot
func (s *TransactionService) Alerts(ctx context.Context) ([]Alert, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	balances := s.balances.Balances(snap.Transactions, snap.Sales, snap.Purchases)
	return s.alerts.Evaluate(snap.Transactions, snap.Sales, snap.Purchases, balances), nil
}

func (s *TransactionService) save(ctx context.Context, txn *ledger.Transaction) error {
	events := txn.GetDomainEvents()
	if err := s.repo.Save(ctx, txn); err != nil {
		return err
	}
	txn.ClearDomainEvents()

	if s.events != nil && len(events) > 0 {
		if err := s.events.Publish(ctx, events...); err != nil {
			s.logger.Warn("failed to publish transaction events", zap.Error(err))
		}
	}
	s.refresh(ctx)
	return nil
}

func (s *TransactionService) refresh(ctx context.Context) {
	if s.state == nil {
		return
	}
	if err := s.state.Refresh(ctx); err != nil {
		s.logger.Warn("failed to refresh ledger snapshot", zap.Error(err))
	}
}

func (s *TransactionService) snapshot(ctx context.Context) (Snapshot, error) {
	snap := s.state.Snapshot()
	if snap.IsLoaded() && time.Since(snap.LoadedAt) < staleAfter {
		return snap, nil
	}
	if err := s.state.Refresh(ctx); err != nil {
		if snap.IsLoaded() {
			s.logger.Warn("serving stale ledger snapshot", zap.Error(err))
			return snap, nil
		}
		return Snapshot{}, err
	}
	return s.state.Snapshot(), nil
}

// checkManualReference keeps manual entries out of the synced reference space,
// which the reconciler uses as its dedup index.
func checkManualReference(ref string) error {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, ledger.SaleReferencePrefix) || strings.HasPrefix(ref, ledger.PurchaseReferencePrefix) {
		return shared.NewDomainError("INVALID_REFERENCE", "References starting with SALE- or PURCHASE- are reserved for synced records")
	}
	return nil
}
