package ledger

import (
	"time"

	"github.com/erp/cashbook/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type names
const (
	EventTypeTransactionRecorded     = "TransactionRecorded"
	EventTypeTransactionUpdated      = "TransactionUpdated"
	EventTypeChequeStatusChanged     = "ChequeStatusChanged"
	EventTypeReconciliationCompleted = "ReconciliationCompleted"
	EventTypeReconciliationFailed    = "ReconciliationFailed"
)

const aggregateTypeTransaction = "Transaction"

// TransactionRecordedEvent is raised when a transaction enters the ledger
type TransactionRecordedEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID       `json:"transaction_id"`
	Type          TransactionType `json:"type"`
	Account       string          `json:"account"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	Reference     string          `json:"reference,omitempty"`
	SyncedFrom    SyncSource      `json:"synced_from,omitempty"`
}

// NewTransactionRecordedEvent creates a new TransactionRecordedEvent
func NewTransactionRecordedEvent(t *Transaction) *TransactionRecordedEvent {
	return &TransactionRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionRecorded, aggregateTypeTransaction, t.ID),
		TransactionID:   t.ID,
		Type:            t.Type,
		Account:         t.Account,
		Amount:          t.Amount,
		Date:            t.Date,
		Reference:       t.Reference,
		SyncedFrom:      t.SyncedFrom,
	}
}

// TransactionUpdatedEvent is raised when a transaction is edited
type TransactionUpdatedEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID       `json:"transaction_id"`
	Account       string          `json:"account"`
	Amount        decimal.Decimal `json:"amount"`
}

// NewTransactionUpdatedEvent creates a new TransactionUpdatedEvent
func NewTransactionUpdatedEvent(t *Transaction) *TransactionUpdatedEvent {
	return &TransactionUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionUpdated, aggregateTypeTransaction, t.ID),
		TransactionID:   t.ID,
		Account:         t.Account,
		Amount:          t.Amount,
	}
}

// ChequeStatusChangedEvent is raised when a pending cheque clears or bounces
type ChequeStatusChangedEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID    `json:"transaction_id"`
	ChequeNumber  string       `json:"cheque_number,omitempty"`
	From          ChequeStatus `json:"from"`
	To            ChequeStatus `json:"to"`
}

// NewChequeStatusChangedEvent creates a new ChequeStatusChangedEvent
func NewChequeStatusChangedEvent(t *Transaction, from ChequeStatus) *ChequeStatusChangedEvent {
	return &ChequeStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeChequeStatusChanged, aggregateTypeTransaction, t.ID),
		TransactionID:   t.ID,
		ChequeNumber:    t.ChequeNumber,
		From:            from,
		To:              t.Status,
	}
}
