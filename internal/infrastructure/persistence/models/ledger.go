package models

import (
	"time"

	"github.com/erp/cashbook/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// TransactionModel is the persistence model for the ledger Transaction aggregate.
// Reference is NULL when unset so the unique index only covers dedup keys.
type TransactionModel struct {
	AggregateModel
	Type          ledger.TransactionType `gorm:"type:varchar(10);not null;index"`
	Description   string                 `gorm:"type:varchar(500);not null"`
	Account       string                 `gorm:"type:varchar(100);not null;index"`
	AccountType   ledger.AccountType     `gorm:"type:varchar(20);not null;default:'cash'"`
	InstitutionID string                 `gorm:"type:varchar(50)"`
	Amount        decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	Date          time.Time              `gorm:"type:date;not null;index"`
	Reference     *string                `gorm:"type:varchar(100);uniqueIndex:idx_ledger_transactions_reference"`
	Category      string                 `gorm:"type:varchar(100);not null;default:'Other'"`
	PaymentMethod string                 `gorm:"type:varchar(20)"`
	Status        string                 `gorm:"type:varchar(20);index"`
	ChequeNumber  string                 `gorm:"type:varchar(50)"`
	Payee         string                 `gorm:"type:varchar(200)"`
	Bank          string                 `gorm:"type:varchar(100)"`
	BankName      string                 `gorm:"type:varchar(200)"`
	SyncedFrom    string                 `gorm:"type:varchar(20);index"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "ledger_transactions"
}

// ToDomain converts the persistence model to a domain Transaction
func (m *TransactionModel) ToDomain() *ledger.Transaction {
	txn := &ledger.Transaction{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Type:              m.Type,
		Description:       m.Description,
		Account:           m.Account,
		AccountType:       m.AccountType,
		InstitutionID:     m.InstitutionID,
		Amount:            m.Amount,
		Date:              ledger.CalendarDate(m.Date),
		Category:          m.Category,
		PaymentMethod:     ledger.PaymentMethod(m.PaymentMethod),
		Status:            ledger.ChequeStatus(m.Status),
		ChequeNumber:      m.ChequeNumber,
		Payee:             m.Payee,
		Bank:              m.Bank,
		BankName:          m.BankName,
		SyncedFrom:        ledger.SyncSource(m.SyncedFrom),
	}
	if m.Reference != nil {
		txn.Reference = *m.Reference
	}
	return txn
}

// FromDomain populates the persistence model from a domain Transaction
func (m *TransactionModel) FromDomain(t *ledger.Transaction) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.Type = t.Type
	m.Description = t.Description
	m.Account = t.Account
	m.AccountType = t.AccountType
	m.InstitutionID = t.InstitutionID
	m.Amount = t.Amount
	m.Date = ledger.CalendarDate(t.Date)
	m.Reference = nil
	if t.Reference != "" {
		ref := t.Reference
		m.Reference = &ref
	}
	m.Category = t.Category
	m.PaymentMethod = string(t.PaymentMethod)
	m.Status = string(t.Status)
	m.ChequeNumber = t.ChequeNumber
	m.Payee = t.Payee
	m.Bank = t.Bank
	m.BankName = t.BankName
	m.SyncedFrom = string(t.SyncedFrom)
}

// TransactionModelFromDomain creates a new persistence model from a domain Transaction
func TransactionModelFromDomain(t *ledger.Transaction) *TransactionModel {
	m := &TransactionModel{}
	m.FromDomain(t)
	return m
}

// ReconciliationRunModel is the persistence model for a reconciliation audit record
type ReconciliationRunModel struct {
	BaseModel
	Trigger          ledger.RunTrigger `gorm:"type:varchar(20);not null"`
	Status           ledger.RunStatus  `gorm:"type:varchar(20);not null;index"`
	StartedAt        time.Time         `gorm:"not null;index"`
	FinishedAt       *time.Time
	CustomersCreated int      `gorm:"not null;default:0"`
	SuppliersCreated int      `gorm:"not null;default:0"`
	SalesSynced      int      `gorm:"not null;default:0"`
	PurchasesSynced  int      `gorm:"not null;default:0"`
	ExpensesSynced   int      `gorm:"not null;default:0"`
	Failed           []string `gorm:"type:text;serializer:json"`
	Error            string   `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ReconciliationRunModel) TableName() string {
	return "reconciliation_runs"
}

// ToDomain converts the persistence model to a domain ReconciliationRun
func (m *ReconciliationRunModel) ToDomain() *ledger.ReconciliationRun {
	return &ledger.ReconciliationRun{
		BaseEntity: m.BaseModel.ToDomain(),
		Trigger:    m.Trigger,
		Status:     m.Status,
		StartedAt:  m.StartedAt,
		FinishedAt: m.FinishedAt,
		Summary: ledger.Summary{
			CustomersCreated: m.CustomersCreated,
			SuppliersCreated: m.SuppliersCreated,
			SalesSynced:      m.SalesSynced,
			PurchasesSynced:  m.PurchasesSynced,
			ExpensesSynced:   m.ExpensesSynced,
			Failed:           m.Failed,
		},
		Error: m.Error,
	}
}

// ReconciliationRunModelFromDomain creates a new persistence model from a domain ReconciliationRun
func ReconciliationRunModelFromDomain(r *ledger.ReconciliationRun) *ReconciliationRunModel {
	m := &ReconciliationRunModel{
		Trigger:          r.Trigger,
		Status:           r.Status,
		StartedAt:        r.StartedAt,
		FinishedAt:       r.FinishedAt,
		CustomersCreated: r.Summary.CustomersCreated,
		SuppliersCreated: r.Summary.SuppliersCreated,
		SalesSynced:      r.Summary.SalesSynced,
		PurchasesSynced:  r.Summary.PurchasesSynced,
		ExpensesSynced:   r.Summary.ExpensesSynced,
		Failed:           r.Summary.Failed,
		Error:            r.Error,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}
