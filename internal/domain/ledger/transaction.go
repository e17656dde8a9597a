package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/cashbook/internal/domain/institution"
	"github.com/erp/cashbook/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Field limits
const (
	maxDescriptionLength = 500
	maxAccountLength     = 100
	maxReferenceLength   = 100
	maxCategoryLength    = 100
	overdueChequeAge     = 7 * 24 * time.Hour
)

// Transaction is a single cash movement against a ledger account.
// Amount is never negative; the direction is carried by Type.
type Transaction struct {
	shared.BaseAggregateRoot
	Type          TransactionType
	Description   string
	Account       string
	AccountType   AccountType
	InstitutionID string
	Amount        decimal.Decimal
	Date          time.Time
	Reference     string
	Category      string
	PaymentMethod PaymentMethod
	Status        ChequeStatus
	ChequeNumber  string
	Payee         string
	Bank          string
	BankName      string
	SyncedFrom    SyncSource
}

// Details holds the user-editable fields of a transaction
type Details struct {
	Type          TransactionType
	Description   string
	Account       string
	AccountType   AccountType
	InstitutionID string
	Amount        decimal.Decimal
	Date          time.Time
	Reference     string
	Category      string
	PaymentMethod PaymentMethod
	Status        ChequeStatus
	ChequeNumber  string
	Payee         string
	Bank          string
	BankName      string
}

// normalize trims text fields and fills derivable defaults
func (d *Details) normalize() {
	d.Description = strings.TrimSpace(d.Description)
	d.Account = strings.TrimSpace(d.Account)
	d.InstitutionID = strings.TrimSpace(d.InstitutionID)
	d.Reference = strings.TrimSpace(d.Reference)
	d.Category = strings.TrimSpace(d.Category)
	d.ChequeNumber = strings.TrimSpace(d.ChequeNumber)
	d.Payee = strings.TrimSpace(d.Payee)
	d.Bank = strings.TrimSpace(d.Bank)
	d.BankName = strings.TrimSpace(d.BankName)

	if !d.Date.IsZero() {
		d.Date = CalendarDate(d.Date)
	}
	if d.Category == "" {
		d.Category = CategoryOther
	}
	if d.AccountType == "" {
		switch {
		case d.InstitutionID != "":
			if inst, ok := institution.FindByID(d.InstitutionID); ok {
				d.AccountType = AccountTypeForInstitution(inst.Type)
			}
		case d.PaymentMethod != "":
			d.AccountType = BucketForMethod(d.PaymentMethod).AccountType()
		default:
			d.AccountType = AccountTypeCash
		}
	}
	if d.PaymentMethod == PaymentMethodCheque && d.Status == "" {
		d.Status = ChequeStatusPending
	}
}

// Validate checks the details of a manual entry. Manual entries must carry a
// strictly positive amount.
func (d Details) Validate() error {
	return d.validate(false)
}

// validate checks d. Synced transactions mirror a source record that may carry
// no amount, so allowZero relaxes the amount rule to non-negative.
func (d Details) validate(allowZero bool) error {
	if !d.Type.IsValid() {
		return shared.NewDomainError("INVALID_TYPE", "Type must be inflow or outflow")
	}
	if d.Description == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	if len(d.Description) > maxDescriptionLength {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}
	if d.Account == "" {
		return shared.NewDomainError("INVALID_ACCOUNT", "Account cannot be empty")
	}
	if len(d.Account) > maxAccountLength {
		return shared.NewDomainError("INVALID_ACCOUNT", "Account cannot exceed 100 characters")
	}
	if d.Amount.IsNegative() || (!allowZero && d.Amount.IsZero()) {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if d.Date.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Date is required")
	}
	return d.validateOptional()
}

func (d Details) validateOptional() error {
	if d.AccountType != "" && !d.AccountType.IsValid() {
		return shared.NewDomainError("INVALID_ACCOUNT_TYPE", "Account type must be one of cash, bank, mobile, digital")
	}
	if d.PaymentMethod != "" && !d.PaymentMethod.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method must be one of cash, mpesa, bank, cheque")
	}
	if d.Status != "" {
		if !d.Status.IsValid() {
			return shared.NewDomainError("INVALID_STATUS", "Status must be one of pending, cleared, bounced")
		}
		if d.PaymentMethod != PaymentMethodCheque {
			return shared.NewDomainError("INVALID_STATUS", "Status only applies to cheque payments")
		}
	}
	if d.InstitutionID != "" && !institution.Exists(d.InstitutionID) {
		return shared.NewDomainError("INVALID_INSTITUTION", fmt.Sprintf("Unknown institution %q", d.InstitutionID))
	}
	if len(d.Reference) > maxReferenceLength {
		return shared.NewDomainError("INVALID_REFERENCE", "Reference cannot exceed 100 characters")
	}
	if len(d.Category) > maxCategoryLength {
		return shared.NewDomainError("INVALID_CATEGORY", "Category cannot exceed 100 characters")
	}
	return nil
}

// NewTransaction creates a manually entered transaction
func NewTransaction(d Details) (*Transaction, error) {
	d.normalize()
	if err := d.Validate(); err != nil {
		return nil, err
	}

	txn := &Transaction{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	txn.apply(d)

	txn.AddDomainEvent(NewTransactionRecordedEvent(txn))

	return txn, nil
}

// Update replaces the editable fields with d, applying the same validation as
// manual entry except that synced transactions may keep a zero amount. The
// reference of a synced transaction is its dedup key and cannot change.
func (t *Transaction) Update(d Details) error {
	d.normalize()
	if err := d.validate(t.IsSynced()); err != nil {
		return err
	}
	if t.IsSynced() && d.Reference != t.Reference {
		return shared.NewDomainError("INVALID_STATE", "Reference of a synced transaction cannot change")
	}

	t.apply(d)
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTransactionUpdatedEvent(t))

	return nil
}

func (t *Transaction) apply(d Details) {
	t.Type = d.Type
	t.Description = d.Description
	t.Account = d.Account
	t.AccountType = d.AccountType
	t.InstitutionID = d.InstitutionID
	t.Amount = d.Amount
	t.Date = d.Date
	t.Reference = d.Reference
	t.Category = d.Category
	t.PaymentMethod = d.PaymentMethod
	t.Status = d.Status
	t.ChequeNumber = d.ChequeNumber
	t.Payee = d.Payee
	t.Bank = d.Bank
	t.BankName = d.BankName
}

// Details returns the editable fields of the transaction
func (t *Transaction) Details() Details {
	return Details{
		Type:          t.Type,
		Description:   t.Description,
		Account:       t.Account,
		AccountType:   t.AccountType,
		InstitutionID: t.InstitutionID,
		Amount:        t.Amount,
		Date:          t.Date,
		Reference:     t.Reference,
		Category:      t.Category,
		PaymentMethod: t.PaymentMethod,
		Status:        t.Status,
		ChequeNumber:  t.ChequeNumber,
		Payee:         t.Payee,
		Bank:          t.Bank,
		BankName:      t.BankName,
	}
}

// ClearCheque marks a pending cheque as cleared
func (t *Transaction) ClearCheque() error {
	return t.transitionCheque(ChequeStatusCleared)
}

// BounceCheque marks a pending cheque as bounced
func (t *Transaction) BounceCheque() error {
	return t.transitionCheque(ChequeStatusBounced)
}

func (t *Transaction) transitionCheque(to ChequeStatus) error {
	if !t.IsPendingCheque() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot mark transaction as %s: not a pending cheque", to))
	}

	from := t.Status
	t.Status = to
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewChequeStatusChangedEvent(t, from))

	return nil
}

// SignedAmount returns the amount with inflows positive and outflows negative
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionTypeOutflow {
		return t.Amount.Neg()
	}
	return t.Amount
}

// IsInflow returns true for money coming in
func (t *Transaction) IsInflow() bool {
	return t.Type == TransactionTypeInflow
}

// IsSynced returns true when the transaction was produced by reconciliation
func (t *Transaction) IsSynced() bool {
	return t.SyncedFrom != SyncSourceNone
}

// HasReference returns true when the transaction carries a dedup key
func (t *Transaction) HasReference() bool {
	return t.Reference != ""
}

// IsPendingCheque returns true for cheque payments that have not yet cleared or bounced
func (t *Transaction) IsPendingCheque() bool {
	return t.PaymentMethod == PaymentMethodCheque && t.Status == ChequeStatusPending
}

// IsOverdueCheque returns true for pending cheques dated strictly earlier than
// seven days before now.
func (t *Transaction) IsOverdueCheque(now time.Time) bool {
	return t.IsPendingCheque() && t.Date.Before(now.Add(-overdueChequeAge))
}

// IsOn returns true when the transaction is dated on the calendar day of day
func (t *Transaction) IsOn(day time.Time) bool {
	return CalendarDate(t.Date).Equal(CalendarDate(day))
}
