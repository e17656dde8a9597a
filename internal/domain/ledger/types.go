// Package ledger contains the cash and bank ledger: transactions, account
// buckets and the records produced by reconciliation against sales and
// purchases.
package ledger

import (
	"time"

	"github.com/erp/cashbook/internal/domain/institution"
	"github.com/erp/cashbook/internal/domain/trade"
)

// DateLayout is the wire format of ledger calendar dates
const DateLayout = "2006-01-02"

// TransactionType carries the direction of a cash movement
type TransactionType string

const (
	TransactionTypeInflow  TransactionType = "inflow"
	TransactionTypeOutflow TransactionType = "outflow"
)

// IsValid checks if the type is a valid TransactionType
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeInflow || t == TransactionTypeOutflow
}

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// AccountType classifies the account a transaction is booked against
type AccountType string

const (
	AccountTypeCash    AccountType = "cash"
	AccountTypeBank    AccountType = "bank"
	AccountTypeMobile  AccountType = "mobile"
	AccountTypeDigital AccountType = "digital"
)

// IsValid checks if the type is a valid AccountType
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeCash, AccountTypeBank, AccountTypeMobile, AccountTypeDigital:
		return true
	}
	return false
}

// String returns the string representation of AccountType
func (t AccountType) String() string {
	return string(t)
}

// AccountTypeForInstitution maps an institution kind to the account type used
// for accounts held with it.
func AccountTypeForInstitution(t institution.Type) AccountType {
	switch t {
	case institution.TypeMobileMoney:
		return AccountTypeMobile
	case institution.TypeDigitalWallet:
		return AccountTypeDigital
	default:
		return AccountTypeBank
	}
}

// ChequeStatus is the lifecycle state of a cheque payment
type ChequeStatus string

const (
	ChequeStatusPending ChequeStatus = "pending"
	ChequeStatusCleared ChequeStatus = "cleared"
	ChequeStatusBounced ChequeStatus = "bounced"
)

// IsValid checks if the status is a valid ChequeStatus
func (s ChequeStatus) IsValid() bool {
	switch s {
	case ChequeStatusPending, ChequeStatusCleared, ChequeStatusBounced:
		return true
	}
	return false
}

// String returns the string representation of ChequeStatus
func (s ChequeStatus) String() string {
	return string(s)
}

// SyncSource tags transactions produced by reconciliation with the kind of
// record they were derived from. Manual entries have no source.
type SyncSource string

const (
	SyncSourceNone      SyncSource = ""
	SyncSourceSales     SyncSource = "sales"
	SyncSourcePurchases SyncSource = "purchases"
	SyncSourceExpenses  SyncSource = "expenses"
)

// IsValid checks if the source is a valid SyncSource, including none
func (s SyncSource) IsValid() bool {
	switch s {
	case SyncSourceNone, SyncSourceSales, SyncSourcePurchases, SyncSourceExpenses:
		return true
	}
	return false
}

// Categories assigned by reconciliation
const (
	CategorySales     = "Sales"
	CategoryPurchases = "Purchases"
	CategoryExpenses  = "Expenses"
	CategoryOther     = "Other"
)

// PaymentMethod is re-exported so callers of this package do not need to
// import trade for the common case.
type PaymentMethod = trade.PaymentMethod

const (
	PaymentMethodCash   = trade.PaymentMethodCash
	PaymentMethodMPesa  = trade.PaymentMethodMPesa
	PaymentMethodBank   = trade.PaymentMethodBank
	PaymentMethodCheque = trade.PaymentMethodCheque
)

// CalendarDate truncates t to its UTC calendar day. Ledger dates and "today"
// are both reckoned in UTC.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
