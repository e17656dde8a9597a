package trade

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// StatusPaid is the only record status that contributes to the ledger
const StatusPaid = "Paid"

// WalkInCustomer is the placeholder name used for anonymous counter sales.
// It never becomes a customer master record.
const WalkInCustomer = "Walk-in Customer"

// Sale is a sales record owned by the sales module. The ledger reads it but
// never modifies it.
type Sale struct {
	ID       string
	Customer string
	Amount   decimal.NullDecimal
	Date     time.Time
	Status   string
	Method   PaymentMethod
}

// IsPaid returns true when the sale has been settled
func (s Sale) IsPaid() bool {
	return s.Status == StatusPaid
}

// AmountOrZero returns the sale amount, treating an absent amount as zero
func (s Sale) AmountOrZero() decimal.Decimal {
	if !s.Amount.Valid {
		return decimal.Zero
	}
	return s.Amount.Decimal
}

// HasNamedCustomer reports whether the sale names a real customer that
// should exist in the customer master data.
func (s Sale) HasNamedCustomer() bool {
	name := s.CustomerName()
	return name != "" && name != WalkInCustomer
}

// CustomerName returns the customer with surrounding whitespace removed
func (s Sale) CustomerName() string {
	return strings.TrimSpace(s.Customer)
}
