package trade

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseTypeExpense explicitly tags a purchase record as an operating expense
const PurchaseTypeExpense = "expense"

// Operating expense categories. A purchase in one of these categories is an
// expense even without the explicit type tag.
var operatingExpenseCategories = map[string]struct{}{
	"Rent":           {},
	"Utilities":      {},
	"Salaries":       {},
	"Wages":          {},
	"Transport":      {},
	"Marketing":      {},
	"Maintenance":    {},
	"Insurance":      {},
	"Other Expenses": {},
}

// IsOperatingExpenseCategory reports whether category is one of the fixed
// operating expense categories. Matching is exact.
func IsOperatingExpenseCategory(category string) bool {
	_, ok := operatingExpenseCategories[category]
	return ok
}

// Purchase is a purchase or expense record owned by the purchasing module
type Purchase struct {
	ID            string
	Supplier      string
	Payee         string
	Amount        decimal.NullDecimal
	Date          time.Time
	Status        string
	PaymentMethod PaymentMethod
	Category      string
	Type          string
}

// IsPaid returns true when the purchase has been settled
func (p Purchase) IsPaid() bool {
	return p.Status == StatusPaid
}

// AmountOrZero returns the purchase amount, treating an absent amount as zero
func (p Purchase) AmountOrZero() decimal.Decimal {
	if !p.Amount.Valid {
		return decimal.Zero
	}
	return p.Amount.Decimal
}

// PartyName returns the trimmed supplier, falling back to the payee
func (p Purchase) PartyName() string {
	if name := strings.TrimSpace(p.Supplier); name != "" {
		return name
	}
	return strings.TrimSpace(p.Payee)
}

// IsExpense distinguishes operating expenses from inventory purchases
func (p Purchase) IsExpense() bool {
	return p.Type == PurchaseTypeExpense || IsOperatingExpenseCategory(p.Category)
}
