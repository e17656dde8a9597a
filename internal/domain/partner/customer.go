package partner

import (
	"strings"
	"time"

	"github.com/erp/cashbook/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultCreditLimit is granted to customers created without an explicit limit
var DefaultCreditLimit = decimal.NewFromInt(50000)

// Source records how a partner master record came to exist
type Source string

const (
	SourceManual   Source = "manual"
	SourceAutoSync Source = "auto_sync"
)

// IsValid checks if the source is a valid Source
func (s Source) IsValid() bool {
	return s == SourceManual || s == SourceAutoSync
}

// Customer is a customer master record, keyed by name
type Customer struct {
	shared.BaseAggregateRoot
	Name        string
	Phone       string
	Email       string
	CreditLimit decimal.Decimal
	Debt        decimal.Decimal
	Source      Source
}

// NewCustomer creates a customer with the default credit limit and no debt
func NewCustomer(name string) (*Customer, error) {
	name = strings.TrimSpace(name)
	if err := validatePartnerName(name); err != nil {
		return nil, err
	}

	customer := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		CreditLimit:       DefaultCreditLimit,
		Debt:              decimal.Zero,
		Source:            SourceManual,
	}

	customer.AddDomainEvent(NewCustomerCreatedEvent(customer))

	return customer, nil
}

// NewSyncedCustomer creates a customer discovered on a sales record
func NewSyncedCustomer(name string) (*Customer, error) {
	customer, err := NewCustomer(name)
	if err != nil {
		return nil, err
	}
	customer.Source = SourceAutoSync
	return customer, nil
}

// SetCreditLimit updates the customer's credit limit
func (c *Customer) SetCreditLimit(limit decimal.Decimal) error {
	if limit.IsNegative() {
		return shared.NewDomainError("INVALID_CREDIT_LIMIT", "Credit limit cannot be negative")
	}

	c.CreditLimit = limit
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetContact updates the phone and email
func (c *Customer) SetContact(phone, email string) {
	c.Phone = strings.TrimSpace(phone)
	c.Email = strings.TrimSpace(email)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// AvailableCredit returns how much more the customer may owe
func (c *Customer) AvailableCredit() decimal.Decimal {
	return c.CreditLimit.Sub(c.Debt)
}

func validatePartnerName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 200 characters")
	}
	return nil
}
