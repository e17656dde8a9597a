package partner

import (
	"strings"
	"time"

	"github.com/erp/cashbook/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultPaymentTerms is the number of days, as text, suppliers are paid within
const DefaultPaymentTerms = "30"

// Supplier is a supplier master record, keyed by name
type Supplier struct {
	shared.BaseAggregateRoot
	Name         string
	Phone        string
	Email        string
	PaymentTerms string
	Owed         decimal.Decimal
	Source       Source
}

// NewSupplier creates a supplier on default payment terms with nothing owed
func NewSupplier(name string) (*Supplier, error) {
	name = strings.TrimSpace(name)
	if err := validatePartnerName(name); err != nil {
		return nil, err
	}

	supplier := &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		PaymentTerms:      DefaultPaymentTerms,
		Owed:              decimal.Zero,
		Source:            SourceManual,
	}

	supplier.AddDomainEvent(NewSupplierCreatedEvent(supplier))

	return supplier, nil
}

// NewSyncedSupplier creates a supplier discovered on a purchase record
func NewSyncedSupplier(name string) (*Supplier, error) {
	supplier, err := NewSupplier(name)
	if err != nil {
		return nil, err
	}
	supplier.Source = SourceAutoSync
	return supplier, nil
}

// SetPaymentTerms updates the payment terms
func (s *Supplier) SetPaymentTerms(terms string) error {
	terms = strings.TrimSpace(terms)
	if terms == "" {
		return shared.NewDomainError("INVALID_PAYMENT_TERMS", "Payment terms cannot be empty")
	}

	s.PaymentTerms = terms
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}
