package partner

import (
	"github.com/erp/cashbook/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventTypeCustomerCreated = "CustomerCreated"
	EventTypeSupplierCreated = "SupplierCreated"
)

// CustomerCreatedEvent is raised when a new customer is created
type CustomerCreatedEvent struct {
	shared.BaseDomainEvent
	CustomerID  uuid.UUID       `json:"customer_id"`
	Name        string          `json:"name"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
	Source      Source          `json:"source"`
}

// NewCustomerCreatedEvent creates a new CustomerCreatedEvent
func NewCustomerCreatedEvent(c *Customer) *CustomerCreatedEvent {
	return &CustomerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerCreated, "Customer", c.ID),
		CustomerID:      c.ID,
		Name:            c.Name,
		CreditLimit:     c.CreditLimit,
		Source:          c.Source,
	}
}

// SupplierCreatedEvent is raised when a new supplier is created
type SupplierCreatedEvent struct {
	shared.BaseDomainEvent
	SupplierID   uuid.UUID `json:"supplier_id"`
	Name         string    `json:"name"`
	PaymentTerms string    `json:"payment_terms"`
}

// NewSupplierCreatedEvent creates a new SupplierCreatedEvent
func NewSupplierCreatedEvent(s *Supplier) *SupplierCreatedEvent {
	return &SupplierCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSupplierCreated, "Supplier", s.ID),
		SupplierID:      s.ID,
		Name:            s.Name,
		PaymentTerms:    s.PaymentTerms,
	}
}
