package models

import (
	"github.com/erp/cashbook/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// CustomerModel is the persistence model for the Customer domain entity.
type CustomerModel struct {
	AggregateModel
	Name        string          `gorm:"type:varchar(200);not null;index"`
	Phone       string          `gorm:"type:varchar(50)"`
	Email       string          `gorm:"type:varchar(200)"`
	CreditLimit decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Debt        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Source      partner.Source  `gorm:"type:varchar(20);not null;default:'manual'"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Phone:             m.Phone,
		Email:             m.Email,
		CreditLimit:       m.CreditLimit,
		Debt:              m.Debt,
		Source:            m.Source,
	}
}

// FromDomain populates the persistence model from a domain Customer entity.
func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.Phone = c.Phone
	m.Email = c.Email
	m.CreditLimit = c.CreditLimit
	m.Debt = c.Debt
	m.Source = c.Source
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer entity.
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}

// SupplierModel is the persistence model for the Supplier domain entity.
type SupplierModel struct {
	AggregateModel
	Name         string          `gorm:"type:varchar(200);not null;index"`
	Phone        string          `gorm:"type:varchar(50)"`
	Email        string          `gorm:"type:varchar(200)"`
	PaymentTerms string          `gorm:"type:varchar(50);not null;default:'30'"`
	Owed         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Source       partner.Source  `gorm:"type:varchar(20);not null;default:'manual'"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence model to a domain Supplier entity.
func (m *SupplierModel) ToDomain() *partner.Supplier {
	return &partner.Supplier{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Phone:             m.Phone,
		Email:             m.Email,
		PaymentTerms:      m.PaymentTerms,
		Owed:              m.Owed,
		Source:            m.Source,
	}
}

// FromDomain populates the persistence model from a domain Supplier entity.
func (m *SupplierModel) FromDomain(s *partner.Supplier) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.Name = s.Name
	m.Phone = s.Phone
	m.Email = s.Email
	m.PaymentTerms = s.PaymentTerms
	m.Owed = s.Owed
	m.Source = s.Source
}

// SupplierModelFromDomain creates a new persistence model from a domain Supplier entity.
func SupplierModelFromDomain(s *partner.Supplier) *SupplierModel {
	m := &SupplierModel{}
	m.FromDomain(s)
	return m
}
