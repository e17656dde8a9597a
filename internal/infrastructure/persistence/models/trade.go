package models

import (
	"time"

	"github.com/erp/cashbook/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// SaleModel maps a row of the sales module's records. The ledger only reads it.
type SaleModel struct {
	ID        string              `gorm:"type:varchar(64);primaryKey"`
	Customer  string              `gorm:"type:varchar(200)"`
	Amount    decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	Date      time.Time           `gorm:"type:date"`
	Status    string              `gorm:"type:varchar(20);index"`
	Method    string              `gorm:"type:varchar(20)"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// ToDomain converts the persistence model to a trade Sale
func (m *SaleModel) ToDomain() trade.Sale {
	return trade.Sale{
		ID:       m.ID,
		Customer: m.Customer,
		Amount:   m.Amount,
		Date:     m.Date,
		Status:   m.Status,
		Method:   trade.ParsePaymentMethod(m.Method),
	}
}

// SaleModelFromDomain creates a persistence model from a trade Sale
func SaleModelFromDomain(s trade.Sale) *SaleModel {
	return &SaleModel{
		ID:       s.ID,
		Customer: s.Customer,
		Amount:   s.Amount,
		Date:     s.Date,
		Status:   s.Status,
		Method:   string(s.Method),
	}
}

// PurchaseModel maps a row of the purchasing module's purchase and expense records
type PurchaseModel struct {
	ID            string              `gorm:"type:varchar(64);primaryKey"`
	Supplier      string              `gorm:"type:varchar(200)"`
	Payee         string              `gorm:"type:varchar(200)"`
	Amount        decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	Date          time.Time           `gorm:"type:date"`
	Status        string              `gorm:"type:varchar(20);index"`
	PaymentMethod string              `gorm:"type:varchar(20)"`
	Category      string              `gorm:"type:varchar(100)"`
	Type          string              `gorm:"type:varchar(20)"`
	CreatedAt     time.Time
}

// TableName returns the table name for GORM
func (PurchaseModel) TableName() string {
	return "purchases"
}

// ToDomain converts the persistence model to a trade Purchase
func (m *PurchaseModel) ToDomain() trade.Purchase {
	return trade.Purchase{
		ID:            m.ID,
		Supplier:      m.Supplier,
		Payee:         m.Payee,
		Amount:        m.Amount,
		Date:          m.Date,
		Status:        m.Status,
		PaymentMethod: trade.ParsePaymentMethod(m.PaymentMethod),
		Category:      m.Category,
		Type:          m.Type,
	}
}

// PurchaseModelFromDomain creates a persistence model from a trade Purchase
func PurchaseModelFromDomain(p trade.Purchase) *PurchaseModel {
	return &PurchaseModel{
		ID:            p.ID,
		Supplier:      p.Supplier,
		Payee:         p.Payee,
		Amount:        p.Amount,
		Date:          p.Date,
		Status:        p.Status,
		PaymentMethod: string(p.PaymentMethod),
		Category:      p.Category,
		Type:          p.Type,
	}
}
