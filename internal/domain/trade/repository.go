package trade

import "context"

// SaleRepository reads sales records
type SaleRepository interface {
	// FindAll returns every sales record
	FindAll(ctx context.Context) ([]Sale, error)
}

// PurchaseRepository reads purchase and expense records
type PurchaseRepository interface {
	// FindAll returns every purchase and expense record
	FindAll(ctx context.Context) ([]Purchase, error)
}
