package partner

import (
	"context"

	"github.com/google/uuid"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindAll returns every customer ordered by name
	FindAll(ctx context.Context) ([]*Customer, error)

	// FindByID finds a customer by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// ExistsByName checks, ignoring case, whether a customer with the name exists
	ExistsByName(ctx context.Context, name string) (bool, error)

	// Save creates or updates a customer
	Save(ctx context.Context, customer *Customer) error
}

// SupplierRepository defines the interface for supplier persistence
type SupplierRepository interface {
	// FindAll returns every supplier ordered by name
	FindAll(ctx context.Context) ([]*Supplier, error)

	// FindByID finds a supplier by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)

	// ExistsByName checks, ignoring case, whether a supplier with the name exists
	ExistsByName(ctx context.Context, name string) (bool, error)

	// Save creates or updates a supplier
	Save(ctx context.Context, supplier *Supplier) error
}
