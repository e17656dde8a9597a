package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/cashbook/internal/domain/partner"
	"github.com/erp/cashbook/internal/domain/shared"
	"github.com/erp/cashbook/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSupplierRepository implements SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindAll returns every supplier ordered by name
func (r *GormSupplierRepository) FindAll(ctx context.Context) ([]*partner.Supplier, error) {
	var supplierModels []models.SupplierModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&supplierModels).Error; err != nil {
		return nil, err
	}

	suppliers := make([]*partner.Supplier, len(supplierModels))
	for i := range supplierModels {
		suppliers[i] = supplierModels[i].ToDomain()
	}
	return suppliers, nil
}

// FindByID finds a supplier by its ID
func (r *GormSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	var model models.SupplierModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByName checks, ignoring case, whether a supplier with the name exists
func (r *GormSupplierRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SupplierModel{}).
		Where("LOWER(name) = ?", strings.ToLower(name)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a new supplier
func (r *GormSupplierRepository) Create(ctx context.Context, supplier *partner.Supplier) error {
	model := models.SupplierModelFromDomain(supplier)
	return translateWriteError(r.db.WithContext(ctx).Create(model).Error)
}

// Save creates or updates a supplier
func (r *GormSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	model := models.SupplierModelFromDomain(supplier)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormSupplierRepository implements SupplierRepository
var _ partner.SupplierRepository = (*GormSupplierRepository)(nil)
