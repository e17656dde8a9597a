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

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindAll returns every customer ordered by name
func (r *GormCustomerRepository) FindAll(ctx context.Context) ([]*partner.Customer, error) {
	var customerModels []models.CustomerModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&customerModels).Error; err != nil {
		return nil, err
	}

	customers := make([]*partner.Customer, len(customerModels))
	for i := range customerModels {
		customers[i] = customerModels[i].ToDomain()
	}
	return customers, nil
}

// FindByID finds a customer by its ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByName checks, ignoring case, whether a customer with the name exists
func (r *GormCustomerRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CustomerModel{}).
		Where("LOWER(name) = ?", strings.ToLower(name)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a new customer
func (r *GormCustomerRepository) Create(ctx context.Context, customer *partner.Customer) error {
	model := models.CustomerModelFromDomain(customer)
	return translateWriteError(r.db.WithContext(ctx).Create(model).Error)
}

// Save creates or updates a customer
func (r *GormCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	model := models.CustomerModelFromDomain(customer)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormCustomerRepository implements CustomerRepository
var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)
