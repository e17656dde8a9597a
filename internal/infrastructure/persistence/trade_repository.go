package persistence

import (
	"context"

	"github.com/erp/cashbook/internal/domain/trade"
	"github.com/erp/cashbook/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSaleRepository reads the sales module's records
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindAll returns every sales record in creation order
func (r *GormSaleRepository) FindAll(ctx context.Context) ([]trade.Sale, error) {
	var saleModels []models.SaleModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&saleModels).Error; err != nil {
		return nil, err
	}

	sales := make([]trade.Sale, len(saleModels))
	for i := range saleModels {
		sales[i] = saleModels[i].ToDomain()
	}
	return sales, nil
}

// GormPurchaseRepository reads the purchasing module's records
type GormPurchaseRepository struct {
	db *gorm.DB
}

// NewGormPurchaseRepository creates a new GormPurchaseRepository
func NewGormPurchaseRepository(db *gorm.DB) *GormPurchaseRepository {
	return &GormPurchaseRepository{db: db}
}

// FindAll returns every purchase and expense record in creation order
func (r *GormPurchaseRepository) FindAll(ctx context.Context) ([]trade.Purchase, error) {
	var purchaseModels []models.PurchaseModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&purchaseModels).Error; err != nil {
		return nil, err
	}

	purchases := make([]trade.Purchase, len(purchaseModels))
	for i := range purchaseModels {
		purchases[i] = purchaseModels[i].ToDomain()
	}
	return purchases, nil
}

var (
	_ trade.SaleRepository     = (*GormSaleRepository)(nil)
	_ trade.PurchaseRepository = (*GormPurchaseRepository)(nil)
)
