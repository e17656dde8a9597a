package persistence

import (
	"context"

	"github.com/erp/cashbook/internal/domain/ledger"
	"github.com/erp/cashbook/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// defaultRunHistory is the number of runs returned when no limit is given
const defaultRunHistory = 20

// GormReconciliationRunRepository persists reconciliation runs
type GormReconciliationRunRepository struct {
	db *gorm.DB
}

// NewGormReconciliationRunRepository creates a new GormReconciliationRunRepository
func NewGormReconciliationRunRepository(db *gorm.DB) *GormReconciliationRunRepository {
	return &GormReconciliationRunRepository{db: db}
}

// Save creates or updates a run
func (r *GormReconciliationRunRepository) Save(ctx context.Context, run *ledger.ReconciliationRun) error {
	model := models.ReconciliationRunModelFromDomain(run)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindRecent returns the most recent runs, newest first
func (r *GormReconciliationRunRepository) FindRecent(ctx context.Context, limit int) ([]*ledger.ReconciliationRun, error) {
	if limit <= 0 {
		limit = defaultRunHistory
	}
	var runModels []models.ReconciliationRunModel
	if err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&runModels).Error; err != nil {
		return nil, err
	}

	runs := make([]*ledger.ReconciliationRun, len(runModels))
	for i := range runModels {
		runs[i] = runModels[i].ToDomain()
	}
	return runs, nil
}

// Ensure GormReconciliationRunRepository implements ReconciliationRunRepository
var _ ledger.ReconciliationRunRepository = (*GormReconciliationRunRepository)(nil)
