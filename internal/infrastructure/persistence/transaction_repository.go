package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/erp/cashbook/internal/domain/ledger"
	"github.com/erp/cashbook/internal/domain/shared"
	"github.com/erp/cashbook/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTransactionRepository implements ledger.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByID finds a transaction by its ID
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByReference finds the transaction carrying a dedup key
func (r *GormTransactionRepository) FindByReference(ctx context.Context, reference string) (*ledger.Transaction, error) {
	if reference == "" {
		return nil, shared.ErrNotFound
	}
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).First(&model, "reference = ?", reference).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns every transaction, newest first
func (r *GormTransactionRepository) FindAll(ctx context.Context) ([]*ledger.Transaction, error) {
	var txnModels []models.TransactionModel
	if err := r.db.WithContext(ctx).
		Order("date DESC").
		Order("created_at DESC").
		Find(&txnModels).Error; err != nil {
		return nil, err
	}
	return toTransactions(txnModels), nil
}

// FindWithFilter returns one page of transactions matching the filter. A
// zero page size returns every match.
func (r *GormTransactionRepository) FindWithFilter(ctx context.Context, filter ledger.TransactionFilter) ([]*ledger.Transaction, error) {
	var txnModels []models.TransactionModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.TransactionModel{}), filter)

	if err := query.Find(&txnModels).Error; err != nil {
		return nil, err
	}
	return toTransactions(txnModels), nil
}

// Count counts transactions matching the filter
func (r *GormTransactionRepository) Count(ctx context.Context, filter ledger.TransactionFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.TransactionModel{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByReference checks whether a transaction already carries the reference
func (r *GormTransactionRepository) ExistsByReference(ctx context.Context, reference string) (bool, error) {
	if reference == "" {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("reference = ?", reference).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a new transaction. A duplicate reference fails with
// shared.ErrAlreadyExists.
func (r *GormTransactionRepository) Create(ctx context.Context, txn *ledger.Transaction) error {
	model := models.TransactionModelFromDomain(txn)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateWriteError(err)
	}
	return nil
}

// Save creates or updates a transaction
func (r *GormTransactionRepository) Save(ctx context.Context, txn *ledger.Transaction) error {
	model := models.TransactionModelFromDomain(txn)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return translateWriteError(err)
	}
	return nil
}

// Delete removes a transaction
func (r *GormTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TransactionModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies filter, ordering and pagination
func (r *GormTransactionRepository) applyFilter(query *gorm.DB, filter ledger.TransactionFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	sortField := ValidateSortField(filter.OrderBy, TransactionSortFields, "date")
	sortDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortDir))
	if sortField != "created_at" {
		query = query.Order("created_at " + sortDir)
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	return query
}

// applyFilterWithoutPagination applies filter options without ordering or pagination
func (r *GormTransactionRepository) applyFilterWithoutPagination(query *gorm.DB, filter ledger.TransactionFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(description) LIKE ? OR LOWER(account) LIKE ? OR LOWER(reference) LIKE ? OR LOWER(payee) LIKE ?",
			searchPattern, searchPattern, searchPattern, searchPattern)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Account != "" {
		query = query.Where("account = ?", filter.Account)
	}
	if filter.AccountType != nil {
		query = query.Where("account_type = ?", *filter.AccountType)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.SyncedFrom != nil {
		query = query.Where("synced_from = ?", string(*filter.SyncedFrom))
	}
	if filter.PaymentMethod != nil {
		query = query.Where("payment_method = ?", string(*filter.PaymentMethod))
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.FromDate != nil {
		query = query.Where("date >= ?", ledger.CalendarDate(*filter.FromDate))
	}
	if filter.ToDate != nil {
		query = query.Where("date <= ?", ledger.CalendarDate(*filter.ToDate))
	}
	return query
}

func toTransactions(txnModels []models.TransactionModel) []*ledger.Transaction {
	txns := make([]*ledger.Transaction, len(txnModels))
	for i := range txnModels {
		txns[i] = txnModels[i].ToDomain()
	}
	return txns
}

// translateWriteError maps unique violations to shared.ErrAlreadyExists.
// It relies on gorm.Config.TranslateError.
func translateWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return err
}

// Ensure GormTransactionRepository implements TransactionRepository
var _ ledger.TransactionRepository = (*GormTransactionRepository)(nil)
