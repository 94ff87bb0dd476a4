package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/estudio/backend/internal/domain/expense"
	"github.com/estudio/backend/internal/domain/shared"
	"github.com/estudio/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormExpenseRepository implements expense.Repository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// FindByID finds an expense with its splits
func (r *GormExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*expense.Expense, error) {
	var model models.ExpenseModel
	if err := conn(ctx, r.db).WithContext(ctx).
		Preload("Splits").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists expenses with filtering
func (r *GormExpenseRepository) FindAll(ctx context.Context, filter expense.Filter) ([]expense.Expense, error) {
	var expenseModels []models.ExpenseModel
	query := conn(ctx, r.db).WithContext(ctx).Model(&models.ExpenseModel{}).
		Preload("Splits")
	query = r.applyFilter(query, filter)

	if err := query.Find(&expenseModels).Error; err != nil {
		return nil, err
	}
	expenses := make([]expense.Expense, len(expenseModels))
	for i, model := range expenseModels {
		expenses[i] = *model.ToDomain()
	}
	return expenses, nil
}

// Count counts expenses matching the filter
func (r *GormExpenseRepository) Count(ctx context.Context, filter expense.Filter) (int64, error) {
	var count int64
	query := conn(ctx, r.db).WithContext(ctx).Model(&models.ExpenseModel{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save persists an expense together with its splits
func (r *GormExpenseRepository) Save(ctx context.Context, e *expense.Expense) error {
	model := models.ExpenseModelFromDomain(e)
	return conn(ctx, r.db).WithContext(ctx).Save(model).Error
}

// ReplaceSplits deletes and reinserts the splits of an expense, then
// updates the expense row itself.
func (r *GormExpenseRepository) ReplaceSplits(ctx context.Context, e *expense.Expense) error {
	tx := conn(ctx, r.db)
	if err := tx.WithContext(ctx).Delete(&models.ExpenseSplitModel{}, "expense_id = ?", e.ID).Error; err != nil {
		return err
	}
	model := models.ExpenseModelFromDomain(e)
	return tx.WithContext(ctx).Save(model).Error
}

// Delete removes an expense and its splits
func (r *GormExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx := conn(ctx, r.db)
	if err := tx.WithContext(ctx).Delete(&models.ExpenseSplitModel{}, "expense_id = ?", id).Error; err != nil {
		return err
	}
	result := tx.WithContext(ctx).Delete(&models.ExpenseModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies filter conditions to query
func (r *GormExpenseRepository) applyFilter(query *gorm.DB, filter expense.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply sorting with whitelist validation to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, ExpenseSortFields, "date")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	// Apply pagination
	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		offset := (filter.Page - 1) * filter.PageSize
		if offset > 0 {
			query = query.Offset(offset)
		}
	}

	return query
}

// applyFilterWithoutPagination applies filter conditions without pagination
func (r *GormExpenseRepository) applyFilterWithoutPagination(query *gorm.DB, filter expense.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("description ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.FromDate != nil {
		query = query.Where("date >= ?", filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("date <= ?", filter.ToDate)
	}
	return query
}
