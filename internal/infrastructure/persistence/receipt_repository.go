package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/estudio/backend/internal/domain/receipt"
	"github.com/estudio/backend/internal/domain/shared"
	"github.com/estudio/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReceiptRepository implements receipt.Repository using GORM
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewGormReceiptRepository creates a new GormReceiptRepository
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// FindByID finds a receipt with its items and payments
func (r *GormReceiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*receipt.Receipt, error) {
	var model models.ReceiptModel
	if err := conn(ctx, r.db).WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindHighest returns the receipt with the highest document number
func (r *GormReceiptRepository) FindHighest(ctx context.Context) (*receipt.Receipt, error) {
	var model models.ReceiptModel
	if err := conn(ctx, r.db).WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Order("document_number DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// CountAbove counts receipts with a document number strictly above n
func (r *GormReceiptRepository) CountAbove(ctx context.Context, n int64) (int64, error) {
	var count int64
	if err := conn(ctx, r.db).WithContext(ctx).Model(&models.ReceiptModel{}).
		Where("document_number > ?", n).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindAll lists receipts with filtering
func (r *GormReceiptRepository) FindAll(ctx context.Context, filter receipt.Filter) ([]receipt.Receipt, error) {
	var receiptModels []models.ReceiptModel
	query := conn(ctx, r.db).WithContext(ctx).Model(&models.ReceiptModel{}).
		Preload("Items").
		Preload("Payments")
	query = r.applyFilter(query, filter)

	if err := query.Find(&receiptModels).Error; err != nil {
		return nil, err
	}
	receipts := make([]receipt.Receipt, len(receiptModels))
	for i, model := range receiptModels {
		receipts[i] = *model.ToDomain()
	}
	return receipts, nil
}

// Count counts receipts matching the filter
func (r *GormReceiptRepository) Count(ctx context.Context, filter receipt.Filter) (int64, error) {
	var count int64
	query := conn(ctx, r.db).WithContext(ctx).Model(&models.ReceiptModel{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save persists a receipt together with its items and payments
func (r *GormReceiptRepository) Save(ctx context.Context, rc *receipt.Receipt) error {
	model := models.ReceiptModelFromDomain(rc)
	if err := conn(ctx, r.db).WithContext(ctx).Save(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrConflict
		}
		return err
	}
	return nil
}

// Delete removes a receipt and its items and payments
func (r *GormReceiptRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx := conn(ctx, r.db)
	if err := tx.WithContext(ctx).Delete(&models.ReceiptItemModel{}, "receipt_id = ?", id).Error; err != nil {
		return err
	}
	if err := tx.WithContext(ctx).Delete(&models.ReceiptPaymentModel{}, "receipt_id = ?", id).Error; err != nil {
		return err
	}
	result := tx.WithContext(ctx).Delete(&models.ReceiptModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies filter conditions to query
func (r *GormReceiptRepository) applyFilter(query *gorm.DB, filter receipt.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply sorting with whitelist validation to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, ReceiptSortFields, "document_number")
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
func (r *GormReceiptRepository) applyFilterWithoutPagination(query *gorm.DB, filter receipt.Filter) *gorm.DB {
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.FromDate != nil {
		query = query.Where("issued_at >= ?", filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("issued_at <= ?", filter.ToDate)
	}
	return query
}
