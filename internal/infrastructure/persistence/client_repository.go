package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/estudio/backend/internal/domain/catalog"
	"github.com/estudio/backend/internal/domain/shared"
	"github.com/estudio/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormClientRepository implements catalog.ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByID finds a client by its ID
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Client, error) {
	var model models.ClientModel
	if err := conn(ctx, r.db).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists clients with filtering
func (r *GormClientRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Client, error) {
	var clientModels []models.ClientModel
	query := conn(ctx, r.db).WithContext(ctx).Model(&models.ClientModel{})
	query = r.applyFilter(query, filter)

	if err := query.Find(&clientModels).Error; err != nil {
		return nil, err
	}
	clients := make([]catalog.Client, len(clientModels))
	for i, model := range clientModels {
		clients[i] = *model.ToDomain()
	}
	return clients, nil
}

// Count counts clients matching the filter
func (r *GormClientRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := conn(ctx, r.db).WithContext(ctx).Model(&models.ClientModel{})
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("(name ILIKE ? OR tax_id ILIKE ?)", searchPattern, searchPattern)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists reports whether a client with the given ID exists
func (r *GormClientRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).WithContext(ctx).Model(&models.ClientModel{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a client
func (r *GormClientRepository) Save(ctx context.Context, client *catalog.Client) error {
	model := models.ClientModelFromDomain(client)
	return conn(ctx, r.db).WithContext(ctx).Save(model).Error
}

// Delete removes a client
func (r *GormClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).WithContext(ctx).Delete(&models.ClientModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies filter conditions to query
func (r *GormClientRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("(name ILIKE ? OR tax_id ILIKE ?)", searchPattern, searchPattern)
	}

	sortField := ValidateSortField(filter.OrderBy, ClientSortFields, "name")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		offset := (filter.Page - 1) * filter.PageSize
		if offset > 0 {
			query = query.Offset(offset)
		}
	}

	return query
}
