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

// GormConceptRepository implements catalog.ConceptRepository using GORM
type GormConceptRepository struct {
	db *gorm.DB
}

// NewGormConceptRepository creates a new GormConceptRepository
func NewGormConceptRepository(db *gorm.DB) *GormConceptRepository {
	return &GormConceptRepository{db: db}
}

// FindByID finds a billing concept by its ID
func (r *GormConceptRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Concept, error) {
	var model models.ConceptModel
	if err := conn(ctx, r.db).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists billing concepts with filtering
func (r *GormConceptRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Concept, error) {
	var conceptModels []models.ConceptModel
	query := conn(ctx, r.db).WithContext(ctx).Model(&models.ConceptModel{})
	if filter.Search != "" {
		query = query.Where("description ILIKE ?", "%"+filter.Search+"%")
	}

	sortField := ValidateSortField(filter.OrderBy, CommonSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	if err := query.Find(&conceptModels).Error; err != nil {
		return nil, err
	}
	concepts := make([]catalog.Concept, len(conceptModels))
	for i, model := range conceptModels {
		concepts[i] = *model.ToDomain()
	}
	return concepts, nil
}

// Save creates or updates a billing concept
func (r *GormConceptRepository) Save(ctx context.Context, concept *catalog.Concept) error {
	model := models.ConceptModelFromDomain(concept)
	return conn(ctx, r.db).WithContext(ctx).Save(model).Error
}

// Delete removes a billing concept
func (r *GormConceptRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).WithContext(ctx).Delete(&models.ConceptModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
