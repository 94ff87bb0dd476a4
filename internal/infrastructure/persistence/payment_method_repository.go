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

// GormPaymentMethodRepository implements catalog.PaymentMethodRepository using GORM
type GormPaymentMethodRepository struct {
	db *gorm.DB
}

// NewGormPaymentMethodRepository creates a new GormPaymentMethodRepository
func NewGormPaymentMethodRepository(db *gorm.DB) *GormPaymentMethodRepository {
	return &GormPaymentMethodRepository{db: db}
}

// FindByID finds a payment method by its ID
func (r *GormPaymentMethodRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.PaymentMethod, error) {
	var model models.PaymentMethodModel
	if err := conn(ctx, r.db).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs returns the subset of the given methods that exist
func (r *GormPaymentMethodRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.PaymentMethod, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var methodModels []models.PaymentMethodModel
	if err := conn(ctx, r.db).WithContext(ctx).
		Where("id IN ?", ids).
		Find(&methodModels).Error; err != nil {
		return nil, err
	}
	methods := make([]catalog.PaymentMethod, len(methodModels))
	for i, model := range methodModels {
		methods[i] = *model.ToDomain()
	}
	return methods, nil
}

// FindAll lists payment methods with filtering
func (r *GormPaymentMethodRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.PaymentMethod, error) {
	var methodModels []models.PaymentMethodModel
	query := conn(ctx, r.db).WithContext(ctx).Model(&models.PaymentMethodModel{})
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	sortField := ValidateSortField(filter.OrderBy, CommonSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	if err := query.Find(&methodModels).Error; err != nil {
		return nil, err
	}
	methods := make([]catalog.PaymentMethod, len(methodModels))
	for i, model := range methodModels {
		methods[i] = *model.ToDomain()
	}
	return methods, nil
}

// Save creates or updates a payment method
func (r *GormPaymentMethodRepository) Save(ctx context.Context, method *catalog.PaymentMethod) error {
	model := models.PaymentMethodModelFromDomain(method)
	if err := conn(ctx, r.db).WithContext(ctx).Save(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Delete removes a payment method
func (r *GormPaymentMethodRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).WithContext(ctx).Delete(&models.PaymentMethodModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
