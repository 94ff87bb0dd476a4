package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/estudio/backend/internal/domain/cashbox"
	"github.com/estudio/backend/internal/domain/shared"
	"github.com/estudio/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDrawerRepository implements cashbox.DrawerRepository using GORM
type GormDrawerRepository struct {
	db *gorm.DB
}

// NewGormDrawerRepository creates a new GormDrawerRepository
func NewGormDrawerRepository(db *gorm.DB) *GormDrawerRepository {
	return &GormDrawerRepository{db: db}
}

// FindByID finds a drawer by its ID
func (r *GormDrawerRepository) FindByID(ctx context.Context, id uuid.UUID) (*cashbox.Drawer, error) {
	var model models.DrawerModel
	if err := conn(ctx, r.db).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByDate finds the drawer for a calendar date
func (r *GormDrawerRepository) FindByDate(ctx context.Context, date time.Time) (*cashbox.Drawer, error) {
	var model models.DrawerModel
	day := cashbox.NormalizeDate(date)
	if err := conn(ctx, r.db).WithContext(ctx).
		Where("date = ?", day).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindOpenBefore finds all open drawers dated strictly before the given date
func (r *GormDrawerRepository) FindOpenBefore(ctx context.Context, date time.Time) ([]cashbox.Drawer, error) {
	var drawerModels []models.DrawerModel
	day := cashbox.NormalizeDate(date)
	if err := conn(ctx, r.db).WithContext(ctx).
		Where("closed = ? AND date < ?", false, day).
		Order("date ASC").
		Find(&drawerModels).Error; err != nil {
		return nil, err
	}
	drawers := make([]cashbox.Drawer, len(drawerModels))
	for i, model := range drawerModels {
		drawers[i] = *model.ToDomain()
	}
	return drawers, nil
}

// FindRange finds drawers within a date range, ordered by date ascending
func (r *GormDrawerRepository) FindRange(ctx context.Context, from, to time.Time) ([]cashbox.Drawer, error) {
	var drawerModels []models.DrawerModel
	if err := conn(ctx, r.db).WithContext(ctx).
		Where("date >= ? AND date <= ?", cashbox.NormalizeDate(from), cashbox.NormalizeDate(to)).
		Order("date ASC").
		Find(&drawerModels).Error; err != nil {
		return nil, err
	}
	drawers := make([]cashbox.Drawer, len(drawerModels))
	for i, model := range drawerModels {
		drawers[i] = *model.ToDomain()
	}
	return drawers, nil
}

// Save creates or updates a drawer. A duplicate-date insert surfaces as a
// conflict so concurrent openers of the same day resolve deterministically.
func (r *GormDrawerRepository) Save(ctx context.Context, drawer *cashbox.Drawer) error {
	model := models.DrawerModelFromDomain(drawer)
	if err := conn(ctx, r.db).WithContext(ctx).Omit("Movements").Save(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrConflict
		}
		return err
	}
	return nil
}
