package persistence

import (
	"context"

	"github.com/estudio/backend/internal/domain/cashbox"
	"github.com/estudio/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMovementRepository implements cashbox.MovementRepository using GORM
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// FindByDrawer returns all movements of a drawer in ascending timestamp
// order. Ties on occurred_at fall back to insertion order via created_at,
// which keeps the derived running balance stable across reads.
func (r *GormMovementRepository) FindByDrawer(ctx context.Context, drawerID uuid.UUID) ([]cashbox.Movement, error) {
	var movementModels []models.CashMovementModel
	if err := conn(ctx, r.db).WithContext(ctx).
		Where("drawer_id = ?", drawerID).
		Order("occurred_at ASC, created_at ASC").
		Find(&movementModels).Error; err != nil {
		return nil, err
	}
	movements := make([]cashbox.Movement, len(movementModels))
	for i, model := range movementModels {
		movements[i] = *model.ToDomain()
	}
	return movements, nil
}

// Save persists one or more movements
func (r *GormMovementRepository) Save(ctx context.Context, movements ...*cashbox.Movement) error {
	if len(movements) == 0 {
		return nil
	}
	movementModels := make([]models.CashMovementModel, len(movements))
	for i, mv := range movements {
		movementModels[i] = *models.CashMovementModelFromDomain(mv)
	}
	return conn(ctx, r.db).WithContext(ctx).Create(&movementModels).Error
}

// DeleteByReceipt removes every movement referencing a receipt
func (r *GormMovementRepository) DeleteByReceipt(ctx context.Context, receiptID uuid.UUID) error {
	return conn(ctx, r.db).WithContext(ctx).
		Delete(&models.CashMovementModel{}, "receipt_id = ?", receiptID).Error
}

// DeleteByExpense removes every movement referencing an expense
func (r *GormMovementRepository) DeleteByExpense(ctx context.Context, expenseID uuid.UUID) error {
	return conn(ctx, r.db).WithContext(ctx).
		Delete(&models.CashMovementModel{}, "expense_id = ?", expenseID).Error
}
