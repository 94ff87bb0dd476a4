package persistence

import (
	"context"
	"errors"

	"github.com/estudio/backend/internal/domain/receipt"
	"github.com/estudio/backend/internal/domain/shared"
	"github.com/estudio/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCounterRepository implements receipt.CounterRepository using GORM.
// Every method reads the counter row with SELECT ... FOR UPDATE, so it
// must be called inside a transaction carried by the context. The row
// lock is what serializes concurrent receipt issuers: the second issuer
// blocks on the lock until the first commits, then reads the committed
// value and takes the next number. No gaps, no duplicates.
type GormCounterRepository struct {
	db *gorm.DB
}

// NewGormCounterRepository creates a new GormCounterRepository
func NewGormCounterRepository(db *gorm.DB) *GormCounterRepository {
	return &GormCounterRepository{db: db}
}

// Next locks the counter row, increments it and returns the new value
func (r *GormCounterRepository) Next(ctx context.Context) (int64, error) {
	tx := conn(ctx, r.db)
	model, err := r.lockRow(ctx, tx)
	if err != nil {
		return 0, err
	}
	model.Value++
	if err := tx.WithContext(ctx).Save(model).Error; err != nil {
		return 0, err
	}
	return model.Value, nil
}

// Current reads the counter value under the same exclusive lock
func (r *GormCounterRepository) Current(ctx context.Context) (int64, error) {
	model, err := r.lockRow(ctx, conn(ctx, r.db))
	if err != nil {
		return 0, err
	}
	return model.Value, nil
}

// Decrement releases the most recently issued number after a void
func (r *GormCounterRepository) Decrement(ctx context.Context) error {
	tx := conn(ctx, r.db)
	model, err := r.lockRow(ctx, tx)
	if err != nil {
		return err
	}
	if model.Value <= 0 {
		return shared.NewDomainError("INVALID_STATE", "Receipt counter cannot go below zero")
	}
	model.Value--
	return tx.WithContext(ctx).Save(model).Error
}

// lockRow fetches the counter row FOR UPDATE. The row is seeded by the
// migrations; its absence means the store was never initialized.
func (r *GormCounterRepository) lockRow(ctx context.Context, tx *gorm.DB) (*models.SystemCounterModel, error) {
	var model models.SystemCounterModel
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("key = ?", receipt.CounterKey).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError("INVALID_STATE", "Receipt counter is not initialized")
		}
		return nil, err
	}
	return &model, nil
}
