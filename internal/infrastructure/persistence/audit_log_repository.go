package persistence

import (
	"context"

	"github.com/estudio/backend/internal/domain/audit"
	"github.com/estudio/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAuditLogRepository persists audit entries. It deliberately writes
// on the base connection, never the context transaction: an audit row
// must not be rolled back together with the unit of work it describes,
// and a failed audit write must not fail that unit either.
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository creates a new GormAuditLogRepository
func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Insert appends an audit entry
func (r *GormAuditLogRepository) Insert(ctx context.Context, entry *audit.Entry) error {
	model, err := models.AuditLogModelFromDomain(entry)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(model).Error
}

// FindRecent returns the most recent audit entries, newest first
func (r *GormAuditLogRepository) FindRecent(ctx context.Context, limit int) ([]audit.Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	var logModels []models.AuditLogModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&logModels).Error; err != nil {
		return nil, err
	}
	entries := make([]audit.Entry, len(logModels))
	for i, model := range logModels {
		entries[i] = *model.ToDomain()
	}
	return entries, nil
}
