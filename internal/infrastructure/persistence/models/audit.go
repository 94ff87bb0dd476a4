package models

import (
	"encoding/json"
	"time"

	"github.com/estudio/backend/internal/domain/audit"
	"github.com/google/uuid"
)

// AuditLogModel is the persistence model for the audit trail. Rows are
// append-only; nothing in the application updates or deletes them.
type AuditLogModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID     *uuid.UUID `gorm:"type:uuid;index"`
	Action     string     `gorm:"type:varchar(50);not null;index"`
	EntityType string     `gorm:"type:varchar(50);not null;index"`
	EntityID   *uuid.UUID `gorm:"type:uuid;index"`
	Detail     []byte     `gorm:"type:jsonb"`
	CreatedAt  time.Time  `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// ToDomain converts the persistence model to a domain audit Entry.
func (m *AuditLogModel) ToDomain() *audit.Entry {
	e := &audit.Entry{
		ID:         m.ID,
		UserID:     m.UserID,
		Action:     audit.Action(m.Action),
		EntityType: m.EntityType,
		EntityID:   m.EntityID,
		CreatedAt:  m.CreatedAt,
	}
	if len(m.Detail) > 0 {
		_ = json.Unmarshal(m.Detail, &e.Detail)
	}
	return e
}

// AuditLogModelFromDomain creates a new persistence model from a domain audit Entry.
func AuditLogModelFromDomain(e *audit.Entry) (*AuditLogModel, error) {
	m := &AuditLogModel{
		ID:         e.ID,
		UserID:     e.UserID,
		Action:     string(e.Action),
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		CreatedAt:  e.CreatedAt,
	}
	if e.Detail != nil {
		payload, err := json.Marshal(e.Detail)
		if err != nil {
			return nil, err
		}
		m.Detail = payload
	}
	return m, nil
}
