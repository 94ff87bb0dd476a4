package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action identifies what was done to an entity
type Action string

const (
	ActionDrawerClosed   Action = "DRAWER_CLOSED"
	ActionDrawerReopened Action = "DRAWER_REOPENED"
	ActionReceiptVoided  Action = "RECEIPT_VOIDED"
	ActionReceiptDeleted Action = "RECEIPT_DELETED"
	ActionExpenseDeleted Action = "EXPENSE_DELETED"
)

// Entry is one audit-trail record
type Entry struct {
	ID         uuid.UUID      `json:"id"`
	UserID     *uuid.UUID     `json:"user_id"`
	Action     Action         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   *uuid.UUID     `json:"entity_id"`
	Detail     map[string]any `json:"detail"`
	CreatedAt  time.Time      `json:"created_at"`
}

// NewEntry creates an audit entry
func NewEntry(userID *uuid.UUID, action Action, entityType string, entityID *uuid.UUID, detail map[string]any) *Entry {
	return &Entry{
		ID:         uuid.New(),
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     detail,
		CreatedAt:  time.Now(),
	}
}

// Sink accepts audit entries. Implementations are best-effort: a sink
// failure is observed (logged) but must never fail the operation that
// produced the entry.
type Sink interface {
	Record(ctx context.Context, entry *Entry)
}
