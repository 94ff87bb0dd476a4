package expense

import (
	"context"
	"time"

	"github.com/estudio/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Filter defines filtering options for expense list queries
type Filter struct {
	shared.Filter
	FromDate *time.Time
	ToDate   *time.Time
}

// Repository defines the interface for expense persistence
type Repository interface {
	// FindByID finds an expense with its splits
	FindByID(ctx context.Context, id uuid.UUID) (*Expense, error)

	// FindAll lists expenses with filtering
	FindAll(ctx context.Context, filter Filter) ([]Expense, error)

	// Count counts expenses matching the filter
	Count(ctx context.Context, filter Filter) (int64, error)

	// Save persists an expense together with its splits
	Save(ctx context.Context, e *Expense) error

	// ReplaceSplits deletes and reinserts the splits of an expense
	ReplaceSplits(ctx context.Context, e *Expense) error

	// Delete removes an expense and its splits
	Delete(ctx context.Context, id uuid.UUID) error
}
