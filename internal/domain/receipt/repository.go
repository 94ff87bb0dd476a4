package receipt

import (
	"context"
	"time"

	"github.com/estudio/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Filter defines filtering options for receipt list queries
type Filter struct {
	shared.Filter
	ClientID *uuid.UUID
	FromDate *time.Time
	ToDate   *time.Time
}

// Repository defines the interface for receipt persistence
type Repository interface {
	// FindByID finds a receipt with its items and payments
	FindByID(ctx context.Context, id uuid.UUID) (*Receipt, error)

	// FindHighest returns the receipt with the highest document number
	FindHighest(ctx context.Context) (*Receipt, error)

	// CountAbove counts receipts with a document number strictly above n
	CountAbove(ctx context.Context, n int64) (int64, error)

	// FindAll lists receipts with filtering
	FindAll(ctx context.Context, filter Filter) ([]Receipt, error)

	// Count counts receipts matching the filter
	Count(ctx context.Context, filter Filter) (int64, error)

	// Save persists a receipt together with its items and payments
	Save(ctx context.Context, r *Receipt) error

	// Delete removes a receipt and its items and payments
	Delete(ctx context.Context, id uuid.UUID) error
}
