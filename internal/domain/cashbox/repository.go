package cashbox

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DrawerRepository defines the interface for drawer persistence
type DrawerRepository interface {
	// FindByID finds a drawer by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Drawer, error)

	// FindByDate finds the drawer for a calendar date
	FindByDate(ctx context.Context, date time.Time) (*Drawer, error)

	// FindOpenBefore finds all open drawers dated strictly before the given date
	FindOpenBefore(ctx context.Context, date time.Time) ([]Drawer, error)

	// FindRange finds drawers within a date range, ordered by date ascending
	FindRange(ctx context.Context, from, to time.Time) ([]Drawer, error)

	// Save creates or updates a drawer
	Save(ctx context.Context, drawer *Drawer) error
}

// MovementRepository defines the interface for movement persistence
type MovementRepository interface {
	// FindByDrawer returns all movements of a drawer in ascending timestamp order
	FindByDrawer(ctx context.Context, drawerID uuid.UUID) ([]Movement, error)

	// Save persists one or more movements
	Save(ctx context.Context, movements ...*Movement) error

	// DeleteByReceipt removes every movement referencing a receipt
	DeleteByReceipt(ctx context.Context, receiptID uuid.UUID) error

	// DeleteByExpense removes every movement referencing an expense
	DeleteByExpense(ctx context.Context, expenseID uuid.UUID) error
}
