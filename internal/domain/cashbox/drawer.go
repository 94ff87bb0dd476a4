package cashbox

import (
	"time"

	"github.com/estudio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Drawer represents the daily cash drawer ("caja") of the practice.
// There is at most one drawer per calendar date; it is created the first
// time the date is referenced and never deleted afterwards.
type Drawer struct {
	shared.BaseEntity
	Date           time.Time        `json:"date"`
	OpeningBalance decimal.Decimal  `json:"opening_balance"`
	ClosingBalance *decimal.Decimal `json:"closing_balance"`
	Closed         bool             `json:"closed"`
	ClosedAt       *time.Time       `json:"closed_at"`
	OpenedBy       *uuid.UUID       `json:"opened_by"`
	ClosedBy       *uuid.UUID       `json:"closed_by"`
}

// NewDrawer opens a drawer for the given date.
// The date is normalized to midnight so the per-date uniqueness
// constraint compares calendar dates, not instants.
func NewDrawer(date time.Time, openingBalance decimal.Decimal, openedBy *uuid.UUID) (*Drawer, error) {
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Drawer date is required")
	}
	if openingBalance.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Opening balance cannot be negative")
	}
	return &Drawer{
		BaseEntity:     shared.NewBaseEntity(),
		Date:           NormalizeDate(date),
		OpeningBalance: openingBalance,
		Closed:         false,
		OpenedBy:       openedBy,
	}, nil
}

// Close marks the drawer closed with the given closing balance.
// An open drawer has no closing balance or closing timestamp; a closed
// drawer always has both.
func (d *Drawer) Close(closingBalance decimal.Decimal, closedAt time.Time, closedBy *uuid.UUID) error {
	if d.Closed {
		return shared.NewDomainError("INVALID_STATE", "Drawer is already closed")
	}
	d.Closed = true
	d.ClosingBalance = &closingBalance
	d.ClosedAt = &closedAt
	d.ClosedBy = closedBy
	d.UpdatedAt = time.Now()
	return nil
}

// Reopen clears the closed flag, closing timestamp and closing user.
// The prior closing balance is intentionally retained as a historical
// reference; it is never authoritative after reopening — the live
// recomputation over movements is.
func (d *Drawer) Reopen() error {
	if !d.Closed {
		return shared.NewDomainError("INVALID_STATE", "Drawer is already open")
	}
	d.Closed = false
	d.ClosedAt = nil
	d.ClosedBy = nil
	d.UpdatedAt = time.Now()
	return nil
}

// NormalizeDate truncates an instant to midnight in its own location.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
