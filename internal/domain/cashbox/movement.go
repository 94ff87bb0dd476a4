package cashbox

import (
	"strings"
	"time"

	"github.com/estudio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementKind discriminates cash inflows from outflows
type MovementKind string

const (
	MovementInflow  MovementKind = "INFLOW"
	MovementOutflow MovementKind = "OUTFLOW"
)

// IsValid checks if the kind is a valid MovementKind
func (k MovementKind) IsValid() bool {
	return k == MovementInflow || k == MovementOutflow
}

// String returns the string representation of MovementKind
func (k MovementKind) String() string {
	return string(k)
}

// Movement is a single monetary event inside a drawer. Movements are
// written exactly once, atomically with their owning receipt or expense,
// and removed only when that document is voided or deleted. They are
// never updated in place.
type Movement struct {
	shared.BaseEntity
	DrawerID        uuid.UUID       `json:"drawer_id"`
	Kind            MovementKind    `json:"kind"`
	Label           string          `json:"label"`
	Amount          decimal.Decimal `json:"amount"`
	ReceiptID       *uuid.UUID      `json:"receipt_id"`
	ExpenseID       *uuid.UUID      `json:"expense_id"`
	PaymentMethodID *uuid.UUID      `json:"payment_method_id"`
	OccurredAt      time.Time       `json:"occurred_at"`
}

func newMovement(drawerID uuid.UUID, kind MovementKind, label string, amount decimal.Decimal, occurredAt time.Time) (*Movement, error) {
	if drawerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Movement must belong to a drawer")
	}
	if strings.TrimSpace(label) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Movement label cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Movement amount must be positive")
	}
	return &Movement{
		BaseEntity: shared.NewBaseEntity(),
		DrawerID:   drawerID,
		Kind:       kind,
		Label:      label,
		Amount:     amount,
		OccurredAt: occurredAt,
	}, nil
}

// NewReceiptInflow creates the inflow movement a receipt payment posts.
// Movements referencing a receipt are always inflows.
func NewReceiptInflow(drawerID, receiptID uuid.UUID, paymentMethodID *uuid.UUID, label string, amount decimal.Decimal, occurredAt time.Time) (*Movement, error) {
	m, err := newMovement(drawerID, MovementInflow, label, amount, occurredAt)
	if err != nil {
		return nil, err
	}
	if receiptID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Receipt reference is required")
	}
	m.ReceiptID = &receiptID
	m.PaymentMethodID = paymentMethodID
	return m, nil
}

// NewExpenseOutflow creates the outflow movement an expense split posts.
// Movements referencing an expense are always outflows.
func NewExpenseOutflow(drawerID, expenseID uuid.UUID, paymentMethodID *uuid.UUID, label string, amount decimal.Decimal, occurredAt time.Time) (*Movement, error) {
	m, err := newMovement(drawerID, MovementOutflow, label, amount, occurredAt)
	if err != nil {
		return nil, err
	}
	if expenseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Expense reference is required")
	}
	m.ExpenseID = &expenseID
	m.PaymentMethodID = paymentMethodID
	return m, nil
}

// NewManualMovement creates a movement not tied to any document, e.g. a
// cash adjustment entered by hand.
func NewManualMovement(drawerID uuid.UUID, kind MovementKind, label string, amount decimal.Decimal, occurredAt time.Time) (*Movement, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Movement kind is not valid")
	}
	return newMovement(drawerID, kind, label, amount, occurredAt)
}

// Signed returns the amount with the sign of its effect on the balance.
func (m *Movement) Signed() decimal.Decimal {
	if m.Kind == MovementOutflow {
		return m.Amount.Neg()
	}
	return m.Amount
}
