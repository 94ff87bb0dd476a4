package models

import (
	"time"

	"github.com/estudio/backend/internal/domain/cashbox"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DrawerModel is the persistence model for the daily cash drawer.
// The unique index on date is what enforces "one drawer per calendar day"
// even under concurrent openers.
type DrawerModel struct {
	BaseModel
	Date           time.Time           `gorm:"type:date;not null;uniqueIndex:idx_drawers_date"`
	OpeningBalance decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	ClosingBalance *decimal.Decimal    `gorm:"type:decimal(18,2)"`
	Closed         bool                `gorm:"not null;default:false;index"`
	ClosedAt       *time.Time          `gorm:"index"`
	OpenedBy       *uuid.UUID          `gorm:"type:uuid"`
	ClosedBy       *uuid.UUID          `gorm:"type:uuid"`
	Movements      []CashMovementModel `gorm:"foreignKey:DrawerID;references:ID"`
}

// TableName returns the table name for GORM
func (DrawerModel) TableName() string {
	return "cash_drawers"
}

// ToDomain converts the persistence model to a domain Drawer entity.
func (m *DrawerModel) ToDomain() *cashbox.Drawer {
	return &cashbox.Drawer{
		BaseEntity:     m.BaseModel.ToDomain(),
		Date:           m.Date,
		OpeningBalance: m.OpeningBalance,
		ClosingBalance: m.ClosingBalance,
		Closed:         m.Closed,
		ClosedAt:       m.ClosedAt,
		OpenedBy:       m.OpenedBy,
		ClosedBy:       m.ClosedBy,
	}
}

// FromDomain populates the persistence model from a domain Drawer entity.
func (m *DrawerModel) FromDomain(d *cashbox.Drawer) {
	m.FromDomainBaseEntity(d.BaseEntity)
	m.Date = d.Date
	m.OpeningBalance = d.OpeningBalance
	m.ClosingBalance = d.ClosingBalance
	m.Closed = d.Closed
	m.ClosedAt = d.ClosedAt
	m.OpenedBy = d.OpenedBy
	m.ClosedBy = d.ClosedBy
}

// DrawerModelFromDomain creates a new persistence model from a domain Drawer entity.
func DrawerModelFromDomain(d *cashbox.Drawer) *DrawerModel {
	m := &DrawerModel{}
	m.FromDomain(d)
	return m
}

// CashMovementModel is the persistence model for a drawer movement.
type CashMovementModel struct {
	BaseModel
	DrawerID        uuid.UUID            `gorm:"type:uuid;not null;index"`
	Kind            cashbox.MovementKind `gorm:"type:varchar(10);not null"`
	Label           string               `gorm:"type:varchar(300);not null"`
	Amount          decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	ReceiptID       *uuid.UUID           `gorm:"type:uuid;index"`
	ExpenseID       *uuid.UUID           `gorm:"type:uuid;index"`
	PaymentMethodID *uuid.UUID           `gorm:"type:uuid"`
	OccurredAt      time.Time            `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (CashMovementModel) TableName() string {
	return "cash_movements"
}

// ToDomain converts the persistence model to a domain Movement entity.
func (m *CashMovementModel) ToDomain() *cashbox.Movement {
	return &cashbox.Movement{
		BaseEntity:      m.BaseModel.ToDomain(),
		DrawerID:        m.DrawerID,
		Kind:            m.Kind,
		Label:           m.Label,
		Amount:          m.Amount,
		ReceiptID:       m.ReceiptID,
		ExpenseID:       m.ExpenseID,
		PaymentMethodID: m.PaymentMethodID,
		OccurredAt:      m.OccurredAt,
	}
}

// FromDomain populates the persistence model from a domain Movement entity.
func (m *CashMovementModel) FromDomain(mv *cashbox.Movement) {
	m.FromDomainBaseEntity(mv.BaseEntity)
	m.DrawerID = mv.DrawerID
	m.Kind = mv.Kind
	m.Label = mv.Label
	m.Amount = mv.Amount
	m.ReceiptID = mv.ReceiptID
	m.ExpenseID = mv.ExpenseID
	m.PaymentMethodID = mv.PaymentMethodID
	m.OccurredAt = mv.OccurredAt
}

// CashMovementModelFromDomain creates a new persistence model from a domain Movement entity.
func CashMovementModelFromDomain(mv *cashbox.Movement) *CashMovementModel {
	m := &CashMovementModel{}
	m.FromDomain(mv)
	return m
}
