package models

import (
	"time"

	"github.com/estudio/backend/internal/domain/receipt"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptModel is the persistence model for the Receipt aggregate root.
// The unique index on document_number backs the numbering uniqueness
// guarantee; gaplessness is the counter's job, not this table's.
type ReceiptModel struct {
	BaseModel
	ClientID       uuid.UUID             `gorm:"type:uuid;not null;index"`
	DocumentNumber int64                 `gorm:"not null;uniqueIndex:idx_receipts_document_number"`
	IssuedAt       time.Time             `gorm:"not null;index"`
	Total          decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	CreatedBy      *uuid.UUID            `gorm:"type:uuid"`
	Items          []ReceiptItemModel    `gorm:"foreignKey:ReceiptID;references:ID"`
	Payments       []ReceiptPaymentModel `gorm:"foreignKey:ReceiptID;references:ID"`
}

// TableName returns the table name for GORM
func (ReceiptModel) TableName() string {
	return "receipts"
}

// ToDomain converts the persistence model to a domain Receipt entity.
func (m *ReceiptModel) ToDomain() *receipt.Receipt {
	r := &receipt.Receipt{
		BaseEntity:     m.BaseModel.ToDomain(),
		ClientID:       m.ClientID,
		DocumentNumber: m.DocumentNumber,
		IssuedAt:       m.IssuedAt,
		Total:          m.Total,
		CreatedBy:      m.CreatedBy,
		Items:          make([]receipt.Item, len(m.Items)),
		Payments:       make([]receipt.Payment, len(m.Payments)),
	}
	for i, item := range m.Items {
		r.Items[i] = *item.ToDomain()
	}
	for i, payment := range m.Payments {
		r.Payments[i] = *payment.ToDomain()
	}
	return r
}

// FromDomain populates the persistence model from a domain Receipt entity.
func (m *ReceiptModel) FromDomain(r *receipt.Receipt) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.ClientID = r.ClientID
	m.DocumentNumber = r.DocumentNumber
	m.IssuedAt = r.IssuedAt
	m.Total = r.Total
	m.CreatedBy = r.CreatedBy
	m.Items = make([]ReceiptItemModel, len(r.Items))
	for i, item := range r.Items {
		m.Items[i] = *ReceiptItemModelFromDomain(&item)
	}
	m.Payments = make([]ReceiptPaymentModel, len(r.Payments))
	for i, payment := range r.Payments {
		m.Payments[i] = *ReceiptPaymentModelFromDomain(&payment)
	}
}

// ReceiptModelFromDomain creates a new persistence model from a domain Receipt entity.
func ReceiptModelFromDomain(r *receipt.Receipt) *ReceiptModel {
	m := &ReceiptModel{}
	m.FromDomain(r)
	return m
}

// ReceiptItemModel is the persistence model for a receipt line item.
type ReceiptItemModel struct {
	BaseModel
	ReceiptID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:varchar(300);not null"`
	Month       int             `gorm:"not null"`
	Year        int             `gorm:"not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (ReceiptItemModel) TableName() string {
	return "receipt_items"
}

// ToDomain converts the persistence model to a domain Item entity.
func (m *ReceiptItemModel) ToDomain() *receipt.Item {
	return &receipt.Item{
		BaseEntity:  m.BaseModel.ToDomain(),
		ReceiptID:   m.ReceiptID,
		Description: m.Description,
		Month:       m.Month,
		Year:        m.Year,
		Amount:      m.Amount,
	}
}

// FromDomain populates the persistence model from a domain Item entity.
func (m *ReceiptItemModel) FromDomain(i *receipt.Item) {
	m.FromDomainBaseEntity(i.BaseEntity)
	m.ReceiptID = i.ReceiptID
	m.Description = i.Description
	m.Month = i.Month
	m.Year = i.Year
	m.Amount = i.Amount
}

// ReceiptItemModelFromDomain creates a new persistence model from a domain Item entity.
func ReceiptItemModelFromDomain(i *receipt.Item) *ReceiptItemModel {
	m := &ReceiptItemModel{}
	m.FromDomain(i)
	return m
}

// ReceiptPaymentModel is the persistence model for a receipt payment.
type ReceiptPaymentModel struct {
	BaseModel
	ReceiptID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentMethodID uuid.UUID       `gorm:"type:uuid;not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CheckNumbers    string          `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (ReceiptPaymentModel) TableName() string {
	return "receipt_payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *ReceiptPaymentModel) ToDomain() *receipt.Payment {
	return &receipt.Payment{
		BaseEntity:      m.BaseModel.ToDomain(),
		ReceiptID:       m.ReceiptID,
		PaymentMethodID: m.PaymentMethodID,
		Amount:          m.Amount,
		CheckNumbers:    m.CheckNumbers,
	}
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *ReceiptPaymentModel) FromDomain(p *receipt.Payment) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.ReceiptID = p.ReceiptID
	m.PaymentMethodID = p.PaymentMethodID
	m.Amount = p.Amount
	m.CheckNumbers = p.CheckNumbers
}

// ReceiptPaymentModelFromDomain creates a new persistence model from a domain Payment entity.
func ReceiptPaymentModelFromDomain(p *receipt.Payment) *ReceiptPaymentModel {
	m := &ReceiptPaymentModel{}
	m.FromDomain(p)
	return m
}

// SystemCounterModel is the persistence model for the generic named
// counter table. The receipt counter is the single row keyed by
// receipt.CounterKey; it is always read FOR UPDATE inside the issuing
// transaction.
type SystemCounterModel struct {
	Key       string    `gorm:"type:varchar(100);primary_key"`
	Value     int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SystemCounterModel) TableName() string {
	return "system_counters"
}
