package models

import (
	"time"

	"github.com/estudio/backend/internal/domain/expense"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseModel is the persistence model for the Expense aggregate root.
type ExpenseModel struct {
	BaseModel
	Description string              `gorm:"type:varchar(300);not null"`
	Amount      decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	Date        time.Time           `gorm:"not null;index"`
	CreatedBy   *uuid.UUID          `gorm:"type:uuid"`
	Splits      []ExpenseSplitModel `gorm:"foreignKey:ExpenseID;references:ID"`
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts the persistence model to a domain Expense entity.
func (m *ExpenseModel) ToDomain() *expense.Expense {
	e := &expense.Expense{
		BaseEntity:  m.BaseModel.ToDomain(),
		Description: m.Description,
		Amount:      m.Amount,
		Date:        m.Date,
		CreatedBy:   m.CreatedBy,
		Splits:      make([]expense.Split, len(m.Splits)),
	}
	for i, split := range m.Splits {
		e.Splits[i] = *split.ToDomain()
	}
	return e
}

// FromDomain populates the persistence model from a domain Expense entity.
func (m *ExpenseModel) FromDomain(e *expense.Expense) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.Description = e.Description
	m.Amount = e.Amount
	m.Date = e.Date
	m.CreatedBy = e.CreatedBy
	m.Splits = make([]ExpenseSplitModel, len(e.Splits))
	for i, split := range e.Splits {
		m.Splits[i] = *ExpenseSplitModelFromDomain(&split)
	}
}

// ExpenseModelFromDomain creates a new persistence model from a domain Expense entity.
func ExpenseModelFromDomain(e *expense.Expense) *ExpenseModel {
	m := &ExpenseModel{}
	m.FromDomain(e)
	return m
}

// ExpenseSplitModel is the persistence model for an expense payment split.
type ExpenseSplitModel struct {
	BaseModel
	ExpenseID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentMethodID uuid.UUID       `gorm:"type:uuid;not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CheckReference  string          `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (ExpenseSplitModel) TableName() string {
	return "expense_splits"
}

// ToDomain converts the persistence model to a domain Split entity.
func (m *ExpenseSplitModel) ToDomain() *expense.Split {
	return &expense.Split{
		BaseEntity:      m.BaseModel.ToDomain(),
		ExpenseID:       m.ExpenseID,
		PaymentMethodID: m.PaymentMethodID,
		Amount:          m.Amount,
		CheckReference:  m.CheckReference,
	}
}

// FromDomain populates the persistence model from a domain Split entity.
func (m *ExpenseSplitModel) FromDomain(s *expense.Split) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.ExpenseID = s.ExpenseID
	m.PaymentMethodID = s.PaymentMethodID
	m.Amount = s.Amount
	m.CheckReference = s.CheckReference
}

// ExpenseSplitModelFromDomain creates a new persistence model from a domain Split entity.
func ExpenseSplitModelFromDomain(s *expense.Split) *ExpenseSplitModel {
	m := &ExpenseSplitModel{}
	m.FromDomain(s)
	return m
}
