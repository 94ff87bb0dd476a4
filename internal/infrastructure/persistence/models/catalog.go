package models

import (
	"github.com/estudio/backend/internal/domain/catalog"
)

// ClientModel is the persistence model for a client of the practice.
type ClientModel struct {
	BaseModel
	Name    string `gorm:"type:varchar(200);not null;index"`
	TaxID   string `gorm:"type:varchar(50);index"`
	Email   string `gorm:"type:varchar(200)"`
	Phone   string `gorm:"type:varchar(50)"`
	Address string `gorm:"type:varchar(300)"`
	Active  bool   `gorm:"not null;default:true;index"`
	Notes   string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the persistence model to a domain Client entity.
func (m *ClientModel) ToDomain() *catalog.Client {
	return &catalog.Client{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		TaxID:      m.TaxID,
		Email:      m.Email,
		Phone:      m.Phone,
		Address:    m.Address,
		Active:     m.Active,
		Notes:      m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Client entity.
func (m *ClientModel) FromDomain(c *catalog.Client) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.Name = c.Name
	m.TaxID = c.TaxID
	m.Email = c.Email
	m.Phone = c.Phone
	m.Address = c.Address
	m.Active = c.Active
	m.Notes = c.Notes
}

// ClientModelFromDomain creates a new persistence model from a domain Client entity.
func ClientModelFromDomain(c *catalog.Client) *ClientModel {
	m := &ClientModel{}
	m.FromDomain(c)
	return m
}

// PaymentMethodModel is the persistence model for a payment method.
type PaymentMethodModel struct {
	BaseModel
	Name          string `gorm:"type:varchar(100);not null;uniqueIndex:idx_payment_methods_name"`
	RequiresCheck bool   `gorm:"not null;default:false"`
	Active        bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (PaymentMethodModel) TableName() string {
	return "payment_methods"
}

// ToDomain converts the persistence model to a domain PaymentMethod entity.
func (m *PaymentMethodModel) ToDomain() *catalog.PaymentMethod {
	return &catalog.PaymentMethod{
		BaseEntity:    m.BaseModel.ToDomain(),
		Name:          m.Name,
		RequiresCheck: m.RequiresCheck,
		Active:        m.Active,
	}
}

// FromDomain populates the persistence model from a domain PaymentMethod entity.
func (m *PaymentMethodModel) FromDomain(p *catalog.PaymentMethod) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.Name = p.Name
	m.RequiresCheck = p.RequiresCheck
	m.Active = p.Active
}

// PaymentMethodModelFromDomain creates a new persistence model from a domain PaymentMethod entity.
func PaymentMethodModelFromDomain(p *catalog.PaymentMethod) *PaymentMethodModel {
	m := &PaymentMethodModel{}
	m.FromDomain(p)
	return m
}

// ConceptModel is the persistence model for a reusable billing concept.
type ConceptModel struct {
	BaseModel
	Description string `gorm:"type:varchar(300);not null"`
	Active      bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ConceptModel) TableName() string {
	return "concepts"
}

// ToDomain converts the persistence model to a domain Concept entity.
func (m *ConceptModel) ToDomain() *catalog.Concept {
	return &catalog.Concept{
		BaseEntity:  m.BaseModel.ToDomain(),
		Description: m.Description,
		Active:      m.Active,
	}
}

// FromDomain populates the persistence model from a domain Concept entity.
func (m *ConceptModel) FromDomain(c *catalog.Concept) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.Description = c.Description
	m.Active = c.Active
}

// ConceptModelFromDomain creates a new persistence model from a domain Concept entity.
func ConceptModelFromDomain(c *catalog.Concept) *ConceptModel {
	m := &ConceptModel{}
	m.FromDomain(c)
	return m
}
