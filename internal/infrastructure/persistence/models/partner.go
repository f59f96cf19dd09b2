package models

import (
	"github.com/backoffice/backend/internal/domain/partner"
)

// CounterpartyModel is the persistence model for customers and suppliers.
type CounterpartyModel struct {
	BaseModel
	Kind     partner.CounterpartyKind `gorm:"type:varchar(12);not null;index"`
	Name     string                   `gorm:"type:varchar(200);not null;index"`
	Document string                   `gorm:"type:varchar(20);index"`
	Email    string                   `gorm:"type:varchar(200)"`
	Phone    string                   `gorm:"type:varchar(30)"`
	Active   bool                     `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (CounterpartyModel) TableName() string {
	return "counterparties"
}

// ToDomain converts the persistence model to a domain Counterparty entity.
func (m *CounterpartyModel) ToDomain() *partner.Counterparty {
	return &partner.Counterparty{
		BaseEntity: m.BaseModel.ToDomain(),
		Kind:       m.Kind,
		Name:       m.Name,
		Document:   m.Document,
		Email:      m.Email,
		Phone:      m.Phone,
		Active:     m.Active,
	}
}

// FromDomain populates the persistence model from a domain Counterparty entity.
func (m *CounterpartyModel) FromDomain(c *partner.Counterparty) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.Kind = c.Kind
	m.Name = c.Name
	m.Document = c.Document
	m.Email = c.Email
	m.Phone = c.Phone
	m.Active = c.Active
}

// CounterpartyModelFromDomain creates a new persistence model from a domain Counterparty.
func CounterpartyModelFromDomain(c *partner.Counterparty) *CounterpartyModel {
	m := &CounterpartyModel{}
	m.FromDomain(c)
	return m
}
