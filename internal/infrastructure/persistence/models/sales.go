package models

import (
	"time"

	"github.com/backoffice/backend/internal/domain/ledger"
	"github.com/backoffice/backend/internal/domain/sales"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleModel is the persistence model for the Sale aggregate root.
type SaleModel struct {
	AggregateModel
	SaleNumber      string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID      uuid.UUID            `gorm:"type:uuid;not null;index"`
	CustomerName    string               `gorm:"type:varchar(200)"`
	SalespersonID   *uuid.UUID           `gorm:"type:uuid"`
	SalespersonName string               `gorm:"type:varchar(200)"`
	Total           decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	IssueDate       time.Time            `gorm:"not null;index"`
	DueDate         *time.Time           `gorm:"index"`
	PaymentMethod   ledger.PaymentMethod `gorm:"type:varchar(20);not null"`
	Status          sales.SaleStatus     `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	FinalizedAt     *time.Time
	CancelledAt     *time.Time
	Notes           string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// ToDomain converts the persistence model to a domain Sale entity.
func (m *SaleModel) ToDomain() *sales.Sale {
	s := &sales.Sale{
		SaleNumber:      m.SaleNumber,
		CustomerID:      m.CustomerID,
		CustomerName:    m.CustomerName,
		SalespersonID:   m.SalespersonID,
		SalespersonName: m.SalespersonName,
		Total:           m.Total,
		IssueDate:       m.IssueDate,
		DueDate:         m.DueDate,
		PaymentMethod:   m.PaymentMethod,
		Status:          m.Status,
		FinalizedAt:     m.FinalizedAt,
		CancelledAt:     m.CancelledAt,
		Notes:           m.Notes,
	}
	m.PopulateAggregateRoot(&s.BaseAggregateRoot)
	return s
}

// FromDomain populates the persistence model from a domain Sale entity.
func (m *SaleModel) FromDomain(s *sales.Sale) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.SaleNumber = s.SaleNumber
	m.CustomerID = s.CustomerID
	m.CustomerName = s.CustomerName
	m.SalespersonID = s.SalespersonID
	m.SalespersonName = s.SalespersonName
	m.Total = s.Total
	m.IssueDate = s.IssueDate
	m.DueDate = s.DueDate
	m.PaymentMethod = s.PaymentMethod
	m.Status = s.Status
	m.FinalizedAt = s.FinalizedAt
	m.CancelledAt = s.CancelledAt
	m.Notes = s.Notes
}

// SaleModelFromDomain creates a new persistence model from a domain Sale.
func SaleModelFromDomain(s *sales.Sale) *SaleModel {
	m := &SaleModel{}
	m.FromDomain(s)
	return m
}
