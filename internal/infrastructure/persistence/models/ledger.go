package models

import (
	"time"

	"github.com/backoffice/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ObligationModel is the persistence model for the Obligation aggregate root.
// Payables and receivables share one table, discriminated by polarity.
type ObligationModel struct {
	AggregateModel
	Polarity               ledger.Polarity         `gorm:"type:varchar(12);not null;index;uniqueIndex:idx_obligation_polarity_sequence,priority:1"`
	SequenceNumber         string                  `gorm:"type:varchar(50);not null;uniqueIndex:idx_obligation_polarity_sequence,priority:2"`
	Description            string                  `gorm:"type:varchar(500);not null"`
	CounterpartyID         uuid.UUID               `gorm:"type:uuid;not null;index"`
	CounterpartyName       string                  `gorm:"type:varchar(200)"`
	SourceDocumentID       *uuid.UUID              `gorm:"type:uuid;index"`
	OriginalAmount         decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Discount               decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	Interest               decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	Penalty                decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	SettledAmount          decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	RemainingAmount        decimal.Decimal         `gorm:"type:decimal(18,4);not null;index"`
	IssueDate              time.Time               `gorm:"not null;index"`
	DueDate                time.Time               `gorm:"not null;index"`
	SettlementDate         *time.Time              `gorm:"index"`
	Status                 ledger.ObligationStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	PaymentMethod          ledger.PaymentMethod    `gorm:"type:varchar(20)"`
	IsRecurring            bool                    `gorm:"not null;default:false;index"`
	RecurrenceKind         *ledger.RecurrenceKind  `gorm:"type:varchar(20)"`
	RecurrenceIntervalDays *int
	Notes                  string                 `gorm:"type:text"`
	CostCenter             string                 `gorm:"type:varchar(100)"`
	Category               ledger.PayableCategory `gorm:"type:varchar(30)"`
	SalespersonID          *uuid.UUID             `gorm:"type:uuid"`
	SalespersonName        string                 `gorm:"type:varchar(200)"`
	Active                 bool                   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ObligationModel) TableName() string {
	return "obligations"
}

// ToDomain converts the persistence model to a domain Obligation entity.
func (m *ObligationModel) ToDomain() *ledger.Obligation {
	o := &ledger.Obligation{
		Polarity:               m.Polarity,
		SequenceNumber:         m.SequenceNumber,
		Description:            m.Description,
		CounterpartyID:         m.CounterpartyID,
		CounterpartyName:       m.CounterpartyName,
		SourceDocumentID:       m.SourceDocumentID,
		OriginalAmount:         m.OriginalAmount,
		Discount:               m.Discount,
		Interest:               m.Interest,
		Penalty:                m.Penalty,
		SettledAmount:          m.SettledAmount,
		RemainingAmount:        m.RemainingAmount,
		IssueDate:              m.IssueDate,
		DueDate:                m.DueDate,
		SettlementDate:         m.SettlementDate,
		Status:                 m.Status,
		PaymentMethod:          m.PaymentMethod,
		IsRecurring:            m.IsRecurring,
		RecurrenceKind:         m.RecurrenceKind,
		RecurrenceIntervalDays: m.RecurrenceIntervalDays,
		Notes:                  m.Notes,
		CostCenter:             m.CostCenter,
		Category:               m.Category,
		SalespersonID:          m.SalespersonID,
		SalespersonName:        m.SalespersonName,
		Active:                 m.Active,
	}
	m.PopulateAggregateRoot(&o.BaseAggregateRoot)
	return o
}

// FromDomain populates the persistence model from a domain Obligation entity.
func (m *ObligationModel) FromDomain(o *ledger.Obligation) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.Polarity = o.Polarity
	m.SequenceNumber = o.SequenceNumber
	m.Description = o.Description
	m.CounterpartyID = o.CounterpartyID
	m.CounterpartyName = o.CounterpartyName
	m.SourceDocumentID = o.SourceDocumentID
	m.OriginalAmount = o.OriginalAmount
	m.Discount = o.Discount
	m.Interest = o.Interest
	m.Penalty = o.Penalty
	m.SettledAmount = o.SettledAmount
	m.RemainingAmount = o.RemainingAmount
	m.IssueDate = o.IssueDate
	m.DueDate = o.DueDate
	m.SettlementDate = o.SettlementDate
	m.Status = o.Status
	m.PaymentMethod = o.PaymentMethod
	m.IsRecurring = o.IsRecurring
	m.RecurrenceKind = o.RecurrenceKind
	m.RecurrenceIntervalDays = o.RecurrenceIntervalDays
	m.Notes = o.Notes
	m.CostCenter = o.CostCenter
	m.Category = o.Category
	m.SalespersonID = o.SalespersonID
	m.SalespersonName = o.SalespersonName
	m.Active = o.Active
}

// ObligationModelFromDomain creates a new persistence model from a domain Obligation.
func ObligationModelFromDomain(o *ledger.Obligation) *ObligationModel {
	m := &ObligationModel{}
	m.FromDomain(o)
	return m
}
