package sales

import (
	"time"

	"github.com/backoffice/backend/internal/domain/ledger"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type names for the sale aggregate
const (
	EventTypeSaleCreated   = "SaleCreated"
	EventTypeSaleFinalized = "SaleFinalized"
	EventTypeSaleCancelled = "SaleCancelled"
)

// SaleCreatedEvent is raised when a sale is created
type SaleCreatedEvent struct {
	shared.BaseDomainEvent
	SaleID        uuid.UUID            `json:"sale_id"`
	SaleNumber    string               `json:"sale_number"`
	CustomerID    uuid.UUID            `json:"customer_id"`
	CustomerName  string               `json:"customer_name"`
	Total         decimal.Decimal      `json:"total"`
	IssueDate     time.Time            `json:"issue_date"`
	DueDate       *time.Time           `json:"due_date,omitempty"`
	PaymentMethod ledger.PaymentMethod `json:"payment_method"`
	OnCredit      bool                 `json:"on_credit"`
}

// NewSaleCreatedEvent creates a new SaleCreatedEvent
func NewSaleCreatedEvent(s *Sale) *SaleCreatedEvent {
	return &SaleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCreated, "Sale", s.ID),
		SaleID:          s.ID,
		SaleNumber:      s.SaleNumber,
		CustomerID:      s.CustomerID,
		CustomerName:    s.CustomerName,
		Total:           s.Total,
		IssueDate:       s.IssueDate,
		DueDate:         s.DueDate,
		PaymentMethod:   s.PaymentMethod,
		OnCredit:        s.IsOnCredit(),
	}
}

// SaleFinalizedEvent is raised when a sale is finalized
type SaleFinalizedEvent struct {
	shared.BaseDomainEvent
	SaleID        uuid.UUID            `json:"sale_id"`
	SaleNumber    string               `json:"sale_number"`
	CustomerID    uuid.UUID            `json:"customer_id"`
	Total         decimal.Decimal      `json:"total"`
	PaymentMethod ledger.PaymentMethod `json:"payment_method"`
	OnCredit      bool                 `json:"on_credit"`
	FinalizedAt   time.Time            `json:"finalized_at"`
}

// NewSaleFinalizedEvent creates a new SaleFinalizedEvent
func NewSaleFinalizedEvent(s *Sale) *SaleFinalizedEvent {
	return &SaleFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleFinalized, "Sale", s.ID),
		SaleID:          s.ID,
		SaleNumber:      s.SaleNumber,
		CustomerID:      s.CustomerID,
		Total:           s.Total,
		PaymentMethod:   s.PaymentMethod,
		OnCredit:        s.IsOnCredit(),
		FinalizedAt:     *s.FinalizedAt,
	}
}

// SaleCancelledEvent is raised when a sale is cancelled
type SaleCancelledEvent struct {
	shared.BaseDomainEvent
	SaleID      uuid.UUID       `json:"sale_id"`
	SaleNumber  string          `json:"sale_number"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	Total       decimal.Decimal `json:"total"`
	CancelledAt time.Time       `json:"cancelled_at"`
}

// NewSaleCancelledEvent creates a new SaleCancelledEvent
func NewSaleCancelledEvent(s *Sale) *SaleCancelledEvent {
	return &SaleCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCancelled, "Sale", s.ID),
		SaleID:          s.ID,
		SaleNumber:      s.SaleNumber,
		CustomerID:      s.CustomerID,
		Total:           s.Total,
		CancelledAt:     *s.CancelledAt,
	}
}
