package sales

import (
	"fmt"
	"time"

	"github.com/backoffice/backend/internal/domain/ledger"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCreditTermDays is the due-date term applied when an invoice sale
// carries no explicit due date
const DefaultCreditTermDays = 30

// SaleStatus represents the lifecycle status of a sale
type SaleStatus string

const (
	SaleStatusDraft     SaleStatus = "DRAFT"     // Created, not finalized
	SaleStatusFinalized SaleStatus = "FINALIZED" // Completed and handed to finance
	SaleStatusCancelled SaleStatus = "CANCELLED" // Cancelled, terminal
)

// IsValid checks if the status is a valid SaleStatus
func (s SaleStatus) IsValid() bool {
	switch s {
	case SaleStatusDraft, SaleStatusFinalized, SaleStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of SaleStatus
func (s SaleStatus) String() string {
	return string(s)
}

// Sale is the sale aggregate as consumed by the ledger: totals, payment
// terms, and a customer snapshot. Line items live in the catalog-facing
// subsystem and are out of scope here.
type Sale struct {
	shared.BaseAggregateRoot
	SaleNumber      string               `json:"sale_number"`
	CustomerID      uuid.UUID            `json:"customer_id"`
	CustomerName    string               `json:"customer_name"`
	SalespersonID   *uuid.UUID           `json:"salesperson_id,omitempty"`
	SalespersonName string               `json:"salesperson_name,omitempty"`
	Total           decimal.Decimal      `json:"total"`
	IssueDate       time.Time            `json:"issue_date"`
	DueDate         *time.Time           `json:"due_date,omitempty"`
	PaymentMethod   ledger.PaymentMethod `json:"payment_method"`
	Status          SaleStatus           `json:"status"`
	FinalizedAt     *time.Time           `json:"finalized_at,omitempty"`
	CancelledAt     *time.Time           `json:"cancelled_at,omitempty"`
	Notes           string               `json:"notes,omitempty"`
}

// NewSale creates a new sale in Draft status
func NewSale(
	saleNumber string,
	customerID uuid.UUID,
	customerName string,
	total valueobject.Money,
	issueDate time.Time,
	dueDate *time.Time,
	paymentMethod ledger.PaymentMethod,
) (*Sale, error) {
	if saleNumber == "" {
		return nil, shared.NewDomainError("INVALID_SALE_NUMBER", "Sale number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if total.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Sale total must be positive")
	}
	if !paymentMethod.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}

	s := &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SaleNumber:        saleNumber,
		CustomerID:        customerID,
		CustomerName:      customerName,
		Total:             total.Amount(),
		IssueDate:         issueDate,
		DueDate:           dueDate,
		PaymentMethod:     paymentMethod,
		Status:            SaleStatusDraft,
	}

	s.AddDomainEvent(NewSaleCreatedEvent(s))

	return s, nil
}

// Finalize completes the sale
func (s *Sale) Finalize() error {
	if s.Status != SaleStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot finalize sale in %s status", s.Status))
	}

	now := time.Now()
	s.Status = SaleStatusFinalized
	s.FinalizedAt = &now
	s.UpdatedAt = now
	s.IncrementVersion()

	s.AddDomainEvent(NewSaleFinalizedEvent(s))

	return nil
}

// Cancel cancels the sale. A finalized sale may still be cancelled.
func (s *Sale) Cancel() error {
	if s.Status == SaleStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Sale is already cancelled")
	}

	now := time.Now()
	s.Status = SaleStatusCancelled
	s.CancelledAt = &now
	s.UpdatedAt = now
	s.IncrementVersion()

	s.AddDomainEvent(NewSaleCancelledEvent(s))

	return nil
}

// IsOnCredit reports whether payment is deferred past the sale date: the
// due date falls strictly after the issue date, or the payment method is
// invoice/boleto billing regardless of due date.
func (s *Sale) IsOnCredit() bool {
	if s.PaymentMethod.IsDeferred() {
		return true
	}
	if s.DueDate == nil {
		return false
	}
	due := time.Date(s.DueDate.Year(), s.DueDate.Month(), s.DueDate.Day(), 0, 0, 0, 0, s.DueDate.Location())
	issued := time.Date(s.IssueDate.Year(), s.IssueDate.Month(), s.IssueDate.Day(), 0, 0, 0, 0, s.IssueDate.Location())
	return due.After(issued)
}

// EffectiveDueDate returns the due date for receivable creation: the sale's
// own due date, or issue date plus the default credit term when absent.
func (s *Sale) EffectiveDueDate() time.Time {
	if s.DueDate != nil {
		return *s.DueDate
	}
	return s.IssueDate.AddDate(0, 0, DefaultCreditTermDays)
}

// GetTotalMoney returns the sale total as Money
func (s *Sale) GetTotalMoney() valueobject.Money {
	return valueobject.NewMoneyBRL(s.Total)
}

// IsFinalized returns true if the sale has been finalized
func (s *Sale) IsFinalized() bool {
	return s.Status == SaleStatusFinalized
}

// IsCancelled returns true if the sale has been cancelled
func (s *Sale) IsCancelled() bool {
	return s.Status == SaleStatusCancelled
}
