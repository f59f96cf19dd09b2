package ledger

import (
	"time"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type names for the obligation aggregate
const (
	EventTypeObligationCreated          = "ObligationCreated"
	EventTypeObligationSettled          = "ObligationSettled"
	EventTypeObligationPartiallySettled = "ObligationPartiallySettled"
	EventTypeObligationCancelled        = "ObligationCancelled"
)

// ObligationCreatedEvent is raised when a new obligation is created
type ObligationCreatedEvent struct {
	shared.BaseDomainEvent
	ObligationID     uuid.UUID       `json:"obligation_id"`
	Polarity         Polarity        `json:"polarity"`
	SequenceNumber   string          `json:"sequence_number"`
	CounterpartyID   uuid.UUID       `json:"counterparty_id"`
	CounterpartyName string          `json:"counterparty_name"`
	OriginalAmount   decimal.Decimal `json:"original_amount"`
	DueDate          time.Time       `json:"due_date"`
}

// NewObligationCreatedEvent creates a new ObligationCreatedEvent
func NewObligationCreatedEvent(o *Obligation) *ObligationCreatedEvent {
	return &ObligationCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeObligationCreated, "Obligation", o.ID),
		ObligationID:     o.ID,
		Polarity:         o.Polarity,
		SequenceNumber:   o.SequenceNumber,
		CounterpartyID:   o.CounterpartyID,
		CounterpartyName: o.CounterpartyName,
		OriginalAmount:   o.OriginalAmount,
		DueDate:          o.DueDate,
	}
}

// ObligationSettledEvent is raised when an obligation becomes fully settled
type ObligationSettledEvent struct {
	shared.BaseDomainEvent
	ObligationID   uuid.UUID       `json:"obligation_id"`
	Polarity       Polarity        `json:"polarity"`
	SequenceNumber string          `json:"sequence_number"`
	Amount         decimal.Decimal `json:"amount"`
	SettledAmount  decimal.Decimal `json:"settled_amount"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
}

// NewObligationSettledEvent creates a new ObligationSettledEvent
func NewObligationSettledEvent(o *Obligation, amount decimal.Decimal) *ObligationSettledEvent {
	return &ObligationSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeObligationSettled, "Obligation", o.ID),
		ObligationID:    o.ID,
		Polarity:        o.Polarity,
		SequenceNumber:  o.SequenceNumber,
		Amount:          amount,
		SettledAmount:   o.SettledAmount,
		PaymentMethod:   o.PaymentMethod,
	}
}

// ObligationPartiallySettledEvent is raised on a partial settlement
type ObligationPartiallySettledEvent struct {
	shared.BaseDomainEvent
	ObligationID    uuid.UUID       `json:"obligation_id"`
	Polarity        Polarity        `json:"polarity"`
	SequenceNumber  string          `json:"sequence_number"`
	Amount          decimal.Decimal `json:"amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
}

// NewObligationPartiallySettledEvent creates a new ObligationPartiallySettledEvent
func NewObligationPartiallySettledEvent(o *Obligation, amount decimal.Decimal) *ObligationPartiallySettledEvent {
	return &ObligationPartiallySettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeObligationPartiallySettled, "Obligation", o.ID),
		ObligationID:    o.ID,
		Polarity:        o.Polarity,
		SequenceNumber:  o.SequenceNumber,
		Amount:          amount,
		RemainingAmount: o.RemainingAmount,
		PaymentMethod:   o.PaymentMethod,
	}
}

// ObligationCancelledEvent is raised when an obligation is cancelled
type ObligationCancelledEvent struct {
	shared.BaseDomainEvent
	ObligationID    uuid.UUID       `json:"obligation_id"`
	Polarity        Polarity        `json:"polarity"`
	SequenceNumber  string          `json:"sequence_number"`
	SettledAmount   decimal.Decimal `json:"settled_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
}

// NewObligationCancelledEvent creates a new ObligationCancelledEvent
func NewObligationCancelledEvent(o *Obligation) *ObligationCancelledEvent {
	return &ObligationCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeObligationCancelled, "Obligation", o.ID),
		ObligationID:    o.ID,
		Polarity:        o.Polarity,
		SequenceNumber:  o.SequenceNumber,
		SettledAmount:   o.SettledAmount,
		RemainingAmount: o.RemainingAmount,
	}
}
