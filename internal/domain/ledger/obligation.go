package ledger

import (
	"fmt"
	"time"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Polarity indicates whether an obligation is money owed by the business
// (Payable) or money owed to the business (Receivable)
type Polarity string

const (
	PolarityPayable    Polarity = "PAYABLE"
	PolarityReceivable Polarity = "RECEIVABLE"
)

// IsValid checks if the polarity is valid
func (p Polarity) IsValid() bool {
	return p == PolarityPayable || p == PolarityReceivable
}

// String returns the string representation of Polarity
func (p Polarity) String() string {
	return string(p)
}

// SequencePrefix returns the ledger-number prefix for the polarity
func (p Polarity) SequencePrefix() string {
	if p == PolarityPayable {
		return "AP"
	}
	return "AR"
}

// ObligationStatus represents the status of an obligation
type ObligationStatus string

const (
	ObligationStatusPending          ObligationStatus = "PENDING"           // Created, nothing settled yet
	ObligationStatusPartiallySettled ObligationStatus = "PARTIALLY_SETTLED" // 0 < settled < original
	ObligationStatusOverdue          ObligationStatus = "OVERDUE"           // Past due, refreshed label
	ObligationStatusSettled          ObligationStatus = "SETTLED"           // Fully settled, terminal
	ObligationStatusCancelled        ObligationStatus = "CANCELLED"         // Cancelled, terminal
)

// IsValid checks if the status is a valid ObligationStatus
func (s ObligationStatus) IsValid() bool {
	switch s {
	case ObligationStatusPending, ObligationStatusPartiallySettled, ObligationStatusOverdue,
		ObligationStatusSettled, ObligationStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of ObligationStatus
func (s ObligationStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the obligation is in a terminal state.
// Overdue is a derived label, not a gate: only Settled and Cancelled
// block further settlement or cancellation.
func (s ObligationStatus) IsTerminal() bool {
	return s == ObligationStatusSettled || s == ObligationStatusCancelled
}

// CanSettle returns true if settlements can be applied in this status
func (s ObligationStatus) CanSettle() bool {
	return !s.IsTerminal()
}

// PaymentMethod represents how an obligation was settled
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodPix          PaymentMethod = "PIX"
	PaymentMethodCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentMethodDebitCard    PaymentMethod = "DEBIT_CARD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodBoleto       PaymentMethod = "BOLETO"
	PaymentMethodCheck        PaymentMethod = "CHECK"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodPix, PaymentMethodCreditCard,
		PaymentMethodDebitCard, PaymentMethodBankTransfer, PaymentMethodBoleto,
		PaymentMethodCheck:
		return true
	}
	return false
}

// IsDeferred returns true for methods that imply payment at a later date
// regardless of the stated due date (invoice/boleto billing)
func (m PaymentMethod) IsDeferred() bool {
	return m == PaymentMethodBoleto
}

// PayableCategory classifies payables for reporting (Payable-only attribute)
type PayableCategory string

const (
	PayableCategorySuppliers PayableCategory = "SUPPLIERS"
	PayableCategoryRent      PayableCategory = "RENT"
	PayableCategoryUtilities PayableCategory = "UTILITIES"
	PayableCategoryPayroll   PayableCategory = "PAYROLL"
	PayableCategoryTaxes     PayableCategory = "TAXES"
	PayableCategoryOther     PayableCategory = "OTHER"
)

// IsValid checks if the category is valid
func (c PayableCategory) IsValid() bool {
	switch c {
	case PayableCategorySuppliers, PayableCategoryRent, PayableCategoryUtilities,
		PayableCategoryPayroll, PayableCategoryTaxes, PayableCategoryOther:
		return true
	}
	return false
}

// Obligation represents a single payable or receivable ledger entry.
// One generic shape serves both polarities; polarity-specific attributes
// (CostCenter/Category for payables, Salesperson for receivables) are
// layered on top and left zero-valued for the other polarity.
type Obligation struct {
	shared.BaseAggregateRoot
	Polarity               Polarity         `json:"polarity"`
	SequenceNumber         string           `json:"sequence_number"`
	Description            string           `json:"description"`
	CounterpartyID         uuid.UUID        `json:"counterparty_id"`
	CounterpartyName       string           `json:"counterparty_name"` // snapshot at creation, not kept in sync
	SourceDocumentID       *uuid.UUID       `json:"source_document_id,omitempty"`
	OriginalAmount         decimal.Decimal  `json:"original_amount"`
	Discount               decimal.Decimal  `json:"discount"`
	Interest               decimal.Decimal  `json:"interest"`
	Penalty                decimal.Decimal  `json:"penalty"`
	SettledAmount          decimal.Decimal  `json:"settled_amount"`
	RemainingAmount        decimal.Decimal  `json:"remaining_amount"`
	IssueDate              time.Time        `json:"issue_date"`
	DueDate                time.Time        `json:"due_date"`
	SettlementDate         *time.Time       `json:"settlement_date,omitempty"`
	Status                 ObligationStatus `json:"status"`
	PaymentMethod          PaymentMethod    `json:"payment_method,omitempty"`
	IsRecurring            bool             `json:"is_recurring"`
	RecurrenceKind         *RecurrenceKind  `json:"recurrence_kind,omitempty"`
	RecurrenceIntervalDays *int             `json:"recurrence_interval_days,omitempty"`
	Notes                  string           `json:"notes,omitempty"`
	CostCenter             string           `json:"cost_center,omitempty"` // Payable only
	Category               PayableCategory  `json:"category,omitempty"`    // Payable only
	SalespersonID          *uuid.UUID       `json:"salesperson_id,omitempty"`
	SalespersonName        string           `json:"salesperson_name,omitempty"`
	Active                 bool             `json:"active"`
}

// NewObligation creates a new obligation in Pending status.
// The sequence number is assigned by the repository at creation time;
// counterpartyName is a best-effort snapshot and may be empty.
func NewObligation(
	polarity Polarity,
	sequenceNumber string,
	description string,
	counterpartyID uuid.UUID,
	counterpartyName string,
	originalAmount valueobject.Money,
	issueDate time.Time,
	dueDate time.Time,
) (*Obligation, error) {
	if !polarity.IsValid() {
		return nil, shared.NewDomainError("INVALID_POLARITY", "Polarity must be PAYABLE or RECEIVABLE")
	}
	if sequenceNumber == "" {
		return nil, shared.NewDomainError("INVALID_SEQUENCE_NUMBER", "Sequence number cannot be empty")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	if counterpartyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COUNTERPARTY", "Counterparty ID cannot be empty")
	}
	if originalAmount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Original amount must be positive")
	}

	o := &Obligation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Polarity:          polarity,
		SequenceNumber:    sequenceNumber,
		Description:       description,
		CounterpartyID:    counterpartyID,
		CounterpartyName:  counterpartyName,
		OriginalAmount:    originalAmount.Amount(),
		Discount:          decimal.Zero,
		Interest:          decimal.Zero,
		Penalty:           decimal.Zero,
		SettledAmount:     decimal.Zero,
		RemainingAmount:   originalAmount.Amount(),
		IssueDate:         issueDate,
		DueDate:           dueDate,
		Status:            ObligationStatusPending,
		Active:            true,
	}

	o.AddDomainEvent(NewObligationCreatedEvent(o))

	return o, nil
}

// Settle applies a partial or full settlement against the obligation.
// The payment method and settlement date are overwritten on every call:
// the last settlement wins. No field is mutated when the call is rejected.
func (o *Obligation) Settle(amount valueobject.Money, method PaymentMethod, date time.Time) error {
	if !o.Status.CanSettle() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot settle obligation in %s status", o.Status))
	}
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Settlement amount must be positive")
	}
	if amount.Amount().GreaterThan(o.RemainingAmount) {
		return shared.NewDomainError("INVALID_AMOUNT", fmt.Sprintf("Settlement amount %s exceeds remaining amount %s",
			amount.Amount().StringFixed(2), o.RemainingAmount.StringFixed(2)))
	}

	o.SettledAmount = o.SettledAmount.Add(amount.Amount())
	o.RemainingAmount = o.OriginalAmount.Sub(o.SettledAmount)
	o.PaymentMethod = method
	settledAt := date
	o.SettlementDate = &settledAt

	if o.RemainingAmount.IsZero() {
		o.Status = ObligationStatusSettled
		o.AddDomainEvent(NewObligationSettledEvent(o, amount.Amount()))
	} else {
		o.Status = ObligationStatusPartiallySettled
		o.AddDomainEvent(NewObligationPartiallySettledEvent(o, amount.Amount()))
	}

	o.Touch()
	o.IncrementVersion()

	return nil
}

// Cancel cancels the obligation. Cancellation is allowed from any
// non-terminal state, including PartiallySettled; money already settled
// is not reversed.
func (o *Obligation) Cancel() error {
	if o.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel obligation in %s status", o.Status))
	}

	o.Status = ObligationStatusCancelled
	o.Touch()
	o.IncrementVersion()

	o.AddDomainEvent(NewObligationCancelledEvent(o))

	return nil
}

// IsOverdue reports the persisted Overdue label. The label is written by
// RefreshStatus, not derived live; callers that need a live answer should
// compare DueDate themselves (ComputeInterest does).
func (o *Obligation) IsOverdue() bool {
	return o.Status == ObligationStatusOverdue
}

// RefreshStatus flips a Pending or PartiallySettled obligation to Overdue
// once its due date has passed. It is idempotent and returns true when the
// status changed.
func (o *Obligation) RefreshStatus(today time.Time) bool {
	if o.Status != ObligationStatusPending && o.Status != ObligationStatusPartiallySettled {
		return false
	}
	if !dateOnly(o.DueDate).Before(dateOnly(today)) {
		return false
	}

	o.Status = ObligationStatusOverdue
	o.Touch()
	o.IncrementVersion()

	return true
}

// ComputeInterest returns the simple interest accrued by asOfDate at the
// given daily rate: originalAmount * dailyRate * daysLate. The overdue
// check is a live date comparison against DueDate, independent of the
// stored status label. Pure, no mutation.
func (o *Obligation) ComputeInterest(asOfDate time.Time, dailyRate decimal.Decimal) decimal.Decimal {
	daysLate := daysBetween(dateOnly(o.DueDate), dateOnly(asOfDate))
	if daysLate <= 0 {
		return decimal.Zero
	}
	return o.OriginalAmount.Mul(dailyRate).Mul(decimal.NewFromInt(int64(daysLate)))
}

// GenerateNextInstallment returns the successor installment of a recurring
// obligation, or nil when the obligation is not recurring or carries no
// usable recurrence rule. The receiver is not mutated and the successor is
// not persisted; both are the service's responsibility.
func (o *Obligation) GenerateNextInstallment() *Obligation {
	if !o.IsRecurring {
		return nil
	}

	var nextDue time.Time
	switch {
	case o.RecurrenceKind != nil:
		nextDue = NextDueDate(o.DueDate, *o.RecurrenceKind)
	case o.RecurrenceIntervalDays != nil && *o.RecurrenceIntervalDays > 0:
		nextDue = o.DueDate.AddDate(0, 0, *o.RecurrenceIntervalDays)
	default:
		return nil
	}

	next := &Obligation{
		BaseAggregateRoot:      shared.NewBaseAggregateRoot(),
		Polarity:               o.Polarity,
		Description:            o.Description,
		CounterpartyID:         o.CounterpartyID,
		CounterpartyName:       o.CounterpartyName,
		OriginalAmount:         o.OriginalAmount,
		Discount:               decimal.Zero,
		Interest:               decimal.Zero,
		Penalty:                decimal.Zero,
		SettledAmount:          decimal.Zero,
		RemainingAmount:        o.OriginalAmount,
		IssueDate:              time.Now(),
		DueDate:                nextDue,
		Status:                 ObligationStatusPending,
		IsRecurring:            true,
		RecurrenceKind:         o.RecurrenceKind,
		RecurrenceIntervalDays: o.RecurrenceIntervalDays,
		CostCenter:             o.CostCenter,
		Category:               o.Category,
		SalespersonID:          o.SalespersonID,
		SalespersonName:        o.SalespersonName,
		Active:                 true,
	}

	return next
}

// AppendNote appends a tagged note without replacing prior notes
func (o *Obligation) AppendNote(tag, note string) {
	if note == "" {
		return
	}
	entry := fmt.Sprintf("[%s] %s", tag, note)
	if o.Notes == "" {
		o.Notes = entry
	} else {
		o.Notes = o.Notes + "\n" + entry
	}
	o.Touch()
}

// Helper methods

// GetOriginalAmountMoney returns the original amount as Money
func (o *Obligation) GetOriginalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyBRL(o.OriginalAmount)
}

// GetSettledAmountMoney returns the settled amount as Money
func (o *Obligation) GetSettledAmountMoney() valueobject.Money {
	return valueobject.NewMoneyBRL(o.SettledAmount)
}

// GetRemainingAmountMoney returns the remaining amount as Money
func (o *Obligation) GetRemainingAmountMoney() valueobject.Money {
	return valueobject.NewMoneyBRL(o.RemainingAmount)
}

// IsPending returns true if the obligation is pending
func (o *Obligation) IsPending() bool {
	return o.Status == ObligationStatusPending
}

// IsPartiallySettled returns true if the obligation is partially settled
func (o *Obligation) IsPartiallySettled() bool {
	return o.Status == ObligationStatusPartiallySettled
}

// IsSettled returns true if the obligation is fully settled
func (o *Obligation) IsSettled() bool {
	return o.Status == ObligationStatusSettled
}

// IsCancelled returns true if the obligation is cancelled
func (o *Obligation) IsCancelled() bool {
	return o.Status == ObligationStatusCancelled
}

// dateOnly truncates a timestamp to its calendar date in its own location
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween returns the whole calendar days from a to b. Both dates are
// re-anchored to UTC midnight first, so the count is a pure calendar
// difference unaffected by zone offsets or daylight-saving shifts.
func daysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}
