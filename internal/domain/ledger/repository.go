package ledger

import (
	"context"
	"time"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ObligationFilter defines filtering options for obligation queries.
// All fields are optional; a repository instance is already scoped to one
// polarity, so no polarity field appears here.
type ObligationFilter struct {
	shared.Filter
	CounterpartyID *uuid.UUID        // Filter by supplier/customer
	Status         *ObligationStatus // Filter by status
	Category       *PayableCategory  // Filter by category (payables only)
	DueFrom        *time.Time        // Filter by due date range start
	DueTo          *time.Time        // Filter by due date range end
	IssuedFrom     *time.Time        // Filter by issue date range start
	IssuedTo       *time.Time        // Filter by issue date range end
	Overdue        *bool             // Filter only overdue obligations
	Recurring      *bool             // Filter only recurring obligations
}

// ObligationRepository defines persistence for one polarity of the ledger.
// An implementation is constructed per polarity; sequence numbers are
// unique within that polarity.
type ObligationRepository interface {
	// FindByID finds an obligation by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Obligation, error)

	// FindBySequenceNumber finds an obligation by its ledger number
	FindBySequenceNumber(ctx context.Context, sequenceNumber string) (*Obligation, error)

	// FindBySource finds the obligation linked to a source document
	FindBySource(ctx context.Context, sourceDocumentID uuid.UUID) (*Obligation, error)

	// ExistsBySource checks whether an obligation is already linked to a source document
	ExistsBySource(ctx context.Context, sourceDocumentID uuid.UUID) (bool, error)

	// FindAll finds obligations with filtering
	FindAll(ctx context.Context, filter ObligationFilter) ([]Obligation, error)

	// FindByStatus finds obligations in a given status
	FindByStatus(ctx context.Context, status ObligationStatus, filter ObligationFilter) ([]Obligation, error)

	// FindByCounterparty finds obligations for a supplier/customer
	FindByCounterparty(ctx context.Context, counterpartyID uuid.UUID, filter ObligationFilter) ([]Obligation, error)

	// FindOpen finds all Pending and PartiallySettled obligations
	FindOpen(ctx context.Context) ([]Obligation, error)

	// FindRecurringDue finds recurring obligations whose due date has been
	// reached and that are therefore due for next-installment generation
	FindRecurringDue(ctx context.Context, asOf time.Time) ([]Obligation, error)

	// Save creates or updates an obligation
	Save(ctx context.Context, obligation *Obligation) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, obligation *Obligation) error

	// Delete hard-deletes an obligation; returns shared.ErrNotFound when absent
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts obligations matching the filter
	Count(ctx context.Context, filter ObligationFilter) (int64, error)

	// CountOverdue counts obligations past due and still open
	CountOverdue(ctx context.Context) (int64, error)

	// SumDueInPeriod sums remaining amounts of obligations due inside [from, to]
	SumDueInPeriod(ctx context.Context, from, to time.Time) (decimal.Decimal, error)

	// SumSettledInPeriod sums settled amounts of obligations settled inside [from, to]
	SumSettledInPeriod(ctx context.Context, from, to time.Time) (decimal.Decimal, error)

	// SumOutstanding sums remaining amounts over all open obligations
	SumOutstanding(ctx context.Context) (decimal.Decimal, error)

	// GenerateSequenceNumber generates the next ledger number for this polarity
	GenerateSequenceNumber(ctx context.Context) (string, error)
}
