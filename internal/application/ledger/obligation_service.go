package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/backoffice/backend/internal/domain/ledger"
	"github.com/backoffice/backend/internal/domain/partner"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// listCacheTTL bounds the staleness of the full-list cache entry
const listCacheTTL = 2 * time.Minute

// ObligationService provides application-level operations for one polarity
// of the ledger. Construct one instance per polarity; the repository it
// receives must be scoped to the same polarity.
type ObligationService struct {
	polarity       ledger.Polarity
	repo           ledger.ObligationRepository
	cache          shared.KeyValueCache
	counterparties partner.CounterpartyLookup
	eventBus       shared.EventPublisher
	logger         *zap.Logger
}

// NewObligationService creates an ObligationService for the given polarity.
// cache, counterparties and eventBus may be nil; the service degrades to
// uncached, snapshot-less, silent operation.
func NewObligationService(
	polarity ledger.Polarity,
	repo ledger.ObligationRepository,
	cache shared.KeyValueCache,
	counterparties partner.CounterpartyLookup,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *ObligationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ObligationService{
		polarity:       polarity,
		repo:           repo,
		cache:          cache,
		counterparties: counterparties,
		eventBus:       eventBus,
		logger:         logger,
	}
}

// Polarity returns the polarity this service instance operates on
func (s *ObligationService) Polarity() ledger.Polarity {
	return s.polarity
}

// ===================== Requests and responses =====================

// CreateObligationRequest carries the fields needed to register an obligation
type CreateObligationRequest struct {
	Description            string                 `json:"description" binding:"required"`
	CounterpartyID         uuid.UUID              `json:"counterparty_id" binding:"required"`
	Amount                 decimal.Decimal        `json:"amount" binding:"required"`
	IssueDate              time.Time              `json:"issue_date" binding:"required"`
	DueDate                time.Time              `json:"due_date" binding:"required"`
	SourceDocumentID       *uuid.UUID             `json:"source_document_id,omitempty"`
	IsRecurring            bool                   `json:"is_recurring"`
	RecurrenceKind         *ledger.RecurrenceKind `json:"recurrence_kind,omitempty"`
	RecurrenceIntervalDays *int                   `json:"recurrence_interval_days,omitempty"`
	Notes                  string                 `json:"notes,omitempty"`
	CostCenter             string                 `json:"cost_center,omitempty"`
	Category               ledger.PayableCategory `json:"category,omitempty"`
	SalespersonID          *uuid.UUID             `json:"salesperson_id,omitempty"`
	SalespersonName        string                 `json:"salesperson_name,omitempty"`
}

// UpdateObligationRequest carries the mutable descriptive fields. Amounts
// already settled and the status are never edited directly.
type UpdateObligationRequest struct {
	Description            *string                 `json:"description,omitempty"`
	DueDate                *time.Time              `json:"due_date,omitempty"`
	Notes                  *string                 `json:"notes,omitempty"`
	CostCenter             *string                 `json:"cost_center,omitempty"`
	Category               *ledger.PayableCategory `json:"category,omitempty"`
	IsRecurring            *bool                   `json:"is_recurring,omitempty"`
	RecurrenceKind         *ledger.RecurrenceKind  `json:"recurrence_kind,omitempty"`
	RecurrenceIntervalDays *int                    `json:"recurrence_interval_days,omitempty"`
}

// SettleObligationRequest carries one settlement against an obligation
type SettleObligationRequest struct {
	Amount         decimal.Decimal      `json:"amount" binding:"required"`
	PaymentMethod  ledger.PaymentMethod `json:"payment_method" binding:"required"`
	SettlementDate time.Time            `json:"settlement_date" binding:"required"`
	Note           string               `json:"note,omitempty"`
}

// ObligationListFilter defines filtering options for list queries
type ObligationListFilter struct {
	Search         string     `form:"search"`
	CounterpartyID *uuid.UUID `form:"counterparty_id"`
	Status         string     `form:"status" binding:"omitempty,obligation_status"`
	Category       string     `form:"category"`
	DueFrom        *time.Time `form:"due_from"`
	DueTo          *time.Time `form:"due_to"`
	IssuedFrom     *time.Time `form:"issued_from"`
	IssuedTo       *time.Time `form:"issued_to"`
	Overdue        *bool      `form:"overdue"`
	Recurring      *bool      `form:"recurring"`
	Page           int        `form:"page"`
	PageSize       int        `form:"page_size"`
}

// ObligationResponse represents an obligation in API responses
type ObligationResponse struct {
	ID                     uuid.UUID              `json:"id"`
	Polarity               string                 `json:"polarity"`
	SequenceNumber         string                 `json:"sequence_number"`
	Description            string                 `json:"description"`
	CounterpartyID         uuid.UUID              `json:"counterparty_id"`
	CounterpartyName       string                 `json:"counterparty_name,omitempty"`
	SourceDocumentID       *uuid.UUID             `json:"source_document_id,omitempty"`
	OriginalAmount         decimal.Decimal        `json:"original_amount"`
	SettledAmount          decimal.Decimal        `json:"settled_amount"`
	RemainingAmount        decimal.Decimal        `json:"remaining_amount"`
	IssueDate              time.Time              `json:"issue_date"`
	DueDate                time.Time              `json:"due_date"`
	SettlementDate         *time.Time             `json:"settlement_date,omitempty"`
	Status                 string                 `json:"status"`
	PaymentMethod          string                 `json:"payment_method,omitempty"`
	IsRecurring            bool                   `json:"is_recurring"`
	RecurrenceKind         *ledger.RecurrenceKind `json:"recurrence_kind,omitempty"`
	RecurrenceIntervalDays *int                   `json:"recurrence_interval_days,omitempty"`
	Notes                  string                 `json:"notes,omitempty"`
	CostCenter             string                 `json:"cost_center,omitempty"`
	Category               string                 `json:"category,omitempty"`
	SalespersonID          *uuid.UUID             `json:"salesperson_id,omitempty"`
	SalespersonName        string                 `json:"salesperson_name,omitempty"`
	CreatedAt              time.Time              `json:"created_at"`
	UpdatedAt              time.Time              `json:"updated_at"`
	Version                int                    `json:"version"`
}

func toObligationResponse(o *ledger.Obligation) *ObligationResponse {
	return &ObligationResponse{
		ID:                     o.ID,
		Polarity:               o.Polarity.String(),
		SequenceNumber:         o.SequenceNumber,
		Description:            o.Description,
		CounterpartyID:         o.CounterpartyID,
		CounterpartyName:       o.CounterpartyName,
		SourceDocumentID:       o.SourceDocumentID,
		OriginalAmount:         o.OriginalAmount,
		SettledAmount:          o.SettledAmount,
		RemainingAmount:        o.RemainingAmount,
		IssueDate:              o.IssueDate,
		DueDate:                o.DueDate,
		SettlementDate:         o.SettlementDate,
		Status:                 o.Status.String(),
		PaymentMethod:          string(o.PaymentMethod),
		IsRecurring:            o.IsRecurring,
		RecurrenceKind:         o.RecurrenceKind,
		RecurrenceIntervalDays: o.RecurrenceIntervalDays,
		Notes:                  o.Notes,
		CostCenter:             o.CostCenter,
		Category:               string(o.Category),
		SalespersonID:          o.SalespersonID,
		SalespersonName:        o.SalespersonName,
		CreatedAt:              o.CreatedAt,
		UpdatedAt:              o.UpdatedAt,
		Version:                o.Version,
	}
}

func toObligationResponses(obligations []ledger.Obligation) []ObligationResponse {
	responses := make([]ObligationResponse, len(obligations))
	for i := range obligations {
		responses[i] = *toObligationResponse(&obligations[i])
	}
	return responses
}

// ===================== Cache helpers =====================

func (s *ObligationService) listCacheKey() string {
	return s.cacheKeyPrefix() + "all"
}

func (s *ObligationService) cacheKeyPrefix() string {
	return fmt.Sprintf("ledger:%s:", strings.ToLower(s.polarity.String()))
}

// invalidateListCache drops every cached entry of this polarity, not just
// the full list. Failures are logged and swallowed: entries expire on their
// own within the TTL.
func (s *ObligationService) invalidateListCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.RemoveByPrefix(ctx, s.cacheKeyPrefix()); err != nil {
		s.logger.Warn("failed to invalidate obligation cache entries",
			zap.String("prefix", s.cacheKeyPrefix()),
			zap.Error(err))
	}
}

// ===================== Load helpers =====================

// loadByID translates the repository's not-found error into a nil
// obligation. Each operation then picks its own absence semantics: Cancel
// reports found=false, the rest surface NOT_FOUND.
func (s *ObligationService) loadByID(ctx context.Context, id uuid.UUID) (*ledger.Obligation, error) {
	obligation, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return obligation, nil
}

// loadBySource does the same for source-document lookups.
func (s *ObligationService) loadBySource(ctx context.Context, sourceDocumentID uuid.UUID) (*ledger.Obligation, error) {
	obligation, err := s.repo.FindBySource(ctx, sourceDocumentID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return obligation, nil
}

// ===================== Queries =====================

// ListAll returns every obligation of this polarity, read-aside cached
// under a single key with a short TTL. Cache failures fall through to the
// repository; the database remains the source of truth.
func (s *ObligationService) ListAll(ctx context.Context) ([]ObligationResponse, error) {
	key := s.listCacheKey()

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err != nil {
			s.logger.Warn("obligation list cache read failed", zap.String("key", key), zap.Error(err))
		} else if data != nil {
			var cached []ObligationResponse
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
			s.logger.Warn("corrupt obligation list cache entry, dropping", zap.String("key", key))
			s.invalidateListCache(ctx)
		}
	}

	filter := ledger.ObligationFilter{Filter: shared.Filter{OrderBy: "due_date", OrderDir: "asc"}}
	obligations, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := toObligationResponses(obligations)

	if s.cache != nil {
		if data, err := json.Marshal(responses); err == nil {
			if err := s.cache.Set(ctx, key, data, listCacheTTL); err != nil {
				s.logger.Warn("obligation list cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}

	return responses, nil
}

// GetByID returns one obligation; reads go straight to the repository
func (s *ObligationService) GetByID(ctx context.Context, id uuid.UUID) (*ObligationResponse, error) {
	obligation, err := s.loadByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if obligation == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Obligation not found")
	}
	return toObligationResponse(obligation), nil
}

// List returns obligations matching the filter together with the total count
func (s *ObligationService) List(ctx context.Context, filter ObligationListFilter) ([]ObligationResponse, int64, error) {
	domainFilter := s.toDomainFilter(filter)

	obligations, err := s.repo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return toObligationResponses(obligations), total, nil
}

// ListByStatus returns obligations in a given status
func (s *ObligationService) ListByStatus(ctx context.Context, status ledger.ObligationStatus) ([]ObligationResponse, error) {
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown status %q", status))
	}
	obligations, err := s.repo.FindByStatus(ctx, status, ledger.ObligationFilter{})
	if err != nil {
		return nil, err
	}
	return toObligationResponses(obligations), nil
}

// ListByCounterparty returns obligations for one supplier/customer
func (s *ObligationService) ListByCounterparty(ctx context.Context, counterpartyID uuid.UUID) ([]ObligationResponse, error) {
	obligations, err := s.repo.FindByCounterparty(ctx, counterpartyID, ledger.ObligationFilter{})
	if err != nil {
		return nil, err
	}
	return toObligationResponses(obligations), nil
}

// ListByPeriod returns obligations due inside [from, to]
func (s *ObligationService) ListByPeriod(ctx context.Context, from, to time.Time) ([]ObligationResponse, error) {
	if to.Before(from) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period end precedes period start")
	}
	filter := ledger.ObligationFilter{DueFrom: &from, DueTo: &to}
	obligations, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return toObligationResponses(obligations), nil
}

// ListByCategory returns payables in a given category
func (s *ObligationService) ListByCategory(ctx context.Context, category ledger.PayableCategory) ([]ObligationResponse, error) {
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", fmt.Sprintf("Unknown category %q", category))
	}
	filter := ledger.ObligationFilter{Category: &category}
	obligations, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return toObligationResponses(obligations), nil
}

// PreviewInterest computes the interest an obligation would accrue at the
// given daily rate as of a date; nothing is persisted.
func (s *ObligationService) PreviewInterest(ctx context.Context, id uuid.UUID, asOf time.Time, dailyRate decimal.Decimal) (decimal.Decimal, error) {
	if dailyRate.IsNegative() {
		return decimal.Zero, shared.NewDomainError("INVALID_RATE", "Daily rate cannot be negative")
	}
	obligation, err := s.loadByID(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	if obligation == nil {
		return decimal.Zero, shared.NewDomainError("NOT_FOUND", "Obligation not found")
	}
	return obligation.ComputeInterest(asOf, dailyRate), nil
}

// ===================== Commands =====================

// Create registers a new obligation. The counterparty name snapshot is a
// best-effort lookup: a missing counterparty record never blocks creation.
func (s *ObligationService) Create(ctx context.Context, req CreateObligationRequest) (*ObligationResponse, error) {
	if req.Category != "" && !req.Category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", fmt.Sprintf("Unknown category %q", req.Category))
	}
	if req.RecurrenceKind != nil && !req.RecurrenceKind.IsValid() {
		return nil, shared.NewDomainError("INVALID_RECURRENCE", fmt.Sprintf("Unknown recurrence kind %q", *req.RecurrenceKind))
	}

	sequenceNumber, err := s.repo.GenerateSequenceNumber(ctx)
	if err != nil {
		return nil, err
	}

	counterpartyName := s.lookupCounterpartyName(ctx, req.CounterpartyID)

	obligation, err := ledger.NewObligation(
		s.polarity,
		sequenceNumber,
		req.Description,
		req.CounterpartyID,
		counterpartyName,
		valueobject.NewMoneyBRL(req.Amount),
		req.IssueDate,
		req.DueDate,
	)
	if err != nil {
		return nil, err
	}

	obligation.SourceDocumentID = req.SourceDocumentID
	obligation.IsRecurring = req.IsRecurring
	obligation.RecurrenceKind = req.RecurrenceKind
	obligation.RecurrenceIntervalDays = req.RecurrenceIntervalDays
	obligation.Notes = req.Notes
	if s.polarity == ledger.PolarityPayable {
		obligation.CostCenter = req.CostCenter
		obligation.Category = req.Category
	} else {
		obligation.SalespersonID = req.SalespersonID
		obligation.SalespersonName = req.SalespersonName
	}

	if err := s.repo.Save(ctx, obligation); err != nil {
		return nil, err
	}
	s.invalidateListCache(ctx)
	s.publishEvents(ctx, obligation)

	return toObligationResponse(obligation), nil
}

// Update edits descriptive fields. Settled obligations are immutable.
func (s *ObligationService) Update(ctx context.Context, id uuid.UUID, req UpdateObligationRequest) (*ObligationResponse, error) {
	obligation, err := s.loadByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if obligation == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Obligation not found")
	}
	if obligation.IsSettled() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot update a settled obligation")
	}

	if req.Description != nil {
		if *req.Description == "" {
			return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
		}
		obligation.Description = *req.Description
	}
	if req.DueDate != nil {
		obligation.DueDate = *req.DueDate
	}
	if req.Notes != nil {
		obligation.Notes = *req.Notes
	}
	if req.CostCenter != nil {
		obligation.CostCenter = *req.CostCenter
	}
	if req.Category != nil {
		if !req.Category.IsValid() {
			return nil, shared.NewDomainError("INVALID_CATEGORY", fmt.Sprintf("Unknown category %q", *req.Category))
		}
		obligation.Category = *req.Category
	}
	if req.IsRecurring != nil {
		obligation.IsRecurring = *req.IsRecurring
	}
	if req.RecurrenceKind != nil {
		if !req.RecurrenceKind.IsValid() {
			return nil, shared.NewDomainError("INVALID_RECURRENCE", fmt.Sprintf("Unknown recurrence kind %q", *req.RecurrenceKind))
		}
		obligation.RecurrenceKind = req.RecurrenceKind
	}
	if req.RecurrenceIntervalDays != nil {
		obligation.RecurrenceIntervalDays = req.RecurrenceIntervalDays
	}

	obligation.Touch()
	obligation.IncrementVersion()

	if err := s.repo.SaveWithLock(ctx, obligation); err != nil {
		return nil, err
	}
	s.invalidateListCache(ctx)

	return toObligationResponse(obligation), nil
}

// Delete hard-deletes an obligation. Settled obligations cannot be deleted;
// a missing obligation reports found=false instead of an error.
func (s *ObligationService) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	obligation, err := s.loadByID(ctx, id)
	if err != nil {
		return false, err
	}
	if obligation == nil {
		return false, nil
	}
	if obligation.IsSettled() {
		return true, shared.NewDomainError("INVALID_STATE", "Cannot delete a settled obligation")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return true, err
	}
	s.invalidateListCache(ctx)
	return true, nil
}

// Settle applies a settlement and records it as a tagged note
func (s *ObligationService) Settle(ctx context.Context, id uuid.UUID, req SettleObligationRequest) (*ObligationResponse, error) {
	obligation, err := s.loadByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if obligation == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Obligation not found")
	}

	amount := valueobject.NewMoneyBRL(req.Amount)
	if err := obligation.Settle(amount, req.PaymentMethod, req.SettlementDate); err != nil {
		return nil, err
	}

	tag := fmt.Sprintf("settlement %s", req.SettlementDate.Format("2006-01-02"))
	note := req.Note
	if note == "" {
		note = fmt.Sprintf("%s via %s", req.Amount.StringFixed(2), req.PaymentMethod)
	}
	obligation.AppendNote(tag, note)

	if err := s.repo.SaveWithLock(ctx, obligation); err != nil {
		return nil, err
	}
	s.invalidateListCache(ctx)
	s.publishEvents(ctx, obligation)

	return toObligationResponse(obligation), nil
}

// Cancel cancels an obligation. A missing obligation returns found=false
// rather than an error so callers can treat cancellation as idempotent.
func (s *ObligationService) Cancel(ctx context.Context, id uuid.UUID) (bool, error) {
	obligation, err := s.loadByID(ctx, id)
	if err != nil {
		return false, err
	}
	if obligation == nil {
		return false, nil
	}

	if err := obligation.Cancel(); err != nil {
		return true, err
	}

	if err := s.repo.SaveWithLock(ctx, obligation); err != nil {
		return true, err
	}
	s.invalidateListCache(ctx)
	s.publishEvents(ctx, obligation)

	return true, nil
}

// RefreshAllStatuses relabels every open obligation whose due date has
// passed as Overdue. Returns the number of obligations changed.
func (s *ObligationService) RefreshAllStatuses(ctx context.Context, today time.Time) (int, error) {
	open, err := s.repo.FindOpen(ctx)
	if err != nil {
		return 0, err
	}

	changed := 0
	for i := range open {
		obligation := &open[i]
		if !obligation.RefreshStatus(today) {
			continue
		}
		if err := s.repo.SaveWithLock(ctx, obligation); err != nil {
			s.logger.Warn("failed to persist overdue relabel",
				zap.String("sequence_number", obligation.SequenceNumber),
				zap.Error(err))
			continue
		}
		changed++
	}

	if changed > 0 {
		s.invalidateListCache(ctx)
		s.logger.Info("relabelled overdue obligations",
			zap.String("polarity", s.polarity.String()),
			zap.Int("count", changed))
	}
	return changed, nil
}

// ProcessRecurring generates and persists the next installment for every
// recurring obligation whose due date has been reached. Returns the number
// of successors created.
func (s *ObligationService) ProcessRecurring(ctx context.Context, asOf time.Time) (int, error) {
	due, err := s.repo.FindRecurringDue(ctx, asOf)
	if err != nil {
		return 0, err
	}

	created := 0
	for i := range due {
		source := &due[i]
		next := source.GenerateNextInstallment()
		if next == nil {
			continue
		}

		sequenceNumber, err := s.repo.GenerateSequenceNumber(ctx)
		if err != nil {
			s.logger.Warn("failed to number recurring successor",
				zap.String("source", source.SequenceNumber),
				zap.Error(err))
			continue
		}
		next.SequenceNumber = sequenceNumber

		if err := s.repo.Save(ctx, next); err != nil {
			s.logger.Warn("failed to persist recurring successor",
				zap.String("source", source.SequenceNumber),
				zap.Error(err))
			continue
		}

		// The source stops recurring once its successor exists, otherwise
		// every later run would spawn a duplicate.
		source.IsRecurring = false
		source.Touch()
		source.IncrementVersion()
		if err := s.repo.SaveWithLock(ctx, source); err != nil {
			s.logger.Warn("failed to close out recurring source",
				zap.String("source", source.SequenceNumber),
				zap.Error(err))
		}

		created++
	}

	if created > 0 {
		s.invalidateListCache(ctx)
		s.logger.Info("generated recurring installments",
			zap.String("polarity", s.polarity.String()),
			zap.Int("count", created))
	}
	return created, nil
}

// ===================== Source-document operations =====================

// SpawnFromSourceInput carries the fields for obligations derived from
// another document (a finalized sale, a purchase invoice)
type SpawnFromSourceInput struct {
	SourceDocumentID uuid.UUID
	Description      string
	CounterpartyID   uuid.UUID
	CounterpartyName string
	Amount           decimal.Decimal
	IssueDate        time.Time
	DueDate          time.Time
	SalespersonID    *uuid.UUID
	SalespersonName  string
}

// SpawnFromSource creates an obligation linked to a source document,
// idempotently: a second call for the same source is a no-op returning the
// existing obligation.
func (s *ObligationService) SpawnFromSource(ctx context.Context, input SpawnFromSourceInput) (*ObligationResponse, error) {
	exists, err := s.repo.ExistsBySource(ctx, input.SourceDocumentID)
	if err != nil {
		return nil, err
	}
	if exists {
		existing, err := s.repo.FindBySource(ctx, input.SourceDocumentID)
		if err != nil {
			return nil, err
		}
		return toObligationResponse(existing), nil
	}

	sequenceNumber, err := s.repo.GenerateSequenceNumber(ctx)
	if err != nil {
		return nil, err
	}

	counterpartyName := input.CounterpartyName
	if counterpartyName == "" {
		counterpartyName = s.lookupCounterpartyName(ctx, input.CounterpartyID)
	}

	obligation, err := ledger.NewObligation(
		s.polarity,
		sequenceNumber,
		input.Description,
		input.CounterpartyID,
		counterpartyName,
		valueobject.NewMoneyBRL(input.Amount),
		input.IssueDate,
		input.DueDate,
	)
	if err != nil {
		return nil, err
	}
	sourceID := input.SourceDocumentID
	obligation.SourceDocumentID = &sourceID
	obligation.SalespersonID = input.SalespersonID
	obligation.SalespersonName = input.SalespersonName

	if err := s.repo.Save(ctx, obligation); err != nil {
		return nil, err
	}
	s.invalidateListCache(ctx)
	s.publishEvents(ctx, obligation)

	return toObligationResponse(obligation), nil
}

// SettleSourceInFull settles the obligation linked to a source document for
// its entire remaining amount. Only Pending obligations qualify; anything
// else is left untouched.
func (s *ObligationService) SettleSourceInFull(ctx context.Context, sourceDocumentID uuid.UUID, method ledger.PaymentMethod, date time.Time) error {
	obligation, err := s.loadBySource(ctx, sourceDocumentID)
	if err != nil {
		return err
	}
	if obligation == nil {
		return shared.NewDomainError("NOT_FOUND", "No obligation linked to source document")
	}
	if !obligation.IsPending() {
		s.logger.Info("skipping auto-settle, obligation not pending",
			zap.String("sequence_number", obligation.SequenceNumber),
			zap.String("status", obligation.Status.String()))
		return nil
	}

	amount := valueobject.NewMoneyBRL(obligation.RemainingAmount)
	if err := obligation.Settle(amount, method, date); err != nil {
		return err
	}
	obligation.AppendNote(
		fmt.Sprintf("settlement %s", date.Format("2006-01-02")),
		"settled automatically at sale finalization")

	if err := s.repo.SaveWithLock(ctx, obligation); err != nil {
		return err
	}
	s.invalidateListCache(ctx)
	s.publishEvents(ctx, obligation)
	return nil
}

// CancelBySource cancels the obligation linked to a source document.
// Already-cancelled obligations are skipped; fully settled ones are an
// error the caller must surface.
func (s *ObligationService) CancelBySource(ctx context.Context, sourceDocumentID uuid.UUID) error {
	obligation, err := s.loadBySource(ctx, sourceDocumentID)
	if err != nil {
		return err
	}
	if obligation == nil {
		return nil
	}
	if obligation.IsCancelled() {
		return nil
	}

	if err := obligation.Cancel(); err != nil {
		return err
	}
	if err := s.repo.SaveWithLock(ctx, obligation); err != nil {
		return err
	}
	s.invalidateListCache(ctx)
	s.publishEvents(ctx, obligation)
	return nil
}

// ===================== Internals =====================

func (s *ObligationService) toDomainFilter(filter ObligationListFilter) ledger.ObligationFilter {
	domainFilter := ledger.ObligationFilter{
		CounterpartyID: filter.CounterpartyID,
		DueFrom:        filter.DueFrom,
		DueTo:          filter.DueTo,
		IssuedFrom:     filter.IssuedFrom,
		IssuedTo:       filter.IssuedTo,
		Overdue:        filter.Overdue,
		Recurring:      filter.Recurring,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search

	if filter.Status != "" {
		status := ledger.ObligationStatus(filter.Status)
		domainFilter.Status = &status
	}
	if filter.Category != "" {
		category := ledger.PayableCategory(filter.Category)
		domainFilter.Category = &category
	}
	return domainFilter
}

func (s *ObligationService) lookupCounterpartyName(ctx context.Context, id uuid.UUID) string {
	if s.counterparties == nil {
		return ""
	}
	name, err := s.counterparties.GetNameByID(ctx, id)
	if err != nil {
		s.logger.Debug("counterparty name lookup failed",
			zap.String("counterparty_id", id.String()),
			zap.Error(err))
		return ""
	}
	return name
}

func (s *ObligationService) publishEvents(ctx context.Context, obligation *ledger.Obligation) {
	if s.eventBus == nil {
		return
	}
	events := obligation.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish obligation events",
			zap.String("sequence_number", obligation.SequenceNumber),
			zap.Error(err))
	}
	obligation.ClearDomainEvents()
}
