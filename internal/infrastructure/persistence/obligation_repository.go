package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/backoffice/backend/internal/domain/ledger"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// openStatuses are the statuses that still carry an outstanding balance.
var openStatuses = []ledger.ObligationStatus{
	ledger.ObligationStatusPending,
	ledger.ObligationStatusPartiallySettled,
	ledger.ObligationStatusOverdue,
}

// GormObligationRepository implements ledger.ObligationRepository using GORM.
// Each instance is scoped to a single polarity; payables and receivables get
// separate instances over the same table.
type GormObligationRepository struct {
	db       *gorm.DB
	polarity ledger.Polarity
}

// NewGormObligationRepository creates a repository scoped to the given polarity
func NewGormObligationRepository(db *gorm.DB, polarity ledger.Polarity) *GormObligationRepository {
	return &GormObligationRepository{db: db, polarity: polarity}
}

// scoped returns a query pre-filtered to this repository's polarity
func (r *GormObligationRepository) scoped(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.ObligationModel{}).
		Where("polarity = ?", r.polarity)
}

// FindByID finds an obligation by its ID
func (r *GormObligationRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Obligation, error) {
	var model models.ObligationModel
	if err := r.scoped(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySequenceNumber finds an obligation by its ledger number
func (r *GormObligationRepository) FindBySequenceNumber(ctx context.Context, sequenceNumber string) (*ledger.Obligation, error) {
	var model models.ObligationModel
	if err := r.scoped(ctx).
		Where("sequence_number = ?", sequenceNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySource finds the obligation linked to a source document
func (r *GormObligationRepository) FindBySource(ctx context.Context, sourceDocumentID uuid.UUID) (*ledger.Obligation, error) {
	var model models.ObligationModel
	if err := r.scoped(ctx).
		Where("source_document_id = ?", sourceDocumentID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsBySource checks whether an obligation is already linked to a source document
func (r *GormObligationRepository) ExistsBySource(ctx context.Context, sourceDocumentID uuid.UUID) (bool, error) {
	var count int64
	if err := r.scoped(ctx).
		Where("source_document_id = ?", sourceDocumentID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll finds obligations with filtering
func (r *GormObligationRepository) FindAll(ctx context.Context, filter ledger.ObligationFilter) ([]ledger.Obligation, error) {
	query := r.applyFilter(r.scoped(ctx), filter)
	return r.findModels(query)
}

// FindByStatus finds obligations in a given status
func (r *GormObligationRepository) FindByStatus(ctx context.Context, status ledger.ObligationStatus, filter ledger.ObligationFilter) ([]ledger.Obligation, error) {
	query := r.scoped(ctx).Where("status = ?", status)
	query = r.applyFilter(query, filter)
	return r.findModels(query)
}

// FindByCounterparty finds obligations for a supplier/customer
func (r *GormObligationRepository) FindByCounterparty(ctx context.Context, counterpartyID uuid.UUID, filter ledger.ObligationFilter) ([]ledger.Obligation, error) {
	query := r.scoped(ctx).Where("counterparty_id = ?", counterpartyID)
	query = r.applyFilter(query, filter)
	return r.findModels(query)
}

// FindOpen finds all obligations that still carry an outstanding balance
func (r *GormObligationRepository) FindOpen(ctx context.Context) ([]ledger.Obligation, error) {
	query := r.scoped(ctx).
		Where("status IN ?", openStatuses).
		Order("due_date ASC")
	return r.findModels(query)
}

// FindRecurringDue finds recurring obligations whose due date has been reached
func (r *GormObligationRepository) FindRecurringDue(ctx context.Context, asOf time.Time) ([]ledger.Obligation, error) {
	query := r.scoped(ctx).
		Where("is_recurring = ? AND due_date <= ?", true, asOf).
		Order("due_date ASC")
	return r.findModels(query)
}

// Save creates or updates an obligation
func (r *GormObligationRepository) Save(ctx context.Context, obligation *ledger.Obligation) error {
	model := models.ObligationModelFromDomain(obligation)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormObligationRepository) SaveWithLock(ctx context.Context, obligation *ledger.Obligation) error {
	model := models.ObligationModelFromDomain(obligation)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", obligation.ID, obligation.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")
	}
	return nil
}

// Delete hard-deletes an obligation
func (r *GormObligationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("polarity = ?", r.polarity).
		Delete(&models.ObligationModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts obligations matching the filter
func (r *GormObligationRepository) Count(ctx context.Context, filter ledger.ObligationFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.scoped(ctx), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountOverdue counts obligations past due and still open
func (r *GormObligationRepository) CountOverdue(ctx context.Context) (int64, error) {
	var count int64
	if err := r.scoped(ctx).
		Where("due_date < ? AND status IN ?", time.Now(), openStatuses).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumDueInPeriod sums remaining amounts of obligations due inside [from, to]
func (r *GormObligationRepository) SumDueInPeriod(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	return r.sum(
		r.scoped(ctx).
			Select("COALESCE(SUM(remaining_amount), 0) as total").
			Where("due_date >= ? AND due_date <= ? AND status IN ?", from, to, openStatuses),
	)
}

// SumSettledInPeriod sums settled amounts of obligations settled inside [from, to]
func (r *GormObligationRepository) SumSettledInPeriod(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	return r.sum(
		r.scoped(ctx).
			Select("COALESCE(SUM(settled_amount), 0) as total").
			Where("settlement_date >= ? AND settlement_date <= ?", from, to),
	)
}

// SumOutstanding sums remaining amounts over all open obligations
func (r *GormObligationRepository) SumOutstanding(ctx context.Context) (decimal.Decimal, error) {
	return r.sum(
		r.scoped(ctx).
			Select("COALESCE(SUM(remaining_amount), 0) as total").
			Where("status IN ?", openStatuses),
	)
}

// GenerateSequenceNumber generates the next ledger number for this polarity.
// Format: AP-YYYYMMDD-XXXXX for payables, AR-YYYYMMDD-XXXXX for receivables.
func (r *GormObligationRepository) GenerateSequenceNumber(ctx context.Context) (string, error) {
	date := time.Now().Format("20060102")
	prefix := fmt.Sprintf("%s-%s-", r.polarity.SequencePrefix(), date)

	var maxNumber string
	if err := r.scoped(ctx).
		Select("sequence_number").
		Where("sequence_number LIKE ?", prefix+"%").
		Order("sequence_number DESC").
		Limit(1).
		Pluck("sequence_number", &maxNumber).Error; err != nil {
		return "", err
	}

	var nextNum int
	if maxNumber != "" {
		parts := strings.Split(maxNumber, "-")
		if len(parts) == 3 {
			fmt.Sscanf(parts[2], "%d", &nextNum)
		}
	}
	nextNum++

	return fmt.Sprintf("%s%05d", prefix, nextNum), nil
}

// findModels runs the query and converts the rows to domain entities
func (r *GormObligationRepository) findModels(query *gorm.DB) ([]ledger.Obligation, error) {
	var obligationModels []models.ObligationModel
	if err := query.Find(&obligationModels).Error; err != nil {
		return nil, err
	}
	obligations := make([]ledger.Obligation, len(obligationModels))
	for i, model := range obligationModels {
		obligations[i] = *model.ToDomain()
	}
	return obligations, nil
}

// sum runs an aggregate query returning a single decimal total
func (r *GormObligationRepository) sum(query *gorm.DB) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := query.Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// applyFilter applies filter options to the query including pagination and ordering
func (r *GormObligationRepository) applyFilter(query *gorm.DB, filter ledger.ObligationFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ObligationSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormObligationRepository) applyFilterWithoutPagination(query *gorm.DB, filter ledger.ObligationFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("sequence_number ILIKE ? OR description ILIKE ? OR counterparty_name ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	if filter.CounterpartyID != nil {
		query = query.Where("counterparty_id = ?", *filter.CounterpartyID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("due_date <= ?", *filter.DueTo)
	}
	if filter.IssuedFrom != nil {
		query = query.Where("issue_date >= ?", *filter.IssuedFrom)
	}
	if filter.IssuedTo != nil {
		query = query.Where("issue_date <= ?", *filter.IssuedTo)
	}
	if filter.Overdue != nil && *filter.Overdue {
		query = query.Where("due_date < ? AND status IN ?", time.Now(), openStatuses)
	}
	if filter.Recurring != nil {
		query = query.Where("is_recurring = ?", *filter.Recurring)
	}

	return query
}

// Ensure GormObligationRepository implements ObligationRepository
var _ ledger.ObligationRepository = (*GormObligationRepository)(nil)
