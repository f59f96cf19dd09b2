package sales

import (
	"context"
	"errors"
	"time"

	"github.com/backoffice/backend/internal/domain/ledger"
	"github.com/backoffice/backend/internal/domain/partner"
	"github.com/backoffice/backend/internal/domain/sales"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SaleService provides application-level sale operations. Lifecycle events
// are published on the event bus; the ledger reacts to them to keep the
// matching receivable in step.
type SaleService struct {
	repo      sales.SaleRepository
	customers partner.CounterpartyLookup
	eventBus  shared.EventPublisher
	logger    *zap.Logger
}

// NewSaleService creates a new SaleService
func NewSaleService(
	repo sales.SaleRepository,
	customers partner.CounterpartyLookup,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *SaleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleService{
		repo:      repo,
		customers: customers,
		eventBus:  eventBus,
		logger:    logger,
	}
}

// CreateSaleRequest carries the fields needed to register a sale
type CreateSaleRequest struct {
	CustomerID      uuid.UUID            `json:"customer_id" binding:"required"`
	Total           decimal.Decimal      `json:"total" binding:"required"`
	IssueDate       time.Time            `json:"issue_date" binding:"required"`
	DueDate         *time.Time           `json:"due_date,omitempty"`
	PaymentMethod   ledger.PaymentMethod `json:"payment_method" binding:"required"`
	SalespersonID   *uuid.UUID           `json:"salesperson_id,omitempty"`
	SalespersonName string               `json:"salesperson_name,omitempty"`
	Notes           string               `json:"notes,omitempty"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID              uuid.UUID       `json:"id"`
	SaleNumber      string          `json:"sale_number"`
	CustomerID      uuid.UUID       `json:"customer_id"`
	CustomerName    string          `json:"customer_name,omitempty"`
	SalespersonID   *uuid.UUID      `json:"salesperson_id,omitempty"`
	SalespersonName string          `json:"salesperson_name,omitempty"`
	Total           decimal.Decimal `json:"total"`
	IssueDate       time.Time       `json:"issue_date"`
	DueDate         *time.Time      `json:"due_date,omitempty"`
	PaymentMethod   string          `json:"payment_method"`
	Status          string          `json:"status"`
	OnCredit        bool            `json:"on_credit"`
	FinalizedAt     *time.Time      `json:"finalized_at,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

// SaleListFilter defines filtering options for sale list queries
type SaleListFilter struct {
	Search     string     `form:"search"`
	CustomerID *uuid.UUID `form:"customer_id"`
	Status     string     `form:"status"`
	IssuedFrom *time.Time `form:"issued_from"`
	IssuedTo   *time.Time `form:"issued_to"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
}

func toSaleResponse(s *sales.Sale) *SaleResponse {
	return &SaleResponse{
		ID:              s.ID,
		SaleNumber:      s.SaleNumber,
		CustomerID:      s.CustomerID,
		CustomerName:    s.CustomerName,
		SalespersonID:   s.SalespersonID,
		SalespersonName: s.SalespersonName,
		Total:           s.Total,
		IssueDate:       s.IssueDate,
		DueDate:         s.DueDate,
		PaymentMethod:   string(s.PaymentMethod),
		Status:          s.Status.String(),
		OnCredit:        s.IsOnCredit(),
		FinalizedAt:     s.FinalizedAt,
		CancelledAt:     s.CancelledAt,
		Notes:           s.Notes,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
		Version:         s.Version,
	}
}

// CreateSale registers a sale in Draft status and publishes SaleCreated
func (s *SaleService) CreateSale(ctx context.Context, req CreateSaleRequest) (*SaleResponse, error) {
	saleNumber, err := s.repo.GenerateSaleNumber(ctx)
	if err != nil {
		return nil, err
	}

	customerName := ""
	if s.customers != nil {
		name, err := s.customers.GetNameByID(ctx, req.CustomerID)
		if err != nil {
			s.logger.Debug("customer name lookup failed",
				zap.String("customer_id", req.CustomerID.String()),
				zap.Error(err))
		} else {
			customerName = name
		}
	}

	sale, err := sales.NewSale(
		saleNumber,
		req.CustomerID,
		customerName,
		valueobject.NewMoneyBRL(req.Total),
		req.IssueDate,
		req.DueDate,
		req.PaymentMethod,
	)
	if err != nil {
		return nil, err
	}
	sale.SalespersonID = req.SalespersonID
	sale.SalespersonName = req.SalespersonName
	sale.Notes = req.Notes

	if err := s.repo.Save(ctx, sale); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, sale)

	return toSaleResponse(sale), nil
}

// loadByID translates the repository's not-found error into a nil sale so
// the operations below own the NOT_FOUND wording.
func (s *SaleService) loadByID(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// GetSaleByID returns one sale
func (s *SaleService) GetSaleByID(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	sale, err := s.loadByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Sale not found")
	}
	return toSaleResponse(sale), nil
}

// ListSales returns sales matching the filter with the total count
func (s *SaleService) ListSales(ctx context.Context, filter SaleListFilter) ([]SaleResponse, int64, error) {
	domainFilter := sales.SaleFilter{
		CustomerID: filter.CustomerID,
		IssuedFrom: filter.IssuedFrom,
		IssuedTo:   filter.IssuedTo,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search
	if filter.Status != "" {
		status := sales.SaleStatus(filter.Status)
		domainFilter.Status = &status
	}

	found, err := s.repo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]SaleResponse, len(found))
	for i := range found {
		responses[i] = *toSaleResponse(&found[i])
	}
	return responses, total, nil
}

// FinalizeSale finalizes a draft sale and publishes SaleFinalized. For a
// sale paid on the spot the ledger settles the linked receivable on receipt
// of the event.
func (s *SaleService) FinalizeSale(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	sale, err := s.loadByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Sale not found")
	}

	if err := sale.Finalize(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, sale); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, sale)

	return toSaleResponse(sale), nil
}

// CancelSale cancels a sale and publishes SaleCancelled. The ledger cancels
// the linked receivable on receipt of the event, even when it has already
// been partially settled.
func (s *SaleService) CancelSale(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	sale, err := s.loadByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Sale not found")
	}

	if err := sale.Cancel(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, sale); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, sale)

	return toSaleResponse(sale), nil
}

func (s *SaleService) publishEvents(ctx context.Context, sale *sales.Sale) {
	if s.eventBus == nil {
		return
	}
	events := sale.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish sale events",
			zap.String("sale_number", sale.SaleNumber),
			zap.Error(err))
	}
	sale.ClearDomainEvents()
}
