package partner

import (
	"context"
	"errors"
	"time"

	"github.com/backoffice/backend/internal/domain/partner"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CounterpartyService provides application-level counterparty operations
type CounterpartyService struct {
	repo   partner.CounterpartyRepository
	logger *zap.Logger
}

// NewCounterpartyService creates a new CounterpartyService
func NewCounterpartyService(repo partner.CounterpartyRepository, logger *zap.Logger) *CounterpartyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CounterpartyService{repo: repo, logger: logger}
}

// CreateCounterpartyRequest carries the fields needed to register a counterparty
type CreateCounterpartyRequest struct {
	Kind     partner.CounterpartyKind `json:"kind" binding:"required"`
	Name     string                   `json:"name" binding:"required"`
	Document string                   `json:"document,omitempty"`
	Email    string                   `json:"email,omitempty"`
	Phone    string                   `json:"phone,omitempty"`
}

// UpdateCounterpartyRequest carries the mutable counterparty fields
type UpdateCounterpartyRequest struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Phone  *string `json:"phone,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

// CounterpartyResponse represents a counterparty in API responses
type CounterpartyResponse struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"`
	Name      string    `json:"name"`
	Document  string    `json:"document,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCounterpartyResponse(c *partner.Counterparty) *CounterpartyResponse {
	return &CounterpartyResponse{
		ID:        c.ID,
		Kind:      string(c.Kind),
		Name:      c.Name,
		Document:  c.Document,
		Email:     c.Email,
		Phone:     c.Phone,
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// Create registers a new counterparty
func (s *CounterpartyService) Create(ctx context.Context, req CreateCounterpartyRequest) (*CounterpartyResponse, error) {
	counterparty, err := partner.NewCounterparty(req.Kind, req.Name, req.Document)
	if err != nil {
		return nil, err
	}
	counterparty.Email = req.Email
	counterparty.Phone = req.Phone

	if err := s.repo.Save(ctx, counterparty); err != nil {
		return nil, err
	}
	return toCounterpartyResponse(counterparty), nil
}

// loadByID translates the repository's not-found error into a nil counterparty
// so the operations below own the NOT_FOUND wording.
func (s *CounterpartyService) loadByID(ctx context.Context, id uuid.UUID) (*partner.Counterparty, error) {
	counterparty, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return counterparty, nil
}

// GetByID returns one counterparty
func (s *CounterpartyService) GetByID(ctx context.Context, id uuid.UUID) (*CounterpartyResponse, error) {
	counterparty, err := s.loadByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if counterparty == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Counterparty not found")
	}
	return toCounterpartyResponse(counterparty), nil
}

// ListByKind returns all active counterparties of a kind
func (s *CounterpartyService) ListByKind(ctx context.Context, kind partner.CounterpartyKind) ([]CounterpartyResponse, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_KIND", "Counterparty kind must be CUSTOMER or SUPPLIER")
	}
	found, err := s.repo.FindByKind(ctx, kind)
	if err != nil {
		return nil, err
	}
	responses := make([]CounterpartyResponse, len(found))
	for i := range found {
		responses[i] = *toCounterpartyResponse(&found[i])
	}
	return responses, nil
}

// Update edits counterparty fields
func (s *CounterpartyService) Update(ctx context.Context, id uuid.UUID, req UpdateCounterpartyRequest) (*CounterpartyResponse, error) {
	counterparty, err := s.loadByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if counterparty == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Counterparty not found")
	}

	if req.Name != nil {
		if err := counterparty.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Email != nil {
		counterparty.Email = *req.Email
	}
	if req.Phone != nil {
		counterparty.Phone = *req.Phone
	}
	if req.Active != nil {
		counterparty.Active = *req.Active
	}
	counterparty.Touch()

	if err := s.repo.Save(ctx, counterparty); err != nil {
		return nil, err
	}
	return toCounterpartyResponse(counterparty), nil
}
