package sales

import (
	"context"
	"time"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SaleFilter defines filtering options for sale queries
type SaleFilter struct {
	shared.Filter
	CustomerID *uuid.UUID  // Filter by customer
	Status     *SaleStatus // Filter by status
	IssuedFrom *time.Time  // Filter by issue date range start
	IssuedTo   *time.Time  // Filter by issue date range end
}

// SaleRepository defines the interface for sale persistence
type SaleRepository interface {
	// FindByID finds a sale by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)

	// FindBySaleNumber finds a sale by its number
	FindBySaleNumber(ctx context.Context, saleNumber string) (*Sale, error)

	// FindAll finds sales with filtering
	FindAll(ctx context.Context, filter SaleFilter) ([]Sale, error)

	// Save creates or updates a sale
	Save(ctx context.Context, sale *Sale) error

	// Count counts sales matching the filter
	Count(ctx context.Context, filter SaleFilter) (int64, error)

	// GenerateSaleNumber generates a unique sale number
	GenerateSaleNumber(ctx context.Context) (string, error)
}
