package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/backoffice/backend/internal/domain/sales"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSaleRepository implements sales.SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByID finds a sale by its ID
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySaleNumber finds a sale by its number
func (r *GormSaleRepository) FindBySaleNumber(ctx context.Context, saleNumber string) (*sales.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).
		Where("sale_number = ?", saleNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds sales with filtering
func (r *GormSaleRepository) FindAll(ctx context.Context, filter sales.SaleFilter) ([]sales.Sale, error) {
	var saleModels []models.SaleModel
	query := r.db.WithContext(ctx).Model(&models.SaleModel{})
	query = r.applyFilter(query, filter)

	if err := query.Find(&saleModels).Error; err != nil {
		return nil, err
	}
	result := make([]sales.Sale, len(saleModels))
	for i, model := range saleModels {
		result[i] = *model.ToDomain()
	}
	return result, nil
}

// Save creates or updates a sale
func (r *GormSaleRepository) Save(ctx context.Context, sale *sales.Sale) error {
	model := models.SaleModelFromDomain(sale)
	return r.db.WithContext(ctx).Save(model).Error
}

// Count counts sales matching the filter
func (r *GormSaleRepository) Count(ctx context.Context, filter sales.SaleFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.SaleModel{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateSaleNumber generates a unique sale number.
// Format: VND-YYYYMMDD-XXXXX
func (r *GormSaleRepository) GenerateSaleNumber(ctx context.Context) (string, error) {
	date := time.Now().Format("20060102")
	prefix := fmt.Sprintf("VND-%s-", date)

	var maxNumber string
	if err := r.db.WithContext(ctx).
		Model(&models.SaleModel{}).
		Select("sale_number").
		Where("sale_number LIKE ?", prefix+"%").
		Order("sale_number DESC").
		Limit(1).
		Pluck("sale_number", &maxNumber).Error; err != nil {
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

// applyFilter applies filter options including pagination and ordering
func (r *GormSaleRepository) applyFilter(query *gorm.DB, filter sales.SaleFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, SaleSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormSaleRepository) applyFilterWithoutPagination(query *gorm.DB, filter sales.SaleFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("sale_number ILIKE ? OR customer_name ILIKE ?", searchPattern, searchPattern)
	}

	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.IssuedFrom != nil {
		query = query.Where("issue_date >= ?", *filter.IssuedFrom)
	}
	if filter.IssuedTo != nil {
		query = query.Where("issue_date <= ?", *filter.IssuedTo)
	}

	return query
}

// Ensure GormSaleRepository implements SaleRepository
var _ sales.SaleRepository = (*GormSaleRepository)(nil)
