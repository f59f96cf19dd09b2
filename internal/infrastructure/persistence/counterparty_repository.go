package persistence

import (
	"context"
	"errors"

	"github.com/backoffice/backend/internal/domain/partner"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCounterpartyRepository implements partner.CounterpartyRepository using GORM
type GormCounterpartyRepository struct {
	db *gorm.DB
}

// NewGormCounterpartyRepository creates a new GormCounterpartyRepository
func NewGormCounterpartyRepository(db *gorm.DB) *GormCounterpartyRepository {
	return &GormCounterpartyRepository{db: db}
}

// FindByID finds a counterparty by its ID
func (r *GormCounterpartyRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Counterparty, error) {
	var model models.CounterpartyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetNameByID returns the counterparty's name for snapshotting onto documents
func (r *GormCounterpartyRepository) GetNameByID(ctx context.Context, id uuid.UUID) (string, error) {
	var name string
	if err := r.db.WithContext(ctx).
		Model(&models.CounterpartyModel{}).
		Select("name").
		Where("id = ?", id).
		Limit(1).
		Pluck("name", &name).Error; err != nil {
		return "", err
	}
	if name == "" {
		return "", shared.ErrNotFound
	}
	return name, nil
}

// FindByKind finds all active counterparties of a kind
func (r *GormCounterpartyRepository) FindByKind(ctx context.Context, kind partner.CounterpartyKind) ([]partner.Counterparty, error) {
	var counterpartyModels []models.CounterpartyModel
	if err := r.db.WithContext(ctx).
		Where("kind = ? AND active = ?", kind, true).
		Order("name ASC").
		Find(&counterpartyModels).Error; err != nil {
		return nil, err
	}
	result := make([]partner.Counterparty, len(counterpartyModels))
	for i, model := range counterpartyModels {
		result[i] = *model.ToDomain()
	}
	return result, nil
}

// Save creates or updates a counterparty
func (r *GormCounterpartyRepository) Save(ctx context.Context, counterparty *partner.Counterparty) error {
	model := models.CounterpartyModelFromDomain(counterparty)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormCounterpartyRepository implements CounterpartyRepository
var _ partner.CounterpartyRepository = (*GormCounterpartyRepository)(nil)
