package partner

import (
	"context"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CounterpartyKind distinguishes customers from suppliers
type CounterpartyKind string

const (
	CounterpartyKindCustomer CounterpartyKind = "CUSTOMER"
	CounterpartyKindSupplier CounterpartyKind = "SUPPLIER"
)

// IsValid checks if the kind is valid
func (k CounterpartyKind) IsValid() bool {
	return k == CounterpartyKindCustomer || k == CounterpartyKindSupplier
}

// Counterparty is a customer or supplier the ledger holds obligations
// against. The ledger denormalizes its name at obligation creation time;
// later renames are not propagated.
type Counterparty struct {
	shared.BaseEntity
	Kind     CounterpartyKind `json:"kind"`
	Name     string           `json:"name"`
	Document string           `json:"document,omitempty"` // CPF/CNPJ
	Email    string           `json:"email,omitempty"`
	Phone    string           `json:"phone,omitempty"`
	Active   bool             `json:"active"`
}

// NewCounterparty creates a new counterparty
func NewCounterparty(kind CounterpartyKind, name, document string) (*Counterparty, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_KIND", "Counterparty kind must be CUSTOMER or SUPPLIER")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Counterparty name cannot be empty")
	}
	return &Counterparty{
		BaseEntity: shared.NewBaseEntity(),
		Kind:       kind,
		Name:       name,
		Document:   document,
		Active:     true,
	}, nil
}

// Rename changes the counterparty name. Obligations created earlier keep
// their denormalized snapshot.
func (c *Counterparty) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Counterparty name cannot be empty")
	}
	c.Name = name
	return nil
}

// CounterpartyLookup resolves a counterparty name by id, best-effort.
// Absence is reported as ("", shared.ErrNotFound); callers treat it as
// "leave the name unset", never as a creation blocker.
type CounterpartyLookup interface {
	GetNameByID(ctx context.Context, id uuid.UUID) (string, error)
}

// CounterpartyRepository defines the interface for counterparty persistence
type CounterpartyRepository interface {
	CounterpartyLookup

	// FindByID finds a counterparty by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Counterparty, error)

	// FindByKind finds all active counterparties of a kind
	FindByKind(ctx context.Context, kind CounterpartyKind) ([]Counterparty, error)

	// Save creates or updates a counterparty
	Save(ctx context.Context, counterparty *Counterparty) error
}
