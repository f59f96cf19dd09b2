package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries the identity and audit timestamps every persisted
// domain type embeds. IDs are generated application-side so an entity is
// addressable before its first save.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity returns a BaseEntity with a fresh ID and both timestamps
// set to now.
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch advances UpdatedAt. Mutating operations call it so the audit
// timestamp always reflects the last state change.
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}
