package approval

import (
	"context"

	"github.com/google/uuid"
)

// FlowRepository provides access to approval flow configuration
type FlowRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Flow, error)
	// FindByModule returns the flow governing a module, preferring a
	// department-scoped flow over the module-wide one. Returns
	// shared.ErrNotFound when no flow is configured.
	FindByModule(ctx context.Context, module Module, department string) (*Flow, error)
	FindAll(ctx context.Context) ([]Flow, error)
	Save(ctx context.Context, flow *Flow) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// StateRepository provides access to per-entity approval progress
type StateRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*State, error)
	// FindByEntity returns the approval state for an entity, or
	// shared.ErrNotFound when the entity never entered a flow.
	FindByEntity(ctx context.Context, module Module, entityID uuid.UUID) (*State, error)
	Save(ctx context.Context, state *State) error
	// SaveWithLock saves using optimistic locking on the aggregate version
	SaveWithLock(ctx context.Context, state *State) error
}

// RecordRepository provides access to the append-only approval audit trail
type RecordRepository interface {
	Create(ctx context.Context, record *Record) error
	// FindByEntity returns records ordered by creation time ascending
	FindByEntity(ctx context.Context, module Module, entityID uuid.UUID) ([]Record, error)
}
