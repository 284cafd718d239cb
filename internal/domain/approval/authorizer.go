package approval

import (
	"context"

	"github.com/google/uuid"
)

// Actor is the identity performing an approval action. Role membership is
// resolved by the caller before invoking the approval service.
type Actor struct {
	ID      uuid.UUID
	Name    string
	RoleIDs []uuid.UUID
}

// HasRole returns true if the actor holds the given role
func (a Actor) HasRole(roleID uuid.UUID) bool {
	for _, id := range a.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

// Authorizer decides whether an actor may act on an approval step.
// Implementations live outside the domain (role lookups, permission
// stores); the approval service only sees the boolean answer.
type Authorizer interface {
	// CanApproveStep reports whether the actor matches the step's
	// designated role or user.
	CanApproveStep(ctx context.Context, actor Actor, step FlowStep) (bool, error)
	// CanReset reports whether the actor holds the elevated permission
	// required to reset an approval flow.
	CanReset(ctx context.Context, actor Actor) (bool, error)
}
