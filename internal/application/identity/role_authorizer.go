package identity

import (
	"context"
	"errors"

	"github.com/ucrm/backend/internal/domain/approval"
	"github.com/ucrm/backend/internal/domain/identity"
	"github.com/ucrm/backend/internal/domain/shared"
)

// RoleAuthorizer answers approval permission checks from role membership.
// A step designates either a role or a specific user, never both.
type RoleAuthorizer struct {
	roleRepo identity.RoleRepository
}

// NewRoleAuthorizer creates a new RoleAuthorizer
func NewRoleAuthorizer(roleRepo identity.RoleRepository) *RoleAuthorizer {
	return &RoleAuthorizer{roleRepo: roleRepo}
}

// CanApproveStep reports whether the actor matches the step's designated
// role or user
func (a *RoleAuthorizer) CanApproveStep(ctx context.Context, actor approval.Actor, step approval.FlowStep) (bool, error) {
	if step.UserID != nil {
		return actor.ID == *step.UserID, nil
	}
	if step.RoleID != nil {
		return actor.HasRole(*step.RoleID), nil
	}
	return false, nil
}

// CanReset requires the admin role
func (a *RoleAuthorizer) CanReset(ctx context.Context, actor approval.Actor) (bool, error) {
	adminRole, err := a.roleRepo.FindByCode(ctx, identity.RoleAdminCode)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return actor.HasRole(adminRole.ID), nil
}
