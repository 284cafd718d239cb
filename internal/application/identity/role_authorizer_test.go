package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ucrm/backend/internal/domain/approval"
	"github.com/ucrm/backend/internal/domain/identity"
	"github.com/ucrm/backend/internal/domain/shared"
)

func TestRoleAuthorizer_StepDesignatedToRole(t *testing.T) {
	authorizer := NewRoleAuthorizer(new(MockRoleRepository))

	roleID := uuid.New()
	step := approval.FlowStep{Order: 1, RoleID: &roleID}

	ok, err := authorizer.CanApproveStep(context.Background(),
		approval.Actor{ID: uuid.New(), RoleIDs: []uuid.UUID{roleID}}, step)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = authorizer.CanApproveStep(context.Background(),
		approval.Actor{ID: uuid.New(), RoleIDs: []uuid.UUID{uuid.New()}}, step)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRoleAuthorizer_StepDesignatedToUser(t *testing.T) {
	authorizer := NewRoleAuthorizer(new(MockRoleRepository))

	userID := uuid.New()
	step := approval.FlowStep{Order: 1, UserID: &userID}

	ok, err := authorizer.CanApproveStep(context.Background(), approval.Actor{ID: userID}, step)
	require.NoError(t, err)
	assert.True(t, ok)

	// Holding the right roles does not substitute for being the
	// designated user
	ok, err = authorizer.CanApproveStep(context.Background(),
		approval.Actor{ID: uuid.New(), RoleIDs: []uuid.UUID{uuid.New()}}, step)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRoleAuthorizer_CanReset_RequiresAdminRole(t *testing.T) {
	roleRepo := new(MockRoleRepository)
	authorizer := NewRoleAuthorizer(roleRepo)

	adminRole, err := identity.NewRole(identity.RoleAdminCode, "Administrator", "")
	require.NoError(t, err)
	roleRepo.On("FindByCode", mock.Anything, identity.RoleAdminCode).Return(adminRole, nil)

	ok, err := authorizer.CanReset(context.Background(),
		approval.Actor{ID: uuid.New(), RoleIDs: []uuid.UUID{adminRole.ID}})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = authorizer.CanReset(context.Background(),
		approval.Actor{ID: uuid.New(), RoleIDs: []uuid.UUID{uuid.New()}})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRoleAuthorizer_CanReset_NoAdminRoleConfigured(t *testing.T) {
	roleRepo := new(MockRoleRepository)
	authorizer := NewRoleAuthorizer(roleRepo)

	roleRepo.On("FindByCode", mock.Anything, identity.RoleAdminCode).Return(nil, shared.ErrNotFound)

	ok, err := authorizer.CanReset(context.Background(), approval.Actor{ID: uuid.New()})
	require.NoError(t, err)
	assert.False(t, ok)
}
