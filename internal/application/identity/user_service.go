package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ucrm/backend/internal/domain/identity"
	"github.com/ucrm/backend/internal/domain/shared"
)

// UserService manages staff accounts and roles
type UserService struct {
	userRepo identity.UserRepository
	roleRepo identity.RoleRepository
	logger   *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo identity.UserRepository, roleRepo identity.RoleRepository, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		logger:   logger,
	}
}

// Create provisions a staff account, optionally with an initial role set
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	existing, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, identity.ErrUsernameTaken
	}

	user, err := identity.NewUser(req.Username, req.Password, req.DisplayName)
	if err != nil {
		return nil, err
	}
	if err := user.SetEmail(req.Email); err != nil {
		return nil, err
	}
	if len(req.RoleIDs) > 0 {
		if err := s.verifyRolesExist(ctx, req.RoleIDs); err != nil {
			return nil, err
		}
		if err := user.SetRoles(req.RoleIDs); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created",
		zap.String("username", user.Username),
		zap.Int("roles", len(user.RoleIDs)),
	)

	resp := ToUserResponse(user)
	return &resp, nil
}

// GetByID returns one user
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// ChangePassword rotates a user's password after checking the old one
func (s *UserService) ChangePassword(ctx context.Context, id uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := user.ChangePassword(req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return s.userRepo.Save(ctx, user)
}

// AssignRoles replaces a user's role membership
func (s *UserService) AssignRoles(ctx context.Context, id uuid.UUID, req AssignRolesRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.verifyRolesExist(ctx, req.RoleIDs); err != nil {
		return nil, err
	}
	if err := user.SetRoles(req.RoleIDs); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	resp := ToUserResponse(user)
	return &resp, nil
}

// Deactivate locks a user out without deleting the audit trail behind it
func (s *UserService) Deactivate(ctx context.Context, id uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	user.Deactivate()
	return s.userRepo.Save(ctx, user)
}

// Activate restores a deactivated user
func (s *UserService) Activate(ctx context.Context, id uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	user.Activate()
	return s.userRepo.Save(ctx, user)
}

// CreateRole registers a new role
func (s *UserService) CreateRole(ctx context.Context, req CreateRoleRequest) (*RoleResponse, error) {
	existing, err := s.roleRepo.FindByCode(ctx, req.Code)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ROLE_CODE_TAKEN", "Role code is already in use")
	}

	role, err := identity.NewRole(req.Code, req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, err
	}

	resp := ToRoleResponse(role)
	return &resp, nil
}

// ListRoles returns all roles
func (s *UserService) ListRoles(ctx context.Context) ([]RoleResponse, error) {
	roles, err := s.roleRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]RoleResponse, 0, len(roles))
	for _, role := range roles {
		out = append(out, ToRoleResponse(role))
	}
	return out, nil
}

func (s *UserService) verifyRolesExist(ctx context.Context, roleIDs []uuid.UUID) error {
	for _, roleID := range roleIDs {
		if _, err := s.roleRepo.FindByID(ctx, roleID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("UNKNOWN_ROLE", "Role does not exist: "+roleID.String())
			}
			return err
		}
	}
	return nil
}
