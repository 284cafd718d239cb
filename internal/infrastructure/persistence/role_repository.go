package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ucrm/backend/internal/domain/identity"
	"github.com/ucrm/backend/internal/domain/shared"
)

// GormRoleRepository implements identity.RoleRepository using GORM
type GormRoleRepository struct {
	db *gorm.DB
}

// NewGormRoleRepository creates a new GormRoleRepository
func NewGormRoleRepository(db *gorm.DB) *GormRoleRepository {
	return &GormRoleRepository{db: db}
}

// Create creates a new role
func (r *GormRoleRepository) Create(ctx context.Context, role *identity.Role) error {
	return dbFromContext(ctx, r.db).Create(role).Error
}

// FindByID finds a role by ID
func (r *GormRoleRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Role, error) {
	var role identity.Role
	if err := dbFromContext(ctx, r.db).First(&role, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

// FindByCode finds a role by its code
func (r *GormRoleRepository) FindByCode(ctx context.Context, code string) (*identity.Role, error) {
	var role identity.Role
	if err := dbFromContext(ctx, r.db).
		Where("code = ?", strings.ToLower(code)).
		First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

// FindAll returns all roles ordered by code
func (r *GormRoleRepository) FindAll(ctx context.Context) ([]*identity.Role, error) {
	var roles []*identity.Role
	if err := dbFromContext(ctx, r.db).
		Order("code ASC").
		Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

var _ identity.RoleRepository = (*GormRoleRepository)(nil)
