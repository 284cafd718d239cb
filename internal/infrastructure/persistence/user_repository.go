package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ucrm/backend/internal/domain/identity"
	"github.com/ucrm/backend/internal/domain/shared"
)

// GormUserRepository implements identity.UserRepository using GORM.
// Role membership lives in the user_roles join table and is loaded and
// replaced together with the user.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user with their role membership
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	return dbFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return replaceUserRoles(tx, user)
	})
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var user identity.User
	db := dbFromContext(ctx, r.db)
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := loadUserRoles(db, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	var user identity.User
	db := dbFromContext(ctx, r.db)
	if err := db.
		Where("LOWER(username) = ?", strings.ToLower(username)).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := loadUserRoles(db, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Save updates a user and replaces their role membership
func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	return dbFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		result := tx.Save(user)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return replaceUserRoles(tx, user)
	})
}

func replaceUserRoles(tx *gorm.DB, user *identity.User) error {
	if err := tx.Where("user_id = ?", user.ID).Delete(&identity.UserRole{}).Error; err != nil {
		return err
	}

	if len(user.RoleIDs) == 0 {
		return nil
	}

	userRoles := make([]identity.UserRole, len(user.RoleIDs))
	for i, roleID := range user.RoleIDs {
		userRoles[i] = identity.UserRole{
			UserID:    user.ID,
			RoleID:    roleID,
			CreatedAt: time.Now(),
		}
	}
	return tx.Create(&userRoles).Error
}

func loadUserRoles(db *gorm.DB, user *identity.User) error {
	var userRoles []identity.UserRole
	if err := db.Where("user_id = ?", user.ID).Find(&userRoles).Error; err != nil {
		return err
	}

	roleIDs := make([]uuid.UUID, len(userRoles))
	for i, ur := range userRoles {
		roleIDs[i] = ur.RoleID
	}
	user.RoleIDs = roleIDs

	return nil
}

var _ identity.UserRepository = (*GormUserRepository)(nil)
