package identity

import (
	"strings"
	"time"

	"github.com/ucrm/backend/internal/domain/shared"
)

// RoleAdminCode is the reserved elevated role. Resetting approval flows
// and series administration require it.
const RoleAdminCode = "admin"

// Role names an authorization group referenced by approval-flow steps
type Role struct {
	shared.BaseAggregateRoot
	Code        string `json:"code" gorm:"type:varchar(50);not null;uniqueIndex"`
	Name        string `json:"name" gorm:"type:varchar(200);not null"`
	Description string `json:"description" gorm:"type:varchar(500)"`
	IsSystem    bool   `json:"is_system" gorm:"not null;default:false"` // System roles cannot be deleted
}

// TableName returns the table name for GORM
func (Role) TableName() string {
	return "roles"
}

// NewRole creates a new role
func NewRole(code, name, description string) (*Role, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.NewDomainError("INVALID_ROLE_CODE", "Role code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_ROLE_NAME", "Role name cannot be empty")
	}

	return &Role{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Description:       description,
		IsSystem:          code == RoleAdminCode,
	}, nil
}

// Rename updates the role's display name and description
func (r *Role) Rename(name, description string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_ROLE_NAME", "Role name cannot be empty")
	}

	r.Name = name
	r.Description = description
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	return nil
}
