package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ucrm/backend/internal/domain/shared"
)

// UserStatus represents the status of a user account
type UserStatus string

const (
	UserStatusActive      UserStatus = "active"
	UserStatusDeactivated UserStatus = "deactivated"
)

// Password cost for bcrypt
const bcryptCost = 12

var (
	usernameRegex = regexp.MustCompile(`^[a-z0-9._-]{3,50}$`)
	emailRegex    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// User is a staff account: cashiers, CCD reviewers, inspectors and
// administrators. Role membership drives approval-step authorization.
type User struct {
	shared.BaseAggregateRoot
	Username     string      `json:"username" gorm:"type:varchar(50);not null;uniqueIndex"`
	Email        string      `json:"email" gorm:"type:varchar(200)"`
	PasswordHash string      `json:"-" gorm:"type:varchar(100);not null"`
	DisplayName  string      `json:"display_name" gorm:"type:varchar(200)"`
	Status       UserStatus  `json:"status" gorm:"type:varchar(20);not null"`
	RoleIDs      []uuid.UUID `json:"role_ids" gorm:"-"` // Stored in a join table, loaded by the repository
	LastLoginAt  *time.Time  `json:"last_login_at,omitempty"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// UserRole is the many-to-many link between users and roles
type UserRole struct {
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;primary_key"`
	RoleID    uuid.UUID `json:"role_id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserRole) TableName() string {
	return "user_roles"
}

// NewUser creates an active user with a bcrypt-hashed password
func NewUser(username, password, displayName string) (*User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if !usernameRegex.MatchString(username) {
		return nil, shared.NewDomainError("INVALID_USERNAME", "Username must be 3-50 characters of lowercase letters, digits, dot, dash or underscore")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          username,
		PasswordHash:      string(hash),
		DisplayName:       displayName,
		Status:            UserStatusActive,
		RoleIDs:           make([]uuid.UUID, 0),
	}

	user.AddDomainEvent(NewUserCreatedEvent(user))

	return user, nil
}

// SetEmail sets the user's email
func (u *User) SetEmail(email string) error {
	if email != "" {
		email = strings.ToLower(strings.TrimSpace(email))
		if !emailRegex.MatchString(email) {
			return shared.NewDomainError("INVALID_EMAIL", "Email format is not valid")
		}
	}

	u.Email = email
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// VerifyPassword checks a plaintext password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ChangePassword replaces the password after verifying the old one
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	u.PasswordHash = string(hash)
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// SetRoles replaces the user's role membership wholesale
func (u *User) SetRoles(roleIDs []uuid.UUID) error {
	seen := make(map[uuid.UUID]bool, len(roleIDs))
	roles := make([]uuid.UUID, 0, len(roleIDs))
	for _, id := range roleIDs {
		if id == uuid.Nil {
			return shared.NewDomainError("INVALID_ROLE", "Role ID cannot be empty")
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		roles = append(roles, id)
	}

	u.RoleIDs = roles
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// HasRole reports membership in a role
func (u *User) HasRole(roleID uuid.UUID) bool {
	for _, id := range u.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

// Activate re-enables a deactivated user
func (u *User) Activate() {
	u.Status = UserStatusActive
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}

// Deactivate disables login and issuance for the user
func (u *User) Deactivate() {
	u.Status = UserStatusDeactivated
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}

// IsActive reports whether the user can log in
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// RecordLoginSuccess stamps the last successful login
func (u *User) RecordLoginSuccess() {
	now := time.Now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
}

// GetDisplayNameOrUsername returns the display name, falling back to the username
func (u *User) GetDisplayNameOrUsername() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	return nil
}
