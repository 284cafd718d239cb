package identity

import (
	"github.com/google/uuid"

	"github.com/ucrm/backend/internal/domain/shared"
)

// Event type names for the identity context
const (
	EventTypeUserCreated = "UserCreated"
)

// UserCreatedEvent is raised when a user account is provisioned
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
}

// EventType returns the event type name
func (e *UserCreatedEvent) EventType() string {
	return EventTypeUserCreated
}

// NewUserCreatedEvent creates a new UserCreatedEvent
func NewUserCreatedEvent(u *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, "User", u.ID),
		UserID:          u.ID,
		Username:        u.Username,
	}
}
