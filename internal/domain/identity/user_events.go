package identity

import (
	"github.com/jewelry/backend/internal/domain/shared"
)

// AggregateTypeUser names the users table in change notifications
const AggregateTypeUser = "users"

// User domain event types
const (
	EventTypeUserRegistered = "UserRegistered"
	EventTypeUserUpdated    = "UserUpdated"
	EventTypeUserDeleted    = "UserDeleted"
)

// UserRegisteredEvent is published when an account is created
type UserRegisteredEvent struct {
	shared.BaseDomainEvent
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

// NewUserRegisteredEvent creates a new UserRegisteredEvent
func NewUserRegisteredEvent(user *User) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRegistered, AggregateTypeUser, user.ID.String()),
		Email:           user.Email,
		Role:            user.Role,
	}
}

// UserUpdatedEvent is published when profile, role or status change
type UserUpdatedEvent struct {
	shared.BaseDomainEvent
	Email  string     `json:"email"`
	Role   UserRole   `json:"role"`
	Status UserStatus `json:"status"`
}

// NewUserUpdatedEvent creates a new UserUpdatedEvent
func NewUserUpdatedEvent(user *User) *UserUpdatedEvent {
	return &UserUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserUpdated, AggregateTypeUser, user.ID.String()),
		Email:           user.Email,
		Role:            user.Role,
		Status:          user.Status,
	}
}

// UserDeletedEvent is published after an admin removes an account
type UserDeletedEvent struct {
	shared.BaseDomainEvent
}

// NewUserDeletedEvent creates a new UserDeletedEvent
func NewUserDeletedEvent(user *User) *UserDeletedEvent {
	return &UserDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserDeleted, AggregateTypeUser, user.ID.String()),
	}
}
