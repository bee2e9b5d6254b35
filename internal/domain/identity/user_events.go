package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/shared"
)

const AggregateTypeUser = "User"

// User domain event types. The audit recorder subscribes to all of them.
const (
	EventTypeUserCreated         = "UserCreated"
	EventTypeUserPasswordChanged = "UserPasswordChanged"
	EventTypeUserRoleAssigned    = "UserRoleAssigned"
	EventTypeUserRoleRemoved     = "UserRoleRemoved"
	EventTypeUserStatusChanged   = "UserStatusChanged"
)

// userEvent builds the common envelope for events on the User aggregate.
func userEvent(eventType string, user *User) shared.BaseDomainEvent {
	return shared.NewBaseDomainEvent(eventType, AggregateTypeUser, user.ID, user.TenantID)
}

// UserCreatedEvent is published when an employee account is created.
// The employee code ties the account to payroll records.
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	EmployeeCode string     `json:"employee_code,omitempty"`
	Status       UserStatus `json:"status"`
}

func NewUserCreatedEvent(user *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: userEvent(EventTypeUserCreated, user),
		Username:        user.Username,
		Email:           user.Email,
		EmployeeCode:    user.EmployeeCode,
		Status:          user.Status,
	}
}

// UserPasswordChangedEvent is published on both self-service changes and
// administrative resets.
type UserPasswordChangedEvent struct {
	shared.BaseDomainEvent
	Username  string    `json:"username"`
	ChangedAt time.Time `json:"changed_at"`
}

func NewUserPasswordChangedEvent(user *User) *UserPasswordChangedEvent {
	changedAt := time.Now()
	if user.PasswordChangedAt != nil {
		changedAt = *user.PasswordChangedAt
	}
	return &UserPasswordChangedEvent{
		BaseDomainEvent: userEvent(EventTypeUserPasswordChanged, user),
		Username:        user.Username,
		ChangedAt:       changedAt,
	}
}

// UserRoleAssignedEvent is published when a role is granted to a user.
type UserRoleAssignedEvent struct {
	shared.BaseDomainEvent
	Username string    `json:"username"`
	RoleID   uuid.UUID `json:"role_id"`
}

func NewUserRoleAssignedEvent(user *User, roleID uuid.UUID) *UserRoleAssignedEvent {
	return &UserRoleAssignedEvent{
		BaseDomainEvent: userEvent(EventTypeUserRoleAssigned, user),
		Username:        user.Username,
		RoleID:          roleID,
	}
}

// UserRoleRemovedEvent is published when a role is revoked from a user.
type UserRoleRemovedEvent struct {
	shared.BaseDomainEvent
	Username string    `json:"username"`
	RoleID   uuid.UUID `json:"role_id"`
}

func NewUserRoleRemovedEvent(user *User, roleID uuid.UUID) *UserRoleRemovedEvent {
	return &UserRoleRemovedEvent{
		BaseDomainEvent: userEvent(EventTypeUserRoleRemoved, user),
		Username:        user.Username,
		RoleID:          roleID,
	}
}

// UserStatusChangedEvent covers activation, locking and deactivation.
type UserStatusChangedEvent struct {
	shared.BaseDomainEvent
	Username  string     `json:"username"`
	OldStatus UserStatus `json:"old_status"`
	NewStatus UserStatus `json:"new_status"`
}

func NewUserStatusChangedEvent(user *User, oldStatus, newStatus UserStatus) *UserStatusChangedEvent {
	return &UserStatusChangedEvent{
		BaseDomainEvent: userEvent(EventTypeUserStatusChanged, user),
		Username:        user.Username,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}
