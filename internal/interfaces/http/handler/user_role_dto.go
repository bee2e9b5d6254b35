package handler

import (
	"time"

	"github.com/google/uuid"
)

// CreateUserRequest is the body for provisioning an employee account.
// Role codes are resolved against the company's roles at creation time.
// @Name HandlerCreateUserRequest
type CreateUserRequest struct {
	Username     string     `json:"username" binding:"required,min=3,max=100"`
	Password     string     `json:"password" binding:"required,min=8,max=128"`
	Email        string     `json:"email" binding:"omitempty,email,max=200"`
	DisplayName  string     `json:"display_name" binding:"omitempty,max=200"`
	EmployeeCode string     `json:"employee_code" binding:"omitempty,max=50"`
	Designation  string     `json:"designation" binding:"omitempty,max=100"`
	JoinedAt     *time.Time `json:"joined_at" binding:"omitempty"`
	RoleCodes    []string   `json:"role_codes" binding:"omitempty"`
}

// UpdateUserRequest carries partial profile updates; nil pointer fields are
// left untouched. A non-nil RoleCodes replaces the full role assignment.
// @Name HandlerUpdateUserRequest
type UpdateUserRequest struct {
	Email       *string  `json:"email" binding:"omitempty,email,max=200"`
	DisplayName *string  `json:"display_name" binding:"omitempty,max=200"`
	Designation *string  `json:"designation" binding:"omitempty,max=100"`
	RoleCodes   []string `json:"role_codes" binding:"omitempty"`
}

// ResetPasswordRequest is the admin-initiated password reset body.
// @Name HandlerResetPasswordRequest
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// LockUserRequest optionally bounds the lock; omitted means indefinite.
// @Name HandlerLockUserRequest
type LockUserRequest struct {
	DurationMinutes int `json:"duration_minutes" binding:"omitempty,min=1"`
}

// UserListQuery represents query parameters for listing users
// @Name HandlerUserListQuery
type UserListQuery struct {
	Keyword  string `form:"keyword" binding:"omitempty"`
	Status   string `form:"status" binding:"omitempty,oneof=PENDING ACTIVE LOCKED DEACTIVATED"`
	RoleID   string `form:"role_id" binding:"omitempty,uuid"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// UserResponse represents a user in API responses
// @Name HandlerUserResponse
type UserResponse struct {
	ID           uuid.UUID  `json:"id"`
	TenantID     uuid.UUID  `json:"tenant_id"`
	Username     string     `json:"username"`
	Email        string     `json:"email,omitempty"`
	DisplayName  string     `json:"display_name"`
	EmployeeCode string     `json:"employee_code,omitempty"`
	Designation  string     `json:"designation,omitempty"`
	Status       string     `json:"status"`
	Roles        []string   `json:"roles"`
	JoinedAt     *time.Time `json:"joined_at,omitempty"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// UserListResponse represents a paginated list of users
// @Name HandlerUserListResponse
type UserListResponse struct {
	Users    []UserResponse `json:"users"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// CreateRoleRequest is the body for defining a role. Permission strings use
// the resource:action form checked by the RBAC middleware.
// @Name HandlerCreateRoleRequest
type CreateRoleRequest struct {
	Code        string   `json:"code" binding:"required,min=2,max=50"`
	Name        string   `json:"name" binding:"required,min=1,max=100"`
	Description string   `json:"description" binding:"omitempty"`
	Permissions []string `json:"permissions" binding:"omitempty"`
}

// UpdateRoleRequest carries partial role updates; the code is immutable.
// @Name HandlerUpdateRoleRequest
type UpdateRoleRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty"`
}

// SetPermissionsRequest replaces a role's full permission set.
// @Name HandlerSetPermissionsRequest
type SetPermissionsRequest struct {
	Permissions []string `json:"permissions" binding:"required"`
}

// RoleListQuery represents query parameters for listing roles
// @Name HandlerRoleListQuery
type RoleListQuery struct {
	Keyword      string `form:"keyword" binding:"omitempty"`
	IsEnabled    *bool  `form:"is_enabled" binding:"omitempty"`
	IsSystemRole *bool  `form:"is_system_role" binding:"omitempty"`
	Page         int    `form:"page" binding:"omitempty,min=1"`
	PageSize     int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}
