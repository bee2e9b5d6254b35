package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/payops/backend/internal/infrastructure/auth"
)

// LoginInput contains the input for user login
type LoginInput struct {
	Username string // username or email address
	Password string
	IP       string // Client IP for login tracking
}

// LoginResult contains the issued token pair plus the authenticated user
type LoginResult struct {
	auth.TokenPair
	User UserInfo
}

// UserInfo contains basic user information returned after login
type UserInfo struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	Username     string
	DisplayName  string
	Email        string
	EmployeeCode string
	Designation  string
	Status       string
	JoinedAt     *time.Time
	LastLoginAt  *time.Time
	Roles        []string
	Permissions  []string
	RoleIDs      []uuid.UUID
}

// RefreshTokenInput contains the input for token refresh
type RefreshTokenInput struct {
	RefreshToken string
}

// LogoutInput contains the input for user logout
type LogoutInput struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	TokenJTI string        // JWT ID of the access token being revoked
	TokenTTL time.Duration // Remaining token lifetime, bounds the blacklist entry
}

// ChangePasswordInput contains the input for password change
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// GetCurrentUserInput contains the input for getting current user info
type GetCurrentUserInput struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
}

// CurrentUserResult contains the current user's information
type CurrentUserResult struct {
	User        UserInfo
	Permissions []string
}

// CreateEmployeeInput contains the input for provisioning an employee account
type CreateEmployeeInput struct {
	Username     string
	Email        string
	Password     string
	DisplayName  string
	EmployeeCode string
	Designation  string
	JoinedAt     *time.Time
	RoleCodes    []string // Defaults to the employee role when empty
}

// UpdateEmployeeInput contains the mutable profile fields of a user
type UpdateEmployeeInput struct {
	DisplayName *string
	Email       *string
	Designation *string
	RoleCodes   []string // Replaces the role set when non-nil
}

// ListUsersInput filters a user listing
type ListUsersInput struct {
	Keyword  string
	Status   *string
	RoleID   *uuid.UUID
	Page     int
	PageSize int
}

// UserListResult is a page of users
type UserListResult struct {
	Users    []UserInfo
	Total    int64
	Page     int
	PageSize int
}

// RegisterCompanyInput contains the input for onboarding a company tenant.
// Registration bootstraps the system roles and the first administrator.
type RegisterCompanyInput struct {
	Code          string
	Name          string
	ContactName   string
	ContactEmail  string
	AdminUsername string
	AdminPassword string
	AdminEmail    string
}

// CompanyInfo is the API representation of a company
type CompanyInfo struct {
	ID           uuid.UUID
	Code         string
	Name         string
	ShortName    string
	Status       string
	ContactName  string
	ContactPhone string
	ContactEmail string
	Address      string
	Currency     string
	Timezone     string
	CreatedAt    time.Time
}

// RegisterCompanyResult is the outcome of company onboarding
type RegisterCompanyResult struct {
	Company CompanyInfo
	AdminID uuid.UUID
}

// UpdateCompanyConfigInput carries the payroll settings of a company
type UpdateCompanyConfigInput struct {
	Currency         *string
	Timezone         *string
	Locale           *string
	ShiftStartHour   *int
	ShiftStartMinute *int
	GraceMinutes     *int
}
