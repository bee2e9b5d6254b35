package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository persists user aggregates. Lookups by username, email
// and employee code are case-insensitive.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error

	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByEmployeeCode(ctx context.Context, code string) (*User, error)
	FindAll(ctx context.Context, filter UserFilter) ([]*User, int64, error)

	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// SaveUserRoles replaces the user's role assignments atomically.
	SaveUserRoles(ctx context.Context, user *User) error
	// LoadUserRoles populates user.RoleIDs from the assignment table.
	LoadUserRoles(ctx context.Context, user *User) error

	Count(ctx context.Context) (int64, error)
}

// UserFilter narrows and paginates user listings.
type UserFilter struct {
	Keyword   string // matches username, email, display name or employee code
	Status    *UserStatus
	RoleID    *uuid.UUID
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// NewUserFilter returns a filter for the first page, newest first.
func NewUserFilter() UserFilter {
	return UserFilter{
		Page:      1,
		PageSize:  20,
		SortBy:    "created_at",
		SortOrder: "desc",
	}
}

func (f UserFilter) WithKeyword(keyword string) UserFilter {
	f.Keyword = keyword
	return f
}

func (f UserFilter) WithStatus(status UserStatus) UserFilter {
	f.Status = &status
	return f
}

func (f UserFilter) WithRoleID(roleID uuid.UUID) UserFilter {
	f.RoleID = &roleID
	return f
}

func (f UserFilter) WithPagination(page, pageSize int) UserFilter {
	if page > 0 {
		f.Page = page
	}
	if pageSize > 0 {
		f.PageSize = pageSize
	}
	return f
}

// Offset converts the page number to a row offset.
func (f UserFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Limit caps the page size at 100 rows.
func (f UserFilter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}
