package identity

import (
	"context"

	"github.com/google/uuid"
)

// RoleFilter narrows role listings.
type RoleFilter struct {
	Keyword      string // matches code and name
	IsEnabled    *bool
	IsSystemRole *bool
	Page         int
	Limit        int
}

// RoleRepository persists role aggregates and their permission grants.
type RoleRepository interface {
	Create(ctx context.Context, role *Role) error
	Update(ctx context.Context, role *Role) error
	Delete(ctx context.Context, id uuid.UUID) error

	FindByID(ctx context.Context, id uuid.UUID) (*Role, error)
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Role, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Role, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter *RoleFilter) ([]*Role, error)
	// FindSystemRoles returns the built-in roles seeded at company registration.
	FindSystemRoles(ctx context.Context, tenantID uuid.UUID) ([]*Role, error)

	Count(ctx context.Context, tenantID uuid.UUID, filter *RoleFilter) (int64, error)
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)

	// SavePermissions replaces the role's permission grants atomically.
	SavePermissions(ctx context.Context, role *Role) error
	// LoadPermissions populates role.Permissions from the grant table.
	LoadPermissions(ctx context.Context, role *Role) error

	// CountUsersWithRole reports how many users hold the role. Deletion is
	// refused while the count is non-zero.
	CountUsersWithRole(ctx context.Context, roleID uuid.UUID) (int64, error)
}
