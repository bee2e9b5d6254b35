package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/identity"
	"github.com/payops/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// RoleService handles role management operations
type RoleService struct {
	roleRepo identity.RoleRepository
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewRoleService creates a new role service
func NewRoleService(
	roleRepo identity.RoleRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *RoleService {
	return &RoleService{
		roleRepo: roleRepo,
		userRepo: userRepo,
		logger:   logger,
	}
}

// CreateRoleInput contains input for creating a role
type CreateRoleInput struct {
	TenantID    uuid.UUID
	Code        string
	Name        string
	Description string
	Permissions []string // Permission codes like "salary_slip:read"
}

// UpdateRoleInput contains input for updating a role
type UpdateRoleInput struct {
	ID          uuid.UUID
	Name        *string
	Description *string
}

// RoleDTO represents role data transfer object
type RoleDTO struct {
	ID           uuid.UUID `json:"id"`
	TenantID     uuid.UUID `json:"tenant_id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	IsSystemRole bool      `json:"is_system_role"`
	IsEnabled    bool      `json:"is_enabled"`
	Permissions  []string  `json:"permissions"`
	UserCount    int64     `json:"user_count,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RoleListResult is a page of roles
type RoleListResult = shared.Paginated[RoleDTO]

// systemRoleNames maps system role codes to their display names
var systemRoleNames = map[string]string{
	identity.RoleCodeAdmin:    "Administrator",
	identity.RoleCodeHR:       "Human Resources",
	identity.RoleCodeEmployee: "Employee",
}

// internalErr logs the underlying failure and returns an opaque domain error
// carrying only the public message.
func (s *RoleService) internalErr(msg string, err error) *shared.DomainError {
	s.logger.Error(msg, zap.Error(err))
	return shared.NewDomainError("INTERNAL_ERROR", msg)
}

// findRole loads a role by ID, translating repository errors to domain errors.
func (s *RoleService) findRole(ctx context.Context, id uuid.UUID) (*identity.Role, error) {
	role, err := s.roleRepo.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewDomainError("ROLE_NOT_FOUND", "Role not found")
	}
	if err != nil {
		return nil, s.internalErr("Failed to find role", err)
	}
	return role, nil
}

// describe builds the full DTO for a role: permissions plus how many users
// hold it. Both lookups are best effort; a partial DTO beats a failed read.
func (s *RoleService) describe(ctx context.Context, role *identity.Role) *RoleDTO {
	if err := s.roleRepo.LoadPermissions(ctx, role); err != nil {
		s.logger.Error("Failed to load role permissions",
			zap.String("role_id", role.ID.String()),
			zap.Error(err))
	}
	dto := toRoleDTO(role)
	if userCount, err := s.roleRepo.CountUsersWithRole(ctx, role.ID); err == nil {
		dto.UserCount = userCount
	}
	return dto
}

// SeedSystemRoles creates the ADMIN, HR, and EMPLOYEE roles for a tenant
// with their default permission sets. Existing roles are left untouched so
// seeding is safe to run on every startup.
func (s *RoleService) SeedSystemRoles(ctx context.Context, tenantID uuid.UUID) ([]*identity.Role, error) {
	codes := []string{identity.RoleCodeAdmin, identity.RoleCodeHR, identity.RoleCodeEmployee}
	roles := make([]*identity.Role, 0, len(codes))

	for _, code := range codes {
		existing, err := s.roleRepo.FindByCode(ctx, tenantID, code)
		if err == nil {
			roles = append(roles, existing)
			continue
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, s.internalErr("Failed to look up system role", err)
		}

		role, err := identity.NewSystemRole(tenantID, code, systemRoleNames[code])
		if err != nil {
			return nil, err
		}
		for _, permCode := range identity.DefaultRolePermissions(code) {
			if err := role.GrantPermissionByCode(permCode); err != nil {
				return nil, err
			}
		}

		if err := s.roleRepo.Create(ctx, role); err != nil {
			if errors.Is(err, shared.ErrAlreadyExists) {
				// Another instance seeded concurrently
				existing, ferr := s.roleRepo.FindByCode(ctx, tenantID, code)
				if ferr != nil {
					return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to look up system role")
				}
				roles = append(roles, existing)
				continue
			}
			return nil, s.internalErr("Failed to create system role", err)
		}
		if err := s.roleRepo.SavePermissions(ctx, role); err != nil {
			return nil, s.internalErr("Failed to save role permissions", err)
		}

		s.logger.Info("System role seeded",
			zap.String("tenant_id", tenantID.String()),
			zap.String("code", code))

		roles = append(roles, role)
	}

	return roles, nil
}

// Create creates a new role
func (s *RoleService) Create(ctx context.Context, input CreateRoleInput) (*RoleDTO, error) {
	s.logger.Info("Creating new role",
		zap.String("code", input.Code),
		zap.String("tenant_id", input.TenantID.String()))

	exists, err := s.roleRepo.ExistsByCode(ctx, input.TenantID, input.Code)
	if err != nil {
		return nil, s.internalErr("Failed to check role code availability", err)
	}
	if exists {
		return nil, shared.NewDomainError("ROLE_CODE_EXISTS", "Role code already exists")
	}

	role, err := identity.NewRole(input.TenantID, input.Code, input.Name)
	if err != nil {
		return nil, err
	}
	if input.Description != "" {
		role.SetDescription(input.Description)
	}

	for _, permCode := range input.Permissions {
		if err := role.GrantPermissionByCode(permCode); err != nil {
			// Duplicates in the input are tolerated
			var domainErr *shared.DomainError
			if errors.As(err, &domainErr) && domainErr.Code == "PERMISSION_ALREADY_GRANTED" {
				continue
			}
			return nil, err
		}
	}

	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, s.internalErr("Failed to create role", err)
	}

	if len(role.Permissions) > 0 {
		if err := s.roleRepo.SavePermissions(ctx, role); err != nil {
			// Roll the role back rather than leave it half-created
			_ = s.roleRepo.Delete(ctx, role.ID)
			return nil, s.internalErr("Failed to save role permissions", err)
		}
	}

	s.logger.Info("Role created successfully",
		zap.String("role_id", role.ID.String()),
		zap.String("code", role.Code))

	return toRoleDTO(role), nil
}

// GetByID retrieves a role by ID
func (s *RoleService) GetByID(ctx context.Context, id uuid.UUID) (*RoleDTO, error) {
	role, err := s.findRole(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.describe(ctx, role), nil
}

// GetByCode retrieves a role by code
func (s *RoleService) GetByCode(ctx context.Context, tenantID uuid.UUID, code string) (*RoleDTO, error) {
	role, err := s.roleRepo.FindByCode(ctx, tenantID, code)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewDomainError("ROLE_NOT_FOUND", "Role not found")
	}
	if err != nil {
		return nil, s.internalErr("Failed to find role", err)
	}
	return s.describe(ctx, role), nil
}

// List retrieves a paginated list of roles
func (s *RoleService) List(ctx context.Context, tenantID uuid.UUID, filter *identity.RoleFilter) (*RoleListResult, error) {
	roles, err := s.roleRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		return nil, s.internalErr("Failed to list roles", err)
	}

	total, err := s.roleRepo.Count(ctx, tenantID, filter)
	if err != nil {
		return nil, s.internalErr("Failed to count roles", err)
	}

	page, pageSize := 1, 20
	if filter != nil {
		if filter.Page > 0 {
			page = filter.Page
		}
		if filter.Limit > 0 {
			pageSize = filter.Limit
		}
	}

	roleDTOs := make([]RoleDTO, len(roles))
	for i, role := range roles {
		roleDTOs[i] = *s.describe(ctx, role)
	}

	result := shared.NewPaginated(roleDTOs, total, page, pageSize)
	return &result, nil
}

// Update updates a role's information
func (s *RoleService) Update(ctx context.Context, input UpdateRoleInput) (*RoleDTO, error) {
	role, err := s.findRole(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if err := role.SetName(*input.Name); err != nil {
			return nil, err
		}
	}
	if input.Description != nil {
		role.SetDescription(*input.Description)
	}

	if err := s.roleRepo.Update(ctx, role); err != nil {
		return nil, s.internalErr("Failed to update role", err)
	}

	if err := s.roleRepo.LoadPermissions(ctx, role); err != nil {
		s.logger.Error("Failed to load role permissions", zap.Error(err))
	}

	s.logger.Info("Role updated", zap.String("role_id", input.ID.String()))

	return toRoleDTO(role), nil
}

// Delete deletes a role. System roles and roles still assigned to users
// are refused.
func (s *RoleService) Delete(ctx context.Context, id uuid.UUID) error {
	role, err := s.findRole(ctx, id)
	if err != nil {
		return err
	}

	if !role.CanDelete() {
		return shared.NewDomainError("CANNOT_DELETE_SYSTEM_ROLE", "System roles cannot be deleted")
	}

	userCount, err := s.roleRepo.CountUsersWithRole(ctx, id)
	if err != nil {
		return s.internalErr("Failed to check role usage", err)
	}
	if userCount > 0 {
		return shared.NewDomainError("ROLE_IN_USE", "Cannot delete role that is assigned to users")
	}

	if err := s.roleRepo.Delete(ctx, id); err != nil {
		return s.internalErr("Failed to delete role", err)
	}

	s.logger.Info("Role deleted", zap.String("role_id", id.String()))

	return nil
}

// Enable enables a role
func (s *RoleService) Enable(ctx context.Context, id uuid.UUID) (*RoleDTO, error) {
	return s.toggle(ctx, id, (*identity.Role).Enable)
}

// Disable disables a role
func (s *RoleService) Disable(ctx context.Context, id uuid.UUID) (*RoleDTO, error) {
	return s.toggle(ctx, id, (*identity.Role).Disable)
}

func (s *RoleService) toggle(ctx context.Context, id uuid.UUID, fn func(*identity.Role) error) (*RoleDTO, error) {
	role, err := s.findRole(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := fn(role); err != nil {
		return nil, err
	}

	if err := s.roleRepo.Update(ctx, role); err != nil {
		return nil, s.internalErr("Failed to update role", err)
	}

	if err := s.roleRepo.LoadPermissions(ctx, role); err != nil {
		s.logger.Error("Failed to load role permissions", zap.Error(err))
	}

	return toRoleDTO(role), nil
}

// SetPermissions replaces a role's permission set
func (s *RoleService) SetPermissions(ctx context.Context, roleID uuid.UUID, permissionCodes []string) (*RoleDTO, error) {
	role, err := s.findRole(ctx, roleID)
	if err != nil {
		return nil, err
	}

	permissions := make([]identity.Permission, 0, len(permissionCodes))
	for _, code := range permissionCodes {
		perm, err := identity.NewPermissionFromCode(code)
		if err != nil {
			return nil, err
		}
		permissions = append(permissions, *perm)
	}

	if err := role.SetPermissions(permissions); err != nil {
		return nil, err
	}

	if err := s.roleRepo.SavePermissions(ctx, role); err != nil {
		return nil, s.internalErr("Failed to save permissions", err)
	}

	if err := s.roleRepo.Update(ctx, role); err != nil {
		return nil, s.internalErr("Failed to update role", err)
	}

	s.logger.Info("Role permissions updated",
		zap.String("role_id", roleID.String()),
		zap.Int("permission_count", len(permissions)))

	return toRoleDTO(role), nil
}

// GetSystemRoles returns all system roles for a tenant
func (s *RoleService) GetSystemRoles(ctx context.Context, tenantID uuid.UUID) ([]RoleDTO, error) {
	roles, err := s.roleRepo.FindSystemRoles(ctx, tenantID)
	if err != nil {
		return nil, s.internalErr("Failed to find system roles", err)
	}

	roleDTOs := make([]RoleDTO, len(roles))
	for i, role := range roles {
		if err := s.roleRepo.LoadPermissions(ctx, role); err != nil {
			s.logger.Error("Failed to load role permissions", zap.Error(err))
		}
		roleDTOs[i] = *toRoleDTO(role)
	}

	return roleDTOs, nil
}

// Count returns the total number of roles for a tenant
func (s *RoleService) Count(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	return s.roleRepo.Count(ctx, tenantID, nil)
}

// toRoleDTO converts domain Role to RoleDTO
func toRoleDTO(role *identity.Role) *RoleDTO {
	permissions := make([]string, len(role.Permissions))
	for i, perm := range role.Permissions {
		permissions[i] = perm.Code
	}

	return &RoleDTO{
		ID:           role.ID,
		TenantID:     role.TenantID,
		Code:         role.Code,
		Name:         role.Name,
		Description:  role.Description,
		IsSystemRole: role.IsSystemRole,
		IsEnabled:    role.IsEnabled,
		Permissions:  permissions,
		CreatedAt:    role.CreatedAt,
		UpdatedAt:    role.UpdatedAt,
	}
}
