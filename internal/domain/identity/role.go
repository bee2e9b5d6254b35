package identity

import (
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/shared"
)

var (
	roleCodeRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)
	permPartRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

// Permission is a resource:action value object, e.g. "salary_slip:finalize".
type Permission struct {
	Code        string
	Resource    string
	Action      string
	Description string
}

func NewPermission(resource, action string) (*Permission, error) {
	if err := validatePermissionPart(resource, "resource"); err != nil {
		return nil, err
	}
	if err := validatePermissionPart(action, "action"); err != nil {
		return nil, err
	}

	resource = strings.ToLower(strings.TrimSpace(resource))
	action = strings.ToLower(strings.TrimSpace(action))

	return &Permission{
		Code:     resource + ":" + action,
		Resource: resource,
		Action:   action,
	}, nil
}

// NewPermissionFromCode parses a "resource:action" code.
func NewPermissionFromCode(code string) (*Permission, error) {
	resource, action, ok := strings.Cut(code, ":")
	if !ok {
		return nil, shared.NewDomainError("INVALID_PERMISSION_CODE", "Permission code must be in format 'resource:action'")
	}
	return NewPermission(resource, action)
}

func (p Permission) Equals(other Permission) bool {
	return p.Code == other.Code
}

func (p Permission) IsEmpty() bool {
	return p.Code == ""
}

// Role is the RBAC aggregate root. The JWT middleware checks permission
// codes collected from a user's roles, so grants only take effect on the
// next token refresh.
type Role struct {
	shared.TenantAggregateRoot
	Code         string
	Name         string
	Description  string
	IsSystemRole bool // seeded at registration, cannot be deleted
	IsEnabled    bool
	Permissions  []Permission // Stored in separate table, loaded by repository
}

// NewRole creates a custom role. Codes are normalized to uppercase.
func NewRole(tenantID uuid.UUID, code, name string) (*Role, error) {
	if err := validateRoleCode(code); err != nil {
		return nil, err
	}
	if err := validateRoleName(name); err != nil {
		return nil, err
	}

	role := &Role{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(strings.TrimSpace(code)),
		Name:                strings.TrimSpace(name),
		IsSystemRole:        false,
		IsEnabled:           true,
		Permissions:         make([]Permission, 0),
	}

	role.AddDomainEvent(NewRoleCreatedEvent(role))

	return role, nil
}

// NewSystemRole creates one of the built-in roles seeded at company
// registration.
func NewSystemRole(tenantID uuid.UUID, code, name string) (*Role, error) {
	role, err := NewRole(tenantID, code, name)
	if err != nil {
		return nil, err
	}

	role.IsSystemRole = true
	return role, nil
}

func (r *Role) touch() {
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}

func (r *Role) SetName(name string) error {
	if err := validateRoleName(name); err != nil {
		return err
	}

	r.Name = strings.TrimSpace(name)
	r.touch()
	return nil
}

func (r *Role) SetDescription(description string) {
	r.Description = description
	r.touch()
}

func (r *Role) Enable() error {
	if r.IsEnabled {
		return shared.NewDomainError("ALREADY_ENABLED", "Role is already enabled")
	}

	r.IsEnabled = true
	r.touch()
	return nil
}

// Disable stops the role from contributing permissions at login. Existing
// tokens keep their claims until they expire.
func (r *Role) Disable() error {
	if !r.IsEnabled {
		return shared.NewDomainError("ALREADY_DISABLED", "Role is already disabled")
	}

	r.IsEnabled = false
	r.touch()
	return nil
}

func (r *Role) GrantPermission(perm Permission) error {
	if perm.IsEmpty() {
		return shared.NewDomainError("INVALID_PERMISSION", "Permission cannot be empty")
	}
	if r.HasPermission(perm.Code) {
		return shared.NewDomainError("PERMISSION_ALREADY_GRANTED", "Role already has this permission")
	}

	r.Permissions = append(r.Permissions, perm)
	r.touch()
	return nil
}

func (r *Role) GrantPermissionByCode(code string) error {
	perm, err := NewPermissionFromCode(code)
	if err != nil {
		return err
	}
	return r.GrantPermission(*perm)
}

func (r *Role) RevokePermission(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_PERMISSION_CODE", "Permission code cannot be empty")
	}
	if !r.HasPermission(code) {
		return shared.NewDomainError("PERMISSION_NOT_FOUND", "Role does not have this permission")
	}

	r.Permissions = slices.DeleteFunc(slices.Clone(r.Permissions), func(p Permission) bool {
		return p.Code == code
	})
	r.touch()
	return nil
}

// SetPermissions replaces the grant set, dropping duplicates while
// preserving order.
func (r *Role) SetPermissions(permissions []Permission) error {
	for _, p := range permissions {
		if p.IsEmpty() {
			return shared.NewDomainError("INVALID_PERMISSION", "Permission cannot be empty")
		}
	}

	seen := make(map[string]bool, len(permissions))
	unique := make([]Permission, 0, len(permissions))
	for _, p := range permissions {
		if !seen[p.Code] {
			seen[p.Code] = true
			unique = append(unique, p)
		}
	}

	r.Permissions = unique
	r.touch()
	return nil
}

func (r *Role) HasPermission(code string) bool {
	return slices.ContainsFunc(r.Permissions, func(p Permission) bool {
		return p.Code == code
	})
}

func (r *Role) HasPermissionForResource(resource string) bool {
	resource = strings.ToLower(strings.TrimSpace(resource))
	return slices.ContainsFunc(r.Permissions, func(p Permission) bool {
		return p.Resource == resource
	})
}

func (r *Role) GetPermissionsForResource(resource string) []Permission {
	resource = strings.ToLower(strings.TrimSpace(resource))
	perms := make([]Permission, 0)
	for _, p := range r.Permissions {
		if p.Resource == resource {
			perms = append(perms, p)
		}
	}
	return perms
}

// CanDelete reports whether the role may be removed. System roles are
// permanent; the service additionally refuses while users still hold it.
func (r *Role) CanDelete() bool {
	return !r.IsSystemRole
}

func (r *Role) Update(name, description string) error {
	if err := r.SetName(name); err != nil {
		return err
	}
	r.SetDescription(description)
	return nil
}

func validateRoleCode(code string) error {
	code = strings.TrimSpace(code)
	switch {
	case code == "":
		return shared.NewDomainError("INVALID_ROLE_CODE", "Role code cannot be empty")
	case len(code) < 2:
		return shared.NewDomainError("INVALID_ROLE_CODE", "Role code must be at least 2 characters")
	case len(code) > 50:
		return shared.NewDomainError("INVALID_ROLE_CODE", "Role code cannot exceed 50 characters")
	case !roleCodeRegex.MatchString(code):
		return shared.NewDomainError("INVALID_ROLE_CODE", "Role code must start with a letter and contain only letters, numbers, and underscores")
	}
	return nil
}

func validateRoleName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_ROLE_NAME", "Role name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_ROLE_NAME", "Role name cannot exceed 100 characters")
	}
	return nil
}

func validatePermissionPart(value, part string) error {
	value = strings.TrimSpace(value)
	code := "INVALID_PERMISSION_" + strings.ToUpper(part)
	switch {
	case value == "":
		return shared.NewDomainError(code, "Permission "+part+" cannot be empty")
	case len(value) > 50:
		return shared.NewDomainError(code, "Permission "+part+" cannot exceed 50 characters")
	case !permPartRegex.MatchString(strings.ToLower(value)):
		return shared.NewDomainError(code, "Permission "+part+" must start with a letter and contain only lowercase letters, numbers, and underscores")
	}
	return nil
}

// Predefined system role codes
const (
	RoleCodeAdmin    = "ADMIN"    // Full control including finalization
	RoleCodeHR       = "HR"       // Manages structures, parameters, attendance
	RoleCodeEmployee = "EMPLOYEE" // Self-service: own slips, own scores
)

// Predefined resources
const (
	ResourceScoreParameter  = "score_parameter"
	ResourcePerformance     = "performance"
	ResourceBonus           = "bonus"
	ResourceSalaryStructure = "salary_structure"
	ResourceSalarySlip      = "salary_slip"
	ResourceAttendance      = "attendance"
	ResourceTask            = "task"
	ResourceRegister        = "register"
	ResourceAuditLog        = "audit_log"
	ResourceUser            = "user"
	ResourceRole            = "role"
	ResourceCompany         = "company"
)

// Predefined actions
const (
	ActionCreate     = "create"
	ActionRead       = "read"
	ActionUpdate     = "update"
	ActionDelete     = "delete"
	ActionCompute    = "compute"
	ActionFinalize   = "finalize"
	ActionSubmit     = "submit"
	ActionRate       = "rate"
	ActionExport     = "export"
	ActionAssignRole = "assign_role"
	ActionViewAll    = "view_all"
)

// DefaultRolePermissions returns the permission codes seeded onto a system
// role when a company tenant is registered. Finalization of bonuses and
// slips stays admin-only; HR runs the month but cannot close it.
func DefaultRolePermissions(roleCode string) []string {
	switch roleCode {
	case RoleCodeAdmin:
		return []string{
			ResourceScoreParameter + ":" + ActionCreate,
			ResourceScoreParameter + ":" + ActionRead,
			ResourceScoreParameter + ":" + ActionUpdate,
			ResourceScoreParameter + ":" + ActionDelete,
			ResourcePerformance + ":" + ActionCompute,
			ResourcePerformance + ":" + ActionRead,
			ResourcePerformance + ":" + ActionViewAll,
			ResourceBonus + ":" + ActionRead,
			ResourceBonus + ":" + ActionFinalize,
			ResourceBonus + ":" + ActionViewAll,
			ResourceSalaryStructure + ":" + ActionCreate,
			ResourceSalaryStructure + ":" + ActionRead,
			ResourceSalaryStructure + ":" + ActionUpdate,
			ResourceSalaryStructure + ":" + ActionDelete,
			ResourceSalarySlip + ":" + ActionCreate,
			ResourceSalarySlip + ":" + ActionRead,
			ResourceSalarySlip + ":" + ActionUpdate,
			ResourceSalarySlip + ":" + ActionSubmit,
			ResourceSalarySlip + ":" + ActionFinalize,
			ResourceSalarySlip + ":" + ActionViewAll,
			ResourceAttendance + ":" + ActionCreate,
			ResourceAttendance + ":" + ActionRead,
			ResourceAttendance + ":" + ActionUpdate,
			ResourceAttendance + ":" + ActionViewAll,
			ResourceTask + ":" + ActionCreate,
			ResourceTask + ":" + ActionRead,
			ResourceTask + ":" + ActionUpdate,
			ResourceTask + ":" + ActionRate,
			ResourceTask + ":" + ActionViewAll,
			ResourceRegister + ":" + ActionExport,
			ResourceAuditLog + ":" + ActionRead,
			ResourceUser + ":" + ActionCreate,
			ResourceUser + ":" + ActionRead,
			ResourceUser + ":" + ActionUpdate,
			ResourceUser + ":" + ActionDelete,
			ResourceUser + ":" + ActionAssignRole,
			ResourceRole + ":" + ActionCreate,
			ResourceRole + ":" + ActionRead,
			ResourceRole + ":" + ActionUpdate,
			ResourceRole + ":" + ActionDelete,
			ResourceCompany + ":" + ActionRead,
			ResourceCompany + ":" + ActionUpdate,
		}
	case RoleCodeHR:
		return []string{
			ResourceScoreParameter + ":" + ActionCreate,
			ResourceScoreParameter + ":" + ActionRead,
			ResourceScoreParameter + ":" + ActionUpdate,
			ResourcePerformance + ":" + ActionCompute,
			ResourcePerformance + ":" + ActionRead,
			ResourcePerformance + ":" + ActionViewAll,
			ResourceBonus + ":" + ActionRead,
			ResourceBonus + ":" + ActionViewAll,
			ResourceSalaryStructure + ":" + ActionCreate,
			ResourceSalaryStructure + ":" + ActionRead,
			ResourceSalaryStructure + ":" + ActionUpdate,
			ResourceSalarySlip + ":" + ActionCreate,
			ResourceSalarySlip + ":" + ActionRead,
			ResourceSalarySlip + ":" + ActionUpdate,
			ResourceSalarySlip + ":" + ActionViewAll,
			ResourceAttendance + ":" + ActionCreate,
			ResourceAttendance + ":" + ActionRead,
			ResourceAttendance + ":" + ActionUpdate,
			ResourceAttendance + ":" + ActionViewAll,
			ResourceTask + ":" + ActionCreate,
			ResourceTask + ":" + ActionRead,
			ResourceTask + ":" + ActionUpdate,
			ResourceTask + ":" + ActionRate,
			ResourceTask + ":" + ActionViewAll,
			ResourceRegister + ":" + ActionExport,
			ResourceUser + ":" + ActionCreate,
			ResourceUser + ":" + ActionRead,
			ResourceUser + ":" + ActionUpdate,
		}
	case RoleCodeEmployee:
		return []string{
			ResourcePerformance + ":" + ActionRead,
			ResourceBonus + ":" + ActionRead,
			ResourceSalarySlip + ":" + ActionRead,
			ResourceSalarySlip + ":" + ActionSubmit,
			ResourceAttendance + ":" + ActionCreate,
			ResourceAttendance + ":" + ActionRead,
			ResourceTask + ":" + ActionRead,
			ResourceTask + ":" + ActionUpdate,
		}
	default:
		return nil
	}
}
