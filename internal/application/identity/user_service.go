package identity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/identity"
	"github.com/payops/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// UserService handles employee account management
type UserService struct {
	userRepo identity.UserRepository
	roleRepo identity.RoleRepository
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo identity.UserRepository,
	roleRepo identity.RoleRepository,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		logger:   logger,
	}
}

// CreateEmployee provisions a new employee account. Accounts with no role
// codes get the employee role so new hires can at least see their own data.
func (s *UserService) CreateEmployee(ctx context.Context, tenantID uuid.UUID, input CreateEmployeeInput) (*UserInfo, error) {
	s.logger.Info("Creating employee account",
		zap.String("username", input.Username),
		zap.String("employee_code", input.EmployeeCode),
		zap.String("tenant_id", tenantID.String()))

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		s.logger.Error("Failed to check username existence", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check username availability")
	}
	if exists {
		return nil, shared.NewDomainError("USERNAME_EXISTS", "Username already exists")
	}

	if input.Email != "" {
		exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
		if err != nil {
			s.logger.Error("Failed to check email existence", zap.Error(err))
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check email availability")
		}
		if exists {
			return nil, shared.NewDomainError("EMAIL_EXISTS", "Email already exists")
		}
	}

	if input.EmployeeCode != "" {
		if _, err := s.userRepo.FindByEmployeeCode(ctx, input.EmployeeCode); err == nil {
			return nil, shared.NewDomainError("EMPLOYEE_CODE_EXISTS", "Employee code already exists")
		} else if err != shared.ErrNotFound {
			s.logger.Error("Failed to check employee code", zap.Error(err))
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check employee code availability")
		}
	}

	roleCodes := input.RoleCodes
	if len(roleCodes) == 0 {
		roleCodes = []string{identity.RoleCodeEmployee}
	}
	roleIDs, err := s.resolveRoleCodes(ctx, tenantID, roleCodes)
	if err != nil {
		return nil, err
	}

	user, err := identity.NewActiveUser(tenantID, input.Username, input.Password)
	if err != nil {
		return nil, err
	}

	if input.Email != "" {
		if err := user.SetEmail(input.Email); err != nil {
			return nil, err
		}
	}
	if input.DisplayName != "" {
		if err := user.SetDisplayName(input.DisplayName); err != nil {
			return nil, err
		}
	}
	if err := user.SetEmployeeProfile(input.EmployeeCode, input.Designation, input.JoinedAt); err != nil {
		return nil, err
	}
	if err := user.SetRoles(roleIDs); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if err == shared.ErrAlreadyExists {
			return nil, shared.NewDomainError("USERNAME_EXISTS", "Username already exists")
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create user")
	}

	if len(user.RoleIDs) > 0 {
		if err := s.userRepo.SaveUserRoles(ctx, user); err != nil {
			s.logger.Error("Failed to save user roles", zap.Error(err))
			// Roll back the half-created account
			_ = s.userRepo.Delete(ctx, user.ID)
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to assign roles to user")
		}
	}

	s.logger.Info("Employee account created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	return s.buildUserInfo(ctx, user)
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		s.logger.Error("Failed to find user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find user")
	}

	if err := s.userRepo.LoadUserRoles(ctx, user); err != nil {
		s.logger.Error("Failed to load user roles", zap.Error(err))
	}

	return s.buildUserInfo(ctx, user)
}

// List retrieves a paginated list of users
func (s *UserService) List(ctx context.Context, input ListUsersInput) (*UserListResult, error) {
	filter := identity.NewUserFilter()
	if input.Keyword != "" {
		filter = filter.WithKeyword(input.Keyword)
	}
	if input.Status != nil {
		filter = filter.WithStatus(identity.UserStatus(*input.Status))
	}
	if input.RoleID != nil {
		filter = filter.WithRoleID(*input.RoleID)
	}
	if input.Page > 0 || input.PageSize > 0 {
		filter = filter.WithPagination(input.Page, input.PageSize)
	}

	users, total, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list users", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list users")
	}

	infos := make([]UserInfo, 0, len(users))
	for _, user := range users {
		if err := s.userRepo.LoadUserRoles(ctx, user); err != nil {
			s.logger.Error("Failed to load user roles",
				zap.String("user_id", user.ID.String()),
				zap.Error(err))
		}
		info, err := s.buildUserInfo(ctx, user)
		if err != nil {
			return nil, err
		}
		infos = append(infos, *info)
	}

	return &UserListResult{
		Users:    infos,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.Limit(),
	}, nil
}

// UpdateEmployee updates an employee's profile and optionally its role set
func (s *UserService) UpdateEmployee(ctx context.Context, tenantID, userID uuid.UUID, input UpdateEmployeeInput) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find user")
	}

	if input.Email != nil {
		if *input.Email != "" && !strings.EqualFold(*input.Email, user.Email) {
			exists, err := s.userRepo.ExistsByEmail(ctx, *input.Email)
			if err != nil {
				return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check email availability")
			}
			if exists {
				return nil, shared.NewDomainError("EMAIL_EXISTS", "Email already exists")
			}
		}
		if err := user.SetEmail(*input.Email); err != nil {
			return nil, err
		}
	}

	if input.DisplayName != nil {
		if err := user.SetDisplayName(*input.DisplayName); err != nil {
			return nil, err
		}
	}

	if input.Designation != nil {
		if err := user.SetEmployeeProfile(user.EmployeeCode, *input.Designation, user.JoinedAt); err != nil {
			return nil, err
		}
	}

	if input.RoleCodes != nil {
		roleIDs, err := s.resolveRoleCodes(ctx, tenantID, input.RoleCodes)
		if err != nil {
			return nil, err
		}
		if err := user.SetRoles(roleIDs); err != nil {
			return nil, err
		}
		if err := s.userRepo.SaveUserRoles(ctx, user); err != nil {
			s.logger.Error("Failed to save user roles", zap.Error(err))
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to assign roles")
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update user")
	}

	s.logger.Info("User updated", zap.String("user_id", userID.String()))

	return s.buildUserInfo(ctx, user)
}

// Activate activates a user account
func (s *UserService) Activate(ctx context.Context, id uuid.UUID) (*UserInfo, error) {
	return s.transition(ctx, id, "activate", func(u *identity.User) error { return u.Activate() })
}

// Deactivate deactivates a user account, typically on offboarding. Payroll
// history stays readable for finalized periods.
func (s *UserService) Deactivate(ctx context.Context, id uuid.UUID) (*UserInfo, error) {
	return s.transition(ctx, id, "deactivate", func(u *identity.User) error { return u.Deactivate() })
}

// Unlock unlocks a user account after a lockout
func (s *UserService) Unlock(ctx context.Context, id uuid.UUID) (*UserInfo, error) {
	return s.transition(ctx, id, "unlock", func(u *identity.User) error { return u.Unlock() })
}

// Lock locks a user account for the given duration
func (s *UserService) Lock(ctx context.Context, id uuid.UUID, duration time.Duration) (*UserInfo, error) {
	return s.transition(ctx, id, "lock", func(u *identity.User) error { return u.Lock(duration) })
}

func (s *UserService) transition(ctx context.Context, id uuid.UUID, action string, fn func(*identity.User) error) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find user")
	}

	if err := fn(user); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update user status",
			zap.String("action", action),
			zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update user")
	}

	if err := s.userRepo.LoadUserRoles(ctx, user); err != nil {
		s.logger.Error("Failed to load user roles", zap.Error(err))
	}

	s.logger.Info("User status changed",
		zap.String("user_id", id.String()),
		zap.String("action", action))

	return s.buildUserInfo(ctx, user)
}

// ResetPassword resets a user's password (admin action, no old password check)
func (s *UserService) ResetPassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if err == shared.ErrNotFound {
			return shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to find user")
	}

	if err := user.SetPassword(newPassword); err != nil {
		return err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to reset password", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to reset password")
	}

	s.logger.Info("User password reset", zap.String("user_id", userID.String()))

	return nil
}

// Count returns the total number of users for the tenant
func (s *UserService) Count(ctx context.Context) (int64, error) {
	return s.userRepo.Count(ctx)
}

// resolveRoleCodes maps role codes to role IDs within the tenant
func (s *UserService) resolveRoleCodes(ctx context.Context, tenantID uuid.UUID, codes []string) ([]uuid.UUID, error) {
	roleIDs := make([]uuid.UUID, 0, len(codes))
	for _, code := range codes {
		role, err := s.roleRepo.FindByCode(ctx, tenantID, strings.ToUpper(strings.TrimSpace(code)))
		if err != nil {
			if err == shared.ErrNotFound {
				return nil, shared.NewDomainError("ROLE_NOT_FOUND", "Role not found: "+code)
			}
			s.logger.Error("Failed to resolve role code", zap.Error(err))
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to validate roles")
		}
		roleIDs = append(roleIDs, role.ID)
	}
	return roleIDs, nil
}

// buildUserInfo resolves role codes for the outward representation
func (s *UserService) buildUserInfo(ctx context.Context, user *identity.User) (*UserInfo, error) {
	roleCodes := make([]string, 0, len(user.RoleIDs))
	if len(user.RoleIDs) > 0 {
		roles, err := s.roleRepo.FindByIDs(ctx, user.RoleIDs)
		if err != nil {
			s.logger.Error("Failed to resolve role codes", zap.Error(err))
		} else {
			for _, role := range roles {
				roleCodes = append(roleCodes, role.Code)
			}
		}
	}

	info := toUserInfo(user, roleCodes, nil)
	return &info, nil
}
