package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/identity"
	"github.com/payops/backend/internal/domain/shared"
	"github.com/payops/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// CompanyService handles company tenant management. Registration is the
// tenant bootstrap: it creates the company, seeds the system roles, and
// provisions the first administrator account.
type CompanyService struct {
	companyRepo identity.CompanyRepository
	userRepo    identity.UserRepository
	roleService *RoleService
	logger      *zap.Logger
}

// NewCompanyService creates a new company service
func NewCompanyService(
	companyRepo identity.CompanyRepository,
	userRepo identity.UserRepository,
	roleService *RoleService,
	logger *zap.Logger,
) *CompanyService {
	return &CompanyService{
		companyRepo: companyRepo,
		userRepo:    userRepo,
		roleService: roleService,
		logger:      logger,
	}
}

// UpdateCompanyInput contains input for updating a company's profile
type UpdateCompanyInput struct {
	Name         *string
	ShortName    *string
	ContactName  *string
	ContactPhone *string
	ContactEmail *string
	Address      *string
}

// Register onboards a new company tenant
func (s *CompanyService) Register(ctx context.Context, input RegisterCompanyInput) (*RegisterCompanyResult, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))

	s.logger.Info("Registering company",
		zap.String("code", code),
		zap.String("name", input.Name))

	exists, err := s.companyRepo.ExistsByCode(ctx, code)
	if err != nil {
		s.logger.Error("Failed to check company code existence", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check code availability")
	}
	if exists {
		return nil, shared.NewDomainError("CODE_EXISTS", "Company code already exists")
	}

	company, err := identity.NewCompany(code, input.Name)
	if err != nil {
		return nil, err
	}
	if input.ContactName != "" || input.ContactEmail != "" {
		if err := company.SetContact(input.ContactName, "", input.ContactEmail); err != nil {
			return nil, err
		}
	}

	if err := s.companyRepo.Save(ctx, company); err != nil {
		if err == shared.ErrAlreadyExists {
			return nil, shared.NewDomainError("CODE_EXISTS", "Company code already exists")
		}
		s.logger.Error("Failed to save company", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to register company")
	}

	// The company ID is the tenant ID; scope the rest of the bootstrap to it
	tenantCtx, _ := logger.WithTenantID(ctx, s.logger, company.ID.String())

	roles, err := s.roleService.SeedSystemRoles(tenantCtx, company.ID)
	if err != nil {
		s.logger.Error("Failed to seed system roles", zap.Error(err))
		return nil, err
	}

	var adminRole *identity.Role
	for _, role := range roles {
		if role.Code == identity.RoleCodeAdmin {
			adminRole = role
			break
		}
	}
	if adminRole == nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Administrator role missing after seeding")
	}

	admin, err := identity.NewActiveUser(company.ID, input.AdminUsername, input.AdminPassword)
	if err != nil {
		return nil, err
	}
	if input.AdminEmail != "" {
		if err := admin.SetEmail(input.AdminEmail); err != nil {
			return nil, err
		}
	}
	if err := admin.SetRoles([]uuid.UUID{adminRole.ID}); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(tenantCtx, admin); err != nil {
		s.logger.Error("Failed to create administrator account", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create administrator account")
	}
	if err := s.userRepo.SaveUserRoles(tenantCtx, admin); err != nil {
		s.logger.Error("Failed to assign administrator role", zap.Error(err))
		_ = s.userRepo.Delete(tenantCtx, admin.ID)
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to assign administrator role")
	}

	s.logger.Info("Company registered",
		zap.String("company_id", company.ID.String()),
		zap.String("code", company.Code),
		zap.String("admin_id", admin.ID.String()))

	return &RegisterCompanyResult{
		Company: toCompanyInfo(company),
		AdminID: admin.ID,
	}, nil
}

// GetByID retrieves a company by ID
func (s *CompanyService) GetByID(ctx context.Context, id uuid.UUID) (*CompanyInfo, error) {
	company, err := s.companyRepo.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("COMPANY_NOT_FOUND", "Company not found")
		}
		s.logger.Error("Failed to find company", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find company")
	}
	info := toCompanyInfo(company)
	return &info, nil
}

// GetByCode retrieves a company by code
func (s *CompanyService) GetByCode(ctx context.Context, code string) (*CompanyInfo, error) {
	company, err := s.companyRepo.FindByCode(ctx, code)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("COMPANY_NOT_FOUND", "Company not found")
		}
		s.logger.Error("Failed to find company by code", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find company")
	}
	info := toCompanyInfo(company)
	return &info, nil
}

// GetConfig returns the company's payroll configuration
func (s *CompanyService) GetConfig(ctx context.Context, id uuid.UUID) (*identity.CompanyConfig, error) {
	company, err := s.companyRepo.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("COMPANY_NOT_FOUND", "Company not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find company")
	}
	config := company.Config
	return &config, nil
}

// Update updates a company's profile
func (s *CompanyService) Update(ctx context.Context, id uuid.UUID, input UpdateCompanyInput) (*CompanyInfo, error) {
	company, err := s.companyRepo.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("COMPANY_NOT_FOUND", "Company not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find company")
	}

	if input.Name != nil || input.ShortName != nil {
		name := company.Name
		shortName := company.ShortName
		if input.Name != nil {
			name = *input.Name
		}
		if input.ShortName != nil {
			shortName = *input.ShortName
		}
		if err := company.Update(name, shortName); err != nil {
			return nil, err
		}
	}

	if input.ContactName != nil || input.ContactPhone != nil || input.ContactEmail != nil {
		contactName := company.ContactName
		contactPhone := company.ContactPhone
		contactEmail := company.ContactEmail
		if input.ContactName != nil {
			contactName = *input.ContactName
		}
		if input.ContactPhone != nil {
			contactPhone = *input.ContactPhone
		}
		if input.ContactEmail != nil {
			contactEmail = *input.ContactEmail
		}
		if err := company.SetContact(contactName, contactPhone, contactEmail); err != nil {
			return nil, err
		}
	}

	if input.Address != nil {
		if err := company.SetAddress(*input.Address); err != nil {
			return nil, err
		}
	}

	if err := s.companyRepo.Save(ctx, company); err != nil {
		s.logger.Error("Failed to update company", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update company")
	}

	s.logger.Info("Company updated", zap.String("company_id", id.String()))

	info := toCompanyInfo(company)
	return &info, nil
}

// UpdateConfig updates a company's payroll configuration
func (s *CompanyService) UpdateConfig(ctx context.Context, id uuid.UUID, input UpdateCompanyConfigInput) (*CompanyInfo, error) {
	company, err := s.companyRepo.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("COMPANY_NOT_FOUND", "Company not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find company")
	}

	config := company.Config
	if input.Currency != nil {
		config.Currency = *input.Currency
	}
	if input.Timezone != nil {
		config.Timezone = *input.Timezone
	}
	if input.Locale != nil {
		config.Locale = *input.Locale
	}
	if input.ShiftStartHour != nil {
		config.ShiftStartHour = *input.ShiftStartHour
	}
	if input.ShiftStartMinute != nil {
		config.ShiftStartMinute = *input.ShiftStartMinute
	}
	if input.GraceMinutes != nil {
		config.GraceMinutes = *input.GraceMinutes
	}

	if err := company.UpdateConfig(config); err != nil {
		return nil, err
	}

	if err := s.companyRepo.Save(ctx, company); err != nil {
		s.logger.Error("Failed to update company config", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update company config")
	}

	s.logger.Info("Company config updated", zap.String("company_id", id.String()))

	info := toCompanyInfo(company)
	return &info, nil
}

// Activate activates a company
func (s *CompanyService) Activate(ctx context.Context, id uuid.UUID) (*CompanyInfo, error) {
	return s.transition(ctx, id, func(c *identity.Company) error { return c.Activate() })
}

// Suspend suspends a company, blocking all payroll operations
func (s *CompanyService) Suspend(ctx context.Context, id uuid.UUID) (*CompanyInfo, error) {
	return s.transition(ctx, id, func(c *identity.Company) error { return c.Suspend() })
}

// Deactivate deactivates a company
func (s *CompanyService) Deactivate(ctx context.Context, id uuid.UUID) (*CompanyInfo, error) {
	return s.transition(ctx, id, func(c *identity.Company) error { return c.Deactivate() })
}

func (s *CompanyService) transition(ctx context.Context, id uuid.UUID, fn func(*identity.Company) error) (*CompanyInfo, error) {
	company, err := s.companyRepo.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("COMPANY_NOT_FOUND", "Company not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find company")
	}

	if err := fn(company); err != nil {
		return nil, err
	}

	if err := s.companyRepo.Save(ctx, company); err != nil {
		s.logger.Error("Failed to update company status", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update company")
	}

	s.logger.Info("Company status changed",
		zap.String("company_id", id.String()),
		zap.String("status", string(company.Status)))

	info := toCompanyInfo(company)
	return &info, nil
}

// Count returns the total number of companies
func (s *CompanyService) Count(ctx context.Context) (int64, error) {
	return s.companyRepo.Count(ctx, shared.DefaultFilter())
}

// toCompanyInfo converts domain Company to CompanyInfo
func toCompanyInfo(company *identity.Company) CompanyInfo {
	return CompanyInfo{
		ID:           company.ID,
		Code:         company.Code,
		Name:         company.Name,
		ShortName:    company.ShortName,
		Status:       string(company.Status),
		ContactName:  company.ContactName,
		ContactPhone: company.ContactPhone,
		ContactEmail: company.ContactEmail,
		Address:      company.Address,
		Currency:     company.Config.Currency,
		Timezone:     company.Config.Timezone,
		CreatedAt:    company.CreatedAt,
	}
}
