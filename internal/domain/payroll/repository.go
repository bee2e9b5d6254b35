package payroll

import (
	"context"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/shared"
	"github.com/payops/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// SalaryStructureRepository defines the interface for salary structure persistence
type SalaryStructureRepository interface {
	// FindByID finds a salary structure by ID
	FindByID(ctx context.Context, id uuid.UUID) (*SalaryStructure, error)

	// FindByIDForTenant finds a salary structure by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*SalaryStructure, error)

	// FindActiveForUser finds the active salary structure for a user.
	// Returns shared.ErrNotFound when the user has no active structure.
	FindActiveForUser(ctx context.Context, tenantID, userID uuid.UUID) (*SalaryStructure, error)

	// FindAllForUser finds all structures for a user, active and inactive,
	// newest effective date first
	FindAllForUser(ctx context.Context, tenantID, userID uuid.UUID) ([]SalaryStructure, error)

	// Save creates or updates a salary structure
	Save(ctx context.Context, structure *SalaryStructure) error

	// DeleteForTenant soft deletes a salary structure for a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// CountForTenant counts salary structures for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, activeOnly bool) (int64, error)
}

// SlipFilter defines filtering options for salary slip queries
type SlipFilter struct {
	shared.Filter
	UserID         *uuid.UUID          // Filter by slip owner
	Month          *valueobject.Period // Filter by pay month
	Status         *SlipStatus         // Filter by lifecycle state
	MinDiscrepancy *decimal.Decimal    // Filter by minimum absolute discrepancy
	Unreconciled   *bool               // Filter slips missing employee figures
}

// SalarySlipRepository defines the interface for salary slip persistence.
// Slips are unique per (tenant, user, month).
type SalarySlipRepository interface {
	// FindByID finds a salary slip by ID
	FindByID(ctx context.Context, id uuid.UUID) (*SalarySlip, error)

	// FindByIDForTenant finds a salary slip by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*SalarySlip, error)

	// FindForUserMonth finds the slip for a user and pay month.
	// Returns shared.ErrNotFound when no slip exists yet.
	FindForUserMonth(ctx context.Context, tenantID, userID uuid.UUID, month valueobject.Period) (*SalarySlip, error)

	// FindForUser finds all slips for a user with filtering, newest month first
	FindForUser(ctx context.Context, tenantID, userID uuid.UUID, filter SlipFilter) ([]SalarySlip, error)

	// FindAllForTenant finds all slips for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter SlipFilter) ([]SalarySlip, error)

	// FindForTenantMonth finds every slip for one pay month, ordered by user
	FindForTenantMonth(ctx context.Context, tenantID uuid.UUID, month valueobject.Period) ([]SalarySlip, error)

	// Save creates or updates a salary slip. Inserting a second slip for the
	// same (user, month) surfaces shared.ErrAlreadyExists.
	Save(ctx context.Context, slip *SalarySlip) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, slip *SalarySlip) error

	// DeleteForTenant soft deletes a salary slip for a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// CountForTenant counts slips for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter SlipFilter) (int64, error)

	// CountByStatus counts slips by lifecycle state for a tenant
	CountByStatus(ctx context.Context, tenantID uuid.UUID, status SlipStatus) (int64, error)

	// SumDiscrepancyForMonth totals the absolute discrepancies recorded for a pay month
	SumDiscrepancyForMonth(ctx context.Context, tenantID uuid.UUID, month valueobject.Period) (decimal.Decimal, error)
}
