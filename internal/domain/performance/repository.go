package performance

import (
	"context"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/shared/valueobject"
)

// ScoreParameterRepository defines persistence for the scoring registry
type ScoreParameterRepository interface {
	// FindByIDForTenant finds a parameter by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ScoreParameter, error)

	// FindByCodeForTenant finds a parameter by its unique code within a tenant
	FindByCodeForTenant(ctx context.Context, tenantID uuid.UUID, code string) (*ScoreParameter, error)

	// FindAllForTenant lists parameters for a tenant; activeOnly restricts to
	// parameters eligible for evaluation
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]ScoreParameter, error)

	// Save creates or updates a parameter
	Save(ctx context.Context, param *ScoreParameter) error

	// DeleteForTenant removes a parameter that no scores reference yet
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// CountForTenant counts registered parameters
	CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// ParameterScoreRepository defines persistence for per-period scored entries.
// The store enforces uniqueness on (tenantID, userID, period, parameterID) so
// concurrent evaluations of the same period serialize instead of duplicating.
type ParameterScoreRepository interface {
	// FindForUserPeriod returns the stored scores for one user and period
	FindForUserPeriod(ctx context.Context, tenantID, userID uuid.UUID, period valueobject.Period) ([]ParameterScore, error)

	// SaveAll persists a batch of freshly computed scores. A uniqueness
	// violation surfaces as shared.ErrAlreadyExists so the caller can fall
	// back to the stored rows.
	SaveAll(ctx context.Context, scores []ParameterScore) error

	// CountByParameter counts scores that reference a registry parameter
	CountByParameter(ctx context.Context, tenantID, parameterID uuid.UUID) (int64, error)

	// DeleteForUserPeriod removes the stored scores for one user and period
	DeleteForUserPeriod(ctx context.Context, tenantID, userID uuid.UUID, period valueobject.Period) error
}

// BonusRecordRepository defines persistence for bonus history.
// The store enforces uniqueness on (tenantID, userID, period).
type BonusRecordRepository interface {
	// FindByIDForTenant finds a bonus record by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*BonusRecord, error)

	// FindForUserPeriod finds the record for one user and period
	FindForUserPeriod(ctx context.Context, tenantID, userID uuid.UUID, period valueobject.Period) (*BonusRecord, error)

	// FindForUserPeriods returns records matching any of the period keys,
	// ordered ascending by period
	FindForUserPeriods(ctx context.Context, tenantID, userID uuid.UUID, periods []valueobject.Period) ([]BonusRecord, error)

	// Save creates or updates a bonus record
	Save(ctx context.Context, record *BonusRecord) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, record *BonusRecord) error
}
