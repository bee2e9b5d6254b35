package performance

import (
	"time"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/shared"
	"github.com/payops/backend/internal/domain/shared/valueobject"
)

// BonusRecord is the per (user, period) outcome of an evaluation: the
// normalized total score and the bonus tier derived from it. The record is
// overwritten by recomputation until an administrator finalizes it, after
// which isFinalized acts as a write lock over every field.
type BonusRecord struct {
	shared.TenantAggregateRoot
	UserID          uuid.UUID          `json:"user_id"`
	Period          valueobject.Period `json:"period"`
	TotalScore      float64            `json:"total_score"`
	BonusPercentage float64            `json:"bonus_percentage"`
	Tier            string             `json:"tier"`
	TierColor       string             `json:"tier_color"`
	IsFinalized     bool               `json:"is_finalized"`
	FinalizedAt     *time.Time         `json:"finalized_at,omitempty"`
	FinalizedBy     *uuid.UUID         `json:"finalized_by,omitempty"`
}

// NewBonusRecord creates a bonus record from an evaluation outcome
func NewBonusRecord(tenantID, userID uuid.UUID, period valueobject.Period, totalScore float64, assignment TierAssignment) (*BonusRecord, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if period.IsZero() {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period is required")
	}
	if totalScore < 0 || totalScore > 100 {
		return nil, shared.NewDomainError("INVALID_TOTAL_SCORE", "Total score must be within [0,100]")
	}

	r := &BonusRecord{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		UserID:              userID,
		Period:              period,
		TotalScore:          totalScore,
		BonusPercentage:     assignment.BonusPercentage,
		Tier:                assignment.Tier,
		TierColor:           assignment.TierColor,
	}

	r.AddDomainEvent(NewBonusComputedEvent(r, false))

	return r, nil
}

// ApplyEvaluation overwrites the score and tier fields with a fresh
// evaluation outcome. Finalized records reject the overwrite.
func (r *BonusRecord) ApplyEvaluation(totalScore float64, assignment TierAssignment) error {
	if r.IsFinalized {
		return shared.ErrAlreadyFinalized
	}
	if totalScore < 0 || totalScore > 100 {
		return shared.NewDomainError("INVALID_TOTAL_SCORE", "Total score must be within [0,100]")
	}

	r.TotalScore = totalScore
	r.BonusPercentage = assignment.BonusPercentage
	r.Tier = assignment.Tier
	r.TierColor = assignment.TierColor
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	r.AddDomainEvent(NewBonusComputedEvent(r, true))

	return nil
}

// Finalize locks the record against further mutation. Finalizing an already
// finalized record is a conflict, not a no-op, so that callers learn the lock
// was taken earlier.
func (r *BonusRecord) Finalize(by uuid.UUID) error {
	if r.IsFinalized {
		return shared.ErrAlreadyFinalized
	}
	if by == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Finalizing user ID cannot be empty")
	}

	now := time.Now()
	r.IsFinalized = true
	r.FinalizedAt = &now
	r.FinalizedBy = &by
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewBonusFinalizedEvent(r))

	return nil
}
