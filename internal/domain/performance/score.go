package performance

import (
	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/shared"
	"github.com/payops/backend/internal/domain/shared/valueobject"
)

// ParameterScore is one scored dimension for a user in one evaluation period.
// Rows are written exactly once per (user, period, parameter) by the evaluator
// and become immutable once the period's bonus is finalized. Weight is a
// snapshot of the registry weight at scoring time so that cached aggregation
// reproduces the original total even if the registry changes later.
type ParameterScore struct {
	shared.BaseEntity
	TenantID        uuid.UUID          `json:"tenant_id"`
	UserID          uuid.UUID          `json:"user_id"`
	Period          valueobject.Period `json:"period"`
	ParameterID     uuid.UUID          `json:"parameter_id"`
	ParameterCode   string             `json:"parameter_code"`
	ParameterName   string             `json:"parameter_name"`
	Weight          float64            `json:"weight"`
	RawValue        float64            `json:"raw_value"`
	NormalizedScore float64            `json:"normalized_score"`
	WeightedScore   float64            `json:"weighted_score"`
}

// NewParameterScore creates a scored entry for one parameter.
// The normalized score is clamped into [0,100]; the weighted score is
// normalizedScore * weight / 100.
func NewParameterScore(tenantID, userID uuid.UUID, period valueobject.Period, param *ScoreParameter, rawValue float64) (*ParameterScore, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if period.IsZero() {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period is required")
	}
	if param == nil || param.ID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARAMETER", "Score parameter is required")
	}
	if param.Weight <= 0 {
		return nil, shared.NewDomainError("INVALID_PARAMETER_WEIGHT", "Parameter weight must be positive")
	}

	normalized := clampScore(rawValue)

	return &ParameterScore{
		BaseEntity:      shared.NewBaseEntity(),
		TenantID:        tenantID,
		UserID:          userID,
		Period:          period,
		ParameterID:     param.ID,
		ParameterCode:   param.Code,
		ParameterName:   param.Name,
		Weight:          param.Weight,
		RawValue:        rawValue,
		NormalizedScore: normalized,
		WeightedScore:   normalized * param.Weight / 100,
	}, nil
}

// clampScore bounds a score into the [0,100] scale
func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
