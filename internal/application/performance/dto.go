package performance

import (
	"time"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/performance"
)

// CreateParameterRequest represents a request to register a scoring parameter
type CreateParameterRequest struct {
	Code      string     `json:"code" binding:"required,min=1,max=64"`
	Name      string     `json:"name" binding:"required,min=1,max=100"`
	Weight    float64    `json:"weight" binding:"required,gt=0"`
	CreatedBy *uuid.UUID `json:"-"`
}

// UpdateParameterRequest represents a request to update a scoring parameter
type UpdateParameterRequest struct {
	Name   *string  `json:"name" binding:"omitempty,min=1,max=100"`
	Weight *float64 `json:"weight" binding:"omitempty,gt=0"`
	Active *bool    `json:"active"`
}

// ParameterResponse represents a scoring parameter in API responses
type ParameterResponse struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Weight    float64   `json:"weight"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

// ComputePerformanceRequest represents a request to evaluate a user's period
type ComputePerformanceRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
	Period string    `json:"period" binding:"required,period"`
}

// ParameterScoreResponse represents one scored dimension in API responses
type ParameterScoreResponse struct {
	ParameterID     uuid.UUID `json:"parameter_id"`
	ParameterCode   string    `json:"parameter_code"`
	ParameterName   string    `json:"parameter_name"`
	Weight          float64   `json:"weight"`
	RawValue        float64   `json:"raw_value"`
	NormalizedScore float64   `json:"normalized_score"`
	WeightedScore   float64   `json:"weighted_score"`
}

// PerformanceResponse represents the outcome of evaluating a user's period
type PerformanceResponse struct {
	UserID          uuid.UUID                `json:"user_id"`
	Period          string                   `json:"period"`
	TotalScore      float64                  `json:"total_score"`
	BonusPercentage float64                  `json:"bonus_percentage"`
	Tier            string                   `json:"tier"`
	TierColor       string                   `json:"tier_color"`
	FromCache       bool                     `json:"from_cache"`
	Scores          []ParameterScoreResponse `json:"scores"`
}

// HistoryRequest represents a request for a user's bonus history window
type HistoryRequest struct {
	UserID uuid.UUID `form:"user_id"`
	Period string    `form:"period" binding:"required,period"`
	Count  int       `form:"count" binding:"omitempty,min=1,max=36"`
}

// BonusRecordResponse represents a bonus record in API responses
type BonusRecordResponse struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	Period          string     `json:"period"`
	TotalScore      float64    `json:"total_score"`
	BonusPercentage float64    `json:"bonus_percentage"`
	Tier            string     `json:"tier"`
	TierColor       string     `json:"tier_color"`
	IsFinalized     bool       `json:"is_finalized"`
	FinalizedAt     *time.Time `json:"finalized_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// FinalizeBonusRequest represents a request to lock a period's bonus record
type FinalizeBonusRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
	Period string    `json:"period" binding:"required,period"`
}

// ToParameterResponse converts a domain ScoreParameter to ParameterResponse
func ToParameterResponse(p *performance.ScoreParameter) ParameterResponse {
	return ParameterResponse{
		ID:        p.ID,
		TenantID:  p.TenantID,
		Code:      p.Code,
		Name:      p.Name,
		Weight:    p.Weight,
		Active:    p.Active,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		Version:   p.Version,
	}
}

// ToParameterResponses converts a slice of parameters to responses
func ToParameterResponses(params []performance.ScoreParameter) []ParameterResponse {
	responses := make([]ParameterResponse, len(params))
	for i := range params {
		responses[i] = ToParameterResponse(&params[i])
	}
	return responses
}

// ToParameterScoreResponse converts a domain ParameterScore to its response
func ToParameterScoreResponse(s *performance.ParameterScore) ParameterScoreResponse {
	return ParameterScoreResponse{
		ParameterID:     s.ParameterID,
		ParameterCode:   s.ParameterCode,
		ParameterName:   s.ParameterName,
		Weight:          s.Weight,
		RawValue:        s.RawValue,
		NormalizedScore: s.NormalizedScore,
		WeightedScore:   s.WeightedScore,
	}
}

// ToPerformanceResponse converts an evaluation outcome to its response
func ToPerformanceResponse(userID uuid.UUID, period string, eval *performance.Evaluation, fromCache bool) PerformanceResponse {
	scores := make([]ParameterScoreResponse, len(eval.Scores))
	for i := range eval.Scores {
		scores[i] = ToParameterScoreResponse(&eval.Scores[i])
	}
	return PerformanceResponse{
		UserID:          userID,
		Period:          period,
		TotalScore:      eval.TotalScore,
		BonusPercentage: eval.Assignment.BonusPercentage,
		Tier:            eval.Assignment.Tier,
		TierColor:       eval.Assignment.TierColor,
		FromCache:       fromCache,
		Scores:          scores,
	}
}

// ToBonusRecordResponse converts a domain BonusRecord to its response
func ToBonusRecordResponse(r *performance.BonusRecord) BonusRecordResponse {
	return BonusRecordResponse{
		ID:              r.ID,
		UserID:          r.UserID,
		Period:          r.Period.String(),
		TotalScore:      r.TotalScore,
		BonusPercentage: r.BonusPercentage,
		Tier:            r.Tier,
		TierColor:       r.TierColor,
		IsFinalized:     r.IsFinalized,
		FinalizedAt:     r.FinalizedAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// ToBonusRecordResponses converts a slice of bonus records to responses
func ToBonusRecordResponses(records []performance.BonusRecord) []BonusRecordResponse {
	responses := make([]BonusRecordResponse, len(records))
	for i := range records {
		responses[i] = ToBonusRecordResponse(&records[i])
	}
	return responses
}
