package performance

import (
	"strings"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/shared"
)

// Well-known parameter codes understood by the default metrics source.
// Deployments may register parameters with other codes as long as their
// metrics source produces raw values for them.
const (
	ParameterCodeAttendancePunctuality = "attendance_punctuality"
	ParameterCodeTaskCompletion        = "task_completion"
	ParameterCodeTaskAccuracy          = "task_accuracy"
)

// ScoreParameter is one scoring dimension in the evaluation registry.
// Weights need not sum to anything in particular; aggregation normalizes
// by the total weight actually scored for a period.
type ScoreParameter struct {
	shared.TenantAggregateRoot
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Active bool    `json:"active"`
}

// NewScoreParameter creates a new scoring parameter
func NewScoreParameter(tenantID uuid.UUID, code, name string, weight float64) (*ScoreParameter, error) {
	code = strings.TrimSpace(strings.ToLower(code))
	name = strings.TrimSpace(name)

	if code == "" {
		return nil, shared.NewDomainError("INVALID_PARAMETER_CODE", "Parameter code cannot be empty")
	}
	if len(code) > 64 {
		return nil, shared.NewDomainError("INVALID_PARAMETER_CODE", "Parameter code cannot exceed 64 characters")
	}
	if strings.ContainsAny(code, " \t\n") {
		return nil, shared.NewDomainError("INVALID_PARAMETER_CODE", "Parameter code cannot contain whitespace")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PARAMETER_NAME", "Parameter name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_PARAMETER_NAME", "Parameter name cannot exceed 100 characters")
	}
	if weight <= 0 {
		return nil, shared.NewDomainError("INVALID_PARAMETER_WEIGHT", "Parameter weight must be positive")
	}

	p := &ScoreParameter{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                name,
		Weight:              weight,
		Active:              true,
	}

	p.AddDomainEvent(NewScoreParameterCreatedEvent(p))

	return p, nil
}

// Update changes the display name and weight of the parameter
func (p *ScoreParameter) Update(name string, weight float64) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_PARAMETER_NAME", "Parameter name cannot be empty")
	}
	if weight <= 0 {
		return shared.NewDomainError("INVALID_PARAMETER_WEIGHT", "Parameter weight must be positive")
	}

	p.Name = name
	p.Weight = weight
	p.IncrementVersion()

	p.AddDomainEvent(NewScoreParameterUpdatedEvent(p))

	return nil
}

// Activate marks the parameter as eligible for scoring
func (p *ScoreParameter) Activate() {
	if p.Active {
		return
	}
	p.Active = true
	p.IncrementVersion()
}

// Deactivate removes the parameter from future evaluations without
// touching historical scores that reference it
func (p *ScoreParameter) Deactivate() {
	if !p.Active {
		return
	}
	p.Active = false
	p.IncrementVersion()
}
