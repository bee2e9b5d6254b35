package performance

import (
	"context"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/shared"
	"github.com/payops/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// MetricsSource supplies raw per-parameter values for the compute-fresh path,
// keyed by parameter code. Parameters whose code is absent from the returned
// map are skipped for the period. Implementations live outside the domain
// (the default one derives values from workforce records).
type MetricsSource interface {
	RawValues(ctx context.Context, tenantID, userID uuid.UUID, period valueobject.Period) (map[string]float64, error)
}

// Evaluation is the outcome of scoring one user for one period
type Evaluation struct {
	Scores     []ParameterScore
	TotalScore float64
	Assignment TierAssignment
}

// Evaluator is the scoring domain service. It turns raw metric values into
// parameter scores, aggregates them into a normalized total and resolves the
// bonus tier through the policy.
type Evaluator struct {
	policy *TierPolicy
}

// NewEvaluator creates an evaluator backed by the given tier policy
func NewEvaluator(policy *TierPolicy) *Evaluator {
	if policy == nil {
		policy = DefaultTierPolicy()
	}
	return &Evaluator{policy: policy}
}

// Policy returns the tier policy the evaluator resolves tiers through
func (e *Evaluator) Policy() *TierPolicy {
	return e.policy
}

// Evaluate scores a user for a period from raw metric values. Only active
// parameters that received a raw value produce a score; an empty score set
// aggregates to a total of zero.
func (e *Evaluator) Evaluate(tenantID, userID uuid.UUID, period valueobject.Period, params []ScoreParameter, raw map[string]float64) (*Evaluation, error) {
	scores := make([]ParameterScore, 0, len(params))
	for i := range params {
		p := &params[i]
		if !p.Active {
			continue
		}
		value, ok := raw[p.Code]
		if !ok {
			continue
		}
		score, err := NewParameterScore(tenantID, userID, period, p, value)
		if err != nil {
			return nil, err
		}
		scores = append(scores, *score)
	}

	total := TotalScore(scores)
	return &Evaluation{
		Scores:     scores,
		TotalScore: total,
		Assignment: e.policy.TierFor(total),
	}, nil
}

// Aggregate recomputes the evaluation outcome from previously stored scores.
// This is the cached-result path: the rows are used verbatim, never rewritten.
func (e *Evaluator) Aggregate(scores []ParameterScore) *Evaluation {
	total := TotalScore(scores)
	return &Evaluation{
		Scores:     scores,
		TotalScore: total,
		Assignment: e.policy.TierFor(total),
	}
}

// TotalScore aggregates weighted scores into the normalized [0,100] total:
// round(sum(weightedScore) / sum(weight) * 100, 2). A zero total weight
// yields zero rather than an error.
func TotalScore(scores []ParameterScore) float64 {
	totalWeight := decimal.Zero
	totalWeighted := decimal.Zero
	for i := range scores {
		totalWeight = totalWeight.Add(decimal.NewFromFloat(scores[i].Weight))
		totalWeighted = totalWeighted.Add(decimal.NewFromFloat(scores[i].WeightedScore))
	}
	if totalWeight.IsZero() {
		return 0
	}
	return totalWeighted.Div(totalWeight).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}

// Round2 rounds a score to the 2-decimal scale used for persisted totals
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// ValidateRegistry checks that a parameter set is usable for evaluation:
// codes must be unique per tenant so raw values resolve unambiguously.
func ValidateRegistry(params []ScoreParameter) error {
	seen := make(map[string]struct{}, len(params))
	for i := range params {
		code := params[i].Code
		if _, dup := seen[code]; dup {
			return shared.NewDomainError("DUPLICATE_PARAMETER_CODE", "Parameter code "+code+" is registered more than once")
		}
		seen[code] = struct{}{}
	}
	return nil
}
