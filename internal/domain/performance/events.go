package performance

import (
	"time"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/shared"
)

// Aggregate type constants for the performance context
const (
	AggregateTypeScoreParameter = "ScoreParameter"
	AggregateTypeBonusRecord    = "BonusRecord"
)

// Performance domain event types
const (
	EventTypeScoreParameterCreated = "ScoreParameterCreated"
	EventTypeScoreParameterUpdated = "ScoreParameterUpdated"
	EventTypeBonusComputed         = "BonusComputed"
	EventTypeBonusFinalized        = "BonusFinalized"
)

// ScoreParameterCreatedEvent is published when a scoring parameter is registered
type ScoreParameterCreatedEvent struct {
	shared.BaseDomainEvent
	ParameterID uuid.UUID `json:"parameter_id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Weight      float64   `json:"weight"`
}

// NewScoreParameterCreatedEvent creates a new ScoreParameterCreatedEvent
func NewScoreParameterCreatedEvent(p *ScoreParameter) *ScoreParameterCreatedEvent {
	return &ScoreParameterCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeScoreParameterCreated, AggregateTypeScoreParameter, p.ID, p.TenantID),
		ParameterID:     p.ID,
		Code:            p.Code,
		Name:            p.Name,
		Weight:          p.Weight,
	}
}

// ScoreParameterUpdatedEvent is published when a parameter's name or weight changes
type ScoreParameterUpdatedEvent struct {
	shared.BaseDomainEvent
	ParameterID uuid.UUID `json:"parameter_id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Weight      float64   `json:"weight"`
}

// NewScoreParameterUpdatedEvent creates a new ScoreParameterUpdatedEvent
func NewScoreParameterUpdatedEvent(p *ScoreParameter) *ScoreParameterUpdatedEvent {
	return &ScoreParameterUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeScoreParameterUpdated, AggregateTypeScoreParameter, p.ID, p.TenantID),
		ParameterID:     p.ID,
		Code:            p.Code,
		Name:            p.Name,
		Weight:          p.Weight,
	}
}

// BonusComputedEvent is published when an evaluation writes a bonus record.
// Recomputed distinguishes a fresh record from an overwrite of an earlier,
// not yet finalized evaluation.
type BonusComputedEvent struct {
	shared.BaseDomainEvent
	BonusRecordID   uuid.UUID `json:"bonus_record_id"`
	UserID          uuid.UUID `json:"user_id"`
	Period          string    `json:"period"`
	TotalScore      float64   `json:"total_score"`
	BonusPercentage float64   `json:"bonus_percentage"`
	Tier            string    `json:"tier"`
	Recomputed      bool      `json:"recomputed"`
}

// NewBonusComputedEvent creates a new BonusComputedEvent
func NewBonusComputedEvent(r *BonusRecord, recomputed bool) *BonusComputedEvent {
	return &BonusComputedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBonusComputed, AggregateTypeBonusRecord, r.ID, r.TenantID),
		BonusRecordID:   r.ID,
		UserID:          r.UserID,
		Period:          r.Period.String(),
		TotalScore:      r.TotalScore,
		BonusPercentage: r.BonusPercentage,
		Tier:            r.Tier,
		Recomputed:      recomputed,
	}
}

// BonusFinalizedEvent is published when an administrator locks a bonus record
type BonusFinalizedEvent struct {
	shared.BaseDomainEvent
	BonusRecordID   uuid.UUID `json:"bonus_record_id"`
	UserID          uuid.UUID `json:"user_id"`
	Period          string    `json:"period"`
	TotalScore      float64   `json:"total_score"`
	BonusPercentage float64   `json:"bonus_percentage"`
	FinalizedBy     uuid.UUID `json:"finalized_by"`
	FinalizedAt     time.Time `json:"finalized_at"`
}

// NewBonusFinalizedEvent creates a new BonusFinalizedEvent
func NewBonusFinalizedEvent(r *BonusRecord) *BonusFinalizedEvent {
	finalizedAt := time.Now()
	if r.FinalizedAt != nil {
		finalizedAt = *r.FinalizedAt
	}
	var finalizedBy uuid.UUID
	if r.FinalizedBy != nil {
		finalizedBy = *r.FinalizedBy
	}
	return &BonusFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBonusFinalized, AggregateTypeBonusRecord, r.ID, r.TenantID),
		BonusRecordID:   r.ID,
		UserID:          r.UserID,
		Period:          r.Period.String(),
		TotalScore:      r.TotalScore,
		BonusPercentage: r.BonusPercentage,
		FinalizedBy:     finalizedBy,
		FinalizedAt:     finalizedAt,
	}
}
