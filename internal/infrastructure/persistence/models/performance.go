package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/performance"
	"github.com/payops/backend/internal/domain/shared"
	"github.com/payops/backend/internal/domain/shared/valueobject"
)

// ScoreParameterModel is the persistence model for the ScoreParameter domain entity.
// The (tenant_id, code) pair is unique; the constraint lives in the migration.
type ScoreParameterModel struct {
	TenantAggregateModel
	Code   string  `gorm:"type:varchar(50);not null;index"`
	Name   string  `gorm:"type:varchar(200);not null"`
	Weight float64 `gorm:"not null"`
	Active bool    `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (ScoreParameterModel) TableName() string {
	return "score_parameters"
}

// ToDomain converts the persistence model to a domain ScoreParameter entity.
func (m *ScoreParameterModel) ToDomain() *performance.ScoreParameter {
	param := &performance.ScoreParameter{
		Code:   m.Code,
		Name:   m.Name,
		Weight: m.Weight,
		Active: m.Active,
	}
	m.PopulateTenantAggregateRoot(&param.TenantAggregateRoot)
	return param
}

// FromDomain populates the persistence model from a domain ScoreParameter entity.
func (m *ScoreParameterModel) FromDomain(p *performance.ScoreParameter) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.Code = p.Code
	m.Name = p.Name
	m.Weight = p.Weight
	m.Active = p.Active
}

// ScoreParameterModelFromDomain creates a new persistence model from a domain ScoreParameter.
func ScoreParameterModelFromDomain(p *performance.ScoreParameter) *ScoreParameterModel {
	m := &ScoreParameterModel{}
	m.FromDomain(p)
	return m
}

// ParameterScoreModel is the persistence model for the ParameterScore domain entity.
// The unique index serializes concurrent evaluations of the same user and period:
// losers hit the constraint and fall back to the stored rows.
type ParameterScoreModel struct {
	BaseModel
	TenantID        uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:ux_parameter_scores_key,priority:1"`
	UserID          uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:ux_parameter_scores_key,priority:2"`
	Period          valueobject.Period `gorm:"type:varchar(7);not null;uniqueIndex:ux_parameter_scores_key,priority:3"`
	ParameterID     uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:ux_parameter_scores_key,priority:4;index"`
	ParameterCode   string             `gorm:"type:varchar(50);not null"`
	ParameterName   string             `gorm:"type:varchar(200);not null"`
	Weight          float64            `gorm:"not null"`
	RawValue        float64            `gorm:"not null"`
	NormalizedScore float64            `gorm:"not null"`
	WeightedScore   float64            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ParameterScoreModel) TableName() string {
	return "parameter_scores"
}

// ToDomain converts the persistence model to a domain ParameterScore entity.
func (m *ParameterScoreModel) ToDomain() *performance.ParameterScore {
	return &performance.ParameterScore{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		TenantID:        m.TenantID,
		UserID:          m.UserID,
		Period:          m.Period,
		ParameterID:     m.ParameterID,
		ParameterCode:   m.ParameterCode,
		ParameterName:   m.ParameterName,
		Weight:          m.Weight,
		RawValue:        m.RawValue,
		NormalizedScore: m.NormalizedScore,
		WeightedScore:   m.WeightedScore,
	}
}

// FromDomain populates the persistence model from a domain ParameterScore entity.
func (m *ParameterScoreModel) FromDomain(s *performance.ParameterScore) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.TenantID = s.TenantID
	m.UserID = s.UserID
	m.Period = s.Period
	m.ParameterID = s.ParameterID
	m.ParameterCode = s.ParameterCode
	m.ParameterName = s.ParameterName
	m.Weight = s.Weight
	m.RawValue = s.RawValue
	m.NormalizedScore = s.NormalizedScore
	m.WeightedScore = s.WeightedScore
}

// ParameterScoreModelFromDomain creates a new persistence model from a domain ParameterScore.
func ParameterScoreModelFromDomain(s *performance.ParameterScore) *ParameterScoreModel {
	m := &ParameterScoreModel{}
	m.FromDomain(s)
	return m
}

// BonusRecordModel is the persistence model for the BonusRecord domain entity.
// The (tenant_id, user_id, period) triple is unique; the constraint lives in
// the migration.
type BonusRecordModel struct {
	TenantAggregateModel
	UserID          uuid.UUID          `gorm:"type:uuid;not null;index"`
	Period          valueobject.Period `gorm:"type:varchar(7);not null;index"`
	TotalScore      float64            `gorm:"not null"`
	BonusPercentage float64            `gorm:"not null"`
	Tier            string             `gorm:"type:varchar(50);not null"`
	TierColor       string             `gorm:"type:varchar(20)"`
	IsFinalized     bool               `gorm:"not null;default:false;index"`
	FinalizedAt     *time.Time
	FinalizedBy     *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (BonusRecordModel) TableName() string {
	return "bonus_records"
}

// ToDomain converts the persistence model to a domain BonusRecord entity.
func (m *BonusRecordModel) ToDomain() *performance.BonusRecord {
	record := &performance.BonusRecord{
		UserID:          m.UserID,
		Period:          m.Period,
		TotalScore:      m.TotalScore,
		BonusPercentage: m.BonusPercentage,
		Tier:            m.Tier,
		TierColor:       m.TierColor,
		IsFinalized:     m.IsFinalized,
		FinalizedAt:     m.FinalizedAt,
		FinalizedBy:     m.FinalizedBy,
	}
	m.PopulateTenantAggregateRoot(&record.TenantAggregateRoot)
	return record
}

// FromDomain populates the persistence model from a domain BonusRecord entity.
func (m *BonusRecordModel) FromDomain(r *performance.BonusRecord) {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.UserID = r.UserID
	m.Period = r.Period
	m.TotalScore = r.TotalScore
	m.BonusPercentage = r.BonusPercentage
	m.Tier = r.Tier
	m.TierColor = r.TierColor
	m.IsFinalized = r.IsFinalized
	m.FinalizedAt = r.FinalizedAt
	m.FinalizedBy = r.FinalizedBy
}

// BonusRecordModelFromDomain creates a new persistence model from a domain BonusRecord.
func BonusRecordModelFromDomain(r *performance.BonusRecord) *BonusRecordModel {
	m := &BonusRecordModel{}
	m.FromDomain(r)
	return m
}
