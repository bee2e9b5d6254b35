package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/payroll"
	"github.com/payops/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SalaryStructureModel is the persistence model for the SalaryStructure domain entity.
type SalaryStructureModel struct {
	TenantAggregateModel
	UserID           uuid.UUID            `gorm:"type:uuid;not null;index"`
	Basic            decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	HRA              decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	DA               decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	TA               decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	SpecialAllowance decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	PF               decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	ESI              decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Tax              decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	OtherDeductions  decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	NetSalary        decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Currency         valueobject.Currency `gorm:"type:varchar(10);not null;default:'INR'"`
	EffectiveFrom    time.Time            `gorm:"not null;index"`
	Active           bool                 `gorm:"not null;default:true;index"`
	DeletedAt        gorm.DeletedAt       `gorm:"index"`
}

// TableName returns the table name for GORM
func (SalaryStructureModel) TableName() string {
	return "salary_structures"
}

// ToDomain converts the persistence model to a domain SalaryStructure entity.
func (m *SalaryStructureModel) ToDomain() *payroll.SalaryStructure {
	structure := &payroll.SalaryStructure{
		UserID: m.UserID,
		Components: payroll.SalaryComponents{
			Basic:            m.Basic,
			HRA:              m.HRA,
			DA:               m.DA,
			TA:               m.TA,
			SpecialAllowance: m.SpecialAllowance,
			PF:               m.PF,
			ESI:              m.ESI,
			Tax:              m.Tax,
			OtherDeductions:  m.OtherDeductions,
			NetSalary:        m.NetSalary,
		},
		Currency:      m.Currency,
		EffectiveFrom: m.EffectiveFrom,
		Active:        m.Active,
	}
	m.PopulateTenantAggregateRoot(&structure.TenantAggregateRoot)
	return structure
}

// FromDomain populates the persistence model from a domain SalaryStructure entity.
func (m *SalaryStructureModel) FromDomain(s *payroll.SalaryStructure) {
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	m.UserID = s.UserID
	m.Basic = s.Components.Basic
	m.HRA = s.Components.HRA
	m.DA = s.Components.DA
	m.TA = s.Components.TA
	m.SpecialAllowance = s.Components.SpecialAllowance
	m.PF = s.Components.PF
	m.ESI = s.Components.ESI
	m.Tax = s.Components.Tax
	m.OtherDeductions = s.Components.OtherDeductions
	m.NetSalary = s.Components.NetSalary
	m.Currency = s.Currency
	m.EffectiveFrom = s.EffectiveFrom
	m.Active = s.Active
}

// SalaryStructureModelFromDomain creates a new persistence model from a domain SalaryStructure.
func SalaryStructureModelFromDomain(s *payroll.SalaryStructure) *SalaryStructureModel {
	m := &SalaryStructureModel{}
	m.FromDomain(s)
	return m
}

// SalarySlipModel is the persistence model for the SalarySlip domain entity.
// The (tenant_id, user_id, month) triple is unique; the constraint lives in
// the migration and keeps concurrent generation runs from producing duplicates.
type SalarySlipModel struct {
	TenantAggregateModel
	UserID             uuid.UUID            `gorm:"type:uuid;not null;index"`
	Month              valueobject.Period   `gorm:"type:varchar(7);not null;index"`
	BonusPercentage    float64              `gorm:"not null"`
	BonusAmount        decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	SystemGross        decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	SystemDeductions   decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	SystemNet          decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	SystemBreakdown    payroll.Breakdown    `gorm:"type:jsonb;default:'{}'"`
	EmployeeGross      *decimal.Decimal     `gorm:"type:decimal(18,4)"`
	EmployeeDeductions *decimal.Decimal     `gorm:"type:decimal(18,4)"`
	EmployeeNet        *decimal.Decimal     `gorm:"type:decimal(18,4)"`
	EmployeeBreakdown  payroll.Breakdown    `gorm:"type:jsonb;default:'{}'"`
	Discrepancy        *decimal.Decimal     `gorm:"type:decimal(18,4);index"`
	DiscrepancyNotes   string               `gorm:"type:text"`
	Currency           valueobject.Currency `gorm:"type:varchar(10);not null;default:'INR'"`
	Status             payroll.SlipStatus   `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	GeneratedAt        time.Time            `gorm:"not null"`
	DeletedAt          gorm.DeletedAt       `gorm:"index"`
}

// TableName returns the table name for GORM
func (SalarySlipModel) TableName() string {
	return "salary_slips"
}

// ToDomain converts the persistence model to a domain SalarySlip entity.
func (m *SalarySlipModel) ToDomain() *payroll.SalarySlip {
	slip := &payroll.SalarySlip{
		UserID:             m.UserID,
		Month:              m.Month,
		BonusPercentage:    m.BonusPercentage,
		BonusAmount:        m.BonusAmount,
		SystemGross:        m.SystemGross,
		SystemDeductions:   m.SystemDeductions,
		SystemNet:          m.SystemNet,
		SystemBreakdown:    m.SystemBreakdown,
		EmployeeGross:      m.EmployeeGross,
		EmployeeDeductions: m.EmployeeDeductions,
		EmployeeNet:        m.EmployeeNet,
		EmployeeBreakdown:  m.EmployeeBreakdown,
		Discrepancy:        m.Discrepancy,
		DiscrepancyNotes:   m.DiscrepancyNotes,
		Currency:           m.Currency,
		Status:             m.Status,
		GeneratedAt:        m.GeneratedAt,
	}
	m.PopulateTenantAggregateRoot(&slip.TenantAggregateRoot)
	return slip
}

// FromDomain populates the persistence model from a domain SalarySlip entity.
func (m *SalarySlipModel) FromDomain(s *payroll.SalarySlip) {
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	m.UserID = s.UserID
	m.Month = s.Month
	m.BonusPercentage = s.BonusPercentage
	m.BonusAmount = s.BonusAmount
	m.SystemGross = s.SystemGross
	m.SystemDeductions = s.SystemDeductions
	m.SystemNet = s.SystemNet
	m.SystemBreakdown = s.SystemBreakdown
	m.EmployeeGross = s.EmployeeGross
	m.EmployeeDeductions = s.EmployeeDeductions
	m.EmployeeNet = s.EmployeeNet
	m.EmployeeBreakdown = s.EmployeeBreakdown
	m.Discrepancy = s.Discrepancy
	m.DiscrepancyNotes = s.DiscrepancyNotes
	m.Currency = s.Currency
	m.Status = s.Status
	m.GeneratedAt = s.GeneratedAt
}

// SalarySlipModelFromDomain creates a new persistence model from a domain SalarySlip.
func SalarySlipModelFromDomain(s *payroll.SalarySlip) *SalarySlipModel {
	m := &SalarySlipModel{}
	m.FromDomain(s)
	return m
}
