package payroll

import (
	"time"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/shared"
	"github.com/payops/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// SalaryComponents groups the fixed monthly amounts of a salary structure.
// Earnings and deductions are kept as entered by HR; NetSalary is the
// negotiated net baseline that bonus percentages are applied to.
type SalaryComponents struct {
	Basic            decimal.Decimal `json:"basic"`
	HRA              decimal.Decimal `json:"hra"`
	DA               decimal.Decimal `json:"da"`
	TA               decimal.Decimal `json:"ta"`
	SpecialAllowance decimal.Decimal `json:"special_allowance"`
	PF               decimal.Decimal `json:"pf"`
	ESI              decimal.Decimal `json:"esi"`
	Tax              decimal.Decimal `json:"tax"`
	OtherDeductions  decimal.Decimal `json:"other_deductions"`
	NetSalary        decimal.Decimal `json:"net_salary"`
}

func (c SalaryComponents) validate() error {
	fields := []struct {
		name  string
		value decimal.Decimal
	}{
		{"basic", c.Basic},
		{"hra", c.HRA},
		{"da", c.DA},
		{"ta", c.TA},
		{"special allowance", c.SpecialAllowance},
		{"pf", c.PF},
		{"esi", c.ESI},
		{"tax", c.Tax},
		{"other deductions", c.OtherDeductions},
		{"net salary", c.NetSalary},
	}
	for _, f := range fields {
		if f.value.IsNegative() {
			return shared.NewDomainError("INVALID_SALARY_COMPONENT", "Salary component "+f.name+" cannot be negative")
		}
	}
	if c.Basic.IsZero() {
		return shared.NewDomainError("INVALID_SALARY_COMPONENT", "Basic salary must be positive")
	}
	return nil
}

// TotalEarnings returns the sum of the earning components without bonus
func (c SalaryComponents) TotalEarnings() decimal.Decimal {
	return c.Basic.Add(c.HRA).Add(c.DA).Add(c.TA).Add(c.SpecialAllowance)
}

// TotalDeductions returns the sum of the deduction components
func (c SalaryComponents) TotalDeductions() decimal.Decimal {
	return c.PF.Add(c.ESI).Add(c.Tax).Add(c.OtherDeductions)
}

// SalaryStructure is the HR-owned fixed salary definition for one employee.
// At most one structure per user is active at a time; slip generation reads
// the active structure and never mutates it.
type SalaryStructure struct {
	shared.TenantAggregateRoot
	UserID        uuid.UUID            `json:"user_id"`
	Components    SalaryComponents     `json:"components"`
	Currency      valueobject.Currency `json:"currency"`
	EffectiveFrom time.Time            `json:"effective_from"`
	Active        bool                 `json:"active"`
}

// NewSalaryStructure creates an active salary structure for a user
func NewSalaryStructure(tenantID, userID uuid.UUID, components SalaryComponents, currency valueobject.Currency, effectiveFrom time.Time) (*SalaryStructure, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	if effectiveFrom.IsZero() {
		return nil, shared.NewDomainError("INVALID_EFFECTIVE_FROM", "Effective date is required")
	}
	if err := components.validate(); err != nil {
		return nil, err
	}

	s := &SalaryStructure{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		UserID:              userID,
		Components:          components,
		Currency:            currency,
		EffectiveFrom:       effectiveFrom,
		Active:              true,
	}

	s.AddDomainEvent(NewSalaryStructureDefinedEvent(s))

	return s, nil
}

// UpdateComponents replaces the component amounts of the structure
func (s *SalaryStructure) UpdateComponents(components SalaryComponents, effectiveFrom time.Time) error {
	if !s.Active {
		return shared.NewDomainError("INVALID_STATE", "Cannot update an inactive salary structure")
	}
	if err := components.validate(); err != nil {
		return err
	}
	if !effectiveFrom.IsZero() {
		s.EffectiveFrom = effectiveFrom
	}

	s.Components = components
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewSalaryStructureDefinedEvent(s))

	return nil
}

// Deactivate retires the structure, typically when a replacement becomes active
func (s *SalaryStructure) Deactivate() {
	if !s.Active {
		return
	}
	s.Active = false
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// NetSalaryMoney returns the net baseline as Money
func (s *SalaryStructure) NetSalaryMoney() valueobject.Money {
	m, err := valueobject.NewMoney(s.Components.NetSalary, s.Currency)
	if err != nil {
		return valueobject.Zero(valueobject.DefaultCurrency)
	}
	return m
}
