package payroll

import (
	"github.com/payops/backend/internal/domain/shared"
	"github.com/payops/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Breakdown component keys used in system and employee figure maps
const (
	ComponentBasic            = "basic"
	ComponentHRA              = "hra"
	ComponentDA               = "da"
	ComponentTA               = "ta"
	ComponentSpecialAllowance = "special_allowance"
	ComponentBonus            = "bonus"
	ComponentPF               = "pf"
	ComponentESI              = "esi"
	ComponentTax              = "tax"
	ComponentOtherDeductions  = "other_deductions"
)

// SystemComputation is the deterministic outcome of combining a salary
// structure with a bonus percentage. The same structure and percentage always
// produce the same figures.
type SystemComputation struct {
	BonusPercentage float64              `json:"bonus_percentage"`
	BonusAmount     decimal.Decimal      `json:"bonus_amount"`
	Gross           decimal.Decimal      `json:"gross"`
	Deductions      decimal.Decimal      `json:"deductions"`
	Net             decimal.Decimal      `json:"net"`
	Breakdown       Breakdown            `json:"breakdown"`
	Currency        valueobject.Currency `json:"currency"`
}

// ComputeSystemFigures derives the system-side slip figures from a structure
// and the period's bonus percentage. The bonus is an uplift on the structure's
// net baseline, not on the gross components:
//
//	bonusAmount = netSalary * bonusPercentage / 100
//	gross       = basic + hra + da + ta + specialAllowance + bonusAmount
//	deductions  = pf + esi + tax + otherDeductions
//	net         = gross - deductions
func ComputeSystemFigures(structure *SalaryStructure, bonusPercentage float64) (SystemComputation, error) {
	if structure == nil {
		return SystemComputation{}, shared.NewDomainError("INVALID_STRUCTURE", "Salary structure is required")
	}
	if bonusPercentage < 0 {
		return SystemComputation{}, shared.NewDomainError("INVALID_BONUS_PERCENTAGE", "Bonus percentage cannot be negative")
	}

	c := structure.Components

	bonusAmount := c.NetSalary.
		Mul(decimal.NewFromFloat(bonusPercentage)).
		Div(decimal.NewFromInt(100)).
		Round(2)

	gross := c.TotalEarnings().Add(bonusAmount)
	deductions := c.TotalDeductions()
	net := gross.Sub(deductions)

	return SystemComputation{
		BonusPercentage: bonusPercentage,
		BonusAmount:     bonusAmount,
		Gross:           gross,
		Deductions:      deductions,
		Net:             net,
		Breakdown: Breakdown{
			ComponentBasic:            c.Basic,
			ComponentHRA:              c.HRA,
			ComponentDA:               c.DA,
			ComponentTA:               c.TA,
			ComponentSpecialAllowance: c.SpecialAllowance,
			ComponentBonus:            bonusAmount,
			ComponentPF:               c.PF,
			ComponentESI:              c.ESI,
			ComponentTax:              c.Tax,
			ComponentOtherDeductions:  c.OtherDeductions,
		},
		Currency: structure.Currency,
	}, nil
}
