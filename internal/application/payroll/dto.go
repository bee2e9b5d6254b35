package payroll

import (
	"time"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// UpsertStructureRequest carries the salary component amounts for defining or
// revising a user's salary structure. Amounts default to zero when omitted;
// basic and net salary must be positive.
type UpsertStructureRequest struct {
	Basic            decimal.Decimal `json:"basic" binding:"required"`
	HRA              decimal.Decimal `json:"hra"`
	DA               decimal.Decimal `json:"da"`
	TA               decimal.Decimal `json:"ta"`
	SpecialAllowance decimal.Decimal `json:"special_allowance"`
	PF               decimal.Decimal `json:"pf"`
	ESI              decimal.Decimal `json:"esi"`
	Tax              decimal.Decimal `json:"tax"`
	OtherDeductions  decimal.Decimal `json:"other_deductions"`
	NetSalary        decimal.Decimal `json:"net_salary" binding:"required"`
	Currency         string          `json:"currency" binding:"omitempty,len=3"`
	EffectiveFrom    *time.Time      `json:"effective_from"`
}

func (r UpsertStructureRequest) toComponents() payroll.SalaryComponents {
	return payroll.SalaryComponents{
		Basic:            r.Basic,
		HRA:              r.HRA,
		DA:               r.DA,
		TA:               r.TA,
		SpecialAllowance: r.SpecialAllowance,
		PF:               r.PF,
		ESI:              r.ESI,
		Tax:              r.Tax,
		OtherDeductions:  r.OtherDeductions,
		NetSalary:        r.NetSalary,
	}
}

// StructureResponse is the API representation of a salary structure
type StructureResponse struct {
	ID               uuid.UUID       `json:"id"`
	UserID           uuid.UUID       `json:"user_id"`
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
	TotalEarnings    decimal.Decimal `json:"total_earnings"`
	TotalDeductions  decimal.Decimal `json:"total_deductions"`
	Currency         string          `json:"currency"`
	EffectiveFrom    time.Time       `json:"effective_from"`
	Active           bool            `json:"active"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

// GenerateSlipRequest asks for slip generation for one user and pay month
type GenerateSlipRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
	Month  string    `json:"month" binding:"required,period"`
}

// UpdateSlipRequest carries a reconciliation submission. All fields are
// optional; nil fields leave the slip untouched.
type UpdateSlipRequest struct {
	EmployeeGross      *decimal.Decimal           `json:"employee_gross"`
	EmployeeDeductions *decimal.Decimal           `json:"employee_deductions"`
	EmployeeNet        *decimal.Decimal           `json:"employee_net"`
	EmployeeBreakdown  map[string]decimal.Decimal `json:"employee_breakdown"`
	Notes              *string                    `json:"notes" binding:"omitempty,max=2000"`
	Status             *string                    `json:"status" binding:"omitempty,oneof=DRAFT GENERATED COMPARED FINALIZED"`
}

// ListSlipsRequest filters a slip listing
type ListSlipsRequest struct {
	UserID         *uuid.UUID `form:"user_id"`
	Month          *string    `form:"month" binding:"omitempty,period"`
	Status         *string    `form:"status" binding:"omitempty,oneof=DRAFT GENERATED COMPARED FINALIZED"`
	Unreconciled   *bool      `form:"unreconciled"`
	MinDiscrepancy *float64   `form:"min_discrepancy" binding:"omitempty,gte=0"`
	Page           int        `form:"page" binding:"omitempty,min=1"`
	PageSize       int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// SlipResponse is the API representation of a salary slip
type SlipResponse struct {
	ID                 uuid.UUID                  `json:"id"`
	UserID             uuid.UUID                  `json:"user_id"`
	Month              string                     `json:"month"`
	BonusPercentage    float64                    `json:"bonus_percentage"`
	BonusAmount        decimal.Decimal            `json:"bonus_amount"`
	SystemGross        decimal.Decimal            `json:"system_gross"`
	SystemDeductions   decimal.Decimal            `json:"system_deductions"`
	SystemNet          decimal.Decimal            `json:"system_net"`
	SystemBreakdown    map[string]decimal.Decimal `json:"system_breakdown"`
	EmployeeGross      *decimal.Decimal           `json:"employee_gross,omitempty"`
	EmployeeDeductions *decimal.Decimal           `json:"employee_deductions,omitempty"`
	EmployeeNet        *decimal.Decimal           `json:"employee_net,omitempty"`
	EmployeeBreakdown  map[string]decimal.Decimal `json:"employee_breakdown,omitempty"`
	Discrepancy        *decimal.Decimal           `json:"discrepancy,omitempty"`
	DiscrepancyNotes   string                     `json:"discrepancy_notes,omitempty"`
	Currency           string                     `json:"currency"`
	Status             string                     `json:"status"`
	GeneratedAt        time.Time                  `json:"generated_at"`
	CreatedAt          time.Time                  `json:"created_at"`
	UpdatedAt          time.Time                  `json:"updated_at"`
	Version            int                        `json:"version"`
}

// ExportRegisterRequest asks for a payroll register export for one month
type ExportRegisterRequest struct {
	Month string `json:"month" binding:"required,period"`
}

// ExportRegisterResponse describes the uploaded register and its download URL
type ExportRegisterResponse struct {
	Month       string    `json:"month"`
	ObjectKey   string    `json:"object_key"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
	SlipCount   int       `json:"slip_count"`
}

// ToStructureResponse converts a salary structure to its response representation
func ToStructureResponse(s *payroll.SalaryStructure) StructureResponse {
	c := s.Components
	return StructureResponse{
		ID:               s.ID,
		UserID:           s.UserID,
		Basic:            c.Basic,
		HRA:              c.HRA,
		DA:               c.DA,
		TA:               c.TA,
		SpecialAllowance: c.SpecialAllowance,
		PF:               c.PF,
		ESI:              c.ESI,
		Tax:              c.Tax,
		OtherDeductions:  c.OtherDeductions,
		NetSalary:        c.NetSalary,
		TotalEarnings:    c.TotalEarnings(),
		TotalDeductions:  c.TotalDeductions(),
		Currency:         string(s.Currency),
		EffectiveFrom:    s.EffectiveFrom,
		Active:           s.Active,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
		Version:          s.Version,
	}
}

// ToStructureResponses converts a slice of structures
func ToStructureResponses(structures []payroll.SalaryStructure) []StructureResponse {
	responses := make([]StructureResponse, len(structures))
	for i := range structures {
		responses[i] = ToStructureResponse(&structures[i])
	}
	return responses
}

// ToSlipResponse converts a salary slip to its response representation
func ToSlipResponse(s *payroll.SalarySlip) SlipResponse {
	return SlipResponse{
		ID:                 s.ID,
		UserID:             s.UserID,
		Month:              s.Month.String(),
		BonusPercentage:    s.BonusPercentage,
		BonusAmount:        s.BonusAmount,
		SystemGross:        s.SystemGross,
		SystemDeductions:   s.SystemDeductions,
		SystemNet:          s.SystemNet,
		SystemBreakdown:    s.SystemBreakdown,
		EmployeeGross:      s.EmployeeGross,
		EmployeeDeductions: s.EmployeeDeductions,
		EmployeeNet:        s.EmployeeNet,
		EmployeeBreakdown:  s.EmployeeBreakdown,
		Discrepancy:        s.Discrepancy,
		DiscrepancyNotes:   s.DiscrepancyNotes,
		Currency:           string(s.Currency),
		Status:             s.Status.String(),
		GeneratedAt:        s.GeneratedAt,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
		Version:            s.Version,
	}
}

// ToSlipResponses converts a slice of slips
func ToSlipResponses(slips []payroll.SalarySlip) []SlipResponse {
	responses := make([]SlipResponse, len(slips))
	for i := range slips {
		responses[i] = ToSlipResponse(&slips[i])
	}
	return responses
}
