package payroll

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/shared"
	"github.com/payops/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// SlipStatus represents the reconciliation lifecycle state of a salary slip
type SlipStatus string

const (
	SlipStatusDraft     SlipStatus = "DRAFT"     // Placeholder before system figures exist
	SlipStatusGenerated SlipStatus = "GENERATED" // System figures computed, awaiting employee figures
	SlipStatusCompared  SlipStatus = "COMPARED"  // Both nets known, discrepancy computed
	SlipStatusFinalized SlipStatus = "FINALIZED" // Locked, no further mutation
)

// IsValid checks if the status is a valid SlipStatus
func (s SlipStatus) IsValid() bool {
	switch s {
	case SlipStatusDraft, SlipStatusGenerated, SlipStatusCompared, SlipStatusFinalized:
		return true
	}
	return false
}

// String returns the string representation of SlipStatus
func (s SlipStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the slip is in a terminal state
func (s SlipStatus) IsTerminal() bool {
	return s == SlipStatusFinalized
}

// order positions statuses along the lifecycle for transition checks
func (s SlipStatus) order() int {
	switch s {
	case SlipStatusDraft:
		return 0
	case SlipStatusGenerated:
		return 1
	case SlipStatusCompared:
		return 2
	case SlipStatusFinalized:
		return 3
	}
	return -1
}

// CanTransitionTo reports whether the lifecycle permits moving to next.
// The machine only moves forward; regeneration resets to GENERATED through
// ApplySystemComputation, never through an explicit status submission.
func (s SlipStatus) CanTransitionTo(next SlipStatus) bool {
	if !s.IsValid() || !next.IsValid() {
		return false
	}
	if s.IsTerminal() {
		return false
	}
	return next.order() > s.order()
}

// Breakdown is a component -> amount map for one side of a slip, stored as
// JSONB. Employee submissions may carry any subset of components.
type Breakdown map[string]decimal.Decimal

// Value implements driver.Valuer interface for GORM to store as JSONB
func (b Breakdown) Value() (driver.Value, error) {
	if b == nil {
		return "{}", nil
	}
	return json.Marshal(b)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (b *Breakdown) Scan(value interface{}) error {
	if value == nil {
		*b = Breakdown{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan Breakdown: unsupported type")
	}

	if len(bytes) == 0 {
		*b = Breakdown{}
		return nil
	}

	return json.Unmarshal(bytes, b)
}

// Clone returns a copy of the breakdown map
func (b Breakdown) Clone() Breakdown {
	if b == nil {
		return nil
	}
	out := make(Breakdown, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// EmployeeSubmission is a partial set of employee-side figures submitted for
// reconciliation. Nil fields are left untouched; TargetStatus, when present,
// requests an explicit lifecycle transition instead of the automatic one.
type EmployeeSubmission struct {
	Gross        *decimal.Decimal
	Deductions   *decimal.Decimal
	Net          *decimal.Decimal
	Breakdown    Breakdown
	Notes        *string
	TargetStatus *SlipStatus
}

func (sub EmployeeSubmission) validate() error {
	amounts := []struct {
		name  string
		value *decimal.Decimal
	}{
		{"employee gross", sub.Gross},
		{"employee deductions", sub.Deductions},
		{"employee net", sub.Net},
	}
	for _, a := range amounts {
		if a.value != nil && a.value.IsNegative() {
			return shared.NewDomainError("INVALID_EMPLOYEE_FIGURE", "Amount for "+a.name+" cannot be negative")
		}
	}
	if sub.TargetStatus != nil && !sub.TargetStatus.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown slip status %q", *sub.TargetStatus))
	}
	return nil
}

// IsEmpty reports whether the submission carries no changes at all
func (sub EmployeeSubmission) IsEmpty() bool {
	return sub.Gross == nil && sub.Deductions == nil && sub.Net == nil &&
		len(sub.Breakdown) == 0 && sub.Notes == nil && sub.TargetStatus == nil
}

// SalarySlip is the aggregate owning the reconciliation lifecycle of one
// user's pay for one month. System-side fields are owned by slip generation;
// employee-side fields are owned by reconciliation. The two field sets are
// disjoint: regeneration never clobbers employee submissions and submissions
// never alter system figures.
type SalarySlip struct {
	shared.TenantAggregateRoot
	UserID             uuid.UUID            `json:"user_id"`
	Month              valueobject.Period   `json:"month"`
	BonusPercentage    float64              `json:"bonus_percentage"`
	BonusAmount        decimal.Decimal      `json:"bonus_amount"`
	SystemGross        decimal.Decimal      `json:"system_gross"`
	SystemDeductions   decimal.Decimal      `json:"system_deductions"`
	SystemNet          decimal.Decimal      `json:"system_net"`
	SystemBreakdown    Breakdown            `json:"system_breakdown"`
	EmployeeGross      *decimal.Decimal     `json:"employee_gross,omitempty"`
	EmployeeDeductions *decimal.Decimal     `json:"employee_deductions,omitempty"`
	EmployeeNet        *decimal.Decimal     `json:"employee_net,omitempty"`
	EmployeeBreakdown  Breakdown            `json:"employee_breakdown,omitempty"`
	Discrepancy        *decimal.Decimal     `json:"discrepancy,omitempty"`
	DiscrepancyNotes   string               `json:"discrepancy_notes,omitempty"`
	Currency           valueobject.Currency `json:"currency"`
	Status             SlipStatus           `json:"status"`
	GeneratedAt        time.Time            `json:"generated_at"`
}

// NewSalarySlip creates a slip from a system computation. GENERATED is the
// entry state; DRAFT exists only for slips persisted before figures are
// computed, which generation immediately supersedes.
func NewSalarySlip(tenantID, userID uuid.UUID, month valueobject.Period, computation SystemComputation) (*SalarySlip, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if month.IsZero() {
		return nil, shared.NewDomainError("INVALID_MONTH", "Slip month is required")
	}

	slip := &SalarySlip{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		UserID:              userID,
		Month:               month,
		BonusPercentage:     computation.BonusPercentage,
		BonusAmount:         computation.BonusAmount,
		SystemGross:         computation.Gross,
		SystemDeductions:    computation.Deductions,
		SystemNet:           computation.Net,
		SystemBreakdown:     computation.Breakdown.Clone(),
		Currency:            computation.Currency,
		Status:              SlipStatusGenerated,
		GeneratedAt:         time.Now(),
	}

	slip.AddDomainEvent(NewSalarySlipGeneratedEvent(slip, false))

	return slip, nil
}

// ApplySystemComputation overwrites the system-side fields with a fresh
// computation, resetting the lifecycle to GENERATED. Employee-side fields are
// untouched; the discrepancy is recomputed against the new system net.
func (s *SalarySlip) ApplySystemComputation(computation SystemComputation) error {
	if s.Status.IsTerminal() {
		return shared.ErrAlreadyFinalized
	}

	s.BonusPercentage = computation.BonusPercentage
	s.BonusAmount = computation.BonusAmount
	s.SystemGross = computation.Gross
	s.SystemDeductions = computation.Deductions
	s.SystemNet = computation.Net
	s.SystemBreakdown = computation.Breakdown.Clone()
	s.Currency = computation.Currency
	s.Status = SlipStatusGenerated
	s.GeneratedAt = time.Now()
	s.recomputeDiscrepancy()
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewSalarySlipGeneratedEvent(s, true))

	return nil
}

// SubmitEmployeeFigures applies a reconciliation submission to the slip.
// All checks run before any field is written: a rejected submission leaves
// the slip exactly as it was. Without an explicit target status the machine
// auto-advances to COMPARED once both nets are known; it never auto-advances
// to FINALIZED.
func (s *SalarySlip) SubmitEmployeeFigures(sub EmployeeSubmission) error {
	if s.Status.IsTerminal() {
		return shared.ErrAlreadyFinalized
	}
	if sub.IsEmpty() {
		return shared.NewDomainError("EMPTY_SUBMISSION", "Submission carries no fields to apply")
	}
	if err := sub.validate(); err != nil {
		return err
	}
	if sub.TargetStatus != nil && !s.Status.CanTransitionTo(*sub.TargetStatus) {
		return shared.NewDomainError("INVALID_STATUS_TRANSITION",
			fmt.Sprintf("Cannot transition slip from %s to %s", s.Status, *sub.TargetStatus))
	}

	if sub.Gross != nil {
		s.EmployeeGross = sub.Gross
	}
	if sub.Deductions != nil {
		s.EmployeeDeductions = sub.Deductions
	}
	if sub.Net != nil {
		s.EmployeeNet = sub.Net
	}
	if len(sub.Breakdown) > 0 {
		merged := s.EmployeeBreakdown.Clone()
		if merged == nil {
			merged = Breakdown{}
		}
		for k, v := range sub.Breakdown {
			merged[k] = v
		}
		s.EmployeeBreakdown = merged
	}
	if sub.Notes != nil {
		s.DiscrepancyNotes = *sub.Notes
	}

	s.recomputeDiscrepancy()

	finalized := false
	switch {
	case sub.TargetStatus != nil:
		s.Status = *sub.TargetStatus
		finalized = s.Status == SlipStatusFinalized
	case s.Status == SlipStatusGenerated && s.EmployeeNet != nil:
		s.Status = SlipStatusCompared
	}

	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewSalarySlipReconciledEvent(s))
	if finalized {
		s.AddDomainEvent(NewSalarySlipFinalizedEvent(s))
	}

	return nil
}

// Finalize locks the slip against any further mutation
func (s *SalarySlip) Finalize() error {
	if s.Status.IsTerminal() {
		return shared.ErrAlreadyFinalized
	}

	s.Status = SlipStatusFinalized
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewSalarySlipFinalizedEvent(s))

	return nil
}

// recomputeDiscrepancy refreshes the absolute net difference. The pairing
// needs both sides: an unknown employee net, or a slip whose system figures
// were never computed, keeps the discrepancy null.
func (s *SalarySlip) recomputeDiscrepancy() {
	if s.EmployeeNet == nil || s.Status == SlipStatusDraft {
		s.Discrepancy = nil
		return
	}
	d := s.SystemNet.Sub(*s.EmployeeNet).Abs()
	s.Discrepancy = &d
}

// HasEmployeeFigures reports whether any employee-side field has been submitted
func (s *SalarySlip) HasEmployeeFigures() bool {
	return s.EmployeeGross != nil || s.EmployeeDeductions != nil ||
		s.EmployeeNet != nil || len(s.EmployeeBreakdown) > 0
}

// IsOwnedBy reports whether the slip belongs to the given user
func (s *SalarySlip) IsOwnedBy(userID uuid.UUID) bool {
	return s.UserID == userID
}

// SystemNetMoney returns the system net as Money
func (s *SalarySlip) SystemNetMoney() valueobject.Money {
	m, err := valueobject.NewMoney(s.SystemNet, s.Currency)
	if err != nil {
		return valueobject.Zero(valueobject.DefaultCurrency)
	}
	return m
}
