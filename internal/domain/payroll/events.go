package payroll

import (
	"time"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/shared"
	"github.com/payops/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Aggregate type constants for the payroll context
const (
	AggregateTypeSalaryStructure = "SalaryStructure"
	AggregateTypeSalarySlip      = "SalarySlip"
	AggregateTypePayrollRegister = "PayrollRegister"
)

// Payroll domain event types
const (
	EventTypeSalaryStructureDefined = "SalaryStructureDefined"
	EventTypeSalarySlipGenerated    = "SalarySlipGenerated"
	EventTypeSalarySlipReconciled   = "SalarySlipReconciled"
	EventTypeSalarySlipFinalized    = "SalarySlipFinalized"
	EventTypeRegisterExported       = "RegisterExported"
)

// SalaryStructureDefinedEvent is published when a salary structure is created
// or its components are revised
type SalaryStructureDefinedEvent struct {
	shared.BaseDomainEvent
	StructureID   uuid.UUID       `json:"structure_id"`
	UserID        uuid.UUID       `json:"user_id"`
	NetSalary     decimal.Decimal `json:"net_salary"`
	EffectiveFrom time.Time       `json:"effective_from"`
	Active        bool            `json:"active"`
}

// NewSalaryStructureDefinedEvent creates a new SalaryStructureDefinedEvent
func NewSalaryStructureDefinedEvent(structure *SalaryStructure) *SalaryStructureDefinedEvent {
	return &SalaryStructureDefinedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalaryStructureDefined, AggregateTypeSalaryStructure, structure.ID, structure.TenantID),
		StructureID:     structure.ID,
		UserID:          structure.UserID,
		NetSalary:       structure.Components.NetSalary,
		EffectiveFrom:   structure.EffectiveFrom,
		Active:          structure.Active,
	}
}

// SalarySlipGeneratedEvent is published when a slip's system figures are
// computed, both on first generation and on regeneration
type SalarySlipGeneratedEvent struct {
	shared.BaseDomainEvent
	SlipID      uuid.UUID          `json:"slip_id"`
	UserID      uuid.UUID          `json:"user_id"`
	Month       valueobject.Period `json:"month"`
	BonusAmount decimal.Decimal    `json:"bonus_amount"`
	SystemNet   decimal.Decimal    `json:"system_net"`
	Regenerated bool               `json:"regenerated"`
}

// NewSalarySlipGeneratedEvent creates a new SalarySlipGeneratedEvent
func NewSalarySlipGeneratedEvent(slip *SalarySlip, regenerated bool) *SalarySlipGeneratedEvent {
	return &SalarySlipGeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalarySlipGenerated, AggregateTypeSalarySlip, slip.ID, slip.TenantID),
		SlipID:          slip.ID,
		UserID:          slip.UserID,
		Month:           slip.Month,
		BonusAmount:     slip.BonusAmount,
		SystemNet:       slip.SystemNet,
		Regenerated:     regenerated,
	}
}

// SalarySlipReconciledEvent is published when employee figures are submitted
// against a slip
type SalarySlipReconciledEvent struct {
	shared.BaseDomainEvent
	SlipID      uuid.UUID          `json:"slip_id"`
	UserID      uuid.UUID          `json:"user_id"`
	Month       valueobject.Period `json:"month"`
	SystemNet   decimal.Decimal    `json:"system_net"`
	EmployeeNet *decimal.Decimal   `json:"employee_net,omitempty"`
	Discrepancy *decimal.Decimal   `json:"discrepancy,omitempty"`
	Status      SlipStatus         `json:"status"`
}

// NewSalarySlipReconciledEvent creates a new SalarySlipReconciledEvent
func NewSalarySlipReconciledEvent(slip *SalarySlip) *SalarySlipReconciledEvent {
	return &SalarySlipReconciledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalarySlipReconciled, AggregateTypeSalarySlip, slip.ID, slip.TenantID),
		SlipID:          slip.ID,
		UserID:          slip.UserID,
		Month:           slip.Month,
		SystemNet:       slip.SystemNet,
		EmployeeNet:     slip.EmployeeNet,
		Discrepancy:     slip.Discrepancy,
		Status:          slip.Status,
	}
}

// SalarySlipFinalizedEvent is published when a slip is locked
type SalarySlipFinalizedEvent struct {
	shared.BaseDomainEvent
	SlipID      uuid.UUID          `json:"slip_id"`
	UserID      uuid.UUID          `json:"user_id"`
	Month       valueobject.Period `json:"month"`
	SystemNet   decimal.Decimal    `json:"system_net"`
	Discrepancy *decimal.Decimal   `json:"discrepancy,omitempty"`
}

// RegisterExportedEvent is published when a monthly payroll register is
// rendered and uploaded to object storage
type RegisterExportedEvent struct {
	shared.BaseDomainEvent
	Month     valueobject.Period `json:"month"`
	ObjectKey string             `json:"object_key"`
	Format    string             `json:"format"`
	SlipCount int                `json:"slip_count"`
}

// NewRegisterExportedEvent creates a new RegisterExportedEvent
func NewRegisterExportedEvent(tenantID uuid.UUID, month valueobject.Period, objectKey string, slipCount int) *RegisterExportedEvent {
	return &RegisterExportedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRegisterExported, AggregateTypePayrollRegister, uuid.New(), tenantID),
		Month:           month,
		ObjectKey:       objectKey,
		Format:          "csv",
		SlipCount:       slipCount,
	}
}

// NewSalarySlipFinalizedEvent creates a new SalarySlipFinalizedEvent
func NewSalarySlipFinalizedEvent(slip *SalarySlip) *SalarySlipFinalizedEvent {
	return &SalarySlipFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalarySlipFinalized, AggregateTypeSalarySlip, slip.ID, slip.TenantID),
		SlipID:          slip.ID,
		UserID:          slip.UserID,
		Month:           slip.Month,
		SystemNet:       slip.SystemNet,
		Discrepancy:     slip.Discrepancy,
	}
}
