package payroll

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/identity"
	"github.com/payops/backend/internal/domain/payroll"
	"github.com/payops/backend/internal/domain/shared"
	"github.com/payops/backend/internal/domain/shared/valueobject"
)

// StructureService manages HR-owned salary structures
type StructureService struct {
	structureRepo payroll.SalaryStructureRepository
	eventBus      shared.EventBus
}

// NewStructureService creates a new StructureService
func NewStructureService(structureRepo payroll.SalaryStructureRepository, eventBus shared.EventBus) *StructureService {
	return &StructureService{
		structureRepo: structureRepo,
		eventBus:      eventBus,
	}
}

// Upsert defines or revises the salary structure for a user. A structure with
// a later effective date supersedes the active one, which is retired but kept
// for history; the same or an unset effective date corrects the active
// structure in place.
func (s *StructureService) Upsert(ctx context.Context, tenantID uuid.UUID, actor identity.Actor, userID uuid.UUID, req UpsertStructureRequest) (*StructureResponse, error) {
	if !actor.CanManagePayroll() {
		return nil, shared.NewDomainError("FORBIDDEN", "Only HR or administrators may define salary structures")
	}

	components := req.toComponents()
	currency := valueobject.Currency(req.Currency)

	existing, err := s.structureRepo.FindActiveForUser(ctx, tenantID, userID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if existing == nil {
		effectiveFrom := time.Now()
		if req.EffectiveFrom != nil {
			effectiveFrom = *req.EffectiveFrom
		}
		structure, err := payroll.NewSalaryStructure(tenantID, userID, components, currency, effectiveFrom)
		if err != nil {
			return nil, err
		}
		if err := s.structureRepo.Save(ctx, structure); err != nil {
			return nil, err
		}
		s.publishEvents(ctx, structure)

		response := ToStructureResponse(structure)
		return &response, nil
	}

	if req.EffectiveFrom != nil && req.EffectiveFrom.After(existing.EffectiveFrom) {
		return s.revise(ctx, tenantID, userID, existing, components, currency, *req.EffectiveFrom)
	}

	var effectiveFrom time.Time
	if req.EffectiveFrom != nil {
		effectiveFrom = *req.EffectiveFrom
	}
	if err := existing.UpdateComponents(components, effectiveFrom); err != nil {
		return nil, err
	}
	if err := s.structureRepo.Save(ctx, existing); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, existing)

	response := ToStructureResponse(existing)
	return &response, nil
}

// revise retires the active structure and activates a replacement effective
// from the given date
func (s *StructureService) revise(ctx context.Context, tenantID, userID uuid.UUID, active *payroll.SalaryStructure, components payroll.SalaryComponents, currency valueobject.Currency, effectiveFrom time.Time) (*StructureResponse, error) {
	replacement, err := payroll.NewSalaryStructure(tenantID, userID, components, currency, effectiveFrom)
	if err != nil {
		return nil, err
	}

	active.Deactivate()
	if err := s.structureRepo.Save(ctx, active); err != nil {
		return nil, err
	}
	if err := s.structureRepo.Save(ctx, replacement); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, replacement)

	response := ToStructureResponse(replacement)
	return &response, nil
}

// GetActiveForUser returns the active salary structure for a user. Employees
// may read their own structure; HR and administrators may read any.
func (s *StructureService) GetActiveForUser(ctx context.Context, tenantID uuid.UUID, actor identity.Actor, userID uuid.UUID) (*StructureResponse, error) {
	if !actor.CanManagePayroll() && !actor.Owns(userID) {
		return nil, shared.NewDomainError("FORBIDDEN", "You may only view your own salary structure")
	}

	structure, err := s.structureRepo.FindActiveForUser(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	response := ToStructureResponse(structure)
	return &response, nil
}

// ListForUser returns a user's structures, active and retired, newest first
func (s *StructureService) ListForUser(ctx context.Context, tenantID uuid.UUID, actor identity.Actor, userID uuid.UUID) ([]StructureResponse, error) {
	if !actor.CanManagePayroll() && !actor.Owns(userID) {
		return nil, shared.NewDomainError("FORBIDDEN", "You may only view your own salary structures")
	}

	structures, err := s.structureRepo.FindAllForUser(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	return ToStructureResponses(structures), nil
}

// publishEvents publishes domain events from the aggregate
func (s *StructureService) publishEvents(ctx context.Context, structure *payroll.SalaryStructure) {
	if s.eventBus == nil {
		return
	}

	for _, event := range structure.GetDomainEvents() {
		_ = s.eventBus.Publish(ctx, event)
	}
	structure.ClearDomainEvents()
}
