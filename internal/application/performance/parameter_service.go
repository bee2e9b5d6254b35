package performance

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/performance"
	"github.com/payops/backend/internal/domain/shared"
)

// ParameterService manages the scoring parameter registry
type ParameterService struct {
	paramRepo performance.ScoreParameterRepository
	scoreRepo performance.ParameterScoreRepository
	eventBus  shared.EventBus
}

// NewParameterService creates a new ParameterService
func NewParameterService(
	paramRepo performance.ScoreParameterRepository,
	scoreRepo performance.ParameterScoreRepository,
	eventBus shared.EventBus,
) *ParameterService {
	return &ParameterService{
		paramRepo: paramRepo,
		scoreRepo: scoreRepo,
		eventBus:  eventBus,
	}
}

// Create registers a new scoring parameter
func (s *ParameterService) Create(ctx context.Context, tenantID uuid.UUID, req CreateParameterRequest) (*ParameterResponse, error) {
	existing, err := s.paramRepo.FindByCodeForTenant(ctx, tenantID, req.Code)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Parameter with this code already exists")
	}

	param, err := performance.NewScoreParameter(tenantID, req.Code, req.Name, req.Weight)
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		param.SetCreatedBy(*req.CreatedBy)
	}

	if err := s.paramRepo.Save(ctx, param); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, param)

	response := ToParameterResponse(param)
	return &response, nil
}

// GetByID retrieves a parameter by ID
func (s *ParameterService) GetByID(ctx context.Context, tenantID, paramID uuid.UUID) (*ParameterResponse, error) {
	param, err := s.paramRepo.FindByIDForTenant(ctx, tenantID, paramID)
	if err != nil {
		return nil, err
	}

	response := ToParameterResponse(param)
	return &response, nil
}

// List retrieves the parameter registry for a tenant
func (s *ParameterService) List(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]ParameterResponse, error) {
	params, err := s.paramRepo.FindAllForTenant(ctx, tenantID, activeOnly)
	if err != nil {
		return nil, err
	}
	return ToParameterResponses(params), nil
}

// Update changes a parameter's name, weight, or active flag. Weight changes
// affect fresh evaluations only; periods with stored scores keep the weight
// snapshot taken when they were scored.
func (s *ParameterService) Update(ctx context.Context, tenantID, paramID uuid.UUID, req UpdateParameterRequest) (*ParameterResponse, error) {
	param, err := s.paramRepo.FindByIDForTenant(ctx, tenantID, paramID)
	if err != nil {
		return nil, err
	}

	name := param.Name
	if req.Name != nil {
		name = *req.Name
	}
	weight := param.Weight
	if req.Weight != nil {
		weight = *req.Weight
	}
	if req.Name != nil || req.Weight != nil {
		if err := param.Update(name, weight); err != nil {
			return nil, err
		}
	}

	if req.Active != nil {
		if *req.Active {
			param.Activate()
		} else {
			param.Deactivate()
		}
	}

	if err := s.paramRepo.Save(ctx, param); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, param)

	response := ToParameterResponse(param)
	return &response, nil
}

// Delete removes a parameter from the registry. Parameters referenced by
// stored scores cannot be removed; deactivate them instead.
func (s *ParameterService) Delete(ctx context.Context, tenantID, paramID uuid.UUID) error {
	if _, err := s.paramRepo.FindByIDForTenant(ctx, tenantID, paramID); err != nil {
		return err
	}

	count, err := s.scoreRepo.CountByParameter(ctx, tenantID, paramID)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("PARAMETER_IN_USE", "Parameter has stored scores; deactivate it instead of deleting")
	}

	return s.paramRepo.DeleteForTenant(ctx, tenantID, paramID)
}

// publishEvents publishes domain events from the aggregate
func (s *ParameterService) publishEvents(ctx context.Context, param *performance.ScoreParameter) {
	if s.eventBus == nil {
		return
	}

	for _, event := range param.GetDomainEvents() {
		_ = s.eventBus.Publish(ctx, event)
	}
	param.ClearDomainEvents()
}
