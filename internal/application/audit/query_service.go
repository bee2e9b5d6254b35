package audit

import (
	"context"

	"github.com/google/uuid"

	"github.com/payops/backend/internal/domain/audit"
	"github.com/payops/backend/internal/domain/identity"
	"github.com/payops/backend/internal/domain/shared"
)

// QueryService answers read-only audit trail queries for administrators
type QueryService struct {
	logRepo audit.LogRepository
}

// NewQueryService creates a new QueryService
func NewQueryService(logRepo audit.LogRepository) *QueryService {
	return &QueryService{
		logRepo: logRepo,
	}
}

// List retrieves audit log entries for a tenant, newest first
func (s *QueryService) List(ctx context.Context, tenantID uuid.UUID, actor identity.Actor, req ListLogsRequest) (*shared.Paginated[LogResponse], error) {
	if !actor.IsAdmin() {
		return nil, shared.ErrForbidden
	}

	filter := req.toFilter()

	logs, err := s.logRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	total, err := s.logRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToLogResponses(logs), total, filter.Page, filter.PageSize)
	return &result, nil
}

// GetByID retrieves a single audit log entry. Entries belonging to another
// tenant are reported as not found.
func (s *QueryService) GetByID(ctx context.Context, tenantID uuid.UUID, actor identity.Actor, logID uuid.UUID) (*LogResponse, error) {
	if !actor.IsAdmin() {
		return nil, shared.ErrForbidden
	}

	entry, err := s.logRepo.FindByID(ctx, logID)
	if err != nil {
		return nil, err
	}
	if entry.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}

	response := ToLogResponse(*entry)
	return &response, nil
}

// GetForAggregate retrieves the full trail for one aggregate, oldest first,
// so the history of a slip or bonus reads top to bottom.
func (s *QueryService) GetForAggregate(ctx context.Context, tenantID uuid.UUID, actor identity.Actor, aggregateID uuid.UUID) ([]LogResponse, error) {
	if !actor.IsAdmin() {
		return nil, shared.ErrForbidden
	}

	logs, err := s.logRepo.FindForAggregate(ctx, tenantID, aggregateID)
	if err != nil {
		return nil, err
	}
	return ToLogResponses(logs), nil
}
