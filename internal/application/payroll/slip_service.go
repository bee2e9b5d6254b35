package payroll

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/identity"
	"github.com/payops/backend/internal/domain/payroll"
	"github.com/payops/backend/internal/domain/performance"
	"github.com/payops/backend/internal/domain/shared"
	"github.com/payops/backend/internal/domain/shared/valueobject"
	"github.com/payops/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
)

// SlipService owns slip generation and the reconciliation lifecycle
type SlipService struct {
	slipRepo      payroll.SalarySlipRepository
	structureRepo payroll.SalaryStructureRepository
	bonusRepo     performance.BonusRecordRepository
	eventBus      shared.EventBus
}

// NewSlipService creates a new SlipService
func NewSlipService(
	slipRepo payroll.SalarySlipRepository,
	structureRepo payroll.SalaryStructureRepository,
	bonusRepo performance.BonusRecordRepository,
	eventBus shared.EventBus,
) *SlipService {
	return &SlipService{
		slipRepo:      slipRepo,
		structureRepo: structureRepo,
		bonusRepo:     bonusRepo,
		eventBus:      eventBus,
	}
}

// GenerateSlip computes the system-side figures for one user and pay month and
// upserts the slip keyed by (user, month). Regeneration overwrites system
// fields only and resets the lifecycle to GENERATED; employee submissions
// survive untouched. An active salary structure is required; the bonus record
// is optional and contributes a zero uplift when absent.
func (s *SlipService) GenerateSlip(ctx context.Context, tenantID uuid.UUID, actor identity.Actor, req GenerateSlipRequest) (*SlipResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "payroll.generate_slip",
		telemetry.WithAttribute(telemetry.SpanAttrSlipMonth, req.Month),
	)
	defer span.End()

	resp, err := s.generateSlip(ctx, tenantID, actor, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrSlipID, resp.ID,
		telemetry.SpanAttrSlipStatus, resp.Status,
	)
	return resp, nil
}

func (s *SlipService) generateSlip(ctx context.Context, tenantID uuid.UUID, actor identity.Actor, req GenerateSlipRequest) (*SlipResponse, error) {
	if !actor.CanManagePayroll() {
		return nil, shared.NewDomainError("FORBIDDEN", "Only HR or administrators may generate salary slips")
	}

	month, err := valueobject.ParsePeriod(req.Month)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_MONTH", err.Error())
	}

	structure, err := s.structureRepo.FindActiveForUser(ctx, tenantID, req.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PRECONDITION_FAILED", "User has no active salary structure")
		}
		return nil, err
	}

	bonusPercentage := 0.0
	record, err := s.bonusRepo.FindForUserPeriod(ctx, tenantID, req.UserID, month)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if record != nil {
		bonusPercentage = record.BonusPercentage
	}

	computation, err := payroll.ComputeSystemFigures(structure, bonusPercentage)
	if err != nil {
		return nil, err
	}

	slip, err := s.slipRepo.FindForUserMonth(ctx, tenantID, req.UserID, month)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if slip == nil {
		slip, err = payroll.NewSalarySlip(tenantID, req.UserID, month, computation)
		if err != nil {
			return nil, err
		}
		if err := s.slipRepo.Save(ctx, slip); err != nil {
			// A concurrent generation inserted the slip first; regenerate
			// onto the stored row instead.
			if errors.Is(err, shared.ErrAlreadyExists) {
				return s.regenerate(ctx, tenantID, req.UserID, month, computation)
			}
			return nil, err
		}
	} else {
		if err := slip.ApplySystemComputation(computation); err != nil {
			return nil, err
		}
		if err := s.slipRepo.SaveWithLock(ctx, slip); err != nil {
			return nil, err
		}
	}

	s.publishEvents(ctx, slip)

	response := ToSlipResponse(slip)
	return &response, nil
}

// regenerate re-reads the slip that won an insert race and applies the fresh
// computation to it
func (s *SlipService) regenerate(ctx context.Context, tenantID, userID uuid.UUID, month valueobject.Period, computation payroll.SystemComputation) (*SlipResponse, error) {
	slip, err := s.slipRepo.FindForUserMonth(ctx, tenantID, userID, month)
	if err != nil {
		return nil, err
	}
	if err := slip.ApplySystemComputation(computation); err != nil {
		return nil, err
	}
	if err := s.slipRepo.SaveWithLock(ctx, slip); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, slip)

	response := ToSlipResponse(slip)
	return &response, nil
}

// GetSlip returns one slip. Employees may read their own slip; HR and
// administrators may read any slip in the tenant. A slip outside the actor's
// tenant reports not found, never forbidden.
func (s *SlipService) GetSlip(ctx context.Context, tenantID uuid.UUID, actor identity.Actor, slipID uuid.UUID) (*SlipResponse, error) {
	slip, err := s.slipRepo.FindByIDForTenant(ctx, tenantID, slipID)
	if err != nil {
		return nil, err
	}

	if !actor.CanManagePayroll() && !slip.IsOwnedBy(actor.UserID) {
		return nil, shared.NewDomainError("FORBIDDEN", "You may only view your own salary slips")
	}

	response := ToSlipResponse(slip)
	return &response, nil
}

// ListSlips returns slips matching the filter. Employees are always scoped to
// their own slips; HR and administrators may list across the tenant.
func (s *SlipService) ListSlips(ctx context.Context, tenantID uuid.UUID, actor identity.Actor, req ListSlipsRequest) (*shared.Paginated[SlipResponse], error) {
	filter, err := s.buildFilter(req)
	if err != nil {
		return nil, err
	}

	if !actor.CanManagePayroll() {
		scoped := actor.UserID
		filter.UserID = &scoped
	}

	var slips []payroll.SalarySlip
	if filter.UserID != nil {
		slips, err = s.slipRepo.FindForUser(ctx, tenantID, *filter.UserID, filter)
	} else {
		slips, err = s.slipRepo.FindAllForTenant(ctx, tenantID, filter)
	}
	if err != nil {
		return nil, err
	}

	total, err := s.slipRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(ToSlipResponses(slips), total, filter.Page, filter.PageSize)
	return &page, nil
}

// UpdateSlip applies a reconciliation submission to a slip. Employees may
// submit employee-side figures for their own slip; administrators may submit
// any field including an explicit status. A finalization attempt by anyone
// else fails before a single field is written.
func (s *SlipService) UpdateSlip(ctx context.Context, tenantID uuid.UUID, actor identity.Actor, slipID uuid.UUID, req UpdateSlipRequest) (*SlipResponse, error) {
	slip, err := s.slipRepo.FindByIDForTenant(ctx, tenantID, slipID)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() {
		if !slip.IsOwnedBy(actor.UserID) {
			return nil, shared.NewDomainError("FORBIDDEN", "You may only reconcile your own salary slip")
		}
		if req.Status != nil && payroll.SlipStatus(*req.Status) == payroll.SlipStatusFinalized {
			return nil, shared.NewDomainError("FORBIDDEN", "Only administrators may finalize a salary slip")
		}
	}

	sub := payroll.EmployeeSubmission{
		Gross:      req.EmployeeGross,
		Deductions: req.EmployeeDeductions,
		Net:        req.EmployeeNet,
		Breakdown:  payroll.Breakdown(req.EmployeeBreakdown),
		Notes:      req.Notes,
	}
	if req.Status != nil {
		status := payroll.SlipStatus(*req.Status)
		sub.TargetStatus = &status
	}

	if err := slip.SubmitEmployeeFigures(sub); err != nil {
		return nil, err
	}

	if err := s.slipRepo.SaveWithLock(ctx, slip); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, slip)

	response := ToSlipResponse(slip)
	return &response, nil
}

// buildFilter translates the listing request into a repository filter
func (s *SlipService) buildFilter(req ListSlipsRequest) (payroll.SlipFilter, error) {
	filter := payroll.SlipFilter{Filter: shared.DefaultFilter()}
	filter.OrderBy = "month"

	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	filter.UserID = req.UserID
	if req.Month != nil {
		month, err := valueobject.ParsePeriod(*req.Month)
		if err != nil {
			return payroll.SlipFilter{}, shared.NewDomainError("INVALID_MONTH", err.Error())
		}
		filter.Month = &month
	}
	if req.Status != nil {
		status := payroll.SlipStatus(*req.Status)
		filter.Status = &status
	}
	filter.Unreconciled = req.Unreconciled
	if req.MinDiscrepancy != nil {
		min := decimal.NewFromFloat(*req.MinDiscrepancy)
		filter.MinDiscrepancy = &min
	}
	return filter, nil
}

// publishEvents publishes domain events from the aggregate
func (s *SlipService) publishEvents(ctx context.Context, slip *payroll.SalarySlip) {
	if s.eventBus == nil {
		return
	}

	for _, event := range slip.GetDomainEvents() {
		_ = s.eventBus.Publish(ctx, event)
	}
	slip.ClearDomainEvents()
}
