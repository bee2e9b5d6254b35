package performance

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/performance"
	"github.com/payops/backend/internal/domain/shared"
	"github.com/payops/backend/internal/domain/shared/valueobject"
	"github.com/payops/backend/internal/infrastructure/telemetry"
)

// DefaultHistoryCount is the number of trailing periods a history request
// covers when the caller does not ask for a specific window.
const DefaultHistoryCount = 6

// ScoringService computes performance evaluations and manages bonus records.
// Computation is memoized per (user, period): once scores are stored they are
// reused verbatim, so recomputing an old period never drifts even if parameter
// weights changed since.
type ScoringService struct {
	paramRepo performance.ScoreParameterRepository
	scoreRepo performance.ParameterScoreRepository
	bonusRepo performance.BonusRecordRepository
	metrics   performance.MetricsSource
	evaluator *performance.Evaluator
	eventBus  shared.EventBus
}

// NewScoringService creates a new ScoringService
func NewScoringService(
	paramRepo performance.ScoreParameterRepository,
	scoreRepo performance.ParameterScoreRepository,
	bonusRepo performance.BonusRecordRepository,
	metrics performance.MetricsSource,
	evaluator *performance.Evaluator,
	eventBus shared.EventBus,
) *ScoringService {
	if evaluator == nil {
		evaluator = performance.NewEvaluator(nil)
	}
	return &ScoringService{
		paramRepo: paramRepo,
		scoreRepo: scoreRepo,
		bonusRepo: bonusRepo,
		metrics:   metrics,
		evaluator: evaluator,
		eventBus:  eventBus,
	}
}

// ComputePerformance evaluates one user for one period.
//
// When stored scores exist for the period they are aggregated as-is (writing
// the bonus record only if a partial prior run left it missing). Otherwise
// the period is scored fresh from the active
// parameter registry and raw metric values, the scores and the bonus record
// are persisted, and the outcome is returned. A finalized bonus record blocks
// the fresh path: the period is locked and must not be rescored.
func (s *ScoringService) ComputePerformance(ctx context.Context, tenantID uuid.UUID, req ComputePerformanceRequest) (*PerformanceResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "performance.compute",
		telemetry.WithAttribute(telemetry.SpanAttrPeriod, req.Period),
	)
	defer span.End()

	resp, err := s.computePerformance(ctx, tenantID, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrTierName, resp.Tier)
	return resp, nil
}

func (s *ScoringService) computePerformance(ctx context.Context, tenantID uuid.UUID, req ComputePerformanceRequest) (*PerformanceResponse, error) {
	period, err := valueobject.ParsePeriod(req.Period)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PERIOD", err.Error())
	}

	stored, err := s.scoreRepo.FindForUserPeriod(ctx, tenantID, req.UserID, period)
	if err != nil {
		return nil, err
	}
	if len(stored) > 0 {
		eval := s.evaluator.Aggregate(stored)
		if err := s.ensureBonusRecord(ctx, tenantID, req.UserID, period, eval); err != nil {
			return nil, err
		}
		response := ToPerformanceResponse(req.UserID, period.String(), eval, true)
		return &response, nil
	}

	record, err := s.bonusRepo.FindForUserPeriod(ctx, tenantID, req.UserID, period)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if record != nil && record.IsFinalized {
		return nil, shared.ErrAlreadyFinalized
	}

	params, err := s.paramRepo.FindAllForTenant(ctx, tenantID, true)
	if err != nil {
		return nil, err
	}
	if err := performance.ValidateRegistry(params); err != nil {
		return nil, err
	}

	raw, err := s.metrics.RawValues(ctx, tenantID, req.UserID, period)
	if err != nil {
		return nil, err
	}

	eval, err := s.evaluator.Evaluate(tenantID, req.UserID, period, params, raw)
	if err != nil {
		return nil, err
	}

	if len(eval.Scores) > 0 {
		if err := s.scoreRepo.SaveAll(ctx, eval.Scores); err != nil {
			// A concurrent evaluation won the insert race; its rows are
			// authoritative now.
			if errors.Is(err, shared.ErrAlreadyExists) {
				return s.aggregateStored(ctx, tenantID, req.UserID, period)
			}
			return nil, err
		}
	}

	if record == nil {
		record, err = performance.NewBonusRecord(tenantID, req.UserID, period, eval.TotalScore, eval.Assignment)
		if err != nil {
			return nil, err
		}
	} else if err := record.ApplyEvaluation(eval.TotalScore, eval.Assignment); err != nil {
		return nil, err
	}

	if err := s.bonusRepo.Save(ctx, record); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, record)

	response := ToPerformanceResponse(req.UserID, period.String(), eval, false)
	return &response, nil
}

// GetPerformance returns the stored evaluation for one user and period without
// triggering a computation. Periods that were never scored report not found.
func (s *ScoringService) GetPerformance(ctx context.Context, tenantID, userID uuid.UUID, periodKey string) (*PerformanceResponse, error) {
	period, err := valueobject.ParsePeriod(periodKey)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PERIOD", err.Error())
	}

	stored, err := s.scoreRepo.FindForUserPeriod(ctx, tenantID, userID, period)
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return nil, shared.ErrNotFound
	}

	eval := s.evaluator.Aggregate(stored)
	response := ToPerformanceResponse(userID, period.String(), eval, true)
	return &response, nil
}

// History returns the bonus records for the trailing window of periods ending
// at the requested period, oldest first. Periods that were never evaluated are
// simply absent from the result.
func (s *ScoringService) History(ctx context.Context, tenantID uuid.UUID, req HistoryRequest) ([]BonusRecordResponse, error) {
	end, err := valueobject.ParsePeriod(req.Period)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PERIOD", err.Error())
	}
	count := req.Count
	if count <= 0 {
		count = DefaultHistoryCount
	}

	periods := make([]valueobject.Period, 0, count)
	for p := range valueobject.PeriodsEnding(end, count) {
		periods = append(periods, p)
	}

	records, err := s.bonusRepo.FindForUserPeriods(ctx, tenantID, req.UserID, periods)
	if err != nil {
		return nil, err
	}
	return ToBonusRecordResponses(records), nil
}

// FinalizeBonus locks the bonus record for one user and period against any
// further recomputation. Only administrators reach this path; the actor is
// recorded on the locked record.
func (s *ScoringService) FinalizeBonus(ctx context.Context, tenantID, actorID uuid.UUID, req FinalizeBonusRequest) (*BonusRecordResponse, error) {
	period, err := valueobject.ParsePeriod(req.Period)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PERIOD", err.Error())
	}

	record, err := s.bonusRepo.FindForUserPeriod(ctx, tenantID, req.UserID, period)
	if err != nil {
		return nil, err
	}

	if err := record.Finalize(actorID); err != nil {
		return nil, err
	}

	if err := s.bonusRepo.SaveWithLock(ctx, record); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, record)

	response := ToBonusRecordResponse(record)
	return &response, nil
}

// ensureBonusRecord repairs a partial prior write: scores persisted without
// their aggregate row would keep the period invisible to History forever.
// Stored scores are never rewritten; only the missing bonus record is.
func (s *ScoringService) ensureBonusRecord(ctx context.Context, tenantID, userID uuid.UUID, period valueobject.Period, eval *performance.Evaluation) error {
	_, err := s.bonusRepo.FindForUserPeriod(ctx, tenantID, userID, period)
	if err == nil || !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	record, err := performance.NewBonusRecord(tenantID, userID, period, eval.TotalScore, eval.Assignment)
	if err != nil {
		return err
	}
	if err := s.bonusRepo.Save(ctx, record); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil
		}
		return err
	}

	s.publishEvents(ctx, record)
	return nil
}

// aggregateStored re-reads the stored scores for a period and aggregates them.
// Used when a concurrent evaluation persisted its rows first.
func (s *ScoringService) aggregateStored(ctx context.Context, tenantID, userID uuid.UUID, period valueobject.Period) (*PerformanceResponse, error) {
	stored, err := s.scoreRepo.FindForUserPeriod(ctx, tenantID, userID, period)
	if err != nil {
		return nil, err
	}
	eval := s.evaluator.Aggregate(stored)
	response := ToPerformanceResponse(userID, period.String(), eval, true)
	return &response, nil
}

// publishEvents publishes domain events from the aggregate
func (s *ScoringService) publishEvents(ctx context.Context, record *performance.BonusRecord) {
	if s.eventBus == nil {
		return
	}

	for _, event := range record.GetDomainEvents() {
		_ = s.eventBus.Publish(ctx, event)
	}
	record.ClearDomainEvents()
}
