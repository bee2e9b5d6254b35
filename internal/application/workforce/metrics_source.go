package workforce

import (
	"context"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/shared/valueobject"
	"github.com/payops/backend/internal/domain/workforce"
)

// MetricsSource derives raw scoring values from a period's attendance records
// and work tasks. It satisfies the scoring engine's metrics contract: values
// are keyed by metric code, and deployments with external performance feeds
// plug in their own implementation instead.
type MetricsSource struct {
	attendanceRepo workforce.AttendanceRepository
	taskRepo       workforce.WorkTaskRepository
}

// NewMetricsSource creates a workforce-backed metrics source
func NewMetricsSource(attendanceRepo workforce.AttendanceRepository, taskRepo workforce.WorkTaskRepository) *MetricsSource {
	return &MetricsSource{
		attendanceRepo: attendanceRepo,
		taskRepo:       taskRepo,
	}
}

// RawValues tallies one user's attendance and tasks for the period and
// derives the punctuality, completion and accuracy metrics on a 0-100 scale
func (s *MetricsSource) RawValues(ctx context.Context, tenantID, userID uuid.UUID, period valueobject.Period) (map[string]float64, error) {
	records, err := s.attendanceRepo.FindForUserPeriod(ctx, tenantID, userID, period)
	if err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.FindDueInPeriod(ctx, tenantID, userID, period)
	if err != nil {
		return nil, err
	}

	inputs := workforce.CollectMetricInputs(records, tasks)
	return inputs.RawValues(), nil
}
