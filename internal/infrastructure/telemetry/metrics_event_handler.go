package telemetry

import (
	"context"

	"github.com/payops/backend/internal/domain/payroll"
	"github.com/payops/backend/internal/domain/performance"
	"github.com/payops/backend/internal/domain/shared"
)

// MetricsEventHandler feeds the business metric counters from domain events,
// so application services stay free of telemetry wiring.
type MetricsEventHandler struct {
	metrics *BusinessMetrics
}

// NewMetricsEventHandler creates a new MetricsEventHandler.
func NewMetricsEventHandler(metrics *BusinessMetrics) *MetricsEventHandler {
	return &MetricsEventHandler{metrics: metrics}
}

// EventTypes returns the event types that carry a counter.
func (h *MetricsEventHandler) EventTypes() []string {
	return []string{
		payroll.EventTypeSalarySlipGenerated,
		payroll.EventTypeSalarySlipFinalized,
		payroll.EventTypeRegisterExported,
		performance.EventTypeBonusComputed,
	}
}

// Handle increments the counter matching the event. Unknown events are
// ignored so subscription changes cannot break event delivery.
func (h *MetricsEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *payroll.SalarySlipGeneratedEvent:
		h.metrics.RecordSlipGenerated(ctx, e.TenantID(), e.Month.String())
	case *payroll.SalarySlipFinalizedEvent:
		h.metrics.RecordSlipFinalized(ctx, e.TenantID(), e.Month.String())
	case *payroll.RegisterExportedEvent:
		h.metrics.RecordRegisterExport(ctx, e.TenantID(), e.Format)
	case *performance.BonusComputedEvent:
		h.metrics.RecordBonusComputed(ctx, e.TenantID(), e.Tier)
	}
	return nil
}
