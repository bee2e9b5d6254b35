// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the payroll engine.
// It tracks slip lifecycle activity, bonus computation, scoring latency,
// and open discrepancies awaiting review.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	slipGeneratedTotal  *Counter
	slipFinalizedTotal  *Counter
	bonusComputedTotal  *Counter
	registerExportTotal *Counter

	// Gauge metrics (point-in-time values)
	openDiscrepancyCount *Gauge
	unfinalizedSlipCount *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data providers for periodic collection
	payrollProvider PayrollMetricsProvider
}

// PayrollMetricsProvider provides payroll data for periodic metrics collection.
// This interface allows the telemetry layer to query slip state without
// depending on the payroll domain directly.
type PayrollMetricsProvider interface {
	// GetOpenDiscrepancyCount returns the count of compared slips whose
	// discrepancy has not been resolved by finalization for a tenant
	GetOpenDiscrepancyCount(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// GetUnfinalizedSlipCount returns the count of slips not yet finalized for a tenant
	GetUnfinalizedSlipCount(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	PayrollProvider PayrollMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:           cfg.Meter,
		logger:          logger,
		stopChan:        make(chan struct{}),
		payrollProvider: cfg.PayrollProvider,
	}

	// Initialize counter metrics
	var err error

	// Slip lifecycle metrics
	bm.slipGeneratedTotal, err = NewCounter(
		cfg.Meter,
		"payops_slip_generated_total",
		"Total number of salary slips generated",
		"{slips}",
	)
	if err != nil {
		return nil, err
	}

	bm.slipFinalizedTotal, err = NewCounter(
		cfg.Meter,
		"payops_slip_finalized_total",
		"Total number of salary slips finalized",
		"{slips}",
	)
	if err != nil {
		return nil, err
	}

	// Scoring metrics
	bm.bonusComputedTotal, err = NewCounter(
		cfg.Meter,
		"payops_bonus_computed_total",
		"Total number of performance evaluations computed",
		"{evaluations}",
	)
	if err != nil {
		return nil, err
	}

	// Export metrics
	bm.registerExportTotal, err = NewCounter(
		cfg.Meter,
		"payops_register_export_total",
		"Total number of payroll register exports",
		"{exports}",
	)
	if err != nil {
		return nil, err
	}

	// Reconciliation gauge metrics
	bm.openDiscrepancyCount, err = NewGauge(
		cfg.Meter,
		"payops_slip_open_discrepancy_count",
		"Number of compared slips with an unresolved discrepancy",
		"{slips}",
	)
	if err != nil {
		return nil, err
	}

	bm.unfinalizedSlipCount, err = NewGauge(
		cfg.Meter,
		"payops_slip_unfinalized_count",
		"Number of salary slips not yet finalized",
		"{slips}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Slip Lifecycle Metrics
// =============================================================================

// RecordSlipGenerated records a slip generation event.
// This should be called from the application layer when a slip is generated.
func (bm *BusinessMetrics) RecordSlipGenerated(ctx context.Context, tenantID uuid.UUID, month string) {
	bm.slipGeneratedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrPeriod.String(month),
	)
}

// RecordSlipFinalized records a slip finalization event.
func (bm *BusinessMetrics) RecordSlipFinalized(ctx context.Context, tenantID uuid.UUID, month string) {
	bm.slipFinalizedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrPeriod.String(month),
	)
}

// =============================================================================
// Scoring Metrics
// =============================================================================

// RecordBonusComputed records one completed performance evaluation with the
// tier it landed on.
func (bm *BusinessMetrics) RecordBonusComputed(ctx context.Context, tenantID uuid.UUID, tierName string) {
	bm.bonusComputedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrTierName.String(tierName),
	)
}

// =============================================================================
// Export Metrics
// =============================================================================

// RecordRegisterExport records a payroll register export.
func (bm *BusinessMetrics) RecordRegisterExport(ctx context.Context, tenantID uuid.UUID, format string) {
	bm.registerExportTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrExportFormat.String(format),
	)
}

// =============================================================================
// Reconciliation Metrics
// =============================================================================

// RecordOpenDiscrepancyCount records the current count of unresolved discrepancies.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordOpenDiscrepancyCount(ctx context.Context, tenantID uuid.UUID, count int64) {
	bm.openDiscrepancyCount.Record(ctx, count,
		AttrTenantID.String(tenantID.String()),
	)
}

// RecordUnfinalizedSlipCount records the current count of slips not yet finalized.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordUnfinalizedSlipCount(ctx context.Context, tenantID uuid.UUID, count int64) {
	bm.unfinalizedSlipCount.Record(ctx, count,
		AttrTenantID.String(tenantID.String()),
	)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// TenantProvider provides tenant IDs for periodic metrics collection.
type TenantProvider interface {
	GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects reconciliation metrics every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, tenantProvider, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectReconciliationMetrics(ctx, tenantProvider)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectReconciliationMetrics(ctx, tenantProvider)
		}
	}
}

// collectReconciliationMetrics collects reconciliation gauge metrics for all tenants.
func (bm *BusinessMetrics) collectReconciliationMetrics(ctx context.Context, tenantProvider TenantProvider) {
	if bm.payrollProvider == nil {
		bm.logger.Debug("No payroll provider configured, skipping reconciliation metrics collection")
		return
	}

	tenantIDs, err := tenantProvider.GetActiveTenantIDs(ctx)
	if err != nil {
		bm.logger.Error("Failed to get tenant IDs for metrics collection", zap.Error(err))
		return
	}

	for _, tenantID := range tenantIDs {
		bm.collectTenantReconciliationMetrics(ctx, tenantID)
	}
}

// collectTenantReconciliationMetrics collects reconciliation metrics for a single tenant.
func (bm *BusinessMetrics) collectTenantReconciliationMetrics(ctx context.Context, tenantID uuid.UUID) {
	openCount, err := bm.payrollProvider.GetOpenDiscrepancyCount(ctx, tenantID)
	if err != nil {
		bm.logger.Warn("Failed to get open discrepancy count for tenant",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	} else {
		bm.RecordOpenDiscrepancyCount(ctx, tenantID, openCount)
	}

	unfinalizedCount, err := bm.payrollProvider.GetUnfinalizedSlipCount(ctx, tenantID)
	if err != nil {
		bm.logger.Warn("Failed to get unfinalized slip count for tenant",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	} else {
		bm.RecordUnfinalizedSlipCount(ctx, tenantID, unfinalizedCount)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
