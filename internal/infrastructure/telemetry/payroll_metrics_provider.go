// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPayrollMetricsProvider implements PayrollMetricsProvider using GORM.
// It queries the salary_slips table directly for aggregated metrics.
type GormPayrollMetricsProvider struct {
	db *gorm.DB
}

// NewGormPayrollMetricsProvider creates a new GormPayrollMetricsProvider.
func NewGormPayrollMetricsProvider(db *gorm.DB) *GormPayrollMetricsProvider {
	return &GormPayrollMetricsProvider{db: db}
}

// GetOpenDiscrepancyCount returns the count of compared slips whose
// discrepancy is non-zero and not yet resolved by finalization.
func (p *GormPayrollMetricsProvider) GetOpenDiscrepancyCount(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("salary_slips").
		Where("tenant_id = ? AND deleted_at IS NULL", tenantID).
		Where("status = ? AND discrepancy > 0", "COMPARED").
		Count(&count).Error

	return count, err
}

// GetUnfinalizedSlipCount returns the count of slips not yet finalized for a tenant.
func (p *GormPayrollMetricsProvider) GetUnfinalizedSlipCount(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("salary_slips").
		Where("tenant_id = ? AND deleted_at IS NULL", tenantID).
		Where("status <> ?", "FINALIZED").
		Count(&count).Error

	return count, err
}

// GormTenantProvider implements TenantProvider using GORM.
type GormTenantProvider struct {
	db *gorm.DB
}

// NewGormTenantProvider creates a new GormTenantProvider.
func NewGormTenantProvider(db *gorm.DB) *GormTenantProvider {
	return &GormTenantProvider{db: db}
}

// GetActiveTenantIDs returns all active company IDs.
func (p *GormTenantProvider) GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Table("companies").
		Select("id").
		Where("deleted_at IS NULL AND status = ?", "active").
		Find(&ids).Error

	return ids, err
}
