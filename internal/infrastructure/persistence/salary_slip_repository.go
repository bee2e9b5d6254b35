package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/payroll"
	"github.com/payops/backend/internal/domain/shared"
	"github.com/payops/backend/internal/domain/shared/valueobject"
	"github.com/payops/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormSalarySlipRepository implements SalarySlipRepository using GORM
type GormSalarySlipRepository struct {
	db *gorm.DB
}

// NewGormSalarySlipRepository creates a new GormSalarySlipRepository
func NewGormSalarySlipRepository(db *gorm.DB) *GormSalarySlipRepository {
	return &GormSalarySlipRepository{db: db}
}

// FindByID finds a salary slip by ID
func (r *GormSalarySlipRepository) FindByID(ctx context.Context, id uuid.UUID) (*payroll.SalarySlip, error) {
	var model models.SalarySlipModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a salary slip by ID for a specific tenant
func (r *GormSalarySlipRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*payroll.SalarySlip, error) {
	var model models.SalarySlipModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindForUserMonth finds the slip for a user and pay month
func (r *GormSalarySlipRepository) FindForUserMonth(ctx context.Context, tenantID, userID uuid.UUID, month valueobject.Period) (*payroll.SalarySlip, error) {
	var model models.SalarySlipModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ? AND month = ?", tenantID, userID, month).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindForUser finds all slips for a user with filtering, newest month first
func (r *GormSalarySlipRepository) FindForUser(ctx context.Context, tenantID, userID uuid.UUID, filter payroll.SlipFilter) ([]payroll.SalarySlip, error) {
	query := r.db.WithContext(ctx).
		Model(&models.SalarySlipModel{}).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID)
	query = r.applyFilter(query, filter)
	query = query.Order("month DESC")
	query = r.applyPagination(query, filter)

	var slipModels []models.SalarySlipModel
	if err := query.Find(&slipModels).Error; err != nil {
		return nil, err
	}
	return toDomainSlips(slipModels), nil
}

// FindAllForTenant finds all slips for a tenant with filtering
func (r *GormSalarySlipRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter payroll.SlipFilter) ([]payroll.SalarySlip, error) {
	query := r.db.WithContext(ctx).
		Model(&models.SalarySlipModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter)

	// Apply sorting with whitelist validation to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, SlipSortFields, "month")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortField + " " + sortOrder)
	query = r.applyPagination(query, filter)

	var slipModels []models.SalarySlipModel
	if err := query.Find(&slipModels).Error; err != nil {
		return nil, err
	}
	return toDomainSlips(slipModels), nil
}

// FindForTenantMonth finds every slip for one pay month, ordered by user
func (r *GormSalarySlipRepository) FindForTenantMonth(ctx context.Context, tenantID uuid.UUID, month valueobject.Period) ([]payroll.SalarySlip, error) {
	var slipModels []models.SalarySlipModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND month = ?", tenantID, month).
		Order("user_id ASC").
		Find(&slipModels).Error; err != nil {
		return nil, err
	}
	return toDomainSlips(slipModels), nil
}

// Save creates or updates a salary slip. Inserting a second slip for the
// same (user, month) surfaces shared.ErrAlreadyExists.
func (r *GormSalarySlipRepository) Save(ctx context.Context, slip *payroll.SalarySlip) error {
	model := models.SalarySlipModelFromDomain(slip)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// SaveWithLock saves with optimistic locking (version check).
// Returns shared.ErrConcurrencyConflict if the version has changed.
func (r *GormSalarySlipRepository) SaveWithLock(ctx context.Context, slip *payroll.SalarySlip) error {
	model := models.SalarySlipModelFromDomain(slip)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", slip.ID, slip.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// DeleteForTenant soft deletes a salary slip for a tenant
func (r *GormSalarySlipRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&models.SalarySlipModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountForTenant counts slips for a tenant with optional filters
func (r *GormSalarySlipRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter payroll.SlipFilter) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.SalarySlipModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts slips by lifecycle state for a tenant
func (r *GormSalarySlipRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID, status payroll.SlipStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SalarySlipModel{}).
		Where("tenant_id = ? AND status = ?", tenantID, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumDiscrepancyForMonth totals the absolute discrepancies recorded for a pay month
func (r *GormSalarySlipRepository) SumDiscrepancyForMonth(ctx context.Context, tenantID uuid.UUID, month valueobject.Period) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.SalarySlipModel{}).
		Select("COALESCE(SUM(ABS(discrepancy)), 0) AS total").
		Where("tenant_id = ? AND month = ? AND discrepancy IS NOT NULL", tenantID, month).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// applyFilter applies slip filter options to the query
func (r *GormSalarySlipRepository) applyFilter(query *gorm.DB, filter payroll.SlipFilter) *gorm.DB {
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Month != nil {
		query = query.Where("month = ?", *filter.Month)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.MinDiscrepancy != nil {
		query = query.Where("ABS(discrepancy) >= ?", *filter.MinDiscrepancy)
	}
	if filter.Unreconciled != nil {
		if *filter.Unreconciled {
			query = query.Where("employee_net IS NULL")
		} else {
			query = query.Where("employee_net IS NOT NULL")
		}
	}
	return query
}

// applyPagination applies page/size bounds to the query
func (r *GormSalarySlipRepository) applyPagination(query *gorm.DB, filter payroll.SlipFilter) *gorm.DB {
	offset := (filter.Page - 1) * filter.PageSize
	if offset < 0 {
		offset = 0
	}
	limit := filter.PageSize
	if limit <= 0 {
		limit = 20
	}
	return query.Offset(offset).Limit(limit)
}

// toDomainSlips converts persistence models to domain entities
func toDomainSlips(slipModels []models.SalarySlipModel) []payroll.SalarySlip {
	slips := make([]payroll.SalarySlip, len(slipModels))
	for i := range slipModels {
		slips[i] = *slipModels[i].ToDomain()
	}
	return slips
}

// Ensure GormSalarySlipRepository implements SalarySlipRepository
var _ payroll.SalarySlipRepository = (*GormSalarySlipRepository)(nil)
