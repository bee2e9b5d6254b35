package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/payroll"
	"github.com/payops/backend/internal/domain/shared"
	"github.com/payops/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSalaryStructureRepository implements SalaryStructureRepository using GORM
type GormSalaryStructureRepository struct {
	db *gorm.DB
}

// NewGormSalaryStructureRepository creates a new GormSalaryStructureRepository
func NewGormSalaryStructureRepository(db *gorm.DB) *GormSalaryStructureRepository {
	return &GormSalaryStructureRepository{db: db}
}

// FindByID finds a salary structure by ID
func (r *GormSalaryStructureRepository) FindByID(ctx context.Context, id uuid.UUID) (*payroll.SalaryStructure, error) {
	var model models.SalaryStructureModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a salary structure by ID for a specific tenant
func (r *GormSalaryStructureRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*payroll.SalaryStructure, error) {
	var model models.SalaryStructureModel
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

// FindActiveForUser finds the active salary structure for a user.
// When history contains several active rows the newest effective date wins.
func (r *GormSalaryStructureRepository) FindActiveForUser(ctx context.Context, tenantID, userID uuid.UUID) (*payroll.SalaryStructure, error) {
	var model models.SalaryStructureModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ? AND active = ?", tenantID, userID, true).
		Order("effective_from DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForUser finds all structures for a user, newest effective date first
func (r *GormSalaryStructureRepository) FindAllForUser(ctx context.Context, tenantID, userID uuid.UUID) ([]payroll.SalaryStructure, error) {
	var structureModels []models.SalaryStructureModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Order("effective_from DESC").
		Find(&structureModels).Error; err != nil {
		return nil, err
	}

	structures := make([]payroll.SalaryStructure, len(structureModels))
	for i, model := range structureModels {
		structures[i] = *model.ToDomain()
	}
	return structures, nil
}

// Save creates or updates a salary structure
func (r *GormSalaryStructureRepository) Save(ctx context.Context, structure *payroll.SalaryStructure) error {
	model := models.SalaryStructureModelFromDomain(structure)
	return r.db.WithContext(ctx).Save(model).Error
}

// DeleteForTenant soft deletes a salary structure for a tenant
func (r *GormSalaryStructureRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&models.SalaryStructureModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountForTenant counts salary structures for a tenant
func (r *GormSalaryStructureRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, activeOnly bool) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.SalaryStructureModel{}).
		Where("tenant_id = ?", tenantID)
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormSalaryStructureRepository implements SalaryStructureRepository
var _ payroll.SalaryStructureRepository = (*GormSalaryStructureRepository)(nil)
