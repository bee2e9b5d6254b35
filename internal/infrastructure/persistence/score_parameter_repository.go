package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/performance"
	"github.com/payops/backend/internal/domain/shared"
	"github.com/payops/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormScoreParameterRepository implements ScoreParameterRepository using GORM
type GormScoreParameterRepository struct {
	db *gorm.DB
}

// NewGormScoreParameterRepository creates a new GormScoreParameterRepository
func NewGormScoreParameterRepository(db *gorm.DB) *GormScoreParameterRepository {
	return &GormScoreParameterRepository{db: db}
}

// FindByIDForTenant finds a parameter by ID within a tenant
func (r *GormScoreParameterRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*performance.ScoreParameter, error) {
	var model models.ScoreParameterModel
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

// FindByCodeForTenant finds a parameter by its unique code within a tenant
func (r *GormScoreParameterRepository) FindByCodeForTenant(ctx context.Context, tenantID uuid.UUID, code string) (*performance.ScoreParameter, error) {
	var model models.ScoreParameterModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND LOWER(code) = ?", tenantID, strings.ToLower(code)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists parameters for a tenant, ordered by code
func (r *GormScoreParameterRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]performance.ScoreParameter, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID)
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var paramModels []models.ScoreParameterModel
	if err := query.Order("code ASC").Find(&paramModels).Error; err != nil {
		return nil, err
	}

	params := make([]performance.ScoreParameter, len(paramModels))
	for i, model := range paramModels {
		params[i] = *model.ToDomain()
	}
	return params, nil
}

// Save creates or updates a parameter
func (r *GormScoreParameterRepository) Save(ctx context.Context, param *performance.ScoreParameter) error {
	model := models.ScoreParameterModelFromDomain(param)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// DeleteForTenant removes a parameter that no scores reference yet
func (r *GormScoreParameterRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&models.ScoreParameterModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountForTenant counts registered parameters
func (r *GormScoreParameterRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ScoreParameterModel{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormScoreParameterRepository implements ScoreParameterRepository
var _ performance.ScoreParameterRepository = (*GormScoreParameterRepository)(nil)
