package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/performance"
	"github.com/payops/backend/internal/domain/shared"
	"github.com/payops/backend/internal/domain/shared/valueobject"
	"github.com/payops/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormParameterScoreRepository implements ParameterScoreRepository using GORM
type GormParameterScoreRepository struct {
	db *gorm.DB
}

// NewGormParameterScoreRepository creates a new GormParameterScoreRepository
func NewGormParameterScoreRepository(db *gorm.DB) *GormParameterScoreRepository {
	return &GormParameterScoreRepository{db: db}
}

// FindForUserPeriod returns the stored scores for one user and period
func (r *GormParameterScoreRepository) FindForUserPeriod(ctx context.Context, tenantID, userID uuid.UUID, period valueobject.Period) ([]performance.ParameterScore, error) {
	var scoreModels []models.ParameterScoreModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ? AND period = ?", tenantID, userID, period).
		Order("parameter_code ASC").
		Find(&scoreModels).Error; err != nil {
		return nil, err
	}

	scores := make([]performance.ParameterScore, len(scoreModels))
	for i, model := range scoreModels {
		scores[i] = *model.ToDomain()
	}
	return scores, nil
}

// SaveAll persists a batch of freshly computed scores. The whole batch inserts
// in one transaction: a unique violation on any row rolls everything back and
// surfaces shared.ErrAlreadyExists, so the caller falls back to the rows the
// winning evaluation stored.
func (r *GormParameterScoreRepository) SaveAll(ctx context.Context, scores []performance.ParameterScore) error {
	if len(scores) == 0 {
		return nil
	}

	scoreModels := make([]*models.ParameterScoreModel, len(scores))
	for i := range scores {
		scoreModels[i] = models.ParameterScoreModelFromDomain(&scores[i])
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&scoreModels).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// CountByParameter counts scores that reference a registry parameter
func (r *GormParameterScoreRepository) CountByParameter(ctx context.Context, tenantID, parameterID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ParameterScoreModel{}).
		Where("tenant_id = ? AND parameter_id = ?", tenantID, parameterID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteForUserPeriod removes the stored scores for one user and period
func (r *GormParameterScoreRepository) DeleteForUserPeriod(ctx context.Context, tenantID, userID uuid.UUID, period valueobject.Period) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ? AND period = ?", tenantID, userID, period).
		Delete(&models.ParameterScoreModel{}).Error
}

// Ensure GormParameterScoreRepository implements ParameterScoreRepository
var _ performance.ParameterScoreRepository = (*GormParameterScoreRepository)(nil)
