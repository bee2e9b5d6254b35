package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/performance"
	"github.com/payops/backend/internal/domain/shared"
	"github.com/payops/backend/internal/domain/shared/valueobject"
	"github.com/payops/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBonusRecordRepository implements BonusRecordRepository using GORM
type GormBonusRecordRepository struct {
	db *gorm.DB
}

// NewGormBonusRecordRepository creates a new GormBonusRecordRepository
func NewGormBonusRecordRepository(db *gorm.DB) *GormBonusRecordRepository {
	return &GormBonusRecordRepository{db: db}
}

// FindByIDForTenant finds a bonus record by ID within a tenant
func (r *GormBonusRecordRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*performance.BonusRecord, error) {
	var model models.BonusRecordModel
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

// FindForUserPeriod finds the record for one user and period
func (r *GormBonusRecordRepository) FindForUserPeriod(ctx context.Context, tenantID, userID uuid.UUID, period valueobject.Period) (*performance.BonusRecord, error) {
	var model models.BonusRecordModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ? AND period = ?", tenantID, userID, period).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindForUserPeriods returns records matching any of the period keys,
// ordered ascending by period
func (r *GormBonusRecordRepository) FindForUserPeriods(ctx context.Context, tenantID, userID uuid.UUID, periods []valueobject.Period) ([]performance.BonusRecord, error) {
	if len(periods) == 0 {
		return []performance.BonusRecord{}, nil
	}

	keys := make([]string, len(periods))
	for i, p := range periods {
		keys[i] = p.String()
	}

	var recordModels []models.BonusRecordModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ? AND period IN ?", tenantID, userID, keys).
		Order("period ASC").
		Find(&recordModels).Error; err != nil {
		return nil, err
	}

	records := make([]performance.BonusRecord, len(recordModels))
	for i, model := range recordModels {
		records[i] = *model.ToDomain()
	}
	return records, nil
}

// Save creates or updates a bonus record
func (r *GormBonusRecordRepository) Save(ctx context.Context, record *performance.BonusRecord) error {
	model := models.BonusRecordModelFromDomain(record)
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
func (r *GormBonusRecordRepository) SaveWithLock(ctx context.Context, record *performance.BonusRecord) error {
	model := models.BonusRecordModelFromDomain(record)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", record.ID, record.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Ensure GormBonusRecordRepository implements BonusRecordRepository
var _ performance.BonusRecordRepository = (*GormBonusRecordRepository)(nil)
