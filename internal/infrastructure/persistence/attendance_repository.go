package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/shared"
	"github.com/payops/backend/internal/domain/shared/valueobject"
	"github.com/payops/backend/internal/domain/workforce"
	"github.com/payops/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAttendanceRepository implements AttendanceRepository using GORM
type GormAttendanceRepository struct {
	db *gorm.DB
}

// NewGormAttendanceRepository creates a new GormAttendanceRepository
func NewGormAttendanceRepository(db *gorm.DB) *GormAttendanceRepository {
	return &GormAttendanceRepository{db: db}
}

// FindByID finds an attendance record by ID
func (r *GormAttendanceRepository) FindByID(ctx context.Context, id uuid.UUID) (*workforce.AttendanceRecord, error) {
	var model models.AttendanceRecordModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindForUserDate finds the record for a user and calendar day
func (r *GormAttendanceRepository) FindForUserDate(ctx context.Context, tenantID, userID uuid.UUID, date time.Time) (*workforce.AttendanceRecord, error) {
	var model models.AttendanceRecordModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ? AND date = ?", tenantID, userID, date.Format("2006-01-02")).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindForUserPeriod finds all records for a user within a pay period, ordered by date
func (r *GormAttendanceRepository) FindForUserPeriod(ctx context.Context, tenantID, userID uuid.UUID, period valueobject.Period) ([]workforce.AttendanceRecord, error) {
	start := period.Start(time.UTC).Format("2006-01-02")
	end := period.End(time.UTC).Format("2006-01-02")

	var recordModels []models.AttendanceRecordModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ? AND date >= ? AND date < ?", tenantID, userID, start, end).
		Order("date ASC").
		Find(&recordModels).Error; err != nil {
		return nil, err
	}

	records := make([]workforce.AttendanceRecord, len(recordModels))
	for i, model := range recordModels {
		records[i] = *model.ToDomain()
	}
	return records, nil
}

// Save creates or updates an attendance record. Inserting a second record
// for the same (user, date) surfaces shared.ErrAlreadyExists.
func (r *GormAttendanceRepository) Save(ctx context.Context, record *workforce.AttendanceRecord) error {
	model := models.AttendanceRecordModelFromDomain(record)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// CountByStatus counts a user's records by status within a period
func (r *GormAttendanceRepository) CountByStatus(ctx context.Context, tenantID, userID uuid.UUID, period valueobject.Period, status workforce.AttendanceStatus) (int64, error) {
	start := period.Start(time.UTC).Format("2006-01-02")
	end := period.End(time.UTC).Format("2006-01-02")

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AttendanceRecordModel{}).
		Where("tenant_id = ? AND user_id = ? AND date >= ? AND date < ? AND status = ?",
			tenantID, userID, start, end, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormAttendanceRepository implements AttendanceRepository
var _ workforce.AttendanceRepository = (*GormAttendanceRepository)(nil)
