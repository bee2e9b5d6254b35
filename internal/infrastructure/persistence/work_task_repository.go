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

// GormWorkTaskRepository implements WorkTaskRepository using GORM
type GormWorkTaskRepository struct {
	db *gorm.DB
}

// NewGormWorkTaskRepository creates a new GormWorkTaskRepository
func NewGormWorkTaskRepository(db *gorm.DB) *GormWorkTaskRepository {
	return &GormWorkTaskRepository{db: db}
}

// FindByID finds a work task by ID
func (r *GormWorkTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*workforce.WorkTask, error) {
	var model models.WorkTaskModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a work task by ID for a specific tenant
func (r *GormWorkTaskRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*workforce.WorkTask, error) {
	var model models.WorkTaskModel
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

// FindAllForTenant finds all tasks for a tenant with filtering
func (r *GormWorkTaskRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter workforce.TaskFilter) ([]workforce.WorkTask, error) {
	query := r.db.WithContext(ctx).
		Model(&models.WorkTaskModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter)

	// Apply sorting with whitelist validation to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, TaskSortFields, "due_date")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortField + " " + sortOrder)

	// Apply pagination
	offset := (filter.Page - 1) * filter.PageSize
	if offset < 0 {
		offset = 0
	}
	limit := filter.PageSize
	if limit <= 0 {
		limit = 20
	}
	query = query.Offset(offset).Limit(limit)

	var taskModels []models.WorkTaskModel
	if err := query.Find(&taskModels).Error; err != nil {
		return nil, err
	}

	tasks := make([]workforce.WorkTask, len(taskModels))
	for i, model := range taskModels {
		tasks[i] = *model.ToDomain()
	}
	return tasks, nil
}

// FindDueInPeriod finds a user's non-cancelled tasks due within a pay period
func (r *GormWorkTaskRepository) FindDueInPeriod(ctx context.Context, tenantID, userID uuid.UUID, period valueobject.Period) ([]workforce.WorkTask, error) {
	start := period.Start(time.UTC)
	end := period.End(time.UTC)

	var taskModels []models.WorkTaskModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND assignee_id = ? AND due_date >= ? AND due_date < ? AND status <> ?",
			tenantID, userID, start, end, workforce.TaskStatusCancelled).
		Order("due_date ASC").
		Find(&taskModels).Error; err != nil {
		return nil, err
	}

	tasks := make([]workforce.WorkTask, len(taskModels))
	for i, model := range taskModels {
		tasks[i] = *model.ToDomain()
	}
	return tasks, nil
}

// Save creates or updates a work task
func (r *GormWorkTaskRepository) Save(ctx context.Context, task *workforce.WorkTask) error {
	model := models.WorkTaskModelFromDomain(task)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking (version check).
// Returns shared.ErrConcurrencyConflict if the version has changed.
func (r *GormWorkTaskRepository) SaveWithLock(ctx context.Context, task *workforce.WorkTask) error {
	model := models.WorkTaskModelFromDomain(task)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", task.ID, task.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// DeleteForTenant soft deletes a work task for a tenant
func (r *GormWorkTaskRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&models.WorkTaskModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountForTenant counts tasks for a tenant with optional filters
func (r *GormWorkTaskRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter workforce.TaskFilter) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.WorkTaskModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies task filter options to the query
func (r *GormWorkTaskRepository) applyFilter(query *gorm.DB, filter workforce.TaskFilter) *gorm.DB {
	if filter.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *filter.AssigneeID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("due_date <= ?", *filter.DueTo)
	}
	if filter.Overdue != nil && *filter.Overdue {
		query = query.Where("due_date < ? AND status IN ?",
			time.Now(), []workforce.TaskStatus{workforce.TaskStatusOpen, workforce.TaskStatusInProgress})
	}
	if filter.Rated != nil {
		if *filter.Rated {
			query = query.Where("rating IS NOT NULL")
		} else {
			query = query.Where("rating IS NULL")
		}
	}
	if filter.Search != "" {
		keyword := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", keyword, keyword)
	}
	return query
}

// Ensure GormWorkTaskRepository implements WorkTaskRepository
var _ workforce.WorkTaskRepository = (*GormWorkTaskRepository)(nil)
