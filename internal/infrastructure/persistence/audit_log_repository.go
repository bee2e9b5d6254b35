package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/audit"
	"github.com/payops/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormAuditLogRepository implements audit.LogRepository using GORM.
// Audit rows are immutable: the repository only inserts and reads.
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository creates a new GormAuditLogRepository
func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Save persists an audit log entry. The unique index on event_id absorbs
// redelivered events: a duplicate surfaces as shared.ErrAlreadyExists.
func (r *GormAuditLogRepository) Save(ctx context.Context, entry *audit.Log) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindByID finds an audit log entry by ID
func (r *GormAuditLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*audit.Log, error) {
	var entry audit.Log
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// ExistsByEventID reports whether an entry for the event was already written
func (r *GormAuditLogRepository) ExistsByEventID(ctx context.Context, eventID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&audit.Log{}).
		Where("event_id = ?", eventID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAllForTenant finds audit log entries for a tenant matching the filter
func (r *GormAuditLogRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter audit.LogFilter) ([]audit.Log, error) {
	query := r.db.WithContext(ctx).
		Model(&audit.Log{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter)

	// Apply sorting with whitelist validation to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, AuditLogSortFields, "occurred_at")
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

	var entries []audit.Log
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindForAggregate finds all entries for one aggregate, oldest first
func (r *GormAuditLogRepository) FindForAggregate(ctx context.Context, tenantID, aggregateID uuid.UUID) ([]audit.Log, error) {
	var entries []audit.Log
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND aggregate_id = ?", tenantID, aggregateID).
		Order("occurred_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// CountForTenant counts audit log entries matching the filter
func (r *GormAuditLogRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter audit.LogFilter) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&audit.Log{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies audit filter options to the query
func (r *GormAuditLogRepository) applyFilter(query *gorm.DB, filter audit.LogFilter) *gorm.DB {
	if filter.EventType != nil {
		query = query.Where("event_type = ?", *filter.EventType)
	}
	if filter.AggregateType != nil {
		query = query.Where("aggregate_type = ?", *filter.AggregateType)
	}
	if filter.AggregateID != nil {
		query = query.Where("aggregate_id = ?", *filter.AggregateID)
	}
	if filter.ActorID != nil {
		query = query.Where("actor_id = ?", *filter.ActorID)
	}
	if filter.From != nil {
		query = query.Where("occurred_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("occurred_at <= ?", *filter.To)
	}
	return query
}

// Ensure GormAuditLogRepository implements LogRepository
var _ audit.LogRepository = (*GormAuditLogRepository)(nil)
