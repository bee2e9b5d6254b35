package workforce

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/shared"
	"github.com/payops/backend/internal/domain/shared/valueobject"
)

// AttendanceRepository defines the interface for attendance persistence.
// Records are unique per (tenant, user, date).
type AttendanceRepository interface {
	// FindByID finds an attendance record by ID
	FindByID(ctx context.Context, id uuid.UUID) (*AttendanceRecord, error)

	// FindForUserDate finds the record for a user and calendar day.
	// Returns shared.ErrNotFound when no record exists.
	FindForUserDate(ctx context.Context, tenantID, userID uuid.UUID, date time.Time) (*AttendanceRecord, error)

	// FindForUserPeriod finds all records for a user within a pay period,
	// ordered by date
	FindForUserPeriod(ctx context.Context, tenantID, userID uuid.UUID, period valueobject.Period) ([]AttendanceRecord, error)

	// Save creates or updates an attendance record. Inserting a second record
	// for the same (user, date) surfaces shared.ErrAlreadyExists.
	Save(ctx context.Context, record *AttendanceRecord) error

	// CountByStatus counts a user's records by status within a period
	CountByStatus(ctx context.Context, tenantID, userID uuid.UUID, period valueobject.Period, status AttendanceStatus) (int64, error)
}

// TaskFilter defines filtering options for work task queries
type TaskFilter struct {
	shared.Filter
	AssigneeID *uuid.UUID  // Filter by assignee
	Status     *TaskStatus // Filter by lifecycle state
	DueFrom    *time.Time  // Filter by due date range start
	DueTo      *time.Time  // Filter by due date range end
	Overdue    *bool       // Filter only overdue open tasks
	Rated      *bool       // Filter by presence of a review rating
}

// WorkTaskRepository defines the interface for work task persistence
type WorkTaskRepository interface {
	// FindByID finds a work task by ID
	FindByID(ctx context.Context, id uuid.UUID) (*WorkTask, error)

	// FindByIDForTenant finds a work task by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*WorkTask, error)

	// FindAllForTenant finds all tasks for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter TaskFilter) ([]WorkTask, error)

	// FindDueInPeriod finds a user's non-cancelled tasks due within a pay period
	FindDueInPeriod(ctx context.Context, tenantID, userID uuid.UUID, period valueobject.Period) ([]WorkTask, error)

	// Save creates or updates a work task
	Save(ctx context.Context, task *WorkTask) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, task *WorkTask) error

	// DeleteForTenant soft deletes a work task for a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// CountForTenant counts tasks for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter TaskFilter) (int64, error)
}
