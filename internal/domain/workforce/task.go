package workforce

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/shared"
)

// TaskStatus represents the lifecycle state of a work task
type TaskStatus string

const (
	TaskStatusOpen       TaskStatus = "OPEN"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusCancelled  TaskStatus = "CANCELLED"
)

// IsValid checks if the status is a valid TaskStatus
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusOpen, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of TaskStatus
func (s TaskStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the task can no longer change state
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusCancelled
}

// Rating bounds for completed task reviews
const (
	MinTaskRating = 1
	MaxTaskRating = 5
)

// WorkTask is a unit of assigned work with a due date. Completion timing
// feeds the task completion metric; reviewer ratings feed task accuracy.
type WorkTask struct {
	shared.TenantAggregateRoot
	AssigneeID  uuid.UUID  `json:"assignee_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     time.Time  `json:"due_date"`
	Status      TaskStatus `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Rating      *int       `json:"rating,omitempty"`
	RatedBy     *uuid.UUID `json:"rated_by,omitempty"`
}

// NewWorkTask creates an open task assigned to a user
func NewWorkTask(tenantID, assigneeID uuid.UUID, title, description string, dueDate time.Time) (*WorkTask, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if assigneeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ASSIGNEE", "Assignee ID cannot be empty")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Task title cannot be empty")
	}
	if len(title) > 200 {
		return nil, shared.NewDomainError("INVALID_TITLE", "Task title cannot exceed 200 characters")
	}
	if dueDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Task due date is required")
	}

	return &WorkTask{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		AssigneeID:          assigneeID,
		Title:               title,
		Description:         strings.TrimSpace(description),
		DueDate:             dueDate,
		Status:              TaskStatusOpen,
	}, nil
}

// Start moves the task to IN_PROGRESS
func (t *WorkTask) Start() error {
	if t.Status != TaskStatusOpen {
		return shared.NewDomainError("INVALID_STATE", "Only open tasks can be started")
	}

	t.Status = TaskStatusInProgress
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// Complete closes the task at the given instant
func (t *WorkTask) Complete(at time.Time) error {
	if t.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Task is already closed")
	}
	if at.IsZero() {
		at = time.Now()
	}

	t.Status = TaskStatusCompleted
	t.CompletedAt = &at
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewWorkTaskCompletedEvent(t))

	return nil
}

// Cancel abandons the task without affecting metrics
func (t *WorkTask) Cancel() error {
	if t.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Task is already closed")
	}

	t.Status = TaskStatusCancelled
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// Rate records a reviewer's quality rating for a completed task
func (t *WorkTask) Rate(rating int, ratedBy uuid.UUID) error {
	if t.Status != TaskStatusCompleted {
		return shared.NewDomainError("INVALID_STATE", "Only completed tasks can be rated")
	}
	if rating < MinTaskRating || rating > MaxTaskRating {
		return shared.NewDomainError("INVALID_RATING", "Rating must be between 1 and 5")
	}
	if ratedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_RATER", "Rater ID cannot be empty")
	}

	t.Rating = &rating
	t.RatedBy = &ratedBy
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewWorkTaskRatedEvent(t))

	return nil
}

// CompletedOnTime reports whether the task was closed by its due date
func (t *WorkTask) CompletedOnTime() bool {
	return t.CompletedAt != nil && !t.CompletedAt.After(t.DueDate)
}

// IsOverdue reports whether an open task has passed its due date
func (t *WorkTask) IsOverdue(now time.Time) bool {
	return !t.Status.IsTerminal() && now.After(t.DueDate)
}
