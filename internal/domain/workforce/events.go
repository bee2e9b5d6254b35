package workforce

import (
	"time"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/shared"
)

// Aggregate type constant for WorkTask
const AggregateTypeWorkTask = "WorkTask"

// Workforce domain event types
const (
	EventTypeWorkTaskCompleted = "WorkTaskCompleted"
	EventTypeWorkTaskRated     = "WorkTaskRated"
)

// WorkTaskCompletedEvent is published when a task is closed as completed
type WorkTaskCompletedEvent struct {
	shared.BaseDomainEvent
	TaskID      uuid.UUID `json:"task_id"`
	AssigneeID  uuid.UUID `json:"assignee_id"`
	DueDate     time.Time `json:"due_date"`
	CompletedAt time.Time `json:"completed_at"`
	OnTime      bool      `json:"on_time"`
}

// NewWorkTaskCompletedEvent creates a new WorkTaskCompletedEvent
func NewWorkTaskCompletedEvent(task *WorkTask) *WorkTaskCompletedEvent {
	completedAt := time.Time{}
	if task.CompletedAt != nil {
		completedAt = *task.CompletedAt
	}
	return &WorkTaskCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWorkTaskCompleted, AggregateTypeWorkTask, task.ID, task.TenantID),
		TaskID:          task.ID,
		AssigneeID:      task.AssigneeID,
		DueDate:         task.DueDate,
		CompletedAt:     completedAt,
		OnTime:          task.CompletedOnTime(),
	}
}

// WorkTaskRatedEvent is published when a completed task receives a review rating
type WorkTaskRatedEvent struct {
	shared.BaseDomainEvent
	TaskID     uuid.UUID `json:"task_id"`
	AssigneeID uuid.UUID `json:"assignee_id"`
	Rating     int       `json:"rating"`
	RatedBy    uuid.UUID `json:"rated_by"`
}

// NewWorkTaskRatedEvent creates a new WorkTaskRatedEvent
func NewWorkTaskRatedEvent(task *WorkTask) *WorkTaskRatedEvent {
	rating := 0
	if task.Rating != nil {
		rating = *task.Rating
	}
	ratedBy := uuid.Nil
	if task.RatedBy != nil {
		ratedBy = *task.RatedBy
	}
	return &WorkTaskRatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWorkTaskRated, AggregateTypeWorkTask, task.ID, task.TenantID),
		TaskID:          task.ID,
		AssigneeID:      task.AssigneeID,
		Rating:          rating,
		RatedBy:         ratedBy,
	}
}
