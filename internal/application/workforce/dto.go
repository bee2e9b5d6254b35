package workforce

import (
	"time"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/workforce"
)

// RecordAttendanceRequest represents a request to record or amend one user's
// attendance for a calendar day
type RecordAttendanceRequest struct {
	UserID   uuid.UUID  `json:"user_id" binding:"required"`
	Date     time.Time  `json:"date" binding:"required"`
	Status   string     `json:"status" binding:"omitempty,oneof=PRESENT ABSENT ON_LEAVE HALF_DAY"`
	CheckIn  *time.Time `json:"check_in"`
	CheckOut *time.Time `json:"check_out"`
}

// ListAttendanceRequest represents a request to list attendance for a pay period
type ListAttendanceRequest struct {
	UserID *uuid.UUID `form:"user_id"`
	Period string     `form:"period" binding:"required,period"`
}

// AttendanceResponse represents one attendance record in API responses
type AttendanceResponse struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Date        time.Time  `json:"date"`
	CheckIn     *time.Time `json:"check_in,omitempty"`
	CheckOut    *time.Time `json:"check_out,omitempty"`
	Status      string     `json:"status"`
	OnTime      bool       `json:"on_time"`
	WorkedHours float64    `json:"worked_hours"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateTaskRequest represents a request to assign a work task
type CreateTaskRequest struct {
	AssigneeID  uuid.UUID `json:"assignee_id" binding:"required"`
	Title       string    `json:"title" binding:"required,min=1,max=200"`
	Description string    `json:"description" binding:"omitempty,max=2000"`
	DueDate     time.Time `json:"due_date" binding:"required"`
}

// CompleteTaskRequest represents a request to close a task as completed.
// CompletedAt defaults to the current time when omitted.
type CompleteTaskRequest struct {
	CompletedAt *time.Time `json:"completed_at"`
}

// RateTaskRequest represents a reviewer's quality rating for a completed task
type RateTaskRequest struct {
	Rating int `json:"rating" binding:"required,min=1,max=5"`
}

// ListTasksRequest represents a request to list work tasks
type ListTasksRequest struct {
	AssigneeID *uuid.UUID `form:"assignee_id"`
	Status     *string    `form:"status" binding:"omitempty,oneof=OPEN IN_PROGRESS COMPLETED CANCELLED"`
	Overdue    *bool      `form:"overdue"`
	Rated      *bool      `form:"rated"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// TaskResponse represents a work task in API responses
type TaskResponse struct {
	ID          uuid.UUID  `json:"id"`
	AssigneeID  uuid.UUID  `json:"assignee_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     time.Time  `json:"due_date"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Rating      *int       `json:"rating,omitempty"`
	RatedBy     *uuid.UUID `json:"rated_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Version     int        `json:"version"`
}

// ToAttendanceResponse converts an AttendanceRecord to AttendanceResponse
func ToAttendanceResponse(record *workforce.AttendanceRecord) AttendanceResponse {
	return AttendanceResponse{
		ID:          record.ID,
		UserID:      record.UserID,
		Date:        record.Date,
		CheckIn:     record.CheckIn,
		CheckOut:    record.CheckOut,
		Status:      record.Status.String(),
		OnTime:      record.OnTime,
		WorkedHours: record.WorkedHours(),
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}

// ToAttendanceResponses converts a slice of AttendanceRecords to responses
func ToAttendanceResponses(records []workforce.AttendanceRecord) []AttendanceResponse {
	responses := make([]AttendanceResponse, len(records))
	for i := range records {
		responses[i] = ToAttendanceResponse(&records[i])
	}
	return responses
}

// ToTaskResponse converts a WorkTask to TaskResponse
func ToTaskResponse(task *workforce.WorkTask) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		AssigneeID:  task.AssigneeID,
		Title:       task.Title,
		Description: task.Description,
		DueDate:     task.DueDate,
		Status:      task.Status.String(),
		CompletedAt: task.CompletedAt,
		Rating:      task.Rating,
		RatedBy:     task.RatedBy,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		Version:     task.Version,
	}
}

// ToTaskResponses converts a slice of WorkTasks to responses
func ToTaskResponses(tasks []workforce.WorkTask) []TaskResponse {
	responses := make([]TaskResponse, len(tasks))
	for i := range tasks {
		responses[i] = ToTaskResponse(&tasks[i])
	}
	return responses
}
