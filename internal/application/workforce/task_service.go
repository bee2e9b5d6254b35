package workforce

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/identity"
	"github.com/payops/backend/internal/domain/shared"
	"github.com/payops/backend/internal/domain/workforce"
)

// TaskService handles work task assignment and lifecycle. HR and
// administrators assign, cancel and rate tasks; assignees may start and
// complete their own.
type TaskService struct {
	taskRepo workforce.WorkTaskRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo workforce.WorkTaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

// Create assigns a new task
func (s *TaskService) Create(ctx context.Context, tenantID uuid.UUID, actor identity.Actor, req CreateTaskRequest) (*TaskResponse, error) {
	if !actor.CanManageWorkforce() {
		return nil, shared.NewDomainError("FORBIDDEN", "Only HR or administrators may assign tasks")
	}

	task, err := workforce.NewWorkTask(tenantID, req.AssigneeID, req.Title, req.Description, req.DueDate)
	if err != nil {
		return nil, err
	}

	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}

	response := ToTaskResponse(task)
	return &response, nil
}

// Start moves a task to in-progress. Only the assignee works a task.
func (s *TaskService) Start(ctx context.Context, tenantID uuid.UUID, actor identity.Actor, taskID uuid.UUID) (*TaskResponse, error) {
	task, err := s.taskRepo.FindByIDForTenant(ctx, tenantID, taskID)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(task.AssigneeID) && !actor.CanManageWorkforce() {
		return nil, shared.NewDomainError("FORBIDDEN", "You may only work your own tasks")
	}

	if err := task.Start(); err != nil {
		return nil, err
	}
	if err := s.taskRepo.SaveWithLock(ctx, task); err != nil {
		return nil, err
	}

	response := ToTaskResponse(task)
	return &response, nil
}

// Complete closes a task as done. The completion timestamp against the due
// date is what the completion metric later measures; it defaults to now but
// HR may backfill it.
func (s *TaskService) Complete(ctx context.Context, tenantID uuid.UUID, actor identity.Actor, taskID uuid.UUID, req CompleteTaskRequest) (*TaskResponse, error) {
	task, err := s.taskRepo.FindByIDForTenant(ctx, tenantID, taskID)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(task.AssigneeID) && !actor.CanManageWorkforce() {
		return nil, shared.NewDomainError("FORBIDDEN", "You may only complete your own tasks")
	}

	completedAt := time.Now()
	if req.CompletedAt != nil {
		if !actor.CanManageWorkforce() {
			return nil, shared.NewDomainError("FORBIDDEN", "Only HR or administrators may backfill completion times")
		}
		completedAt = *req.CompletedAt
	}

	if err := task.Complete(completedAt); err != nil {
		return nil, err
	}
	if err := s.taskRepo.SaveWithLock(ctx, task); err != nil {
		return nil, err
	}

	response := ToTaskResponse(task)
	return &response, nil
}

// Rate records a reviewer's quality rating on a completed task. Assignees do
// not rate their own work.
func (s *TaskService) Rate(ctx context.Context, tenantID uuid.UUID, actor identity.Actor, taskID uuid.UUID, req RateTaskRequest) (*TaskResponse, error) {
	if !actor.CanManageWorkforce() {
		return nil, shared.NewDomainError("FORBIDDEN", "Only HR or administrators may rate tasks")
	}

	task, err := s.taskRepo.FindByIDForTenant(ctx, tenantID, taskID)
	if err != nil {
		return nil, err
	}
	if actor.Owns(task.AssigneeID) {
		return nil, shared.NewDomainError("FORBIDDEN", "Assignees may not rate their own tasks")
	}

	if err := task.Rate(req.Rating, actor.UserID); err != nil {
		return nil, err
	}
	if err := s.taskRepo.SaveWithLock(ctx, task); err != nil {
		return nil, err
	}

	response := ToTaskResponse(task)
	return &response, nil
}

// Cancel withdraws a task so it never counts toward metrics
func (s *TaskService) Cancel(ctx context.Context, tenantID uuid.UUID, actor identity.Actor, taskID uuid.UUID) (*TaskResponse, error) {
	if !actor.CanManageWorkforce() {
		return nil, shared.NewDomainError("FORBIDDEN", "Only HR or administrators may cancel tasks")
	}

	task, err := s.taskRepo.FindByIDForTenant(ctx, tenantID, taskID)
	if err != nil {
		return nil, err
	}

	if err := task.Cancel(); err != nil {
		return nil, err
	}
	if err := s.taskRepo.SaveWithLock(ctx, task); err != nil {
		return nil, err
	}

	response := ToTaskResponse(task)
	return &response, nil
}

// List returns tasks matching the filter. Employees are always scoped to
// their own tasks.
func (s *TaskService) List(ctx context.Context, tenantID uuid.UUID, actor identity.Actor, req ListTasksRequest) (*shared.Paginated[TaskResponse], error) {
	filter := workforce.TaskFilter{Filter: shared.DefaultFilter()}
	filter.OrderBy = "due_date"
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	filter.AssigneeID = req.AssigneeID
	if !actor.CanManageWorkforce() {
		scoped := actor.UserID
		filter.AssigneeID = &scoped
	}
	if req.Status != nil {
		status := workforce.TaskStatus(*req.Status)
		filter.Status = &status
	}
	filter.Overdue = req.Overdue
	filter.Rated = req.Rated

	tasks, err := s.taskRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.taskRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(ToTaskResponses(tasks), total, filter.Page, filter.PageSize)
	return &page, nil
}
