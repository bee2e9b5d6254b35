package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/payops/backend/internal/application/workforce"
	"github.com/payops/backend/internal/interfaces/http/middleware"
)

// TaskHandler handles work task HTTP requests
type TaskHandler struct {
	BaseHandler
	taskService *workforce.TaskService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *workforce.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

func (h *TaskHandler) taskID(c *gin.Context) (uuid.UUID, bool) {
	return h.pathUUID(c, "id", "task ID")
}

// Create godoc
// @ID           createTask
// @Summary      Assign a work task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        request body workforce.CreateTaskRequest true "Task creation request"
// @Success      201 {object} APIResponse[workforce.TaskResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req workforce.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), tenantID, actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, task)
}

// Start godoc
// @ID           startTask
// @Summary      Start a task
// @Tags         tasks
// @Produce      json
// @Param        id path string true "Task ID"
// @Success      200 {object} APIResponse[workforce.TaskResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tasks/{id}/start [post]
func (h *TaskHandler) Start(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	taskID, ok := h.taskID(c)
	if !ok {
		return
	}

	task, err := h.taskService.Start(c.Request.Context(), tenantID, actor, taskID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, task)
}

// Complete godoc
// @ID           completeTask
// @Summary      Complete a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id path string true "Task ID"
// @Param        request body workforce.CompleteTaskRequest false "Completion time override"
// @Success      200 {object} APIResponse[workforce.TaskResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tasks/{id}/complete [post]
func (h *TaskHandler) Complete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	taskID, ok := h.taskID(c)
	if !ok {
		return
	}

	var req workforce.CompleteTaskRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.HandleValidationError(c, err)
			return
		}
	}

	task, err := h.taskService.Complete(c.Request.Context(), tenantID, actor, taskID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, task)
}

// Rate godoc
// @ID           rateTask
// @Summary      Rate a completed task
// @Description  Record a reviewer's 1-5 quality rating for a completed task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id path string true "Task ID"
// @Param        request body workforce.RateTaskRequest true "Rating request"
// @Success      200 {object} APIResponse[workforce.TaskResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tasks/{id}/rate [post]
func (h *TaskHandler) Rate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	taskID, ok := h.taskID(c)
	if !ok {
		return
	}

	var req workforce.RateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	task, err := h.taskService.Rate(c.Request.Context(), tenantID, actor, taskID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, task)
}

// Cancel godoc
// @ID           cancelTask
// @Summary      Cancel a task
// @Tags         tasks
// @Produce      json
// @Param        id path string true "Task ID"
// @Success      200 {object} APIResponse[workforce.TaskResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tasks/{id}/cancel [post]
func (h *TaskHandler) Cancel(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	taskID, ok := h.taskID(c)
	if !ok {
		return
	}

	task, err := h.taskService.Cancel(c.Request.Context(), tenantID, actor, taskID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, task)
}

// List godoc
// @ID           listTasks
// @Summary      List work tasks
// @Tags         tasks
// @Produce      json
// @Param        assignee_id query string false "Assignee ID"
// @Param        status query string false "Task status" Enums(OPEN, IN_PROGRESS, COMPLETED, CANCELLED)
// @Param        overdue query bool false "Only overdue tasks"
// @Param        rated query bool false "Filter by rated flag"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} APIResponse[[]workforce.TaskResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req workforce.ListTasksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.taskService.List(c.Request.Context(), tenantID, actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}
