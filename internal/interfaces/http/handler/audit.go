package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/payops/backend/internal/application/audit"
	"github.com/payops/backend/internal/interfaces/http/middleware"
)

// AuditHandler handles audit trail HTTP requests
type AuditHandler struct {
	BaseHandler
	queryService *audit.QueryService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(queryService *audit.QueryService) *AuditHandler {
	return &AuditHandler{
		queryService: queryService,
	}
}

// List godoc
// @ID           listAuditLogs
// @Summary      List audit log entries
// @Description  Query the company's audit trail with optional filters
// @Tags         audit
// @Produce      json
// @Param        event_type query string false "Event type"
// @Param        aggregate_type query string false "Aggregate type"
// @Param        aggregate_id query string false "Aggregate ID"
// @Param        actor_id query string false "Actor ID"
// @Param        from query string false "Lower bound (RFC 3339)"
// @Param        to query string false "Upper bound (RFC 3339)"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} APIResponse[[]audit.LogResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /audit-logs [get]
func (h *AuditHandler) List(c *gin.Context) {
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

	var req audit.ListLogsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.queryService.List(c.Request.Context(), tenantID, actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetByID godoc
// @ID           getAuditLog
// @Summary      Get an audit log entry
// @Tags         audit
// @Produce      json
// @Param        id path string true "Log entry ID"
// @Success      200 {object} APIResponse[audit.LogResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /audit-logs/{id} [get]
func (h *AuditHandler) GetByID(c *gin.Context) {
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

	logID, ok := h.pathUUID(c, "id", "log ID")
	if !ok {
		return
	}

	entry, err := h.queryService.GetByID(c.Request.Context(), tenantID, actor, logID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entry)
}

// GetForAggregate godoc
// @ID           auditTrailForAggregate
// @Summary      Get the audit trail for an aggregate
// @Description  Return all recorded events for one aggregate in occurrence order
// @Tags         audit
// @Produce      json
// @Param        aggregate_id path string true "Aggregate ID"
// @Success      200 {object} APIResponse[[]audit.LogResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /audit-logs/aggregates/{aggregate_id} [get]
func (h *AuditHandler) GetForAggregate(c *gin.Context) {
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

	aggregateID, ok := h.pathUUID(c, "aggregate_id", "aggregate ID")
	if !ok {
		return
	}

	entries, err := h.queryService.GetForAggregate(c.Request.Context(), tenantID, actor, aggregateID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entries)
}
