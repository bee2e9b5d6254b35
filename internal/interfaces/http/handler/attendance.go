package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/payops/backend/internal/application/workforce"
	"github.com/payops/backend/internal/interfaces/http/middleware"
)

// AttendanceHandler handles attendance HTTP requests
type AttendanceHandler struct {
	BaseHandler
	attendanceService *workforce.AttendanceService
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(attendanceService *workforce.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{
		attendanceService: attendanceService,
	}
}

// Record godoc
// @ID           recordAttendance
// @Summary      Record attendance
// @Description  Record or amend a user's attendance for a calendar day
// @Tags         attendance
// @Accept       json
// @Produce      json
// @Param        request body workforce.RecordAttendanceRequest true "Attendance request"
// @Success      200 {object} APIResponse[workforce.AttendanceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /attendance [post]
func (h *AttendanceHandler) Record(c *gin.Context) {
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

	var req workforce.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	record, err := h.attendanceService.Record(c.Request.Context(), tenantID, actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, record)
}

// List godoc
// @ID           listAttendance
// @Summary      List attendance records
// @Description  List attendance for a pay period, optionally scoped to one user
// @Tags         attendance
// @Produce      json
// @Param        user_id query string false "User ID"
// @Param        period query string true "Pay period (YYYY-MM)"
// @Success      200 {object} APIResponse[[]workforce.AttendanceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
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

	var req workforce.ListAttendanceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	records, err := h.attendanceService.List(c.Request.Context(), tenantID, actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, records)
}
