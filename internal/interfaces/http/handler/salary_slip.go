package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/payops/backend/internal/application/payroll"
	"github.com/payops/backend/internal/interfaces/http/middleware"
)

// SalarySlipHandler handles salary slip and register export HTTP requests
type SalarySlipHandler struct {
	BaseHandler
	slipService   *payroll.SlipService
	exportService *payroll.ExportService
}

// NewSalarySlipHandler creates a new salary slip handler
func NewSalarySlipHandler(slipService *payroll.SlipService, exportService *payroll.ExportService) *SalarySlipHandler {
	return &SalarySlipHandler{
		slipService:   slipService,
		exportService: exportService,
	}
}

// Generate godoc
// @ID           generateSalarySlip
// @Summary      Generate a salary slip
// @Description  Compute a user's slip for a pay month from structure, attendance, and bonus
// @Tags         salary-slips
// @Accept       json
// @Produce      json
// @Param        request body payroll.GenerateSlipRequest true "Generation request"
// @Success      200 {object} APIResponse[payroll.SlipResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /salary-slips/generate [post]
func (h *SalarySlipHandler) Generate(c *gin.Context) {
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

	var req payroll.GenerateSlipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	slip, err := h.slipService.GenerateSlip(c.Request.Context(), tenantID, actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, slip)
}

// GetByID godoc
// @ID           getSalarySlip
// @Summary      Get a salary slip
// @Tags         salary-slips
// @Produce      json
// @Param        id path string true "Slip ID"
// @Success      200 {object} APIResponse[payroll.SlipResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /salary-slips/{id} [get]
func (h *SalarySlipHandler) GetByID(c *gin.Context) {
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

	slipID, ok := h.pathUUID(c, "id", "slip ID")
	if !ok {
		return
	}

	slip, err := h.slipService.GetSlip(c.Request.Context(), tenantID, actor, slipID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, slip)
}

// List godoc
// @ID           listSalarySlips
// @Summary      List salary slips
// @Tags         salary-slips
// @Produce      json
// @Param        user_id query string false "User ID"
// @Param        month query string false "Pay month (YYYY-MM)"
// @Param        status query string false "Slip status" Enums(DRAFT, GENERATED, COMPARED, FINALIZED)
// @Param        unreconciled query bool false "Only slips without an employee submission"
// @Param        min_discrepancy query number false "Minimum absolute discrepancy"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} APIResponse[[]payroll.SlipResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /salary-slips [get]
func (h *SalarySlipHandler) List(c *gin.Context) {
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

	var req payroll.ListSlipsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.slipService.ListSlips(c.Request.Context(), tenantID, actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Update godoc
// @ID           updateSalarySlip
// @Summary      Update a salary slip
// @Description  Submit employee-side figures for reconciliation or advance the slip's status
// @Tags         salary-slips
// @Accept       json
// @Produce      json
// @Param        id path string true "Slip ID"
// @Param        request body payroll.UpdateSlipRequest true "Reconciliation submission"
// @Success      200 {object} APIResponse[payroll.SlipResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /salary-slips/{id} [patch]
func (h *SalarySlipHandler) Update(c *gin.Context) {
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

	slipID, ok := h.pathUUID(c, "id", "slip ID")
	if !ok {
		return
	}

	var req payroll.UpdateSlipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	slip, err := h.slipService.UpdateSlip(c.Request.Context(), tenantID, actor, slipID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, slip)
}

// ExportRegister godoc
// @ID           exportPayrollRegister
// @Summary      Export the payroll register
// @Description  Build the month's register CSV, upload it, and return a presigned download URL
// @Tags         salary-slips
// @Accept       json
// @Produce      json
// @Param        request body payroll.ExportRegisterRequest true "Export request"
// @Success      200 {object} APIResponse[payroll.ExportRegisterResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /salary-slips/export [post]
func (h *SalarySlipHandler) ExportRegister(c *gin.Context) {
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

	var req payroll.ExportRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.exportService.ExportRegister(c.Request.Context(), tenantID, actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
