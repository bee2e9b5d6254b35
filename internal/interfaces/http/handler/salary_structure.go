package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/payops/backend/internal/application/payroll"
	"github.com/payops/backend/internal/interfaces/http/middleware"
)

// SalaryStructureHandler handles salary structure HTTP requests
type SalaryStructureHandler struct {
	BaseHandler
	structureService *payroll.StructureService
}

// NewSalaryStructureHandler creates a new salary structure handler
func NewSalaryStructureHandler(structureService *payroll.StructureService) *SalaryStructureHandler {
	return &SalaryStructureHandler{
		structureService: structureService,
	}
}

// Upsert godoc
// @ID           upsertSalaryStructure
// @Summary      Define or revise a salary structure
// @Description  Create a user's salary structure, or revise it with a new effective date
// @Tags         salary-structures
// @Accept       json
// @Produce      json
// @Param        user_id path string true "User ID"
// @Param        request body payroll.UpsertStructureRequest true "Structure components"
// @Success      200 {object} APIResponse[payroll.StructureResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{user_id}/salary-structure [put]
func (h *SalaryStructureHandler) Upsert(c *gin.Context) {
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

	userID, ok := h.pathUUID(c, "user_id", "user ID")
	if !ok {
		return
	}

	var req payroll.UpsertStructureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	structure, err := h.structureService.Upsert(c.Request.Context(), tenantID, actor, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, structure)
}

// GetActive godoc
// @ID           getActiveSalaryStructure
// @Summary      Get a user's active salary structure
// @Tags         salary-structures
// @Produce      json
// @Param        user_id path string true "User ID"
// @Success      200 {object} APIResponse[payroll.StructureResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{user_id}/salary-structure [get]
func (h *SalaryStructureHandler) GetActive(c *gin.Context) {
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

	userID, ok := h.pathUUID(c, "user_id", "user ID")
	if !ok {
		return
	}

	structure, err := h.structureService.GetActiveForUser(c.Request.Context(), tenantID, actor, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, structure)
}

// History godoc
// @ID           salaryStructureHistory
// @Summary      List a user's salary structure revisions
// @Tags         salary-structures
// @Produce      json
// @Param        user_id path string true "User ID"
// @Success      200 {object} APIResponse[[]payroll.StructureResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{user_id}/salary-structure/history [get]
func (h *SalaryStructureHandler) History(c *gin.Context) {
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

	userID, ok := h.pathUUID(c, "user_id", "user ID")
	if !ok {
		return
	}

	structures, err := h.structureService.ListForUser(c.Request.Context(), tenantID, actor, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, structures)
}
