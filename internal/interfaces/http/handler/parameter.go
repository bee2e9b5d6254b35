package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/payops/backend/internal/application/performance"
	"github.com/payops/backend/internal/interfaces/http/middleware"
)

// ParameterHandler handles scoring parameter HTTP requests
type ParameterHandler struct {
	BaseHandler
	parameterService *performance.ParameterService
}

// NewParameterHandler creates a new parameter handler
func NewParameterHandler(parameterService *performance.ParameterService) *ParameterHandler {
	return &ParameterHandler{
		parameterService: parameterService,
	}
}

// Create godoc
// @ID           createParameter
// @Summary      Register a scoring parameter
// @Description  Register a new weighted scoring parameter for the company
// @Tags         parameters
// @Accept       json
// @Produce      json
// @Param        request body performance.CreateParameterRequest true "Parameter creation request"
// @Success      201 {object} APIResponse[performance.ParameterResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /parameters [post]
func (h *ParameterHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req performance.CreateParameterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	if userID, uerr := getUserID(c); uerr == nil {
		req.CreatedBy = &userID
	}

	param, err := h.parameterService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, param)
}

// GetByID godoc
// @ID           getParameter
// @Summary      Get a scoring parameter
// @Tags         parameters
// @Produce      json
// @Param        id path string true "Parameter ID"
// @Success      200 {object} APIResponse[performance.ParameterResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /parameters/{id} [get]
func (h *ParameterHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	paramID, ok := h.pathUUID(c, "id", "parameter ID")
	if !ok {
		return
	}

	param, err := h.parameterService.GetByID(c.Request.Context(), tenantID, paramID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, param)
}

// List godoc
// @ID           listParameters
// @Summary      List scoring parameters
// @Description  List the company's scoring parameters, optionally active ones only
// @Tags         parameters
// @Produce      json
// @Param        active_only query bool false "Return active parameters only"
// @Success      200 {object} APIResponse[[]performance.ParameterResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /parameters [get]
func (h *ParameterHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	activeOnly := c.Query("active_only") == "true"

	params, err := h.parameterService.List(c.Request.Context(), tenantID, activeOnly)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, params)
}

// Update godoc
// @ID           updateParameter
// @Summary      Update a scoring parameter
// @Description  Change a parameter's name, weight, or active flag
// @Tags         parameters
// @Accept       json
// @Produce      json
// @Param        id path string true "Parameter ID"
// @Param        request body performance.UpdateParameterRequest true "Parameter update request"
// @Success      200 {object} APIResponse[performance.ParameterResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /parameters/{id} [put]
func (h *ParameterHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	paramID, ok := h.pathUUID(c, "id", "parameter ID")
	if !ok {
		return
	}

	var req performance.UpdateParameterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	param, err := h.parameterService.Update(c.Request.Context(), tenantID, paramID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, param)
}

// Delete godoc
// @ID           deleteParameter
// @Summary      Delete a scoring parameter
// @Description  Remove a parameter that is not referenced by finalized records
// @Tags         parameters
// @Produce      json
// @Param        id path string true "Parameter ID"
// @Success      200 {object} APIResponse[any]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /parameters/{id} [delete]
func (h *ParameterHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	paramID, ok := h.pathUUID(c, "id", "parameter ID")
	if !ok {
		return
	}

	if err := h.parameterService.Delete(c.Request.Context(), tenantID, paramID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Parameter deleted successfully"})
}
