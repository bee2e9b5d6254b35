package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/payops/backend/internal/application/performance"
	"github.com/payops/backend/internal/interfaces/http/middleware"
)

// PerformanceHandler handles performance evaluation HTTP requests
type PerformanceHandler struct {
	BaseHandler
	scoringService *performance.ScoringService
}

// NewPerformanceHandler creates a new performance handler
func NewPerformanceHandler(scoringService *performance.ScoringService) *PerformanceHandler {
	return &PerformanceHandler{
		scoringService: scoringService,
	}
}

// Compute godoc
// @ID           computePerformance
// @Summary      Compute a performance evaluation
// @Description  Evaluate a user's weighted score and bonus tier for a pay period
// @Tags         performance
// @Accept       json
// @Produce      json
// @Param        request body performance.ComputePerformanceRequest true "Evaluation request"
// @Success      200 {object} APIResponse[performance.PerformanceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /performance/compute [post]
func (h *PerformanceHandler) Compute(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req performance.ComputePerformanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.scoringService.ComputePerformance(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Get godoc
// @ID           getPerformance
// @Summary      Get a performance evaluation
// @Description  Return the stored or freshly computed evaluation for a user and period
// @Tags         performance
// @Produce      json
// @Param        user_id path string true "User ID"
// @Param        period query string true "Pay period (YYYY-MM)"
// @Success      200 {object} APIResponse[performance.PerformanceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /performance/users/{user_id} [get]
func (h *PerformanceHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	userID, ok := h.pathUUID(c, "user_id", "user ID")
	if !ok {
		return
	}

	period := c.Query("period")
	if period == "" {
		h.BadRequest(c, "period query parameter is required")
		return
	}

	result, err := h.scoringService.GetPerformance(c.Request.Context(), tenantID, userID, period)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// History godoc
// @ID           bonusHistory
// @Summary      Get bonus history
// @Description  Return a user's bonus records for the months leading up to a period
// @Tags         performance
// @Produce      json
// @Param        user_id query string true "User ID"
// @Param        period query string true "Anchor pay period (YYYY-MM)"
// @Param        count query int false "Number of months to include"
// @Success      200 {object} APIResponse[[]performance.BonusRecordResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /performance/history [get]
func (h *PerformanceHandler) History(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req performance.HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	records, err := h.scoringService.History(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, records)
}

// Finalize godoc
// @ID           finalizeBonus
// @Summary      Finalize a bonus record
// @Description  Lock a user's bonus record for a period against further recomputation
// @Tags         performance
// @Accept       json
// @Produce      json
// @Param        request body performance.FinalizeBonusRequest true "Finalize request"
// @Success      200 {object} APIResponse[performance.BonusRecordResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /performance/finalize [post]
func (h *PerformanceHandler) Finalize(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req performance.FinalizeBonusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	record, err := h.scoringService.FinalizeBonus(c.Request.Context(), tenantID, actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, record)
}
