package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/payops/backend/internal/domain/identity"
	"github.com/payops/backend/internal/domain/shared"
	"github.com/payops/backend/internal/interfaces/http/dto"
	"github.com/payops/backend/internal/interfaces/http/middleware"
)

// BaseHandler carries the response and claim helpers shared by all handlers.
type BaseHandler struct{}

// getRequestID extracts the request ID set by the request-ID middleware,
// falling back to the inbound header when the middleware did not run.
func getRequestID(c *gin.Context) string {
	if id := c.GetString(middleware.RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// getUserID parses the authenticated user's ID from the JWT claims.
func getUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr := middleware.GetJWTUserID(c)
	if userIDStr == "" {
		return uuid.Nil, errors.New("user ID not found in context")
	}
	return uuid.Parse(userIDStr)
}

// getTenantID parses the authenticated tenant's ID from the JWT claims.
func getTenantID(c *gin.Context) (uuid.UUID, error) {
	tenantIDStr := middleware.GetJWTTenantID(c)
	if tenantIDStr == "" {
		return uuid.Nil, errors.New("tenant ID not found in context")
	}
	return uuid.Parse(tenantIDStr)
}

// getActor builds the acting identity from JWT claims. Services use the
// actor for self-vs-others access decisions, so a missing or malformed
// claim set is an authentication failure, never a silent fallback.
func getActor(c *gin.Context) (identity.Actor, error) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		return identity.Actor{}, errors.New("claims not found in context")
	}
	return claims.Actor()
}

// Success sends a 200 response wrapping data.
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a 200 response with pagination meta.
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 response wrapping data.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// respondError writes the error envelope with the request ID attached.
func respondError(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 response, for binding and query-parsing failures.
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// pathUUID parses the named path parameter as a UUID. On failure it writes
// a 400 describing the parameter (e.g. "Invalid user ID") and returns false.
func (h *BaseHandler) pathUUID(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Invalid "+label)
		return uuid.Nil, false
	}
	return id, true
}

// Unauthorized sends a 401 response, for missing or unusable claims.
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	respondError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// ValidationError sends a 400 response carrying per-field details.
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		getRequestID(c),
		details,
	))
}

// HandleError translates service errors into HTTP responses. Domain errors
// (matched through the wrap chain) carry their own code, which decides the
// status; anything else is reported as an opaque 500 so internals never
// leak to clients.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		respondError(c, dto.GetHTTPStatus(code), code, domainErr.Message)
		return
	}

	respondError(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}
