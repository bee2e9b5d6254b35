package handler

import "github.com/payops/backend/internal/interfaces/http/dto"

// APIResponse is the typed envelope used in OpenAPI annotations. Handlers
// write dto.Response at runtime; this generic mirror lets swag document the
// concrete payload type per endpoint.
// @Description Standard API response wrapper with typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse documents the failure envelope.
// @Description Standard error response
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// SuccessResponse documents a bare acknowledgement.
// @Description Simple success response without data
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}

// CountData wraps a single count value.
// @Description Count data
type CountData struct {
	Count int64 `json:"count"`
}

// SchedulerStatusData reports whether the export scheduler is running and
// which export types it accepts.
// @Description Scheduler status information
type SchedulerStatusData struct {
	Enabled        bool     `json:"enabled"`
	AvailableTypes []string `json:"available_types"`
}
