package dto

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeTokenExpired, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeAccountLocked, http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeAlreadyFinalized, http.StatusConflict},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeBusinessRule, http.StatusUnprocessableEntity},
		{ErrCodePreconditionFailed, http.StatusPreconditionFailed},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeInternal, http.StatusInternalServerError},
		{"SOMETHING_NOBODY_MAPPED", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

// Every transport code must follow the ERR_ convention and map to a real
// HTTP status, so handlers can trust GetHTTPStatus blindly.
func TestErrorCodeTableIsWellFormed(t *testing.T) {
	require.NotEmpty(t, ErrorCodeHTTPStatus)

	for code, status := range ErrorCodeHTTPStatus {
		assert.True(t, strings.HasPrefix(code, "ERR_"), "code %s should start with ERR_", code)
		assert.GreaterOrEqual(t, status, 400, "code %s maps to non-error status %d", code, status)
		assert.Less(t, status, 600, "code %s maps to invalid status %d", code, status)
	}

	for domainCode, transportCode := range DomainErrorCodeMapping {
		assert.NotContains(t, domainCode, "ERR_", "domain code %s should not use the transport prefix", domainCode)
		assert.Contains(t, ErrorCodeHTTPStatus, transportCode,
			"domain code %s maps to unmapped transport code %s", domainCode, transportCode)
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Explicit domain-to-transport mappings.
		{"NOT_FOUND", ErrCodeNotFound},
		{"ALREADY_EXISTS", ErrCodeAlreadyExists},
		{"CONCURRENCY_CONFLICT", ErrCodeConcurrencyConflict},
		{"OPTIMISTIC_LOCK_ERROR", ErrCodeConcurrencyConflict},
		{"ALREADY_FINALIZED", ErrCodeAlreadyFinalized},
		{"INVALID_CREDENTIALS", ErrCodeUnauthorized},
		{"TOKEN_EXPIRED", ErrCodeTokenExpired},
		{"DEDUCTION_MISMATCH", ErrCodeBusinessRule},
		{"EMPTY_SUBMISSION", ErrCodeInvalidInput},
		{"PARAMETER_IN_USE", ErrCodeConflict},
		// Codes nobody listed degrade by family instead of falling to 500.
		{"PARAMETER_NOT_FOUND", ErrCodeNotFound},
		{"SLIP_EXISTS", ErrCodeAlreadyExists},
		{"DUPLICATE_STRUCTURE", ErrCodeAlreadyExists},
		{"INVALID_PERIOD", ErrCodeInvalidInput},
		{"ALREADY_CHECKED_IN", ErrCodeConflict},
		{"CANNOT_RATE_INCOMPLETE", ErrCodeInvalidState},
		{"ACCOUNT_SUSPENDED", ErrCodeForbidden},
		{"TOKEN_MALFORMED", ErrCodeTokenInvalid},
		{"ROLE_IN_USE", ErrCodeConflict},
		// Already-normalized and unknown codes pass through.
		{ErrCodeNotFound, ErrCodeNotFound},
		{"CUSTOM_ERROR", "CUSTOM_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestNewErrorResponse(t *testing.T) {
	before := time.Now()
	resp := NewErrorResponse("NOT_FOUND", "slip not found")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code, "domain code should be normalized")
	assert.Equal(t, "slip not found", resp.Error.Message)
	assert.WithinDuration(t, before, resp.Error.Timestamp, time.Second)
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "slip not found", "req-123")

	require.NotNil(t, resp.Error)
	assert.Equal(t, "req-123", resp.Error.RequestID)

	// The request id survives the wire format.
	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded Response
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.False(t, decoded.Success)
	assert.Equal(t, ErrCodeNotFound, decoded.Error.Code)
	assert.Equal(t, "req-123", decoded.Error.RequestID)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "month", Message: "must be in YYYY-MM format"},
		{Field: "weight", Message: "must be between 0 and 100"},
	}

	resp := NewValidationErrorResponse("Validation failed", "req-789", details)

	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-789", resp.Error.RequestID)
	require.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "month", resp.Error.Details[0].Field)
}

func TestNewErrorResponseWithHelp(t *testing.T) {
	resp := NewErrorResponseWithHelp(ErrCodeUnauthorized, "Not authenticated", "req-001", "https://docs.example.com/errors/auth")

	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeUnauthorized, resp.Error.Code)
	assert.Equal(t, "https://docs.example.com/errors/auth", resp.Error.Help)
}

func TestNewSuccessResponse(t *testing.T) {
	resp := NewSuccessResponse(map[string]string{"status": "GENERATED"})

	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
	assert.Nil(t, resp.Meta)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	tests := []struct {
		name          string
		total         int64
		pageSize      int
		expectedPages int
		expectedSize  int
	}{
		{"even pages", 100, 10, 10, 10},
		{"partial last page", 101, 10, 11, 10},
		{"empty result", 0, 10, 0, 10},
		{"single partial page", 9, 10, 1, 10},
		{"boundary", 10, 10, 1, 10},
		{"zero page size defaults", 100, 0, 5, 20},
		{"negative page size defaults", 100, -1, 5, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewSuccessResponseWithMeta([]string{"a", "b"}, tt.total, 1, tt.pageSize)

			assert.True(t, resp.Success)
			require.NotNil(t, resp.Meta)
			assert.Equal(t, tt.total, resp.Meta.Total)
			assert.Equal(t, 1, resp.Meta.Page)
			assert.Equal(t, tt.expectedSize, resp.Meta.PageSize)
			assert.Equal(t, tt.expectedPages, resp.Meta.TotalPages)
		})
	}
}
