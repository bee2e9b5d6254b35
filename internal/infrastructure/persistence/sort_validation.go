package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// Common allowed sort fields for entities with base fields
// These are the common fields present in most entities

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"username":      true,
	"email":         true,
	"display_name":  true,
	"employee_code": true,
	"designation":   true,
	"joined_at":     true,
	"status":        true,
	"last_login_at": true,
}

// CompanySortFields contains allowed sort fields for companies
var CompanySortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"short_name": true,
	"status":     true,
}

// ParameterSortFields contains allowed sort fields for score parameters
var ParameterSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"weight":     true,
	"active":     true,
}

// BonusRecordSortFields contains allowed sort fields for bonus records
var BonusRecordSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"user_id":          true,
	"period":           true,
	"total_score":      true,
	"bonus_percentage": true,
	"tier":             true,
	"is_finalized":     true,
	"finalized_at":     true,
}

// StructureSortFields contains allowed sort fields for salary structures
var StructureSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"user_id":        true,
	"effective_from": true,
	"active":         true,
	"net_salary":     true,
}

// SlipSortFields contains allowed sort fields for salary slips
var SlipSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"user_id":      true,
	"month":        true,
	"status":       true,
	"system_net":   true,
	"discrepancy":  true,
	"generated_at": true,
}

// TaskSortFields contains allowed sort fields for work tasks
var TaskSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"assignee_id":  true,
	"title":        true,
	"due_date":     true,
	"status":       true,
	"completed_at": true,
	"rating":       true,
}

// AttendanceSortFields contains allowed sort fields for attendance records
var AttendanceSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"user_id":    true,
	"date":       true,
	"status":     true,
	"on_time":    true,
}

// AuditLogSortFields contains allowed sort fields for audit logs
var AuditLogSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"occurred_at":    true,
	"event_type":     true,
	"aggregate_type": true,
	"aggregate_id":   true,
	"actor_id":       true,
}
