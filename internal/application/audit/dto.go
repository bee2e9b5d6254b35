package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/payops/backend/internal/domain/audit"
	"github.com/payops/backend/internal/domain/shared"
)

// ListLogsRequest represents a filtered audit trail query
type ListLogsRequest struct {
	EventType     *string    `form:"event_type" binding:"omitempty,max=100"`
	AggregateType *string    `form:"aggregate_type" binding:"omitempty,max=100"`
	AggregateID   *uuid.UUID `form:"aggregate_id"`
	ActorID       *uuid.UUID `form:"actor_id"`
	From          *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To            *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Page          int        `form:"page" binding:"omitempty,min=1"`
	PageSize      int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

func (r ListLogsRequest) toFilter() audit.LogFilter {
	filter := audit.LogFilter{
		Filter:        shared.DefaultFilter(),
		EventType:     r.EventType,
		AggregateType: r.AggregateType,
		AggregateID:   r.AggregateID,
		ActorID:       r.ActorID,
		From:          r.From,
		To:            r.To,
	}
	filter.OrderBy = "occurred_at"
	if r.Page > 0 {
		filter.Page = r.Page
	}
	if r.PageSize > 0 {
		filter.PageSize = r.PageSize
	}
	return filter
}

// LogResponse represents an audit log entry in API responses
type LogResponse struct {
	ID            uuid.UUID       `json:"id"`
	EventID       uuid.UUID       `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	ActorID       *uuid.UUID      `json:"actor_id,omitempty"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// ToLogResponse converts a domain log entry to a response DTO
func ToLogResponse(entry audit.Log) LogResponse {
	return LogResponse{
		ID:            entry.ID,
		EventID:       entry.EventID,
		EventType:     entry.EventType,
		AggregateType: entry.AggregateType,
		AggregateID:   entry.AggregateID,
		ActorID:       entry.ActorID,
		Payload:       json.RawMessage(entry.Payload),
		OccurredAt:    entry.OccurredAt,
	}
}

// ToLogResponses converts a slice of domain log entries to response DTOs
func ToLogResponses(entries []audit.Log) []LogResponse {
	responses := make([]LogResponse, len(entries))
	for i, entry := range entries {
		responses[i] = ToLogResponse(entry)
	}
	return responses
}
