package audit

import (
	"time"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/shared"
)

// Log is an immutable record of a domain event that changed payroll or
// scoring state. Rows are written once by the audit subscriber and never
// updated; EventID carries the dedup key so redelivered events insert nothing.
type Log struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	TenantID      uuid.UUID  `json:"tenant_id" gorm:"type:uuid;not null;index"`
	EventID       uuid.UUID  `json:"event_id" gorm:"type:uuid;not null;uniqueIndex"`
	EventType     string     `json:"event_type" gorm:"type:varchar(100);not null;index"`
	AggregateType string     `json:"aggregate_type" gorm:"type:varchar(100);not null;index"`
	AggregateID   uuid.UUID  `json:"aggregate_id" gorm:"type:uuid;not null;index"`
	ActorID       *uuid.UUID `json:"actor_id" gorm:"type:uuid;index"` // Nil for system-originated events
	Payload       string     `json:"payload" gorm:"type:text"`        // JSON snapshot of the event
	OccurredAt    time.Time  `json:"occurred_at" gorm:"not null;index"`
	CreatedAt     time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// TableName returns the table name for GORM
func (Log) TableName() string {
	return "audit_logs"
}

// NewLog creates an audit log entry from a domain event
func NewLog(event shared.DomainEvent, actorID *uuid.UUID, payload string) *Log {
	return &Log{
		ID:            uuid.New(),
		TenantID:      event.TenantID(),
		EventID:       event.EventID(),
		EventType:     event.EventType(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		ActorID:       actorID,
		Payload:       payload,
		OccurredAt:    event.OccurredAt(),
	}
}
