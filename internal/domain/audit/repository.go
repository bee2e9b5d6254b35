package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/shared"
)

// LogFilter defines the filter criteria for audit log queries
type LogFilter struct {
	shared.Filter

	// Filter by event type
	EventType *string

	// Filter by aggregate type
	AggregateType *string

	// Filter by aggregate ID
	AggregateID *uuid.UUID

	// Filter by acting user
	ActorID *uuid.UUID

	// Filter by occurrence window
	From *time.Time
	To   *time.Time
}

// LogRepository defines the interface for audit log persistence
type LogRepository interface {
	// Save persists an audit log entry. Saving an entry whose EventID
	// already exists returns shared.ErrAlreadyExists.
	Save(ctx context.Context, log *Log) error

	// FindByID finds an audit log entry by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Log, error)

	// ExistsByEventID reports whether an entry for the event was already written
	ExistsByEventID(ctx context.Context, eventID uuid.UUID) (bool, error)

	// FindAllForTenant finds audit log entries for a tenant matching the filter
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter LogFilter) ([]Log, error)

	// FindForAggregate finds all entries for one aggregate, oldest first
	FindForAggregate(ctx context.Context, tenantID, aggregateID uuid.UUID) ([]Log, error)

	// CountForTenant counts audit log entries matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter LogFilter) (int64, error)
}
