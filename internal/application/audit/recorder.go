package audit

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/payops/backend/internal/domain/audit"
	"github.com/payops/backend/internal/domain/shared"
	"github.com/payops/backend/internal/infrastructure/logger"
)

// Recorder subscribes to the event bus and writes one audit log row per
// domain event. The unique index on EventID absorbs redeliveries, so Handle
// is safe to retry after partial failures.
type Recorder struct {
	logRepo audit.LogRepository
	logger  *zap.Logger
}

// NewRecorder creates a new Recorder
func NewRecorder(logRepo audit.LogRepository, log *zap.Logger) *Recorder {
	return &Recorder{
		logRepo: logRepo,
		logger:  log,
	}
}

// EventTypes returns an empty slice: the recorder receives every event
// published on the bus.
func (r *Recorder) EventTypes() []string {
	return []string{}
}

// Handle persists the event as an audit log entry. Events without a tenant
// cannot be scoped and are dropped. A duplicate EventID means the entry was
// already written on a previous delivery and counts as success.
func (r *Recorder) Handle(ctx context.Context, event shared.DomainEvent) error {
	if event.TenantID() == uuid.Nil {
		r.logger.Debug("skipping event without tenant",
			zap.String("event_id", event.EventID().String()),
			zap.String("event_type", event.EventType()),
		)
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		// The entry is still worth keeping for the who/what/when columns
		r.logger.Warn("failed to marshal event payload",
			zap.String("event_id", event.EventID().String()),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
		payload = []byte("{}")
	}

	entry := audit.NewLog(event, actorFromContext(ctx), string(payload))

	if err := r.logRepo.Save(ctx, entry); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			r.logger.Debug("audit entry already written, skipping",
				zap.String("event_id", event.EventID().String()),
				zap.String("event_type", event.EventType()),
			)
			return nil
		}
		return err
	}

	return nil
}

// actorFromContext resolves the acting user from the request context.
// Returns nil for system-originated events (scheduled jobs, migrations)
// that carry no user.
func actorFromContext(ctx context.Context) *uuid.UUID {
	raw := logger.GetUserID(ctx)
	if raw == "" {
		return nil
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &userID
}
