package audit

import (
	"testing"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLog(t *testing.T) {
	tenantID := uuid.New()
	aggregateID := uuid.New()
	event := shared.NewBaseDomainEvent("SalarySlipFinalized", "SalarySlip", aggregateID, tenantID)

	t.Run("captures event identity and actor", func(t *testing.T) {
		actorID := uuid.New()

		log := NewLog(&event, &actorID, `{"status":"FINALIZED"}`)

		require.NotNil(t, log)
		assert.NotEqual(t, uuid.Nil, log.ID)
		assert.Equal(t, tenantID, log.TenantID)
		assert.Equal(t, event.EventID(), log.EventID)
		assert.Equal(t, "SalarySlipFinalized", log.EventType)
		assert.Equal(t, "SalarySlip", log.AggregateType)
		assert.Equal(t, aggregateID, log.AggregateID)
		require.NotNil(t, log.ActorID)
		assert.Equal(t, actorID, *log.ActorID)
		assert.Equal(t, `{"status":"FINALIZED"}`, log.Payload)
		assert.Equal(t, event.OccurredAt(), log.OccurredAt)
	})

	t.Run("allows nil actor for system events", func(t *testing.T) {
		log := NewLog(&event, nil, "{}")

		require.NotNil(t, log)
		assert.Nil(t, log.ActorID)
	})
}

func TestLog_TableName(t *testing.T) {
	assert.Equal(t, "audit_logs", Log{}.TableName())
}
