package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/payops/backend/internal/domain/audit"
	"github.com/payops/backend/internal/domain/shared"
	"github.com/payops/backend/internal/infrastructure/logger"
)

// MockLogRepository is a mock implementation of LogRepository
type MockLogRepository struct {
	mock.Mock
}

func (m *MockLogRepository) Save(ctx context.Context, log *audit.Log) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*audit.Log, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*audit.Log), args.Error(1)
}

func (m *MockLogRepository) ExistsByEventID(ctx context.Context, eventID uuid.UUID) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLogRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter audit.LogFilter) ([]audit.Log, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]audit.Log), args.Error(1)
}

func (m *MockLogRepository) FindForAggregate(ctx context.Context, tenantID, aggregateID uuid.UUID) ([]audit.Log, error) {
	args := m.Called(ctx, tenantID, aggregateID)
	return args.Get(0).([]audit.Log), args.Error(1)
}

func (m *MockLogRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter audit.LogFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

type slipFinalizedEvent struct {
	shared.BaseDomainEvent
	Month string `json:"month"`
}

func newTestEvent(tenantID uuid.UUID) *slipFinalizedEvent {
	return &slipFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("salary_slip.finalized", "SalarySlip", uuid.New(), tenantID),
		Month:           "2026-07",
	}
}

func TestRecorder_Handle_WritesEntry(t *testing.T) {
	repo := new(MockLogRepository)
	recorder := NewRecorder(repo, zap.NewNop())

	tenantID := uuid.New()
	event := newTestEvent(tenantID)

	var saved *audit.Log
	repo.On("Save", mock.Anything, mock.AnythingOfType("*audit.Log")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(*audit.Log)
		}).
		Return(nil)

	err := recorder.Handle(context.Background(), event)

	assert.NoError(t, err)
	assert.NotNil(t, saved)
	assert.Equal(t, tenantID, saved.TenantID)
	assert.Equal(t, event.EventID(), saved.EventID)
	assert.Equal(t, "salary_slip.finalized", saved.EventType)
	assert.Equal(t, "SalarySlip", saved.AggregateType)
	assert.Equal(t, event.AggregateID(), saved.AggregateID)
	assert.Nil(t, saved.ActorID)
	assert.Contains(t, saved.Payload, `"month":"2026-07"`)
	assert.WithinDuration(t, event.OccurredAt(), saved.OccurredAt, time.Second)
}

func TestRecorder_Handle_ResolvesActorFromContext(t *testing.T) {
	repo := new(MockLogRepository)
	recorder := NewRecorder(repo, zap.NewNop())

	actorID := uuid.New()
	ctx, _ := logger.WithUserID(context.Background(), zap.NewNop(), actorID.String())

	var saved *audit.Log
	repo.On("Save", mock.Anything, mock.AnythingOfType("*audit.Log")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(*audit.Log)
		}).
		Return(nil)

	err := recorder.Handle(ctx, newTestEvent(uuid.New()))

	assert.NoError(t, err)
	assert.NotNil(t, saved.ActorID)
	assert.Equal(t, actorID, *saved.ActorID)
}

func TestRecorder_Handle_DuplicateEventIsSuccess(t *testing.T) {
	repo := new(MockLogRepository)
	recorder := NewRecorder(repo, zap.NewNop())

	repo.On("Save", mock.Anything, mock.AnythingOfType("*audit.Log")).
		Return(shared.ErrAlreadyExists)

	err := recorder.Handle(context.Background(), newTestEvent(uuid.New()))

	assert.NoError(t, err)
}

func TestRecorder_Handle_SaveFailurePropagates(t *testing.T) {
	repo := new(MockLogRepository)
	recorder := NewRecorder(repo, zap.NewNop())

	repo.On("Save", mock.Anything, mock.AnythingOfType("*audit.Log")).
		Return(assert.AnError)

	err := recorder.Handle(context.Background(), newTestEvent(uuid.New()))

	assert.Error(t, err)
}

func TestRecorder_Handle_SkipsEventWithoutTenant(t *testing.T) {
	repo := new(MockLogRepository)
	recorder := NewRecorder(repo, zap.NewNop())

	err := recorder.Handle(context.Background(), newTestEvent(uuid.Nil))

	assert.NoError(t, err)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRecorder_EventTypes_SubscribesToAll(t *testing.T) {
	recorder := NewRecorder(new(MockLogRepository), zap.NewNop())

	assert.Empty(t, recorder.EventTypes())
}
