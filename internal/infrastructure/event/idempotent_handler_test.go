package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/shared"
	"github.com/payops/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockEventHandler struct {
	mock.Mock
}

func (m *MockEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventHandler) EventTypes() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, eventID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

type bonusComputedEvent struct {
	shared.BaseDomainEvent
	Amount string
}

func newBonusComputedEvent() *bonusComputedEvent {
	return &bonusComputedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			"performance.bonus.computed",
			"BonusRecord",
			uuid.New(),
			uuid.New(),
		),
		Amount: "1250.00",
	}
}

func newIdempotencyStore(t *testing.T) *cache.InMemoryIdempotencyStore {
	t.Helper()
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestIdempotentHandler_Handle_NewEvent(t *testing.T) {
	store := newIdempotencyStore(t)
	inner := new(MockEventHandler)
	event := newBonusComputedEvent()

	inner.On("Handle", mock.Anything, event).Return(nil)

	handler := NewIdempotentHandler(inner, store, zap.NewNop())

	require.NoError(t, handler.Handle(context.Background(), event))

	inner.AssertExpectations(t)
	assert.Equal(t, int64(1), handler.Metrics().EventsProcessed.Load())
	assert.Equal(t, int64(0), handler.Metrics().EventsDuplicate.Load())
}

func TestIdempotentHandler_Handle_Duplicate(t *testing.T) {
	store := newIdempotencyStore(t)
	inner := new(MockEventHandler)
	event := newBonusComputedEvent()

	inner.On("Handle", mock.Anything, event).Return(nil).Once()

	handler := NewIdempotentHandler(inner, store, zap.NewNop())

	// Redeliveries of the same event ID are absorbed.
	require.NoError(t, handler.Handle(context.Background(), event))
	require.NoError(t, handler.Handle(context.Background(), event))
	require.NoError(t, handler.Handle(context.Background(), event))

	inner.AssertExpectations(t)
	assert.Equal(t, int64(1), handler.Metrics().EventsProcessed.Load())
	assert.Equal(t, int64(2), handler.Metrics().EventsDuplicate.Load())
}

func TestIdempotentHandler_Handle_HandlerError(t *testing.T) {
	store := newIdempotencyStore(t)
	inner := new(MockEventHandler)
	event := newBonusComputedEvent()
	wantErr := errors.New("audit write failed")

	inner.On("Handle", mock.Anything, event).Return(wantErr)

	handler := NewIdempotentHandler(inner, store, zap.NewNop())

	err := handler.Handle(context.Background(), event)
	require.ErrorIs(t, err, wantErr)

	assert.Equal(t, int64(0), handler.Metrics().EventsProcessed.Load())
	assert.Equal(t, int64(1), handler.Metrics().EventsFailed.Load())
}

func TestIdempotentHandler_Handle_StoreErrorProcessesAnyway(t *testing.T) {
	mockStore := new(MockIdempotencyStore)
	inner := new(MockEventHandler)
	event := newBonusComputedEvent()

	mockStore.On("MarkProcessed", mock.Anything, event.EventID().String(), mock.Anything).
		Return(false, errors.New("redis connection lost"))
	// Processing continues when the dedup check fails; dropping the event
	// would be worse than a possible duplicate.
	inner.On("Handle", mock.Anything, event).Return(nil)

	handler := NewIdempotentHandler(inner, mockStore, zap.NewNop())

	require.NoError(t, handler.Handle(context.Background(), event))

	mockStore.AssertExpectations(t)
	inner.AssertExpectations(t)
}

func TestIdempotentHandler_Handle_Disabled(t *testing.T) {
	store := newIdempotencyStore(t)
	inner := new(MockEventHandler)
	event := newBonusComputedEvent()

	inner.On("Handle", mock.Anything, event).Return(nil).Times(3)

	config := shared.DefaultIdempotencyConfig()
	config.Enabled = false

	handler := NewIdempotentHandler(inner, store, zap.NewNop(),
		WithIdempotencyConfig(config),
	)

	for i := 0; i < 3; i++ {
		require.NoError(t, handler.Handle(context.Background(), event))
	}

	inner.AssertExpectations(t)
	assert.Equal(t, int64(0), handler.Metrics().EventsProcessed.Load())
	assert.Equal(t, int64(0), handler.Metrics().EventsDuplicate.Load())
}

func TestIdempotentHandler_EventTypes(t *testing.T) {
	store := newIdempotencyStore(t)
	inner := new(MockEventHandler)
	wantTypes := []string{"performance.bonus.computed", "payroll.slip.finalized"}

	inner.On("EventTypes").Return(wantTypes)

	handler := NewIdempotentHandler(inner, store, zap.NewNop())

	assert.Equal(t, wantTypes, handler.EventTypes())
	inner.AssertExpectations(t)
}

func TestIdempotentHandler_SharedMetrics(t *testing.T) {
	store := newIdempotencyStore(t)
	sharedMetrics := &IdempotencyMetrics{}

	auditSide := new(MockEventHandler)
	metricsSide := new(MockEventHandler)
	event1 := newBonusComputedEvent()
	event2 := newBonusComputedEvent()

	auditSide.On("Handle", mock.Anything, event1).Return(nil)
	metricsSide.On("Handle", mock.Anything, event2).Return(nil)

	handler1 := NewIdempotentHandler(auditSide, store, zap.NewNop(),
		WithIdempotencyMetrics(sharedMetrics),
	)
	handler2 := NewIdempotentHandler(metricsSide, store, zap.NewNop(),
		WithIdempotencyMetrics(sharedMetrics),
	)

	require.NoError(t, handler1.Handle(context.Background(), event1))
	require.NoError(t, handler2.Handle(context.Background(), event2))

	assert.Equal(t, int64(2), sharedMetrics.EventsProcessed.Load())
}

func TestIdempotencyMetrics_Stats(t *testing.T) {
	metrics := &IdempotencyMetrics{}

	metrics.EventsProcessed.Add(10)
	metrics.EventsDuplicate.Add(5)
	metrics.EventsFailed.Add(2)

	stats := metrics.Stats()
	assert.Equal(t, int64(10), stats.EventsProcessed)
	assert.Equal(t, int64(5), stats.EventsDuplicate)
	assert.Equal(t, int64(2), stats.EventsFailed)
}

func TestIdempotentHandler_ConcurrentDuplicates(t *testing.T) {
	store := newIdempotencyStore(t)
	inner := new(MockEventHandler)
	event := newBonusComputedEvent()

	inner.On("Handle", mock.Anything, event).Return(nil).Once()

	handler := NewIdempotentHandler(inner, store, zap.NewNop())

	const goroutines = 50
	errCh := make(chan error, goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			errCh <- handler.Handle(context.Background(), event)
		}()
	}
	for i := 0; i < goroutines; i++ {
		assert.NoError(t, <-errCh)
	}

	inner.AssertExpectations(t)
	assert.Equal(t, int64(1), handler.Metrics().EventsProcessed.Load())
	assert.Equal(t, int64(goroutines-1), handler.Metrics().EventsDuplicate.Load())
}
