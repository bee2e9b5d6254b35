package cache

import (
	"testing"

	"github.com/payops/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// unreachableRedis points at a port nothing listens on so CreateRedisStore
// fails fast with connection refused.
func unreachableRedis() config.RedisConfig {
	return config.RedisConfig{Host: "127.0.0.1", Port: 1}
}

func TestIdempotencyStoreFactory_Defaults(t *testing.T) {
	f := NewIdempotencyStoreFactory(unreachableRedis())

	assert.True(t, f.allowInMemoryFallback)
	assert.NotNil(t, f.logger)
}

func TestIdempotencyStoreFactory_Options(t *testing.T) {
	logger := zap.NewNop()
	f := NewIdempotencyStoreFactory(unreachableRedis(),
		WithLogger(logger),
		WithInMemoryFallback(false),
	)

	assert.Equal(t, logger, f.logger)
	assert.False(t, f.allowInMemoryFallback)
}

func TestIdempotencyStoreFactory_CreateInMemoryStore(t *testing.T) {
	f := NewIdempotencyStoreFactory(unreachableRedis())

	store := f.CreateInMemoryStore()
	require.NotNil(t, store)
	t.Cleanup(func() { _ = store.Close() })
}

func TestIdempotencyStoreFactory_CreateStore_FallsBack(t *testing.T) {
	f := NewIdempotencyStoreFactory(unreachableRedis())

	store, err := f.CreateStore()
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { _ = store.Close() })

	_, ok := store.(*InMemoryIdempotencyStore)
	assert.True(t, ok, "unreachable Redis should fall back to the in-memory store")
}

func TestIdempotencyStoreFactory_CreateStore_StrictMode(t *testing.T) {
	f := NewIdempotencyStoreFactory(unreachableRedis(), WithInMemoryFallback(false))

	store, err := f.CreateStore()
	require.Error(t, err)
	assert.Nil(t, store)
	assert.Contains(t, err.Error(), "Redis required")
}
