package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	provider, err := NewLoggerProvider(ctx, LogsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "payops-backend",
		Insecure:          true,
	}, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, provider)
	assert.False(t, provider.IsEnabled())
	assert.Nil(t, provider.GetLoggerProvider())

	// Shutdown on a disabled provider is a no-op
	assert.NoError(t, provider.Shutdown(ctx))
}

func TestLoggerProvider_GetConfig(t *testing.T) {
	cfg := LogsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "payops-backend",
		Insecure:          true,
	}

	provider, err := NewLoggerProvider(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, cfg, provider.GetConfig())
}

func TestLoggerProvider_ForceFlush_Disabled(t *testing.T) {
	provider, err := NewLoggerProvider(context.Background(), LogsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	assert.NoError(t, provider.ForceFlush(context.Background()))
}

func TestLoggerProvider_Shutdown_MultipleCalls(t *testing.T) {
	ctx := context.Background()

	provider, err := NewLoggerProvider(ctx, LogsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	assert.NoError(t, provider.Shutdown(ctx))
	assert.NoError(t, provider.Shutdown(ctx))
}

// An enabled provider without a reachable collector still constructs; the
// batch processor buffers entries until the endpoint comes up.
func TestNewLoggerProvider_EnabledButNoCollector(t *testing.T) {
	ctx := context.Background()

	provider, err := NewLoggerProvider(ctx, LogsConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:19999",
		ServiceName:       "payops-backend",
		Insecure:          true,
	}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, provider)
	assert.True(t, provider.IsEnabled())
	assert.NotNil(t, provider.GetLoggerProvider())

	assert.NoError(t, provider.Shutdown(ctx))
}

func TestNewZapOTELCore_NilProvider(t *testing.T) {
	core := NewZapOTELCore(ZapBridgeConfig{
		ServiceName:    "payops-backend",
		LoggerProvider: nil,
		Level:          zapcore.InfoLevel,
	})
	require.NotNil(t, core)

	// No-op core when the bridge has nowhere to send
	assert.False(t, core.Enabled(zapcore.InfoLevel))
}

func TestNewZapOTELCore_DisabledProvider(t *testing.T) {
	provider, err := NewLoggerProvider(context.Background(), LogsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	core := NewZapOTELCore(ZapBridgeConfig{
		ServiceName:    "payops-backend",
		LoggerProvider: provider,
		Level:          zapcore.InfoLevel,
	})
	require.NotNil(t, core)
	assert.False(t, core.Enabled(zapcore.InfoLevel))
}

func TestNewZapOTELCore_WithEnabledProvider(t *testing.T) {
	ctx := context.Background()

	provider, err := NewLoggerProvider(ctx, LogsConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:19999",
		ServiceName:       "payops-backend",
		Insecure:          true,
	}, zap.NewNop())
	require.NoError(t, err)
	defer provider.Shutdown(ctx)

	core := NewZapOTELCore(ZapBridgeConfig{
		ServiceName:    "payops-backend",
		LoggerProvider: provider,
		Level:          zapcore.DebugLevel,
	})
	require.NotNil(t, core)

	assert.True(t, core.Enabled(zapcore.DebugLevel))
	assert.True(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.ErrorLevel))
}

func TestNewZapOTELCore_WithLevelFilter(t *testing.T) {
	ctx := context.Background()

	provider, err := NewLoggerProvider(ctx, LogsConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:19999",
		ServiceName:       "payops-backend",
		Insecure:          true,
	}, zap.NewNop())
	require.NoError(t, err)
	defer provider.Shutdown(ctx)

	core := NewZapOTELCore(ZapBridgeConfig{
		ServiceName:    "payops-backend",
		LoggerProvider: provider,
		Level:          zapcore.WarnLevel,
	})
	require.NotNil(t, core)

	_, isFiltered := core.(*minLevelCore)
	assert.True(t, isFiltered, "core should enforce the level floor")

	assert.False(t, core.Enabled(zapcore.DebugLevel))
	assert.False(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.WarnLevel))
	assert.True(t, core.Enabled(zapcore.ErrorLevel))
}

func TestNewBridgedLogger(t *testing.T) {
	observedCore, observedLogs := observer.New(zapcore.InfoLevel)

	// Nop OTEL core stands in for the collector side
	logger := NewBridgedLogger(observedCore, zapcore.NewNopCore(), zap.AddCaller())

	logger.Info("slip generated", zap.String("month", "2026-08"))
	logger.Debug("per-parameter score detail") // below InfoLevel, dropped
	logger.Warn("discrepancy above threshold")

	logs := observedLogs.All()
	require.Len(t, logs, 2)

	assert.Equal(t, "slip generated", logs[0].Message)
	assert.Equal(t, zapcore.InfoLevel, logs[0].Level)
	assert.Contains(t, logs[0].Context, zap.String("month", "2026-08"))

	assert.Equal(t, "discrepancy above threshold", logs[1].Message)
	assert.Equal(t, zapcore.WarnLevel, logs[1].Level)
}

func TestMinLevelCore(t *testing.T) {
	observedCore, observedLogs := observer.New(zapcore.DebugLevel)

	filtered := &minLevelCore{
		Core: observedCore,
		min:  zapcore.WarnLevel,
	}

	assert.True(t, filtered.Enabled(zapcore.WarnLevel))
	assert.True(t, filtered.Enabled(zapcore.ErrorLevel))
	assert.False(t, filtered.Enabled(zapcore.InfoLevel))
	assert.False(t, filtered.Enabled(zapcore.DebugLevel))

	logger := zap.New(filtered)
	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")

	logs := observedLogs.All()
	require.Len(t, logs, 2)
	assert.Equal(t, "warn", logs[0].Message)
	assert.Equal(t, "error", logs[1].Message)
}

func TestMinLevelCore_With(t *testing.T) {
	observedCore, observedLogs := observer.New(zapcore.DebugLevel)

	filtered := &minLevelCore{
		Core: observedCore,
		min:  zapcore.WarnLevel,
	}

	child := filtered.With([]zapcore.Field{zap.String("tenant_id", "t-1")})
	lfCore, ok := child.(*minLevelCore)
	require.True(t, ok, "With must preserve the level filter")
	assert.Equal(t, zapcore.WarnLevel, lfCore.min)

	zap.New(child).Warn("unfinalized slips remain")

	logs := observedLogs.All()
	require.Len(t, logs, 1)
	assert.Equal(t, "unfinalized slips remain", logs[0].Message)
	assert.Contains(t, logs[0].Context, zap.String("tenant_id", "t-1"))
}
