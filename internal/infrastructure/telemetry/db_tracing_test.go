package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedSlip struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    string `gorm:"size:64"`
	Status    string `gorm:"size:16"`
	CreatedAt time.Time
}

func setupTracingDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedSlip{}))

	return db
}

func setupSpanRecorder(t *testing.T) (*trace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := trace.NewTracerProvider(trace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp, recorder
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()

	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL, "bound variables stay out of spans unless opted in")
	assert.True(t, cfg.WithoutVariables)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "postgresql", cfg.DBSystem)
}

func TestDBTracingPlugin_RegisterOtelGorm(t *testing.T) {
	t.Run("disabled is a no-op", func(t *testing.T) {
		plugin := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())
		assert.NoError(t, plugin.RegisterOtelGorm(setupTracingDB(t)))
	})

	t.Run("enabled registers plugin and callbacks", func(t *testing.T) {
		plugin := NewDBTracingPlugin(DBTracingConfig{
			Enabled:          true,
			SlowQueryThresh:  200 * time.Millisecond,
			DBSystem:         "sqlite",
			WithoutVariables: true,
		}, zap.NewNop())
		assert.NoError(t, plugin.RegisterOtelGorm(setupTracingDB(t)))
	})

	t.Run("full SQL mode registers", func(t *testing.T) {
		plugin := NewDBTracingPlugin(DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      true,
			SlowQueryThresh: 200 * time.Millisecond,
			DBSystem:        "sqlite",
		}, zap.NewNop())
		assert.NoError(t, plugin.RegisterOtelGorm(setupTracingDB(t)))
	})

	t.Run("double registration fails on duplicate callback names", func(t *testing.T) {
		db := setupTracingDB(t)
		plugin := NewDBTracingPlugin(DBTracingConfig{
			Enabled:         true,
			SlowQueryThresh: 200 * time.Millisecond,
			DBSystem:        "sqlite",
		}, zap.NewNop())

		require.NoError(t, plugin.RegisterOtelGorm(db))
		assert.Error(t, plugin.RegisterOtelGorm(db))
	})
}

func TestInspectSpan_RowsAffected(t *testing.T) {
	db := setupTracingDB(t)
	tp, recorder := setupSpanRecorder(t)

	plugin := NewDBTracingPlugin(DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "sqlite",
	}, zap.NewNop())

	ctx, span := tp.Tracer("test").Start(context.Background(), "generate-slips")

	slips := []tracedSlip{
		{UserID: "u-1", Status: "DRAFT"},
		{UserID: "u-2", Status: "DRAFT"},
		{UserID: "u-3", Status: "DRAFT"},
	}
	result := db.WithContext(ctx).Create(&slips)
	require.NoError(t, result.Error)

	plugin.inspectSpan(result.Statement.DB)
	span.End()

	spans := recorder.Ended()
	require.NotEmpty(t, spans)

	foundRows := false
	for _, attr := range spans[0].Attributes() {
		if attr.Key == "db.rows_affected" {
			foundRows = true
			assert.Equal(t, int64(3), attr.Value.AsInt64())
		}
	}
	assert.True(t, foundRows, "db.rows_affected attribute should be present")
}

func TestInspectSpan_RecordNotFoundIsNotAnError(t *testing.T) {
	db := setupTracingDB(t)
	tp, recorder := setupSpanRecorder(t)

	plugin := NewDBTracingPlugin(DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "sqlite",
	}, zap.NewNop())

	ctx, span := tp.Tracer("test").Start(context.Background(), "lookup-missing-slip")

	var slip tracedSlip
	tx := db.WithContext(ctx).First(&slip, 99999)
	require.ErrorIs(t, tx.Error, gorm.ErrRecordNotFound)

	plugin.inspectSpan(tx)
	span.End()

	spans := recorder.Ended()
	require.NotEmpty(t, spans)
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
}

func TestInspectSpan_SlowQueryEvent(t *testing.T) {
	db := setupTracingDB(t)
	tp, recorder := setupSpanRecorder(t)

	plugin := NewDBTracingPlugin(DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: time.Nanosecond, // everything is slow
		DBSystem:        "sqlite",
	}, zap.NewNop())

	ctx, span := tp.Tracer("test").Start(context.Background(), "slow-query")
	ctx = context.WithValue(ctx, queryStartTimeKey, time.Now())
	time.Sleep(time.Millisecond)

	var slip tracedSlip
	tx := db.WithContext(ctx).First(&slip)

	plugin.inspectSpan(tx)
	span.End()

	spans := recorder.Ended()
	require.NotEmpty(t, spans)

	foundEvent := false
	for _, event := range spans[0].Events() {
		if event.Name == "slow_query_warning" {
			foundEvent = true
			for _, attr := range event.Attributes {
				if attr.Key == "duration_ms" {
					assert.Greater(t, attr.Value.AsInt64(), int64(0))
				}
			}
		}
	}
	assert.True(t, foundEvent, "slow_query_warning event should be recorded")
}

func TestInspectSpan_NoRecordingSpan(t *testing.T) {
	db := setupTracingDB(t)

	plugin := NewDBTracingPlugin(DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "sqlite",
	}, zap.NewNop())

	// No span in context, no statement context at all — both must be safe
	plugin.inspectSpan(db.WithContext(context.Background()))
	plugin.inspectSpan(db)
}

func TestDBTracing_Integration(t *testing.T) {
	db := setupTracingDB(t)
	tp, recorder := setupSpanRecorder(t)

	plugin := NewDBTracingPlugin(DBTracingConfig{
		Enabled:         true,
		LogFullSQL:      true,
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "sqlite",
	}, zap.NewNop())
	require.NoError(t, plugin.RegisterOtelGorm(db))

	ctx, span := tp.Tracer("test").Start(context.Background(), "reconcile")

	scoped := db.WithContext(ctx)
	require.NoError(t, scoped.Create(&tracedSlip{UserID: "u-9", Status: "GENERATED"}).Error)

	var found tracedSlip
	require.NoError(t, scoped.First(&found, "user_id = ?", "u-9").Error)
	assert.Equal(t, "GENERATED", found.Status)

	span.End()
	assert.NotEmpty(t, recorder.Ended())
}
