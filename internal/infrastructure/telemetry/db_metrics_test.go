package telemetry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newDBMetricsFixture(t *testing.T, cfg DBMetricsConfig) (*DBMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := NewDBMetrics(provider.Meter("test"), cfg, zap.NewNop())
	require.NoError(t, err)
	return metrics, reader
}

func findMetric(rm metricdata.ResourceMetrics, name string) bool {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return true
			}
		}
	}
	return false
}

func TestDefaultDBMetricsConfig(t *testing.T) {
	cfg := DefaultDBMetricsConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThreshold)
	assert.Equal(t, 15*time.Second, cfg.PoolStatsInterval)
}

func TestNewDBMetrics(t *testing.T) {
	t.Run("creates all instruments", func(t *testing.T) {
		metrics, _ := newDBMetricsFixture(t, DefaultDBMetricsConfig())

		assert.NotNil(t, metrics.poolConnections)
		assert.NotNil(t, metrics.poolConnectionsMax)
		assert.NotNil(t, metrics.queryTotal)
		assert.NotNil(t, metrics.queryDuration)
		assert.NotNil(t, metrics.slowQueryTotal)
	})

	t.Run("applies defaults to zero config", func(t *testing.T) {
		metrics, _ := newDBMetricsFixture(t, DBMetricsConfig{})

		assert.Equal(t, 200*time.Millisecond, metrics.config.SlowQueryThreshold)
		assert.Equal(t, 15*time.Second, metrics.config.PoolStatsInterval)
	})

	t.Run("uses nop logger when nil", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		defer provider.Shutdown(context.Background())

		metrics, err := NewDBMetrics(provider.Meter("test"), DefaultDBMetricsConfig(), nil)
		require.NoError(t, err)
		require.NotNil(t, metrics.logger)
	})
}

func TestDBMetrics_RecordQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("records count and duration", func(t *testing.T) {
		metrics, reader := newDBMetricsFixture(t, DBMetricsConfig{
			Enabled:            true,
			SlowQueryThreshold: 200 * time.Millisecond,
		})

		metrics.RecordQuery(ctx, "SELECT", "salary_slips", 50*time.Millisecond, nil)

		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(ctx, &rm))

		assert.True(t, findMetric(rm, "db_query_total"))
		assert.True(t, findMetric(rm, "db_query_duration_seconds"))
	})

	t.Run("counts queries over the slow threshold", func(t *testing.T) {
		metrics, reader := newDBMetricsFixture(t, DBMetricsConfig{
			Enabled:            true,
			SlowQueryThreshold: 100 * time.Millisecond,
		})

		metrics.RecordQuery(ctx, "SELECT", "bonus_history", 250*time.Millisecond, nil)

		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(ctx, &rm))

		assert.True(t, findMetric(rm, "db_slow_query_total"))
	})

	t.Run("fast queries leave the slow counter at zero", func(t *testing.T) {
		metrics, reader := newDBMetricsFixture(t, DBMetricsConfig{
			Enabled:            true,
			SlowQueryThreshold: 200 * time.Millisecond,
		})

		metrics.RecordQuery(ctx, "SELECT", "score_parameters", 50*time.Millisecond, nil)

		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(ctx, &rm))

		for _, sm := range rm.ScopeMetrics {
			for _, m := range sm.Metrics {
				if m.Name == "db_slow_query_total" {
					sum := m.Data.(metricdata.Sum[int64])
					for _, dp := range sum.DataPoints {
						assert.Equal(t, int64(0), dp.Value)
					}
				}
			}
		}
	})

	t.Run("normalizes operation case and empty values", func(t *testing.T) {
		metrics, reader := newDBMetricsFixture(t, DefaultDBMetricsConfig())

		metrics.RecordQuery(ctx, "select", "salary_slips", 10*time.Millisecond, nil)
		metrics.RecordQuery(ctx, "Insert", "salary_slips", 10*time.Millisecond, nil)
		metrics.RecordQuery(ctx, "", "salary_slips", 10*time.Millisecond, nil) // recorded as UNKNOWN

		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(ctx, &rm))

		assert.True(t, findMetric(rm, "db_query_total"))
	})

	t.Run("slow query with empty table lands under unknown", func(t *testing.T) {
		metrics, reader := newDBMetricsFixture(t, DBMetricsConfig{
			Enabled:            true,
			SlowQueryThreshold: 50 * time.Millisecond,
		})

		metrics.RecordQuery(ctx, "SELECT", "", 100*time.Millisecond, nil)

		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(ctx, &rm))

		assert.True(t, findMetric(rm, "db_slow_query_total"))
	})
}

func TestDBMetrics_PoolStats(t *testing.T) {
	t.Run("samples pool stats on the configured interval", func(t *testing.T) {
		metrics, reader := newDBMetricsFixture(t, DBMetricsConfig{
			Enabled:           true,
			PoolStatsInterval: 50 * time.Millisecond,
		})

		mockDB, _, err := sqlmock.New()
		require.NoError(t, err)
		defer mockDB.Close()

		metrics.SetSQLDB(mockDB)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		metrics.StartPoolStatsCollection(ctx)
		time.Sleep(100 * time.Millisecond)
		metrics.Stop()

		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(context.Background(), &rm))

		assert.True(t, findMetric(rm, "db_pool_connections_max"))
		assert.True(t, findMetric(rm, "db_pool_connections"))
	})

	t.Run("refuses to start without a sql.DB", func(t *testing.T) {
		metrics, _ := newDBMetricsFixture(t, DefaultDBMetricsConfig())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		metrics.StartPoolStatsCollection(ctx)
		metrics.Stop()
	})

	t.Run("stops on context cancellation", func(t *testing.T) {
		metrics, _ := newDBMetricsFixture(t, DBMetricsConfig{
			Enabled:           true,
			PoolStatsInterval: time.Second,
		})

		mockDB, _, err := sqlmock.New()
		require.NoError(t, err)
		defer mockDB.Close()

		metrics.SetSQLDB(mockDB)

		ctx, cancel := context.WithCancel(context.Background())
		metrics.StartPoolStatsCollection(ctx)
		cancel()

		metrics.Stop()
	})
}

func TestDBMetrics_Stop(t *testing.T) {
	metrics, _ := newDBMetricsFixture(t, DBMetricsConfig{
		Enabled:           true,
		PoolStatsInterval: 100 * time.Millisecond,
	})

	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	metrics.SetSQLDB(mockDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics.StartPoolStatsCollection(ctx)

	done := make(chan struct{})
	go func() {
		metrics.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() blocked for too long")
	}

	// Repeat calls must not panic
	assert.NotPanics(t, metrics.Stop)
	assert.NotPanics(t, metrics.Stop)
}

func TestDBMetricsPlugin(t *testing.T) {
	metrics, _ := newDBMetricsFixture(t, DefaultDBMetricsConfig())
	plugin := NewDBMetricsPlugin(metrics, zap.NewNop())

	assert.Equal(t, "db_metrics", plugin.Name())

	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB}), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, plugin.Initialize(gormDB))
}

func TestDetectOperationType(t *testing.T) {
	tests := []struct {
		sql      string
		expected string
	}{
		{"SELECT * FROM salary_slips", "SELECT"},
		{"select id from score_parameters", "SELECT"},
		{"  SELECT id FROM users", "SELECT"},
		{"INSERT INTO bonus_history (tier) VALUES ('A')", "INSERT"},
		{"insert into attendance_records values (1)", "INSERT"},
		{"UPDATE salary_slips SET status = 'FINALIZED'", "UPDATE"},
		{"DELETE FROM score_parameters WHERE id = 1", "DELETE"},
		{"CREATE TABLE audit_logs", "OTHER"},
		{"TRUNCATE TABLE users", "OTHER"},
		{"", "OTHER"},
	}

	for _, tc := range tests {
		t.Run(tc.sql, func(t *testing.T) {
			assert.Equal(t, tc.expected, detectOperationType(tc.sql))
		})
	}
}

func TestDBMetrics_ConcurrentRecordQuery(t *testing.T) {
	ctx := context.Background()
	metrics, reader := newDBMetricsFixture(t, DefaultDBMetricsConfig())

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			operation := []string{"SELECT", "INSERT", "UPDATE", "DELETE"}[i%4]
			table := []string{"salary_slips", "bonus_history", "score_parameters", "attendance_records"}[i%4]
			metrics.RecordQuery(ctx, operation, table, time.Duration(i)*time.Millisecond, nil)
		}(i)
	}
	wg.Wait()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	assert.True(t, findMetric(rm, "db_query_total"))
}
