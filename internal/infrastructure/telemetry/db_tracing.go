// GORM query tracing: otelgorm spans plus slow-query and error marking.
package telemetry

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig controls span creation for database statements.
type DBTracingConfig struct {
	Enabled bool
	// LogFullSQL includes bound query variables in span attributes. Leave off
	// outside development: slips and salary structures carry amounts.
	LogFullSQL bool
	// SlowQueryThresh marks spans slower than this (default 200ms).
	SlowQueryThresh  time.Duration
	DBSystem         string
	WithoutVariables bool
}

// DefaultDBTracingConfig returns the secure-by-default settings.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		Enabled:          false,
		LogFullSQL:       false,
		SlowQueryThresh:  200 * time.Millisecond,
		DBSystem:         "postgresql",
		WithoutVariables: true,
	}
}

// DBTracingPlugin wraps otelgorm with slow-query detection and error marking.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates the tracing plugin. RegisterOtelGorm attaches it.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	return &DBTracingPlugin{
		config: cfg,
		logger: logger,
	}
}

// RegisterOtelGorm installs the otelgorm plugin and the timing callbacks on
// the given GORM instance. A no-op when tracing is disabled.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName(p.config.DBSystem),
	}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}

	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	if err := p.registerTimingCallbacks(db); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
		zap.String("db_system", p.config.DBSystem),
	)

	return nil
}

// registerTimingCallbacks registers a start-time stamp before each operation
// kind and the slow-query/error inspection after it. The after callback runs
// once otelgorm has opened the span, so the attributes land on that span.
func (p *DBTracingPlugin) registerTimingCallbacks(db *gorm.DB) error {
	before := func(db *gorm.DB) {
		if db.Statement.Context != nil {
			db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
		}
	}

	regs := []struct {
		before func(string, func(*gorm.DB)) error
		after  func(string, func(*gorm.DB)) error
		name   string
	}{
		{
			before: db.Callback().Create().Before("gorm:create").Register,
			after:  db.Callback().Create().After("gorm:create").Register,
			name:   "create",
		},
		{
			before: db.Callback().Query().Before("gorm:query").Register,
			after:  db.Callback().Query().After("gorm:query").Register,
			name:   "query",
		},
		{
			before: db.Callback().Update().Before("gorm:update").Register,
			after:  db.Callback().Update().After("gorm:update").Register,
			name:   "update",
		},
		{
			before: db.Callback().Delete().Before("gorm:delete").Register,
			after:  db.Callback().Delete().After("gorm:delete").Register,
			name:   "delete",
		},
		{
			before: db.Callback().Row().Before("gorm:row").Register,
			after:  db.Callback().Row().After("gorm:row").Register,
			name:   "row",
		},
		{
			before: db.Callback().Raw().Before("gorm:raw").Register,
			after:  db.Callback().Raw().After("gorm:raw").Register,
			name:   "raw",
		},
	}

	for _, r := range regs {
		if err := r.before("otel_timing:before_"+r.name, before); err != nil {
			return err
		}
		if err := r.after("otel_slow_query:"+r.name, p.inspectSpan); err != nil {
			return err
		}
	}

	return nil
}

// inspectSpan enriches the active statement span: rows affected, table name,
// error status, and a slow_query_warning event when the threshold is crossed.
func (p *DBTracingPlugin) inspectSpan(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}

	// ErrRecordNotFound is an expected lookup outcome, not a span failure
	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if startTime, ok := ctx.Value(queryStartTimeKey).(time.Time); ok {
		elapsed := time.Since(startTime)
		if elapsed > p.config.SlowQueryThresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
			span.AddEvent("slow_query_warning", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
			))
		}
	}
}

type contextKey string

const queryStartTimeKey contextKey = "otel_query_start_time"
