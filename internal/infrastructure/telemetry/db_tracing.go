package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/jewelry/backend/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultSlowQueryThreshold = 200 * time.Millisecond

type contextKey string

const queryStartTimeKey contextKey = "otel_query_start_time"

// DBTracingPlugin registers otelgorm plus callbacks that annotate the query
// span with row counts, errors and slow-query markers.
type DBTracingPlugin struct {
	enabled        bool
	logFullSQL     bool
	slowThreshold  time.Duration
	tracerProvider trace.TracerProvider
	logger         *zap.Logger
}

// NewDBTracingPlugin builds the plugin from the telemetry configuration.
// A nil tracer provider means the global one.
func NewDBTracingPlugin(cfg config.TelemetryConfig, tp trace.TracerProvider, logger *zap.Logger) *DBTracingPlugin {
	if logger == nil {
		logger = zap.NewNop()
	}
	thresh := cfg.DBSlowQueryThresh
	if thresh <= 0 {
		thresh = defaultSlowQueryThreshold
	}
	return &DBTracingPlugin{
		enabled:        cfg.Enabled && cfg.DBTraceEnabled,
		logFullSQL:     cfg.DBLogFullSQL,
		slowThreshold:  thresh,
		tracerProvider: tp,
		logger:         logger,
	}
}

// Register installs the plugin on db; a no-op when database tracing is off
func (p *DBTracingPlugin) Register(db *gorm.DB) error {
	if !p.enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName("postgresql")}
	if !p.logFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if p.tracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(p.tracerProvider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	cb := db.Callback()
	before := []struct {
		name string
		reg  func(string, func(*gorm.DB)) error
	}{
		{"otel_timing:before_create", cb.Create().Before("gorm:create").Register},
		{"otel_timing:before_query", cb.Query().Before("gorm:query").Register},
		{"otel_timing:before_update", cb.Update().Before("gorm:update").Register},
		{"otel_timing:before_delete", cb.Delete().Before("gorm:delete").Register},
		{"otel_timing:before_row", cb.Row().Before("gorm:row").Register},
		{"otel_timing:before_raw", cb.Raw().Before("gorm:raw").Register},
	}
	for _, b := range before {
		if err := b.reg(b.name, markQueryStart); err != nil {
			return err
		}
	}

	after := []struct {
		name string
		reg  func(string, func(*gorm.DB)) error
	}{
		{"otel_slow_query:create", cb.Create().After("gorm:create").Register},
		{"otel_slow_query:query", cb.Query().After("gorm:query").Register},
		{"otel_slow_query:update", cb.Update().After("gorm:update").Register},
		{"otel_slow_query:delete", cb.Delete().After("gorm:delete").Register},
		{"otel_slow_query:row", cb.Row().After("gorm:row").Register},
		{"otel_slow_query:raw", cb.Raw().After("gorm:raw").Register},
	}
	for _, a := range after {
		if err := a.reg(a.name, p.annotateSpan); err != nil {
			return err
		}
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.logFullSQL),
		zap.Duration("slow_query_threshold", p.slowThreshold),
	)
	return nil
}

func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
	}
}

func (p *DBTracingPlugin) annotateSpan(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if start, ok := ctx.Value(queryStartTimeKey).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > p.slowThreshold {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}
