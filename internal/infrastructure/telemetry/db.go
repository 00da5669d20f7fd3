package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/autodealer/backend/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultSlowQueryThreshold = 200 * time.Millisecond

type queryStartKey struct{}

// InstrumentDB adds otelgorm spans, slow-query span annotations and
// connection pool gauges. Pool gauges are registered whenever meter is set;
// tracing only when cfg.DBTraceEnabled.
func InstrumentDB(db *gorm.DB, cfg config.TelemetryConfig, meter metric.Meter, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if meter != nil {
		if err := registerPoolGauges(db, meter); err != nil {
			return err
		}
	}
	if !cfg.DBTraceEnabled {
		return nil
	}

	// Pool stats come from registerPoolGauges
	opts := []otelgorm.Option{otelgorm.WithDBName("postgresql"), otelgorm.WithoutMetrics()}
	if !cfg.DBLogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	thresh := cfg.DBSlowQueryThresh
	if thresh <= 0 {
		thresh = defaultSlowQueryThreshold
	}
	if err := registerSpanCallbacks(db, thresh); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.DBLogFullSQL),
		zap.Duration("slow_query_threshold", thresh))
	return nil
}

func registerSpanCallbacks(db *gorm.DB, thresh time.Duration) error {
	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	// Runs before otelgorm ends its span
	after := func(tx *gorm.DB) {
		annotateSpan(tx, thresh)
	}

	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register("telemetry:before_create", before),
		cb.Query().Before("gorm:query").Register("telemetry:before_query", before),
		cb.Update().Before("gorm:update").Register("telemetry:before_update", before),
		cb.Delete().Before("gorm:delete").Register("telemetry:before_delete", before),
		cb.Row().Before("gorm:row").Register("telemetry:before_row", before),
		cb.Raw().Before("gorm:raw").Register("telemetry:before_raw", before),
		cb.Create().After("gorm:create").Before("otel:after:create").Register("telemetry:after_create", after),
		cb.Query().After("gorm:query").Before("otel:after:select").Register("telemetry:after_query", after),
		cb.Update().After("gorm:update").Before("otel:after:update").Register("telemetry:after_update", after),
		cb.Delete().After("gorm:delete").Before("otel:after:delete").Register("telemetry:after_delete", after),
		cb.Row().After("gorm:row").Before("otel:after:row").Register("telemetry:after_row", after),
		cb.Raw().After("gorm:raw").Before("otel:after:raw").Register("telemetry:after_raw", after),
	)
}

// annotateSpan marks errors and slow statements on the current span
func annotateSpan(tx *gorm.DB, thresh time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))

	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, tx.Error.Error())
		span.RecordError(tx.Error)
	}

	if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > thresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}

func registerPoolGauges(db *gorm.DB, meter metric.Meter) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	open, err := meter.Int64ObservableGauge("dealer_db_connections_open",
		metric.WithDescription("Open database connections"))
	if err != nil {
		return err
	}
	inUse, err := meter.Int64ObservableGauge("dealer_db_connections_in_use",
		metric.WithDescription("Database connections currently in use"))
	if err != nil {
		return err
	}
	waitCount, err := meter.Int64ObservableCounter("dealer_db_connections_wait_total",
		metric.WithDescription("Times a query waited for a free connection"))
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(open, int64(stats.OpenConnections))
		o.ObserveInt64(inUse, int64(stats.InUse))
		o.ObserveInt64(waitCount, stats.WaitCount)
		return nil
	}, open, inUse, waitCount)
	return err
}
