package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records cache operation metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordOperation records one completed cache operation. errKind is
	// the error classification, empty on success.
	RecordOperation(ctx context.Context, meta CacheMeta, op, tier string, hit bool, duration time.Duration, errKind string)
}

type metricsImpl struct {
	meter        metric.Meter
	totalCount   metric.Int64Counter
	hitCount     metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewMetrics creates a Metrics instance with the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		"cache.op.total",
		metric.WithDescription("Total number of cache operations"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	hitCount, err := meter.Int64Counter(
		"cache.op.hits",
		metric.WithDescription("Cache lookups served from either tier"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"cache.op.errors",
		metric.WithDescription("Total number of failed cache operations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"cache.op.duration_ms",
		metric.WithDescription("Cache operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		totalCount:   totalCount,
		hitCount:     hitCount,
		errorCount:   errorCount,
		durationHist: durationHist,
	}, nil
}

func (m *metricsImpl) RecordOperation(ctx context.Context, meta CacheMeta, op, tier string, hit bool, duration time.Duration, errKind string) {
	attrs := []attribute.KeyValue{
		attribute.String("cache.name", meta.Name),
		attribute.String("cache.op", op),
	}
	if meta.Preset != "" {
		attrs = append(attrs, attribute.String("cache.preset", meta.Preset))
	}

	opt := metric.WithAttributes(attrs...)

	m.totalCount.Add(ctx, 1, opt)

	if hit {
		hitAttrs := append(attrs, attribute.String("cache.tier", tier))
		m.hitCount.Add(ctx, 1, metric.WithAttributes(hitAttrs...))
	}

	if errKind != "" {
		errAttrs := append(attrs, attribute.String("error.kind", errKind))
		m.errorCount.Add(ctx, 1, metric.WithAttributes(errAttrs...))
	}

	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000.0, opt)
}

// NoopMetrics is a metrics implementation that does nothing.
type NoopMetrics struct{}

func (NoopMetrics) RecordOperation(ctx context.Context, meta CacheMeta, op, tier string, hit bool, duration time.Duration, errKind string) {
}
