package observe

import (
	"context"
	"time"

	"github.com/jonwraymond/tiercache/cache"
)

// Instrumentation turns cache hook events into spans, metrics, and logs.
//
// Contract:
//   - Concurrency: Hook() returns a hook safe for concurrent invocation.
//   - Errors: telemetry failures are swallowed; hooks never disturb the
//     cache operation that triggered them.
type Instrumentation struct {
	meta    CacheMeta
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewInstrumentation creates an Instrumentation from explicit components.
func NewInstrumentation(meta CacheMeta, tracer Tracer, metrics Metrics, logger Logger) *Instrumentation {
	return &Instrumentation{
		meta:    meta,
		tracer:  tracer,
		metrics: metrics,
		logger:  logger.WithCache(meta),
	}
}

// FromObserver creates an Instrumentation from an Observer.
func FromObserver(obs Observer, meta CacheMeta) (*Instrumentation, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewInstrumentation(meta, NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

// Hook returns a cache.Hook that records every completed operation. Spans
// are reconstructed from the event's duration so they line up with the
// operation's wall time.
func (i *Instrumentation) Hook() cache.Hook {
	return func(e cache.Event) {
		ctx := context.Background()
		op := string(e.Op)
		errKind := string(e.ErrKind())

		start := time.Now().Add(-e.Duration)
		_, span := i.tracer.StartSpan(ctx, i.meta, op, start)
		i.tracer.EndSpan(span, e.Hit, e.Tier, e.Err)

		i.metrics.RecordOperation(ctx, i.meta, op, e.Tier, e.Hit, e.Duration, errKind)

		fields := []Field{
			{Key: "op", Value: op},
			{Key: "key", Value: e.Key},
			{Key: "duration_ms", Value: float64(e.Duration.Microseconds()) / 1000.0},
		}
		switch {
		case e.Err != nil:
			fields = append(fields, Field{Key: "error", Value: e.Err.Error()}, Field{Key: "error_kind", Value: errKind})
			i.logger.Error(ctx, "cache operation failed", fields...)
		case e.Hit:
			fields = append(fields, Field{Key: "tier", Value: e.Tier})
			i.logger.Debug(ctx, "cache hit", fields...)
		default:
			i.logger.Debug(ctx, "cache operation completed", fields...)
		}
	}
}
