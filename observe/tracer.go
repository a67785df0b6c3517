package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// CacheMeta identifies a cache instance for telemetry purposes.
type CacheMeta struct {
	Name   string // cache instance name (required)
	Preset string // configuration preset (optional)
}

// SpanName returns the deterministic span name for a cache operation.
// Format: cache.<op>
func (m CacheMeta) SpanName(op string) string {
	return "cache." + op
}

// Tracer wraps OpenTelemetry tracing with cache-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a span for a cache operation. start may lie in the
	// past when spans are reconstructed from completion hooks.
	StartSpan(ctx context.Context, meta CacheMeta, op string, start time.Time) (context.Context, trace.Span)

	// EndSpan ends the span, recording hit/tier outcome and any error.
	EndSpan(span trace.Span, hit bool, tier string, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartSpan(ctx context.Context, meta CacheMeta, op string, start time.Time) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("cache.name", meta.Name),
		attribute.String("cache.op", op),
	}
	if meta.Preset != "" {
		attrs = append(attrs, attribute.String("cache.preset", meta.Preset))
	}

	return t.tracer.Start(ctx, meta.SpanName(op),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithTimestamp(start),
	)
}

func (t *tracerImpl) EndSpan(span trace.Span, hit bool, tier string, err error) {
	span.SetAttributes(attribute.Bool("cache.hit", hit))
	if tier != "" {
		span.SetAttributes(attribute.String("cache.tier", tier))
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// NewNoopTracer creates a no-op tracer.
func NewNoopTracer() Tracer {
	return &noopTracer{noop: tracenoop.NewTracerProvider().Tracer("noop")}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta CacheMeta, op string, start time.Time) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName(op))
}

func (t *noopTracer) EndSpan(span trace.Span, hit bool, tier string, err error) {
	span.End()
}
