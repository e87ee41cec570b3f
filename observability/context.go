package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Operation tracks one traced unit of work, such as a generate run or an
// HTTP byte stream.
type Operation struct {
	Name      string
	Generator string
	StartTime time.Time
	Metrics   *Metrics
}

// NewOperation creates an operation. If metrics is nil, metric recording is
// silently skipped.
func NewOperation(name, generator string, metrics *Metrics) *Operation {
	return &Operation{
		Name:      name,
		Generator: generator,
		StartTime: time.Now(),
		Metrics:   metrics,
	}
}

type operationKey struct{}

// WithOperation stores an Operation in the context.
func WithOperation(ctx context.Context, op *Operation) context.Context {
	return context.WithValue(ctx, operationKey{}, op)
}

// OperationFromContext retrieves the Operation from context, or nil.
func OperationFromContext(ctx context.Context) *Operation {
	if op, ok := ctx.Value(operationKey{}).(*Operation); ok {
		return op
	}
	return nil
}

// Start opens the operation's span and records the request start metric.
func (op *Operation) Start(ctx context.Context, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, spanName)
	span.SetAttributes(attribute.String(AttrGenerator, op.Generator))
	span.SetAttributes(attrs...)
	if op.Metrics != nil {
		op.Metrics.RecordRequestStart(ctx)
	}
	return WithOperation(ctx, op), span
}

// End closes the span and records the request end metric.
func (op *Operation) End(ctx context.Context, span trace.Span, err error, attrs ...attribute.KeyValue) {
	duration := time.Since(op.StartTime)
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
	}
	span.SetAttributes(attrs...)
	span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	span.End()

	if op.Metrics != nil {
		op.Metrics.RecordRequestEnd(ctx, op.Name, status, duration)
	}
}

// Duration returns the elapsed time since the operation started.
func (op *Operation) Duration() time.Duration {
	return time.Since(op.StartTime)
}
