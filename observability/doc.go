// Package observability provides OpenTelemetry tracing and metrics for
// streamgen.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("streamgen"))
//	defer tp.Shutdown(ctx)
//
// Stream metrics plug into an adapter as its Observer:
//
//	metrics, err := observability.NewMetrics(observability.Meter("streamgen"))
//	r, err := stream.NewReadable(factory, opts,
//	    adapter.WithObserver(metrics.Observer(ctx, "mt19937")))
//
// Operations pair a span with the request metrics:
//
//	op := observability.NewOperation("generate", "mt19937", metrics)
//	ctx, span := op.Start(ctx, observability.SpanGenerate)
//	defer func() { op.End(ctx, span, err) }()
package observability
