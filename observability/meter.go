package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/streamgen/adapter"
	"github.com/kbukum/streamgen/errors"
	"github.com/kbukum/streamgen/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the stream and request instruments.
type Metrics struct {
	chunks          metric.Int64Counter
	bytes           metric.Int64Counter
	chunkSize       metric.Int64Histogram
	pauses          metric.Int64Counter
	ends            metric.Int64Counter
	failures        metric.Int64Counter
	requestActive   metric.Int64UpDownCounter
	requestDuration metric.Float64Histogram
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)
	if m.chunks, err = meter.Int64Counter("stream.chunks",
		metric.WithDescription("Chunks pushed downstream"),
	); err != nil {
		return nil, fmt.Errorf("creating stream.chunks counter: %w", err)
	}
	if m.bytes, err = meter.Int64Counter("stream.bytes",
		metric.WithDescription("Bytes pushed downstream"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, fmt.Errorf("creating stream.bytes counter: %w", err)
	}
	if m.chunkSize, err = meter.Int64Histogram("stream.chunk.size",
		metric.WithDescription("Size of pushed chunks"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, fmt.Errorf("creating stream.chunk.size histogram: %w", err)
	}
	if m.pauses, err = meter.Int64Counter("stream.pauses",
		metric.WithDescription("Times production paused on a saturated sink"),
	); err != nil {
		return nil, fmt.Errorf("creating stream.pauses counter: %w", err)
	}
	if m.ends, err = meter.Int64Counter("stream.ends",
		metric.WithDescription("Streams that ended on producer exhaustion"),
	); err != nil {
		return nil, fmt.Errorf("creating stream.ends counter: %w", err)
	}
	if m.failures, err = meter.Int64Counter("stream.failures",
		metric.WithDescription("Streams that ended on a producer failure"),
	); err != nil {
		return nil, fmt.Errorf("creating stream.failures counter: %w", err)
	}
	if m.requestActive, err = meter.Int64UpDownCounter("request.active",
		metric.WithDescription("Number of in-flight stream requests"),
	); err != nil {
		return nil, fmt.Errorf("creating request.active gauge: %w", err)
	}
	if m.requestDuration, err = meter.Float64Histogram("request.duration",
		metric.WithDescription("Duration of stream requests in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating request.duration histogram: %w", err)
	}
	return &m, nil
}

// RecordRequestStart increments the in-flight request count.
func (m *Metrics) RecordRequestStart(ctx context.Context) {
	m.requestActive.Add(ctx, 1)
}

// RecordRequestEnd decrements in-flight requests and records the duration.
func (m *Metrics) RecordRequestEnd(ctx context.Context, operation, status string, duration time.Duration) {
	m.requestActive.Add(ctx, -1)
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
}

// Observer returns an adapter.Observer recording into m, tagging every
// measurement with the generator name.
func (m *Metrics) Observer(ctx context.Context, generator string) adapter.Observer {
	return &streamObserver{
		m:     m,
		ctx:   ctx,
		attrs: metric.WithAttributes(attribute.String("generator", generator)),
		gen:   generator,
	}
}

type streamObserver struct {
	m     *Metrics
	ctx   context.Context
	attrs metric.MeasurementOption
	gen   string
}

func (o *streamObserver) ChunkPushed(n int) {
	o.m.chunks.Add(o.ctx, 1, o.attrs)
	o.m.bytes.Add(o.ctx, int64(n), o.attrs)
	o.m.chunkSize.Record(o.ctx, int64(n), o.attrs)
}

func (o *streamObserver) Paused() {
	o.m.pauses.Add(o.ctx, 1, o.attrs)
}

func (o *streamObserver) Ended(int64) {
	o.m.ends.Add(o.ctx, 1, o.attrs)
}

func (o *streamObserver) Failed(err error) {
	o.m.failures.Add(o.ctx, 1, metric.WithAttributes(
		attribute.String("generator", o.gen),
		attribute.String("code", string(errors.CodeOf(err))),
	))
}
