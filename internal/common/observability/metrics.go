package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Observability bundles the OTel meter instruments and tracer used by sinks and workers.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	submitCounter  otelmetric.Int64Counter
	submitDuration otelmetric.Float64Histogram
	jobCounter     otelmetric.Int64Counter
	jobDuration    otelmetric.Float64Histogram
}

// New wires an OTel meter provider to the Prometheus exporter so the
// instruments show up next to the promauto metrics on /metrics.
func New(serviceName string, opts ...prometheus.Option) *Observability {
	exporter, err := prometheus.New(opts...)
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return NewNoop()
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)

	o := build(provider.Meter(serviceName), tp.Tracer(serviceName))
	o.meterProvider = provider
	o.tracerProvider = tp
	return o
}

// NewWithSpanProcessor records spans through sp and keeps metrics as no-ops.
// Nothing is registered globally.
func NewWithSpanProcessor(serviceName string, sp sdktrace.SpanProcessor) *Observability {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sp))
	o := build(metricnoop.NewMeterProvider().Meter(serviceName), tp.Tracer(serviceName))
	o.tracerProvider = tp
	return o
}

// NewNoop returns instruments that record nothing.
func NewNoop() *Observability {
	return build(metricnoop.NewMeterProvider().Meter("noop"), tracenoop.NewTracerProvider().Tracer("noop"))
}

func build(meter otelmetric.Meter, tracer trace.Tracer) *Observability {
	submitCounter, _ := meter.Int64Counter(
		"profile.submissions",
		otelmetric.WithDescription("Profile submissions by sink and outcome"),
	)
	submitDuration, _ := meter.Float64Histogram(
		"profile.submit.duration",
		otelmetric.WithDescription("Sink submit duration"),
		otelmetric.WithUnit("ms"),
	)
	jobCounter, _ := meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	)
	jobDuration, _ := meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		tracer:         tracer,
		submitCounter:  submitCounter,
		submitDuration: submitDuration,
		jobCounter:     jobCounter,
		jobDuration:    jobDuration,
	}
}

func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

func (o *Observability) RecordSubmission(ctx context.Context, sink, outcome string, duration time.Duration) {
	attrs := otelmetric.WithAttributes(
		attribute.String("sink", sink),
		attribute.String("outcome", outcome),
	)
	if o.submitCounter != nil {
		o.submitCounter.Add(ctx, 1, attrs)
	}
	if o.submitDuration != nil {
		o.submitDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) RecordJobProcessed(ctx context.Context, status string) {
	if o.jobCounter != nil {
		o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordJobDuration(ctx context.Context, duration time.Duration, status string) {
	if o.jobDuration != nil {
		o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
}
