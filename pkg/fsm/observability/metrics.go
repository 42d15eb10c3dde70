package observability

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records fsm engine metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordRunStart records the start of a simulation run.
	RecordRunStart(ctx context.Context)

	// RecordStep records a Step call with its outcome and duration.
	RecordStep(ctx context.Context, outcome string, duration time.Duration)

	// RecordSnapshot records a persisted run snapshot.
	RecordSnapshot(ctx context.Context, sizeBytes int64)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	runs         metric.Int64Counter
	steps        metric.Int64Counter
	stepLatency  metric.Float64Histogram
	snapshotSize metric.Int64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("fsm")

	runs, err := meter.Int64Counter("fsm.simulation.runs",
		metric.WithDescription("Number of simulation runs started"),
	)
	if err != nil {
		return nil, err
	}

	steps, err := meter.Int64Counter("fsm.simulation.steps",
		metric.WithDescription("Number of Step calls by outcome"),
	)
	if err != nil {
		return nil, err
	}

	stepLatency, err := meter.Float64Histogram("fsm.step.latency_ms",
		metric.WithDescription("Step latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	snapshotSize, err := meter.Int64Histogram("fsm.snapshot.size_bytes",
		metric.WithDescription("Run snapshot size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		runs:         runs,
		steps:        steps,
		stepLatency:  stepLatency,
		snapshotSize: snapshotSize,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder backed by OpenTelemetry.
// If instrument creation fails, a no-op recorder is returned.
//
// The recorder uses the global OTel meter provider. Configure the
// provider before calling this function:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		return NoopMetrics{}
	}
	return m
}

// RecordRunStart implements MetricsRecorder.
func (m *otelMetrics) RecordRunStart(ctx context.Context) {
	m.runs.Add(ctx, 1)
}

// RecordStep implements MetricsRecorder.
func (m *otelMetrics) RecordStep(ctx context.Context, outcome string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.steps.Add(ctx, 1, attrs)
	if outcome == "transitioned" {
		m.stepLatency.Record(ctx, float64(duration.Microseconds())/1000.0, attrs)
	}
}

// RecordSnapshot implements MetricsRecorder.
func (m *otelMetrics) RecordSnapshot(ctx context.Context, sizeBytes int64) {
	m.snapshotSize.Record(ctx, sizeBytes)
}
