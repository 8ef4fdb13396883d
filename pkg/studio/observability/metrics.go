package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records studio client metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordRequest records an API request with its duration and error status.
	RecordRequest(ctx context.Context, endpoint string, duration time.Duration, err error)

	// RecordDiscovery records a discovery evaluation. cacheHit is true
	// when the cache tag matched and no network call was made.
	RecordDiscovery(ctx context.Context, rule string, cacheHit bool)

	// RecordJob records a workflow job reaching a terminal state.
	RecordJob(ctx context.Context, success bool, duration time.Duration)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	requests       metric.Int64Counter
	requestLatency metric.Float64Histogram
	requestErrors  metric.Int64Counter
	discoveries    metric.Int64Counter
	jobs           metric.Int64Counter
	jobLatency     metric.Float64Histogram
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
	meter := otel.Meter("studiograph")

	requests, err := meter.Int64Counter("studio.requests",
		metric.WithDescription("Number of API requests"),
	)
	if err != nil {
		return nil, err
	}

	requestLatency, err := meter.Float64Histogram("studio.request.latency_ms",
		metric.WithDescription("API request latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	requestErrors, err := meter.Int64Counter("studio.request.errors",
		metric.WithDescription("Number of failed API requests"),
	)
	if err != nil {
		return nil, err
	}

	discoveries, err := meter.Int64Counter("studio.discovery.evaluations",
		metric.WithDescription("Number of discovery rule evaluations"),
	)
	if err != nil {
		return nil, err
	}

	jobs, err := meter.Int64Counter("studio.jobs",
		metric.WithDescription("Number of workflow jobs reaching a terminal state"),
	)
	if err != nil {
		return nil, err
	}

	jobLatency, err := meter.Float64Histogram("studio.job.latency_ms",
		metric.WithDescription("Workflow job duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		requests:       requests,
		requestLatency: requestLatency,
		requestErrors:  requestErrors,
		discoveries:    discoveries,
		jobs:           jobs,
		jobLatency:     jobLatency,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder backed by the global
// OTel meter provider. If meter creation fails the error is logged and
// a no-op recorder is returned; metrics never break the client.
func NewMetricsRecorder(logger *slog.Logger) MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		if logger != nil {
			logger.Warn("metrics disabled", slog.String("error", err.Error()))
		}
		return NoopMetrics{}
	}
	return m
}

// RecordRequest implements MetricsRecorder.
func (m *otelMetrics) RecordRequest(ctx context.Context, endpoint string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("endpoint", endpoint))
	m.requests.Add(ctx, 1, attrs)
	m.requestLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
	if err != nil {
		m.requestErrors.Add(ctx, 1, attrs)
	}
}

// RecordDiscovery implements MetricsRecorder.
func (m *otelMetrics) RecordDiscovery(ctx context.Context, rule string, cacheHit bool) {
	m.discoveries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("rule", rule),
		attribute.Bool("cache_hit", cacheHit),
	))
}

// RecordJob implements MetricsRecorder.
func (m *otelMetrics) RecordJob(ctx context.Context, success bool, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.Bool("success", success))
	m.jobs.Add(ctx, 1, attrs)
	m.jobLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
}
