package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the studio client tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("studiograph")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartSubmitSpan starts a span covering a workflow submission.
	StartSubmitSpan(ctx context.Context, jobID string, nodeCount int) (context.Context, trace.Span)

	// StartDiscoverySpan starts a span for one discovery fetch.
	StartDiscoverySpan(ctx context.Context, rule, nodeID string) (context.Context, trace.Span)

	// StartRequestSpan starts a span for one API request.
	StartRequestSpan(ctx context.Context, method, endpoint string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)
}

type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the
// provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartSubmitSpan starts a span covering a workflow submission.
func (m *otelSpanManager) StartSubmitSpan(ctx context.Context, jobID string, nodeCount int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "studio.submit",
		trace.WithAttributes(
			attribute.String("job.id", jobID),
			attribute.Int("graph.nodes", nodeCount),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// StartDiscoverySpan starts a span for one discovery fetch.
func (m *otelSpanManager) StartDiscoverySpan(ctx context.Context, rule, nodeID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "studio.discovery."+rule,
		trace.WithAttributes(
			attribute.String("node.id", nodeID),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// StartRequestSpan starts a span for one API request.
func (m *otelSpanManager) StartRequestSpan(ctx context.Context, method, endpoint string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "studio.request",
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.endpoint", endpoint),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
