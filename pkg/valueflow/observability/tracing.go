package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the valueflow tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("valueflow")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartTurnSpan starts a span for one conversation turn.
	StartTurnSpan(ctx context.Context, conversationID, name string) (context.Context, trace.Span)

	// StartPhaseSpan starts a span for one phase attempt.
	// The phase span should be a child of the turn span.
	StartPhaseSpan(ctx context.Context, phase string, attempt int) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
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

// StartTurnSpan starts a span for one conversation turn.
func (m *otelSpanManager) StartTurnSpan(ctx context.Context, conversationID, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "valueflow.turn",
		trace.WithAttributes(
			attribute.String("conversation.id", conversationID),
			attribute.String("turn.name", name),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartPhaseSpan starts a span for one phase attempt.
func (m *otelSpanManager) StartPhaseSpan(ctx context.Context, phase string, attempt int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "valueflow.phase",
		trace.WithAttributes(
			attribute.String("phase", phase),
			attribute.Int("attempt", attempt),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, recording err if non-nil.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
