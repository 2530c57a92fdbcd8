package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const monitorTracerName = "github.com/KasumiMercury/primind-deadline-monitor/internal/service/monitor"

func MonitorTracer() trace.Tracer {
	return otel.Tracer(monitorTracerName)
}

func StartRunSpan(ctx context.Context, runID string, now time.Time) (context.Context, trace.Span) {
	return MonitorTracer().Start(ctx, "monitor.run",
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("run.now", now.Format(time.RFC3339)),
		),
	)
}

func StartEvaluationSpan(ctx context.Context, requestID, jurisdiction string) (context.Context, trace.Span) {
	return MonitorTracer().Start(ctx, "monitor.evaluate",
		trace.WithAttributes(
			attribute.String("request_id", requestID),
			attribute.String("jurisdiction", jurisdiction),
		),
	)
}

func StartStoreOperationSpan(ctx context.Context, system, operation string) (context.Context, trace.Span) {
	return MonitorTracer().Start(ctx, "monitor."+system+"."+operation,
		trace.WithAttributes(
			attribute.String("db.system", system),
			attribute.String("db.operation", operation),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func RecordEvaluationResult(span trace.Span, dueDate time.Time, daysRemaining int, urgency, outcome string, err error) {
	span.SetAttributes(
		attribute.String("evaluation.due_date", dueDate.Format(time.RFC3339)),
		attribute.Int("evaluation.days_remaining", daysRemaining),
		attribute.String("evaluation.urgency", urgency),
		attribute.String("evaluation.outcome", outcome),
	)
	RecordError(span, err)
}

func RecordRunResult(span trace.Span, evaluated, created, suppressed, failed int, err error) {
	span.SetAttributes(
		attribute.Int("run.requests_evaluated", evaluated),
		attribute.Int("run.notifications_created", created),
		attribute.Int("run.suppressed_count", suppressed),
		attribute.Int("run.failed_count", failed),
	)
	RecordError(span, err)
}

func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}
