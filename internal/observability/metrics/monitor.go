package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	monitorMeterName = "deadline.monitor"
)

type MonitorMetrics struct {
	runsTotal          metric.Int64Counter
	evaluationsTotal   metric.Int64Counter
	notificationsTotal metric.Int64Counter
	runDuration        metric.Float64Histogram
	evaluationDuration metric.Float64Histogram
}

func NewMonitorMetrics() (*MonitorMetrics, error) {
	meter := otel.Meter(monitorMeterName)

	runsTotal, err := meter.Int64Counter(
		"deadline_monitor_runs_total",
		metric.WithDescription("Total number of monitor runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	evaluationsTotal, err := meter.Int64Counter(
		"deadline_monitor_evaluations_total",
		metric.WithDescription("Total number of request evaluations"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	notificationsTotal, err := meter.Int64Counter(
		"deadline_monitor_notifications_created_total",
		metric.WithDescription("Total number of deadline notifications written"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"deadline_monitor_run_duration_seconds",
		metric.WithDescription("Monitor run duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300,
		),
	)
	if err != nil {
		return nil, err
	}

	evaluationDuration, err := meter.Float64Histogram(
		"deadline_monitor_evaluation_duration_seconds",
		metric.WithDescription("Time spent evaluating a single request"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5,
		),
	)
	if err != nil {
		return nil, err
	}

	return &MonitorMetrics{
		runsTotal:          runsTotal,
		evaluationsTotal:   evaluationsTotal,
		notificationsTotal: notificationsTotal,
		runDuration:        runDuration,
		evaluationDuration: evaluationDuration,
	}, nil
}

func (m *MonitorMetrics) RecordRun(ctx context.Context, outcome string, duration time.Duration) {
	m.runsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
	m.runDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

func (m *MonitorMetrics) RecordEvaluation(ctx context.Context, urgency, outcome string, duration time.Duration) {
	m.evaluationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("urgency", urgency),
		attribute.String("outcome", outcome),
	))
	m.evaluationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("urgency", urgency),
	))
}

func (m *MonitorMetrics) RecordNotificationCreated(ctx context.Context, urgency, notificationType string) {
	m.notificationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("urgency", urgency),
		attribute.String("type", notificationType),
	))
}
