//go:build !gcloud

package runrecorder

import (
	"context"
	"log/slog"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/KasumiMercury/primind-deadline-monitor/internal/domain"
)

const (
	runMeasurement     = "deadline_run"
	urgencyMeasurement = "deadline_run_urgency"
)

type influxDBRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	bucket   string
	org      string
}

func NewRecorder(ctx context.Context, cfg *Config) (domain.RunResultRecorder, error) {
	if cfg.Disabled {
		slog.InfoContext(ctx, "run result recording disabled")
		return NewNoopRecorder(), nil
	}

	if cfg.InfluxDBToken == "" || cfg.InfluxDBOrg == "" {
		slog.WarnContext(ctx, "InfluxDB token or org not configured, run result recording disabled",
			slog.String("url", cfg.InfluxDBURL),
		)
		return NewNoopRecorder(), nil
	}

	client := influxdb2.NewClient(cfg.InfluxDBURL, cfg.InfluxDBToken)
	writeAPI := client.WriteAPIBlocking(cfg.InfluxDBOrg, cfg.InfluxDBBucket)

	slog.InfoContext(ctx, "run result recorder initialized",
		slog.String("type", "influxdb"),
		slog.String("url", cfg.InfluxDBURL),
		slog.String("bucket", cfg.InfluxDBBucket),
	)

	return &influxDBRecorder{
		client:   client,
		writeAPI: writeAPI,
		bucket:   cfg.InfluxDBBucket,
		org:      cfg.InfluxDBOrg,
	}, nil
}

func (r *influxDBRecorder) RecordRun(ctx context.Context, record domain.RunResultRecord) error {
	points := runPoints(record)

	if err := r.writeAPI.WritePoint(ctx, points...); err != nil {
		slog.WarnContext(ctx, "failed to write run result to InfluxDB",
			slog.String("error", err.Error()),
			slog.String("run_id", record.RunID),
		)
	}

	return nil
}

func (r *influxDBRecorder) Close() error {
	if r.client != nil {
		r.client.Close()
	}
	return nil
}

func runPoints(record domain.RunResultRecord) []*write.Point {
	runID := record.RunID
	if runID == "" {
		runID = "default"
	}

	points := make([]*write.Point, 0, len(record.ByUrgency)+1)
	points = append(points, influxdb2.NewPoint(
		runMeasurement,
		map[string]string{
			"run_id": runID,
		},
		map[string]any{
			"requests_evaluated":    record.RequestsEvaluated,
			"notifications_created": record.NotificationsCreated,
			"suppressed_count":      record.Suppressed,
			"failed_count":          record.Failed,
			"duration_ms":           record.FinishedAt.Sub(record.StartedAt).Milliseconds(),
		},
		record.FinishedAt,
	))

	for urgency, count := range record.ByUrgency {
		points = append(points, influxdb2.NewPoint(
			urgencyMeasurement,
			map[string]string{
				"run_id":  runID,
				"urgency": urgency.String(),
			},
			map[string]any{
				"created_count": count,
			},
			record.FinishedAt,
		))
	}

	return points
}
