//go:build gcloud

package runrecorder

import (
	"context"
	"log/slog"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/KasumiMercury/primind-deadline-monitor/internal/domain"
)

type bigQueryRecord struct {
	RecordedAt           time.Time `bigquery:"recorded_at"`
	RunID                string    `bigquery:"run_id"`
	StartedAt            time.Time `bigquery:"started_at"`
	FinishedAt           time.Time `bigquery:"finished_at"`
	RequestsEvaluated    int64     `bigquery:"requests_evaluated"`
	NotificationsCreated int64     `bigquery:"notifications_created"`
	SuppressedCount      int64     `bigquery:"suppressed_count"`
	FailedCount          int64     `bigquery:"failed_count"`
	OverdueCount         int64     `bigquery:"overdue_count"`
	DueSoonCount         int64     `bigquery:"due_soon_count"`
	OneWeekOutCount      int64     `bigquery:"one_week_out_count"`
}

type bigQueryRecorder struct {
	client   *bigquery.Client
	inserter *bigquery.Inserter
	dataset  string
	table    string
}

func NewRecorder(ctx context.Context, cfg *Config) (domain.RunResultRecorder, error) {
	if cfg.Disabled {
		slog.InfoContext(ctx, "run result recording disabled")
		return NewNoopRecorder(), nil
	}

	if cfg.BigQueryProjectID == "" {
		slog.WarnContext(ctx, "BigQuery project ID not configured, run result recording disabled")
		return NewNoopRecorder(), nil
	}

	client, err := bigquery.NewClient(ctx, cfg.BigQueryProjectID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create BigQuery client, run result recording disabled",
			slog.String("error", err.Error()),
			slog.String("project_id", cfg.BigQueryProjectID),
		)
		return NewNoopRecorder(), nil
	}

	inserter := client.Dataset(cfg.BigQueryDataset).Table(cfg.BigQueryTable).Inserter()

	slog.InfoContext(ctx, "run result recorder initialized",
		slog.String("type", "bigquery"),
		slog.String("project_id", cfg.BigQueryProjectID),
		slog.String("dataset", cfg.BigQueryDataset),
		slog.String("table", cfg.BigQueryTable),
	)

	return &bigQueryRecorder{
		client:   client,
		inserter: inserter,
		dataset:  cfg.BigQueryDataset,
		table:    cfg.BigQueryTable,
	}, nil
}

func (r *bigQueryRecorder) RecordRun(ctx context.Context, record domain.RunResultRecord) error {
	row := &bigQueryRecord{
		RecordedAt:           time.Now(),
		RunID:                record.RunID,
		StartedAt:            record.StartedAt,
		FinishedAt:           record.FinishedAt,
		RequestsEvaluated:    int64(record.RequestsEvaluated),
		NotificationsCreated: int64(record.NotificationsCreated),
		SuppressedCount:      int64(record.Suppressed),
		FailedCount:          int64(record.Failed),
		OverdueCount:         int64(record.ByUrgency[domain.UrgencyOverdue]),
		DueSoonCount:         int64(record.ByUrgency[domain.UrgencyDueSoon]),
		OneWeekOutCount:      int64(record.ByUrgency[domain.UrgencyOneWeekOut]),
	}

	if err := r.inserter.Put(ctx, row); err != nil {
		slog.WarnContext(ctx, "failed to insert run result to BigQuery",
			slog.String("error", err.Error()),
			slog.String("run_id", record.RunID),
		)
	}

	return nil
}

func (r *bigQueryRecorder) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
