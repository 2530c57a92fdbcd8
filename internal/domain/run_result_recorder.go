package domain

import (
	"context"
	"time"
)

type RunResultRecord struct {
	RunID                string
	StartedAt            time.Time
	FinishedAt           time.Time
	RequestsEvaluated    int
	NotificationsCreated int
	Suppressed           int
	Failed               int
	ByUrgency            map[Urgency]int
}

type RunResultRecorder interface {
	RecordRun(ctx context.Context, record RunResultRecord) error
	Close() error
}
