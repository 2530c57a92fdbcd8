package monitor

import (
	"time"

	"github.com/KasumiMercury/primind-deadline-monitor/internal/domain"
	"github.com/KasumiMercury/primind-deadline-monitor/internal/service/dispatch"
)

type RunError struct {
	RequestID string `json:"request_id"`
	Reason    string `json:"reason"`
}

// Summary is the structured result of one monitor run.
type Summary struct {
	RunID                string                 `json:"run_id"`
	StartedAt            time.Time              `json:"started_at"`
	FinishedAt           time.Time              `json:"finished_at"`
	RequestsEvaluated    int                    `json:"requests_evaluated"`
	NotificationsCreated int                    `json:"notifications_created"`
	SuppressedCount      int                    `json:"suppressed_count"`
	SkippedCount         int                    `json:"skipped_count"`
	Errors               []RunError             `json:"errors"`
	ByUrgency            map[domain.Urgency]int `json:"by_urgency"`
	Decisions            []dispatch.Decision    `json:"decisions,omitempty"`
}

func newSummary(runID string, startedAt time.Time) *Summary {
	return &Summary{
		RunID:     runID,
		StartedAt: startedAt,
		Errors:    make([]RunError, 0),
		ByUrgency: make(map[domain.Urgency]int),
	}
}

func (s *Summary) record() domain.RunResultRecord {
	byUrgency := make(map[domain.Urgency]int, len(s.ByUrgency))
	for k, v := range s.ByUrgency {
		byUrgency[k] = v
	}
	return domain.RunResultRecord{
		RunID:                s.RunID,
		StartedAt:            s.StartedAt,
		FinishedAt:           s.FinishedAt,
		RequestsEvaluated:    s.RequestsEvaluated,
		NotificationsCreated: s.NotificationsCreated,
		Suppressed:           s.SuppressedCount,
		Failed:               len(s.Errors),
		ByUrgency:            byUrgency,
	}
}
