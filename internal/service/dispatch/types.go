package dispatch

import (
	"time"

	"github.com/KasumiMercury/primind-deadline-monitor/internal/domain"
)

type Outcome string

const (
	OutcomeNoAction   Outcome = "no_action"
	OutcomeCreated    Outcome = "created"
	OutcomeSuppressed Outcome = "suppressed"
	OutcomeFailed     Outcome = "failed"
)

func (o Outcome) String() string {
	return string(o)
}

// Decision is the result of evaluating one request in one run.
type Decision struct {
	RequestID      string         `json:"request_id"`
	DueDate        time.Time      `json:"due_date"`
	DaysRemaining  int            `json:"days_remaining"`
	Urgency        domain.Urgency `json:"urgency,omitempty"`
	Outcome        Outcome        `json:"outcome"`
	NotificationID string         `json:"notification_id,omitempty"`
}
