package urgency

import (
	"math"
	"time"

	"github.com/KasumiMercury/primind-deadline-monitor/internal/domain"
)

const (
	// DueSoonMaxDays is the inclusive upper bound of the due_soon range.
	DueSoonMaxDays = 3

	// OneWeekOutDays is matched exactly, not as a range.
	OneWeekOutDays = 7

	day = 24 * time.Hour
)

type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify maps days remaining to exactly one urgency. First match wins.
func (c *Classifier) Classify(daysRemaining int) domain.Urgency {
	switch {
	case daysRemaining < 0:
		return domain.UrgencyOverdue
	case daysRemaining <= DueSoonMaxDays:
		return domain.UrgencyDueSoon
	case daysRemaining == OneWeekOutDays:
		return domain.UrgencyOneWeekOut
	default:
		return domain.UrgencyNone
	}
}

// DaysRemaining is ceil((dueDate - now) / 1 day) and is negative once overdue.
func DaysRemaining(dueDate, now time.Time) int {
	return int(math.Ceil(float64(dueDate.Sub(now)) / float64(day)))
}
