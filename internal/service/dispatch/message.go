package dispatch

import (
	"fmt"
	"strings"
	"time"

	"github.com/KasumiMercury/primind-deadline-monitor/internal/domain"
)

const dueDateLayout = "Mon, Jan 2, 2006"

// BuildMessage renders the title and body for a notification of the given urgency.
func BuildMessage(req *domain.Request, urgency domain.Urgency, daysRemaining int, dueDate time.Time) (string, string) {
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		subject = "untitled request"
	}
	agency := strings.TrimSpace(req.AgencyName)
	if agency == "" {
		agency = "the agency"
	}
	due := dueDate.Format(dueDateLayout)

	switch urgency {
	case domain.UrgencyOverdue:
		return "Records request overdue", fmt.Sprintf(
			"Your request %q to %s is %s past its response deadline (%s).",
			subject, agency, pluralDays(-daysRemaining), due,
		)
	case domain.UrgencyDueSoon:
		if daysRemaining == 0 {
			return "Response due today", fmt.Sprintf(
				"A response from %s to your request %q is due today (%s).",
				agency, subject, due,
			)
		}
		return "Response due soon", fmt.Sprintf(
			"A response from %s to your request %q is due in %s (%s).",
			agency, subject, pluralDays(daysRemaining), due,
		)
	case domain.UrgencyOneWeekOut:
		return "Response due in one week", fmt.Sprintf(
			"A response from %s to your request %q is due in %s (%s).",
			agency, subject, pluralDays(daysRemaining), due,
		)
	default:
		return "", ""
	}
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
