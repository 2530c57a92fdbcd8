package domain

// Urgency is the classification of a request's deadline at evaluation time.
type Urgency string

const (
	UrgencyNone       Urgency = ""
	UrgencyOverdue    Urgency = "overdue"
	UrgencyDueSoon    Urgency = "due_soon"
	UrgencyOneWeekOut Urgency = "one_week_out"
)

func (u Urgency) String() string {
	if u == UrgencyNone {
		return "none"
	}
	return string(u)
}

func (u Urgency) IsActionable() bool {
	return u != UrgencyNone
}

// Severity maps the urgency onto the notification type consumed by delivery.
func (u Urgency) Severity() NotificationType {
	switch u {
	case UrgencyOverdue, UrgencyDueSoon:
		return NotificationTypeDeadline
	case UrgencyOneWeekOut:
		return NotificationTypeInfo
	default:
		return ""
	}
}
