package deadline

import "time"

type RuleLookup interface {
	Lookup(jurisdiction string) int
}

// Calculator computes statutory due dates. It holds no mutable state.
type Calculator struct {
	rules    RuleLookup
	location *time.Location
}

// NewCalculator returns a Calculator whose weekdays follow loc (UTC when nil).
func NewCalculator(rules RuleLookup, loc *time.Location) *Calculator {
	if loc == nil {
		loc = time.UTC
	}
	return &Calculator{
		rules:    rules,
		location: loc,
	}
}

// ComputeDeadline returns explicitDueDate unchanged when set, otherwise the
// date the jurisdiction's business-day window closes.
func (c *Calculator) ComputeDeadline(submittedAt time.Time, jurisdiction string, explicitDueDate *time.Time) time.Time {
	if explicitDueDate != nil {
		return *explicitDueDate
	}

	return AddBusinessDays(submittedAt.In(c.location), c.rules.Lookup(jurisdiction))
}

// AddBusinessDays steps one calendar day at a time from start, counting only
// Monday through Friday, and returns the day on which the count reaches n.
// The time of day is preserved.
func AddBusinessDays(start time.Time, n int) time.Time {
	current := start
	counted := 0
	for counted < n {
		current = current.AddDate(0, 0, 1)
		if IsBusinessDay(current) {
			counted++
		}
	}
	return current
}

func IsBusinessDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}
