package domain

import "time"

type RequestStatus string

const (
	RequestStatusDraft        RequestStatus = "draft"
	RequestStatusSubmitted    RequestStatus = "submitted"
	RequestStatusAcknowledged RequestStatus = "acknowledged"
	RequestStatusProcessing   RequestStatus = "processing"
	RequestStatusCompleted    RequestStatus = "completed"
	RequestStatusDenied       RequestStatus = "denied"
	RequestStatusAppealed     RequestStatus = "appealed"
)

func (s RequestStatus) String() string {
	return string(s)
}

// IsClosed reports whether the request no longer awaits an agency response.
func (s RequestStatus) IsClosed() bool {
	return s == RequestStatusCompleted || s == RequestStatusDenied
}

// Request is a public-records request owned by the intake subsystem.
type Request struct {
	ID              string
	OwnerID         string
	Subject         string
	AgencyName      string
	Jurisdiction    string
	Status          RequestStatus
	SubmittedAt     *time.Time
	ExplicitDueDate *time.Time
}

// IsEligible reports whether the request should be evaluated against its deadline.
// Requests still in draft carry no SubmittedAt and are never eligible.
func (r *Request) IsEligible() bool {
	return r.SubmittedAt != nil && !r.Status.IsClosed()
}
