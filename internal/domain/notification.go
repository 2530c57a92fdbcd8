package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeDeadline NotificationType = "deadline"
	NotificationTypeInfo     NotificationType = "info"
)

const RelatedEntityRequest = "request"

type Notification struct {
	ID                string
	OwnerID           string
	Title             string
	Message           string
	Type              NotificationType
	Urgency           Urgency
	RelatedEntityType string
	RelatedEntityID   string
	CreatedAt         time.Time
}

func NewNotification(req *Request, urgency Urgency, title, message string, now time.Time) *Notification {
	return &Notification{
		ID:                uuid.NewString(),
		OwnerID:           req.OwnerID,
		Title:             title,
		Message:           message,
		Type:              urgency.Severity(),
		Urgency:           urgency,
		RelatedEntityType: RelatedEntityRequest,
		RelatedEntityID:   req.ID,
		CreatedAt:         now.UTC(),
	}
}

// DedupKey identifies the notifications that may not repeat within one window.
type DedupKey struct {
	RequestID string
	Urgency   Urgency
}

func (k DedupKey) String() string {
	return k.RequestID + ":" + string(k.Urgency)
}
