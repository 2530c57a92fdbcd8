package repository

import (
	"time"

	"github.com/KasumiMercury/primind-deadline-monitor/internal/domain"
)

// requestModel maps the requests table owned by the intake subsystem.
type requestModel struct {
	ID              string     `gorm:"column:id;primaryKey"`
	OwnerID         string     `gorm:"column:owner_id;not null"`
	Subject         string     `gorm:"column:subject"`
	AgencyName      string     `gorm:"column:agency_name"`
	Jurisdiction    string     `gorm:"column:jurisdiction;not null"`
	Status          string     `gorm:"column:status;not null;index"`
	SubmittedAt     *time.Time `gorm:"column:submitted_at"`
	ExplicitDueDate *time.Time `gorm:"column:explicit_due_date"`
}

func (requestModel) TableName() string {
	return "requests"
}

func (m *requestModel) toDomain() *domain.Request {
	return &domain.Request{
		ID:              m.ID,
		OwnerID:         m.OwnerID,
		Subject:         m.Subject,
		AgencyName:      m.AgencyName,
		Jurisdiction:    m.Jurisdiction,
		Status:          domain.RequestStatus(m.Status),
		SubmittedAt:     m.SubmittedAt,
		ExplicitDueDate: m.ExplicitDueDate,
	}
}

func requestModelFromDomain(r *domain.Request) requestModel {
	return requestModel{
		ID:              r.ID,
		OwnerID:         r.OwnerID,
		Subject:         r.Subject,
		AgencyName:      r.AgencyName,
		Jurisdiction:    r.Jurisdiction,
		Status:          string(r.Status),
		SubmittedAt:     r.SubmittedAt,
		ExplicitDueDate: r.ExplicitDueDate,
	}
}

type notificationModel struct {
	ID                string    `gorm:"column:id;primaryKey"`
	OwnerID           string    `gorm:"column:owner_id;not null;index"`
	Title             string    `gorm:"column:title;not null"`
	Message           string    `gorm:"column:message;not null"`
	Type              string    `gorm:"column:type;not null"`
	Urgency           string    `gorm:"column:urgency;index:idx_notifications_dedup,priority:3"`
	RelatedEntityType string    `gorm:"column:related_entity_type;not null;index:idx_notifications_dedup,priority:1"`
	RelatedEntityID   string    `gorm:"column:related_entity_id;not null;index:idx_notifications_dedup,priority:2"`
	CreatedAt         time.Time `gorm:"column:created_at;not null;index:idx_notifications_dedup,priority:4"`
}

func (notificationModel) TableName() string {
	return "notifications"
}

func notificationFromDomain(n *domain.Notification) *notificationModel {
	return &notificationModel{
		ID:                n.ID,
		OwnerID:           n.OwnerID,
		Title:             n.Title,
		Message:           n.Message,
		Type:              string(n.Type),
		Urgency:           string(n.Urgency),
		RelatedEntityType: n.RelatedEntityType,
		RelatedEntityID:   n.RelatedEntityID,
		CreatedAt:         n.CreatedAt,
	}
}
