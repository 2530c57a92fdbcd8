package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/KasumiMercury/primind-deadline-monitor/internal/domain"
	"github.com/KasumiMercury/primind-deadline-monitor/internal/observability/tracing"
)

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) domain.NotificationRepository {
	return &notificationRepository{
		db: db,
	}
}

// ExistsSince reports whether a notification for the key was created after since.
func (r *notificationRepository) ExistsSince(ctx context.Context, key domain.DedupKey, since time.Time) (bool, error) {
	ctx, span := tracing.StartStoreOperationSpan(ctx, "postgresql", "select_recent_notification")
	defer span.End()

	var count int64
	err := r.db.WithContext(ctx).
		Model(&notificationModel{}).
		Where("related_entity_type = ?", domain.RelatedEntityRequest).
		Where("related_entity_id = ?", key.RequestID).
		Where("urgency = ?", string(key.Urgency)).
		Where("created_at > ?", since.UTC()).
		Limit(1).
		Count(&count).Error
	tracing.RecordError(span, err)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	if notification == nil || notification.RelatedEntityID == "" || notification.Urgency == domain.UrgencyNone {
		return domain.ErrInvalidNotification
	}

	ctx, span := tracing.StartStoreOperationSpan(ctx, "postgresql", "insert_notification")
	defer span.End()

	err := r.db.WithContext(ctx).Create(notificationFromDomain(notification)).Error
	tracing.RecordError(span, err)
	return err
}
