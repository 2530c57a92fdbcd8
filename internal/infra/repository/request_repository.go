package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/KasumiMercury/primind-deadline-monitor/internal/domain"
	"github.com/KasumiMercury/primind-deadline-monitor/internal/observability/tracing"
)

var closedStatuses = []string{
	domain.RequestStatusCompleted.String(),
	domain.RequestStatusDenied.String(),
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) domain.RequestRepository {
	return &requestRepository{
		db: db,
	}
}

// ListOpenRequests returns submitted requests whose status is not closed.
func (r *requestRepository) ListOpenRequests(ctx context.Context) ([]*domain.Request, error) {
	ctx, span := tracing.StartStoreOperationSpan(ctx, "postgresql", "select_open_requests")
	defer span.End()

	var rows []requestModel
	err := r.db.WithContext(ctx).
		Where("submitted_at IS NOT NULL").
		Where("status NOT IN ?", closedStatuses).
		Order("id").
		Find(&rows).Error
	tracing.RecordError(span, err)
	if err != nil {
		return nil, err
	}

	requests := make([]*domain.Request, 0, len(rows))
	for i := range rows {
		requests = append(requests, rows[i].toDomain())
	}

	return requests, nil
}
