package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/KasumiMercury/primind-deadline-monitor/internal/domain"
	"github.com/KasumiMercury/primind-deadline-monitor/internal/observability/tracing"
)

const seedBatchSize = 500

// RequestSeeder writes synthetic requests for load runs.
type RequestSeeder struct {
	db *gorm.DB
}

func NewRequestSeeder(db *gorm.DB) *RequestSeeder {
	return &RequestSeeder{db: db}
}

func (s *RequestSeeder) SeedRequests(ctx context.Context, requests []*domain.Request) error {
	if len(requests) == 0 {
		return nil
	}

	ctx, span := tracing.StartStoreOperationSpan(ctx, "postgresql", "seed_requests")
	defer span.End()

	rows := make([]requestModel, 0, len(requests))
	for _, req := range requests {
		rows = append(rows, requestModelFromDomain(req))
	}

	err := s.db.WithContext(ctx).CreateInBatches(rows, seedBatchSize).Error
	tracing.RecordError(span, err)
	return err
}

// DeleteRun removes seeded requests and their notifications by id prefix.
func (s *RequestSeeder) DeleteRun(ctx context.Context, runID string) (int64, error) {
	ctx, span := tracing.StartStoreOperationSpan(ctx, "postgresql", "delete_seeded_requests")
	defer span.End()

	pattern := runID + "-%"

	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("related_entity_type = ? AND related_entity_id LIKE ?", domain.RelatedEntityRequest, pattern).
			Delete(&notificationModel{}).Error; err != nil {
			return fmt.Errorf("delete notifications: %w", err)
		}

		result := tx.Where("id LIKE ?", pattern).Delete(&requestModel{})
		if result.Error != nil {
			return fmt.Errorf("delete requests: %w", result.Error)
		}
		deleted = result.RowsAffected
		return nil
	})
	tracing.RecordError(span, err)

	return deleted, err
}
