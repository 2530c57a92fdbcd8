package seed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-deadline-monitor/internal/domain"
)

type Store interface {
	SeedRequests(ctx context.Context, requests []*domain.Request) error
	DeleteRun(ctx context.Context, runID string) (int64, error)
}

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// Register mounts the seed routes on group.
func (h *Handler) Register(group *gin.RouterGroup) {
	group.POST("/seed", h.HandleSeed)
	group.POST("/reset", h.HandleReset)
}

func (h *Handler) HandleReset(c *gin.Context) {
	runID := c.DefaultQuery("run_id", "loadtest")

	deleted, err := h.store.DeleteRun(c.Request.Context(), runID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	slog.Info("reset seeded requests",
		slog.String("run_id", runID),
		slog.Int64("deleted_count", deleted),
	)

	c.JSON(http.StatusOK, ResetResponse{
		Status:       "reset complete",
		RunID:        runID,
		DeletedCount: deleted,
	})
}

func (h *Handler) HandleSeed(c *gin.Context) {
	runID := c.DefaultQuery("run_id", "loadtest")

	var req SeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var requests []*domain.Request
	for _, sb := range req.Buckets {
		bucket, err := parseBucket(sb)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		requests = append(requests, GenerateRequests(runID, bucket)...)
	}

	if err := h.store.SeedRequests(c.Request.Context(), requests); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	slog.Info("seeded requests",
		slog.String("run_id", runID),
		slog.Int("bucket_count", len(req.Buckets)),
		slog.Int("total_request_count", len(requests)),
	)

	c.JSON(http.StatusOK, SeedResponse{
		Status:      "seeded",
		RunID:       runID,
		BucketCount: len(req.Buckets),
		TotalCount:  len(requests),
	})
}

func parseBucket(sb SeedBucket) (*Bucket, error) {
	startTime, err := time.Parse(time.RFC3339, sb.StartTime)
	if err != nil {
		return nil, fmt.Errorf("invalid start_time: %s", sb.StartTime)
	}
	endTime, err := time.Parse(time.RFC3339, sb.EndTime)
	if err != nil {
		return nil, fmt.Errorf("invalid end_time: %s", sb.EndTime)
	}
	if sb.Jurisdiction == "" {
		return nil, fmt.Errorf("jurisdiction is required")
	}

	bucket := &Bucket{
		StartTime:    startTime,
		EndTime:      endTime,
		Count:        sb.Count,
		Jurisdiction: sb.Jurisdiction,
		Status:       domain.RequestStatus(sb.Status),
	}

	if sb.ExplicitDueDate != "" {
		due, err := time.Parse(time.RFC3339, sb.ExplicitDueDate)
		if err != nil {
			return nil, fmt.Errorf("invalid explicit_due_date: %s", sb.ExplicitDueDate)
		}
		bucket.ExplicitDueDate = &due
	}

	return bucket, nil
}
