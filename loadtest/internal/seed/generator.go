package seed

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/KasumiMercury/primind-deadline-monitor/internal/domain"
)

type Bucket struct {
	StartTime       time.Time
	EndTime         time.Time
	Count           int
	Jurisdiction    string
	Status          domain.RequestStatus
	ExplicitDueDate *time.Time
}

// GenerateRequests expands a bucket into requests with ids that are stable
// for the same run and bucket.
func GenerateRequests(runID string, bucket *Bucket) []*domain.Request {
	if bucket.Count <= 0 {
		return nil
	}

	bucketDuration := bucket.EndTime.Sub(bucket.StartTime)
	if bucketDuration <= 0 {
		bucketDuration = time.Minute
	}

	interval := bucketDuration / time.Duration(bucket.Count)
	if interval == 0 {
		interval = time.Second
	}

	status := bucket.Status
	if status == "" {
		status = domain.RequestStatusSubmitted
	}

	requests := make([]*domain.Request, 0, bucket.Count)
	for i := 0; i < bucket.Count; i++ {
		submittedAt := bucket.StartTime.Add(time.Duration(i) * interval)
		id := generateRequestID(runID, bucket.StartTime, bucket.Jurisdiction, i)

		req := &domain.Request{
			ID:              id,
			OwnerID:         "user-" + id[len(id)-8:],
			Subject:         fmt.Sprintf("Load test request %d", i),
			AgencyName:      "Load Test Agency",
			Jurisdiction:    bucket.Jurisdiction,
			Status:          status,
			SubmittedAt:     &submittedAt,
			ExplicitDueDate: bucket.ExplicitDueDate,
		}
		requests = append(requests, req)
	}

	return requests
}

func generateRequestID(runID string, bucketStart time.Time, jurisdiction string, index int) string {
	input := fmt.Sprintf("%s-%s-%s-%d", runID, bucketStart.Format("20060102150405"), jurisdiction, index)
	hash := sha256.Sum256([]byte(input))
	hashStr := hex.EncodeToString(hash[:8])
	return fmt.Sprintf("%s-%s-%s", runID, bucketStart.Format("20060102150405"), hashStr)
}
