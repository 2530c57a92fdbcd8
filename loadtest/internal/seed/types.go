package seed

type SeedRequest struct {
	Buckets []SeedBucket `json:"buckets"`
}

// SeedBucket spreads Count requests evenly over a submission window.
type SeedBucket struct {
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	Count           int    `json:"count"`
	Jurisdiction    string `json:"jurisdiction"`
	Status          string `json:"status"`
	ExplicitDueDate string `json:"explicit_due_date,omitempty"`
}

type SeedResponse struct {
	Status      string `json:"status"`
	RunID       string `json:"run_id"`
	BucketCount int    `json:"bucket_count"`
	TotalCount  int    `json:"total_count"`
}

type ResetResponse struct {
	Status       string `json:"status"`
	RunID        string `json:"run_id"`
	DeletedCount int64  `json:"deleted_count"`
}
