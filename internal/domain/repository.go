package domain

import (
	"context"
	"time"
)

//go:generate mockgen -source=repository.go -destination=repository_mock.go -package=domain

// RequestRepository reads requests awaiting an agency response.
type RequestRepository interface {
	ListOpenRequests(ctx context.Context) ([]*Request, error)
}

// NotificationRepository inserts notifications and answers dedup window queries.
type NotificationRepository interface {
	ExistsSince(ctx context.Context, key DedupKey, since time.Time) (bool, error)
	Create(ctx context.Context, notification *Notification) error
}

// DedupClaimStore holds idempotency claims so concurrent evaluations of the
// same key never both write.
//
// A claim covers the key until the evaluation time until, judged against the
// now of later claims, and lives for at most lease of wall time. Confirm
// extends the wall-time bound once the notification is stored.
type DedupClaimStore interface {
	Claim(ctx context.Context, key DedupKey, now, until time.Time, lease time.Duration) (bool, error)
	Confirm(ctx context.Context, key DedupKey, ttl time.Duration) error
	Release(ctx context.Context, key DedupKey) error
}
