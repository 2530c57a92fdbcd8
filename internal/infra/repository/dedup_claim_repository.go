package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/primind-deadline-monitor/internal/domain"
)

const (
	dedupClaimKeyPrefix = "deadline:dedup:"
)

// claimScript stores the evaluation-time expiry as the value, so a claim taken
// for an earlier now never blocks an evaluation past that expiry.
const claimScript = `
local current = redis.call("get", KEYS[1])
if current and tonumber(current) > tonumber(ARGV[1]) then
	return 0
end
redis.call("set", KEYS[1], ARGV[2], "px", ARGV[3])
return 1
`

type dedupClaimRepository struct {
	client *redis.Client
}

func NewDedupClaimRepository(client *redis.Client) domain.DedupClaimStore {
	return &dedupClaimRepository{
		client: client,
	}
}

// Claim takes the key unless a claim covering now exists, so exactly one caller wins per window.
func (r *dedupClaimRepository) Claim(ctx context.Context, key domain.DedupKey, now, until time.Time, lease time.Duration) (bool, error) {
	if lease < time.Millisecond {
		lease = time.Millisecond
	}

	result, err := r.client.Eval(ctx, claimScript, []string{dedupClaimKey(key)},
		now.UnixMilli(), until.UnixMilli(), lease.Milliseconds()).Int()
	if err != nil {
		return false, err
	}

	return result == 1, nil
}

func (r *dedupClaimRepository) Confirm(ctx context.Context, key domain.DedupKey, ttl time.Duration) error {
	return r.client.PExpire(ctx, dedupClaimKey(key), ttl).Err()
}

func (r *dedupClaimRepository) Release(ctx context.Context, key domain.DedupKey) error {
	return r.client.Del(ctx, dedupClaimKey(key)).Err()
}

func dedupClaimKey(key domain.DedupKey) string {
	return dedupClaimKeyPrefix + key.String()
}
