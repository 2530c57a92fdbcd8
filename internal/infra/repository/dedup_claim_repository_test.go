package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/KasumiMercury/primind-deadline-monitor/internal/domain"
	"github.com/KasumiMercury/primind-deadline-monitor/internal/testutil"
)

func TestDedupClaimRepository_Claim(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	client, cleanup := testutil.SetupRedisContainer(ctx, t)
	defer cleanup()

	repo := NewDedupClaimRepository(client)
	key := domain.DedupKey{RequestID: "req-001", Urgency: domain.UrgencyDueSoon}
	now := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)

	claimed, err := repo.Claim(ctx, key, now, now.Add(24*time.Hour), time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !claimed {
		t.Fatal("expected first claim to succeed")
	}

	claimed, err = repo.Claim(ctx, key, now.Add(time.Hour), now.Add(25*time.Hour), time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claimed {
		t.Error("expected second claim to be rejected")
	}

	// Other urgencies for the same request are independent.
	other := domain.DedupKey{RequestID: "req-001", Urgency: domain.UrgencyOverdue}
	claimed, err = repo.Claim(ctx, other, now, now.Add(24*time.Hour), time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !claimed {
		t.Error("expected claim for a different urgency to succeed")
	}

	// Verify the unconfirmed claim only holds its lease
	ttl, err := client.PTTL(ctx, "deadline:dedup:req-001:due_soon").Result()
	if err != nil {
		t.Fatalf("failed to get TTL: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("expected TTL within the lease, got %v", ttl)
	}
}

func TestDedupClaimRepository_ConfirmExtendsToWindow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	client, cleanup := testutil.SetupRedisContainer(ctx, t)
	defer cleanup()

	repo := NewDedupClaimRepository(client)
	key := domain.DedupKey{RequestID: "req-004", Urgency: domain.UrgencyOverdue}
	now := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)

	if _, err := repo.Claim(ctx, key, now, now.Add(24*time.Hour), time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Confirm(ctx, key, 24*time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ttl, err := client.TTL(ctx, "deadline:dedup:req-004:overdue").Result()
	if err != nil {
		t.Fatalf("failed to get TTL: %v", err)
	}
	if ttl <= 23*time.Hour || ttl > 24*time.Hour {
		t.Errorf("expected TTL around 24 hours, got %v", ttl)
	}
}

func TestDedupClaimRepository_ClaimFollowsEvaluationTime(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	client, cleanup := testutil.SetupRedisContainer(ctx, t)
	defer cleanup()

	repo := NewDedupClaimRepository(client)
	key := domain.DedupKey{RequestID: "req-005", Urgency: domain.UrgencyOverdue}
	start := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	window := 24 * time.Hour

	tests := []struct {
		name        string
		now         time.Time
		wantClaimed bool
	}{
		{name: "first evaluation", now: start, wantClaimed: true},
		{name: "inside window", now: start.Add(23 * time.Hour), wantClaimed: false},
		{name: "past window", now: start.Add(25 * time.Hour), wantClaimed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claimed, err := repo.Claim(ctx, key, tt.now, tt.now.Add(window), time.Minute)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if claimed != tt.wantClaimed {
				t.Errorf("claimed: got %v, want %v", claimed, tt.wantClaimed)
			}
			if claimed {
				if err := repo.Confirm(ctx, key, window); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestDedupClaimRepository_Release(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	client, cleanup := testutil.SetupRedisContainer(ctx, t)
	defer cleanup()

	repo := NewDedupClaimRepository(client)
	key := domain.DedupKey{RequestID: "req-002", Urgency: domain.UrgencyOverdue}
	now := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)

	if _, err := repo.Claim(ctx, key, now, now.Add(time.Hour), time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Release(ctx, key); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claimed, err := repo.Claim(ctx, key, now, now.Add(time.Hour), time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !claimed {
		t.Error("expected claim to succeed after release")
	}

	// Releasing an absent key is not an error.
	if err := repo.Release(ctx, domain.DedupKey{RequestID: "missing", Urgency: domain.UrgencyDueSoon}); err != nil {
		t.Errorf("unexpected error releasing missing key: %v", err)
	}
}

func TestDedupClaimRepository_ConcurrentClaimsHaveOneWinner(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	client, cleanup := testutil.SetupRedisContainer(ctx, t)
	defer cleanup()

	repo := NewDedupClaimRepository(client)
	key := domain.DedupKey{RequestID: "req-003", Urgency: domain.UrgencyOneWeekOut}
	now := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)

	const workers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claimed, err := repo.Claim(ctx, key, now, now.Add(time.Hour), time.Minute)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if claimed {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if winners != 1 {
		t.Errorf("expected exactly one winner, got %d", winners)
	}
}
