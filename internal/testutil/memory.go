package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/KasumiMercury/primind-deadline-monitor/internal/domain"
)

// MemoryStore keeps requests, notifications and dedup claims in process.
// It implements the same contracts as the Postgres and Redis stores.
type MemoryStore struct {
	mu            sync.RWMutex
	requests      map[string]*domain.Request
	notifications []*domain.Notification
	claims        map[string]memoryClaim
	now           func() time.Time
}

type memoryClaim struct {
	until     time.Time
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		requests: make(map[string]*domain.Request),
		claims:   make(map[string]memoryClaim),
		now:      time.Now,
	}
}

// SetClock replaces the wall clock that bounds claim leases.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.now = now
}

func (s *MemoryStore) PutRequest(req *domain.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *req
	s.requests[req.ID] = &copied
}

func (s *MemoryStore) ListOpenRequests(_ context.Context) ([]*domain.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Request, 0, len(s.requests))
	for _, req := range s.requests {
		if !req.IsEligible() {
			continue
		}
		copied := *req
		result = append(result, &copied)
	}
	return result, nil
}

func (s *MemoryStore) ExistsSince(_ context.Context, key domain.DedupKey, since time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, n := range s.notifications {
		if n.RelatedEntityID == key.RequestID && n.Urgency == key.Urgency && n.CreatedAt.After(since) {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) Create(_ context.Context, notification *domain.Notification) error {
	if notification == nil {
		return domain.ErrInvalidNotification
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *notification
	s.notifications = append(s.notifications, &copied)
	return nil
}

func (s *MemoryStore) Notifications() []domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		result = append(result, *n)
	}
	return result
}

func (s *MemoryStore) Claim(_ context.Context, key domain.DedupKey, now, until time.Time, lease time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.claims[key.String()]; ok && now.Before(c.until) && s.now().Before(c.expiresAt) {
		return false, nil
	}
	s.claims[key.String()] = memoryClaim{until: until, expiresAt: s.now().Add(lease)}
	return true, nil
}

func (s *MemoryStore) Confirm(_ context.Context, key domain.DedupKey, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.claims[key.String()]
	if !ok {
		return nil
	}
	c.expiresAt = s.now().Add(ttl)
	s.claims[key.String()] = c
	return nil
}

func (s *MemoryStore) Release(_ context.Context, key domain.DedupKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.claims, key.String())
	return nil
}

func (s *MemoryStore) SeedRequests(_ context.Context, requests []*domain.Request) error {
	for _, req := range requests {
		s.PutRequest(req)
	}
	return nil
}

func (s *MemoryStore) DeleteRun(_ context.Context, runID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := runID + "-"

	var deleted int64
	for id := range s.requests {
		if strings.HasPrefix(id, prefix) {
			delete(s.requests, id)
			deleted++
		}
	}

	kept := s.notifications[:0]
	for _, n := range s.notifications {
		if !strings.HasPrefix(n.RelatedEntityID, prefix) {
			kept = append(kept, n)
		}
	}
	s.notifications = kept

	return deleted, nil
}
