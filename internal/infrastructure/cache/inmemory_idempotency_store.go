package cache

import (
	"context"
	"sync"
	"time"

	"github.com/orderboard/backend/internal/domain/shared"
)

const janitorInterval = 5 * time.Minute

type seenEvent struct {
	expiresAt time.Time
}

// InMemoryIdempotencyStore keeps seen webhook event IDs in a map.
// Good enough for a single backend instance and for tests; multi-instance
// deployments use the Redis store so all replicas share the dedupe set.
type InMemoryIdempotencyStore struct {
	mu        sync.RWMutex
	seen      map[string]seenEvent
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryIdempotencyStore creates the store and starts a janitor
// goroutine that evicts expired event IDs. Call Close to stop it.
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	store := &InMemoryIdempotencyStore{
		seen:     make(map[string]seenEvent),
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.janitor()

	return store
}

// MarkProcessed records the event ID for the given TTL. It returns false
// when the ID is already present and still live, which tells the webhook
// handler to drop the redelivery.
func (s *InMemoryIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, exists := s.seen[eventID]; exists && time.Now().Before(e.expiresAt) {
		return false, nil
	}

	s.seen[eventID] = seenEvent{expiresAt: time.Now().Add(ttl)}
	return true, nil
}

// IsProcessed reports whether the event ID is present and not expired.
func (s *InMemoryIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.seen[eventID]
	if !exists || time.Now().After(e.expiresAt) {
		return false, nil
	}
	return true, nil
}

// Close stops the janitor. Safe to call more than once.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryIdempotencyStore) janitor() {
	defer s.wg.Done()

	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.evictExpired()
		}
	}
}

func (s *InMemoryIdempotencyStore) evictExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for eventID, e := range s.seen {
		if now.After(e.expiresAt) {
			delete(s.seen, eventID)
		}
	}
}

// Size returns the number of live and expired entries still held.
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
