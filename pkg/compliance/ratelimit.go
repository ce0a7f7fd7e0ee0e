// Package compliance evaluates per-channel messaging policy for outbound
// sends: messaging windows, rate limits, template rules and content
// screening.
package compliance

import (
	"context"
	"sync"
	"time"

	"github.com/flowbotio/flowbot/pkg/models"
)

// CounterStore tracks fixed-window rate-limit counters keyed by
// "<channel>:<userID>[:window]". Implementations must serialize increments
// on the same key so concurrent checks cannot lose updates.
type CounterStore interface {
	// Hit records one event against key and reports whether it fits inside
	// the window of at most maxCount events per windowMs milliseconds.
	Hit(ctx context.Context, key string, maxCount int, windowMs int64) (models.RateDecision, error)
}

type counterEntry struct {
	count   int64
	resetAt time.Time
}

// MemoryCounterStore is the in-process CounterStore. Entries are created
// lazily on first hit and superseded in place once their window has passed;
// nothing is ever explicitly deleted.
type MemoryCounterStore struct {
	mu      sync.Mutex
	entries map[string]*counterEntry
	now     func() time.Time
}

// NewMemoryCounterStore creates an empty in-process counter store.
func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{
		entries: make(map[string]*counterEntry),
		now:     time.Now,
	}
}

// Hit implements CounterStore with fixed-window semantics: the first event
// of a window resets the counter to 1 and is always allowed.
func (s *MemoryCounterStore) Hit(_ context.Context, key string, maxCount int, windowMs int64) (models.RateDecision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	window := time.Duration(windowMs) * time.Millisecond

	entry, ok := s.entries[key]
	if !ok || now.After(entry.resetAt) {
		s.entries[key] = &counterEntry{count: 1, resetAt: now.Add(window)}

		return models.RateDecision{Allowed: true, Count: 1}, nil
	}

	if entry.count >= int64(maxCount) {
		return models.RateDecision{
			Allowed: false,
			Count:   entry.count,
			ResetIn: entry.resetAt.Sub(now),
		}, nil
	}

	entry.count++

	return models.RateDecision{Allowed: true, Count: entry.count}, nil
}
