package bucket

import (
	"context"
	"sync"

	"sbos/internal/ratelimit"
)

// InMemoryBucketStore keeps one fixed-window counter per key.
type InMemoryBucketStore struct {
	mu      sync.Mutex
	buckets map[string]*fixedWindow
}

type fixedWindow struct {
	window int64
	tokens int
}

// New creates an empty in-memory store.
func New() *InMemoryBucketStore {
	return &InMemoryBucketStore{buckets: make(map[string]*fixedWindow)}
}

// Allow resets the counter on window change, then increments unless already at limit.
func (s *InMemoryBucketStore) Allow(_ context.Context, key string, limit int, window int64) (*ratelimit.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.buckets[key]
	if b == nil {
		b = &fixedWindow{window: window}
		s.buckets[key] = b
	}
	if b.window != window {
		b.window = window
		b.tokens = 0
	}
	if b.tokens >= limit {
		return &ratelimit.Result{Allowed: false, Count: b.tokens, Limit: limit}, nil
	}
	b.tokens++
	return &ratelimit.Result{Allowed: true, Count: b.tokens, Limit: limit}, nil
}

// Count returns tokens consumed in window.
func (s *InMemoryBucketStore) Count(_ context.Context, key string, window int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.buckets[key]
	if b == nil || b.window != window {
		return 0, nil
	}
	return b.tokens, nil
}

// Reset clears the counter for a key.
func (s *InMemoryBucketStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, key)
	return nil
}
