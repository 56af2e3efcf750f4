package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryCounterStore is a windowed counter kept in process memory. It stands
// in for a shared store in single-instance deployments and in tests.
type MemoryCounterStore struct {
	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	count   int64
	resetAt time.Time
}

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{windows: make(map[string]*window)}
}

func (s *MemoryCounterStore) Incr(_ context.Context, key string, windowSize time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	w, ok := s.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(windowSize)}
		s.windows[key] = w
	}
	w.count++
	return w.count, nil
}
