package prefs

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. It ignores TTLs; tests and local runs
// without Redis use it.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]string{}}
}

func (s *MemoryStore) Get(ctx context.Context, visitor, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[redisKey(visitor, key)], nil
}

func (s *MemoryStore) Set(ctx context.Context, visitor, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[redisKey(visitor, key)] = value
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, visitor, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, redisKey(visitor, key))
	return nil
}
