package cache

import (
	"context"
	"sync"
	"time"

	"github.com/erp/cashbook/internal/domain/shared"
)

// InMemoryRunLock implements RunLock with a process-local map.
// It only excludes runs started from the same process.
type InMemoryRunLock struct {
	mu   sync.Mutex
	held map[string]time.Time
	now  func() time.Time
}

// NewInMemoryRunLock creates a new in-memory run lock
func NewInMemoryRunLock() *InMemoryRunLock {
	return &InMemoryRunLock{
		held: make(map[string]time.Time),
		now:  time.Now,
	}
}

// Acquire takes the lock unless an unexpired holder owns it
func (l *InMemoryRunLock) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if expiresAt, ok := l.held[key]; ok && now.Before(expiresAt) {
		return false, nil
	}
	l.held[key] = now.Add(ttl)
	return true, nil
}

// Release gives the lock back
func (l *InMemoryRunLock) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}

// Close drops every held lock
func (l *InMemoryRunLock) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.held)
	return nil
}

var _ shared.RunLock = (*InMemoryRunLock)(nil)
