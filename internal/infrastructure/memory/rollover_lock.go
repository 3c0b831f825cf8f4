package memory

import (
	"context"
	"sparkos/internal/domain/service"
	"sync"
	"time"
)

// RolloverLock is an in-process Locker for single-instance deployments
type RolloverLock struct {
	mu    sync.Mutex
	held  map[string]time.Time
	clock func() time.Time
}

var _ service.Locker = (*RolloverLock)(nil)

// NewRolloverLock creates a new in-process lock
func NewRolloverLock() *RolloverLock {
	return &RolloverLock{
		held:  make(map[string]time.Time),
		clock: time.Now,
	}
}

// TryLock acquires key unless it is held and not yet expired
func (l *RolloverLock) TryLock(_ context.Context, key string, ttl time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if until, ok := l.held[key]; ok && now.Before(until) {
		return nil, false, nil
	}

	expires := now.Add(ttl)
	l.held[key] = expires

	unlock := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		// a newer holder may have taken over after expiry
		if l.held[key].Equal(expires) {
			delete(l.held, key)
		}
	}
	return unlock, true, nil
}
