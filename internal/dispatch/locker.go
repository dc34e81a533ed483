package dispatch

import (
	"context"
	"sync"
	"time"
)

// Locker is a compare-and-swap in-flight marker keyed by an arbitrary string
// (in practice the credential identifier). TryAcquire is advisory: it bounds
// duplicate dispatch, it does not guarantee transactional exclusivity.
type Locker interface {
	// TryAcquire attempts to set the marker. Returns false when the key is
	// already held. The ttl guards against a crashed holder pinning the key
	// forever.
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release clears the marker.
	Release(ctx context.Context, key string) error
}

// MemoryLocker is the in-process Locker used when no external coordinator is
// configured. Safe for concurrent use.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]time.Time
	now  func() time.Time
}

// NewMemoryLocker creates an empty in-process locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		held: make(map[string]time.Time),
		now:  time.Now,
	}
}

// TryAcquire sets the marker unless it is held and unexpired.
func (l *MemoryLocker) TryAcquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if expiry, ok := l.held[key]; ok && l.now().Before(expiry) {
		return false, nil
	}
	l.held[key] = l.now().Add(ttl)
	return true, nil
}

// Release clears the marker.
func (l *MemoryLocker) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}
