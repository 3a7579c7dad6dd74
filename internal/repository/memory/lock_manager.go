package memory

import (
	"context"
	"sync"
	"time"
)

// LockManager hands out named locks that expire after a TTL. The worker
// scheduler uses it to make sure only one run of a named unit of work is in
// flight; a crashed run releases its lock when the TTL lapses.
//
// Go Learning Note — Channels for Signaling:
// stop is a chan struct{} closed exactly once by Stop. Every receive on a
// closed channel returns immediately, so the sweeper's select exits.
type LockManager struct {
	mu       sync.Mutex
	expiries map[string]time.Time
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

// NewLockManager creates a LockManager and starts the background sweeper.
// Call Stop to end the sweeper.
func NewLockManager() *LockManager {
	lm := &LockManager{
		expiries: make(map[string]time.Time),
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go lm.sweep(time.Second)
	return lm
}

// AcquireLock takes key for ttl. It returns false when a live lock already
// holds key; an expired one is taken over.
func (lm *LockManager) AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	now := lm.now()
	if exp, ok := lm.expiries[key]; ok && now.Before(exp) {
		return false, nil
	}
	lm.expiries[key] = now.Add(ttl)
	return true, nil
}

func (lm *LockManager) ReleaseLock(ctx context.Context, key string) error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	delete(lm.expiries, key)
	return nil
}

func (lm *LockManager) IsLocked(ctx context.Context, key string) (bool, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	exp, ok := lm.expiries[key]
	return ok && lm.now().Before(exp), nil
}

// sweep drops expired entries so abandoned keys do not pile up.
//
// Go Learning Note — Safe Map Deletion During Iteration:
// Deleting map keys inside a for-range over the same map is allowed by the
// language and is the usual way to prune.
func (lm *LockManager) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			lm.mu.Lock()
			now := lm.now()
			for key, exp := range lm.expiries {
				if !now.Before(exp) {
					delete(lm.expiries, key)
				}
			}
			lm.mu.Unlock()
		case <-lm.stop:
			return
		}
	}
}

// Stop ends the sweeper. It is safe to call more than once.
func (lm *LockManager) Stop() {
	lm.stopOnce.Do(func() { close(lm.stop) })
}
