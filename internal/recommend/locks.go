package recommend

import "sync"

// UserLocks provides per-user mutual exclusion for regeneration. The HTTP
// generate endpoint and the scheduled batch share one instance, so two
// regenerations for the same user can never interleave.
type UserLocks struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewUserLocks creates an empty lock set.
func NewUserLocks() *UserLocks {
	return &UserLocks{held: make(map[string]bool)}
}

// TryAcquire takes the lock for userID. Returns false if already held.
func (l *UserLocks) TryAcquire(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[userID] {
		return false
	}
	l.held[userID] = true
	return true
}

// Release frees the lock for userID.
func (l *UserLocks) Release(userID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, userID)
}
