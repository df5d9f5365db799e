package service

import "sync"

// reviewLocks serializes lifecycle mutations per review. Completion
// cascades, sheet edits and weight batches for the same review must never
// interleave.
type reviewLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newReviewLocks() *reviewLocks {
	return &reviewLocks{locks: make(map[uint]*sync.Mutex)}
}

// acquire locks the mutex for the given review and returns its unlock func
func (l *reviewLocks) acquire(reviewID uint) func() {
	l.mu.Lock()
	lock, ok := l.locks[reviewID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[reviewID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
