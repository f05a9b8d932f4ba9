package flow

import "sync"

// userLocks provides a mutex per user id. Every mutation of a user's
// session or registry entry happens inside that user's region, so two
// concurrent inputs from the same user can never interleave.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*sync.Mutex)}
}

// get returns the mutex for userID, creating it on first use. Mutexes are
// never removed; the map is bounded by the number of distinct users seen.
func (l *userLocks) get(userID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	return m
}
