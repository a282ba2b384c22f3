package engine

import "sync"

// userLocks serializes mutating operations per user so two concurrent calls
// cannot interleave read-modify-write sequences on the same balance or habit
// row. Lock entries are never evicted; one mutex per user that ever mutated
// state is cheap.
type userLocks struct {
	mu sync.Mutex
	m  map[uint]*sync.Mutex
}

func (l *userLocks) lock(userID uint) func() {
	l.mu.Lock()
	if l.m == nil {
		l.m = make(map[uint]*sync.Mutex)
	}
	um, ok := l.m[userID]
	if !ok {
		um = &sync.Mutex{}
		l.m[userID] = um
	}
	l.mu.Unlock()

	um.Lock()
	return um.Unlock
}
