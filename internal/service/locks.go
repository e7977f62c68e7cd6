package service

import "sync"

// dateLocks hands out one mutex per calendar date so at most one writer runs
// a load-mutate-save cycle for a given day at a time. Locks are never
// reclaimed; the key space is bounded by the number of distinct days seen by
// the process.
type dateLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newDateLocks() *dateLocks {
	return &dateLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the mutex for date and returns its unlock function.
func (l *dateLocks) acquire(date string) func() {
	l.mu.Lock()
	m, ok := l.locks[date]
	if !ok {
		m = &sync.Mutex{}
		l.locks[date] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
