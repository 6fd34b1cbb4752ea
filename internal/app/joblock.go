package app

import (
	"sync"

	"quickgig/internal/common"
)

// JobLocks serializes every read-then-write sequence touching one job and
// its applications. Locks are reference counted so the map does not grow
// with the number of jobs ever seen.
type JobLocks struct {
	mu    sync.Mutex
	locks map[common.UUID]*jobLock
}

type jobLock struct {
	mu   sync.Mutex
	refs int
}

func NewJobLocks() *JobLocks {
	return &JobLocks{locks: make(map[common.UUID]*jobLock)}
}

// Lock acquires the mutex for jobID and returns the release function.
func (l *JobLocks) Lock(jobID common.UUID) func() {
	l.mu.Lock()
	entry, ok := l.locks[jobID]
	if !ok {
		entry = &jobLock{}
		l.locks[jobID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, jobID)
		}
		l.mu.Unlock()
	}
}
