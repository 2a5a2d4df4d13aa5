// Package hxlock provides the single-flight locking spec.md section 4.7
// expects of the child-node cache: two concurrent getNodes calls for the
// same (parent, variation) must not both run the resolution pipeline —
// one runs it and populates the cache, the other waits and then reads
// the cached result.
package hxlock

import (
	"context"
	"database/sql"
	"sync"

	"github.com/dbsmedya/hierarchyengine/internal/lock"
)

// SingleFlight coordinates concurrent callers racing to resolve the same
// cache key. When db is non-nil, it guards the key with a MySQL
// advisory lock (internal/lock.AdvisoryLock) so callers in different
// processes serialize too; otherwise it falls back to an in-process
// mutex per key.
type SingleFlight struct {
	db *sql.DB

	mu      sync.Mutex
	mutexes map[string]*sync.Mutex
}

// New creates a SingleFlight. db may be nil, in which case locking is
// purely in-process.
func New(db *sql.DB) *SingleFlight {
	return &SingleFlight{db: db, mutexes: make(map[string]*sync.Mutex)}
}

// Do runs fn while holding the lock for key (the composite
// parent-fingerprint/variation-fingerprint cache key), so that a
// concurrent Do call for the same key blocks until fn returns.
func (s *SingleFlight) Do(ctx context.Context, key string, fn func() error) error {
	if s.db != nil {
		keyLock := lock.NewKeyLock(s.db, key)
		return keyLock.WithLock(ctx, lock.TimeoutLong, fn)
	}

	m := s.localMutex(key)
	m.Lock()
	defer m.Unlock()
	return fn()
}

func (s *SingleFlight) localMutex(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.mutexes[key]
	if !ok {
		m = &sync.Mutex{}
		s.mutexes[key] = m
	}
	return m
}
