// Package lock provides a MySQL advisory lock used to extend
// internal/hxlock's single-flight coordination across processes, keyed
// by the hierarchy engine's own cache-fingerprint vocabulary rather than
// a job name.
package lock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrLockTimeout is returned when lock acquisition times out because
// another instance is holding the lock.
var ErrLockTimeout = errors.New("lock acquisition timed out")

// TimeoutLong is the wait, in seconds, SingleFlight.Do gives a
// cross-process caller before giving up on a contended cache key — long
// enough to queue behind a resolution already in flight rather than
// fail fast.
const TimeoutLong = 60

// AdvisoryLock wraps a MySQL GET_LOCK()/RELEASE_LOCK() named lock,
// automatically released when the connection closes or ReleaseLock is
// called.
type AdvisoryLock struct {
	db       *sql.DB
	lockName string
	held     bool
}

// NewAdvisoryLock creates an advisory lock with the given name. The lock
// is not acquired until AcquireLock is called.
func NewAdvisoryLock(db *sql.DB, lockName string) *AdvisoryLock {
	return &AdvisoryLock{db: db, lockName: lockName}
}

// AcquireLock attempts to acquire the lock with the specified timeout,
// in seconds. Returns true if the lock was obtained, false if the
// timeout was reached first.
func (a *AdvisoryLock) AcquireLock(ctx context.Context, timeoutSeconds int) (bool, error) {
	if a.held {
		return true, nil
	}

	var result sql.NullInt64
	err := a.db.QueryRowContext(ctx, "SELECT GET_LOCK(?, ?)", a.lockName, timeoutSeconds).Scan(&result)
	if err != nil {
		return false, fmt.Errorf("failed to execute GET_LOCK: %w", err)
	}
	if !result.Valid {
		return false, fmt.Errorf("GET_LOCK returned NULL for lock %q (possible database error)", a.lockName)
	}

	switch result.Int64 {
	case 1:
		a.held = true
		return true, nil
	case 0:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected GET_LOCK return value: %d", result.Int64)
	}
}

// ReleaseLock releases the lock. Returns false without error if the
// lock was not held.
func (a *AdvisoryLock) ReleaseLock(ctx context.Context) (bool, error) {
	if !a.held {
		return false, nil
	}

	var result sql.NullInt64
	err := a.db.QueryRowContext(ctx, "SELECT RELEASE_LOCK(?)", a.lockName).Scan(&result)
	if err != nil {
		return false, fmt.Errorf("failed to execute RELEASE_LOCK: %w", err)
	}
	if !result.Valid {
		a.held = false
		return false, fmt.Errorf("RELEASE_LOCK returned NULL for lock %q (lock did not exist)", a.lockName)
	}

	a.held = false
	return result.Int64 == 1, nil
}

// WithLock acquires the lock with the given timeout, runs fn, and
// releases the lock afterward even if fn panics.
func (a *AdvisoryLock) WithLock(ctx context.Context, timeoutSeconds int, fn func() error) error {
	acquired, err := a.AcquireLock(ctx, timeoutSeconds)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !acquired {
		return fmt.Errorf("%w: lock %q is held by another instance", ErrLockTimeout, a.lockName)
	}

	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = a.ReleaseLock(releaseCtx)
	}()

	return fn()
}

// lockNameForKey derives a MySQL advisory-lock name from a cache key
// (internal/hxlock's composite parent/variation fingerprint), namespaced
// to avoid conflicts with other MySQL locks and sanitized to characters
// GET_LOCK accepts without ambiguity.
func lockNameForKey(key string) string {
	sanitized := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, key)
	return fmt.Sprintf("hierarchyengine:cache:%s", sanitized)
}

// NewKeyLock creates an advisory lock scoped to a cache key, using
// lockNameForKey for its MySQL lock name.
func NewKeyLock(db *sql.DB, key string) *AdvisoryLock {
	return NewAdvisoryLock(db, lockNameForKey(key))
}
