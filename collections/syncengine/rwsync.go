package syncengine

import (
	"sync"
	"sync/atomic"

	"github.com/AntonStoeckl/observable-collections-go/collections"
)

// RWSync provides scoped reader/writer lock acquisition with disposal
// awareness. At most one writer or many concurrent readers hold the lock
// at any time. The disposal flag is checked before every acquisition;
// locks already held when Dispose is called drain normally.
//
// It is meant to be embedded by synchronized types and exposes its
// locking surface only through scoped helpers, so release-on-every-path
// is structural rather than a calling convention.
type RWSync struct {
	mu       sync.RWMutex
	disposed atomic.Bool
}

// ReadLock blocks until a shared read lock is held and returns its
// release closure. The closure is safe to call more than once; extra
// calls are no-ops. It fails with collections.ErrDisposed when the
// instance is already terminal.
func (s *RWSync) ReadLock() (release func(), err error) {
	if s.disposed.Load() {
		return nil, collections.ErrDisposed
	}

	s.mu.RLock()

	var once sync.Once

	return func() { once.Do(s.mu.RUnlock) }, nil
}

// WriteLock blocks until the exclusive write lock is held and returns its
// release closure, with the same semantics as ReadLock.
func (s *RWSync) WriteLock() (release func(), err error) {
	if s.disposed.Load() {
		return nil, collections.ErrDisposed
	}

	s.mu.Lock()

	var once sync.Once

	return func() { once.Do(s.mu.Unlock) }, nil
}

// ReadLocked runs op under the read lock. The lock is released on every
// exit path and op's failure propagates unchanged to the caller.
func (s *RWSync) ReadLocked(op func() error) error {
	release, err := s.ReadLock()
	if err != nil {
		return err
	}
	defer release()

	return op()
}

// WriteLocked runs op under the write lock, with the same release and
// propagation semantics as ReadLocked.
func (s *RWSync) WriteLocked(op func() error) error {
	release, err := s.WriteLock()
	if err != nil {
		return err
	}
	defer release()

	return op()
}

// Dispose marks the instance terminal. Subsequent lock acquisitions fail
// with collections.ErrDisposed; in-flight holders are not interrupted.
func (s *RWSync) Dispose() {
	s.disposed.Store(true)
}

// Disposed reports whether the instance is terminal.
func (s *RWSync) Disposed() bool {
	return s.disposed.Load()
}

// ReadLockedValue runs op under the read lock of s and returns its result.
// Methods cannot be generic, so the result-bearing variants live as
// package functions.
func ReadLockedValue[R any](s *RWSync, op func() (R, error)) (R, error) {
	release, err := s.ReadLock()
	if err != nil {
		var zero R
		return zero, err
	}
	defer release()

	return op()
}

// WriteLockedValue runs op under the write lock of s and returns its result.
func WriteLockedValue[R any](s *RWSync, op func() (R, error)) (R, error) {
	release, err := s.WriteLock()
	if err != nil {
		var zero R
		return zero, err
	}
	defer release()

	return op()
}
