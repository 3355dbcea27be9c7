package syncengine

import (
	"sync"

	"github.com/AntonStoeckl/observable-collections-go/collections"
)

var _ collections.Iterator[int] = (*atomicIterator[int])(nil)
var _ collections.Resettable = (*atomicIterator[int])(nil)

// atomicIterator wraps exactly one live adapter iterator and acquires the
// owning collection's read lock for the duration of exactly one step per
// Next call, caching the element while the lock is still held. A writer
// therefore only ever waits for a single step, never for a whole
// enumeration pass, and no step can tear across a concurrent mutation.
//
// The iterator is single-use and single-consumer; it must not be shared
// across goroutines.
type atomicIterator[T any] struct {
	owner *Collection[T]
	inner collections.Iterator[T]

	current   T
	err       error
	exhausted bool
	closeOnce sync.Once
}

func newAtomicIterator[T any](owner *Collection[T]) *atomicIterator[T] {
	return &atomicIterator[T]{owner: owner}
}

// Next advances by one element under the owner's read lock. It returns
// false on exhaustion, on a concurrent structural modification reported
// by the wrapped iterator, and when the owning collection was disposed
// mid-iteration; Err discriminates the cases.
func (it *atomicIterator[T]) Next() bool {
	if it.exhausted || it.err != nil {
		return false
	}

	release, err := it.owner.ReadLock()
	if err != nil {
		it.fail(err)
		return false
	}
	defer release()

	if it.inner == nil {
		it.inner = it.owner.adapter.Iterator()
	}

	if it.inner.Next() {
		// cached while the lock is held, so the value reflects a
		// consistent snapshot at this position
		it.current = it.inner.Value()
		return true
	}

	if innerErr := it.inner.Err(); innerErr != nil {
		it.fail(innerErr)
		return false
	}

	it.exhausted = true

	return false
}

// Value returns the element cached by the last successful Next.
func (it *atomicIterator[T]) Value() T {
	return it.current
}

// Err returns nil after clean exhaustion, collections.ErrConcurrentModification
// when the backing structure changed between steps, and
// collections.ErrDisposed when the owner was disposed mid-iteration.
func (it *atomicIterator[T]) Err() error {
	return it.err
}

// Reset rewinds the iteration when the wrapped iterator supports it and
// fails with collections.ErrResetNotSupported otherwise.
func (it *atomicIterator[T]) Reset() error {
	release, err := it.owner.ReadLock()
	if err != nil {
		return err
	}
	defer release()

	if it.inner == nil {
		it.inner = it.owner.adapter.Iterator()
	}

	resettable, ok := it.inner.(collections.Resettable)
	if !ok {
		return collections.ErrResetNotSupported
	}

	if err := resettable.Reset(); err != nil {
		return err
	}

	var zero T
	it.current = zero
	it.err = nil
	it.exhausted = false

	return nil
}

// Close releases the wrapped iterator. It is idempotent and never fails.
func (it *atomicIterator[T]) Close() error {
	it.closeOnce.Do(func() {
		it.exhausted = true

		if it.inner != nil {
			_ = it.inner.Close()
		}
	})

	return nil
}

func (it *atomicIterator[T]) fail(err error) {
	it.err = err
	it.exhausted = true
}
