package collections

// Iterator is a single-use, single-consumer cursor over collection
// contents, shaped like a database row cursor: advance with Next, read
// the element with Value, and discriminate clean exhaustion from failure
// with Err after Next returned false.
type Iterator[T any] interface {
	// Next advances to the next element. It returns false when the
	// iteration is exhausted or has failed.
	Next() bool

	// Value returns the element cached by the last successful Next.
	// It is only valid after Next returned true.
	Value() T

	// Err returns nil after a clean exhaustion. It returns
	// ErrConcurrentModification when the backing structure changed
	// outside the iterator's control, and ErrDisposed when the owning
	// collection was disposed mid-iteration.
	Err() error

	// Close releases the iterator. It is idempotent and never fails.
	Close() error
}

// Resettable is an optional iterator capability, probed by type
// assertion. Iterators that cannot restart simply do not implement it.
type Resettable interface {
	// Reset rewinds the iterator to the not-started state.
	Reset() error
}
