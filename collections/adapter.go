package collections

// Adapter is the minimal mutable-container contract a synchronized
// collection wraps. The wrapping collection owns its adapter exclusively
// (1:1 lifetime): it is created before the collection and cleared
// best-effort when the collection is disposed.
//
// Implementations do not need to be safe for concurrent use on their own;
// the wrapping collection serializes all access through its reader/writer
// lock. The one exception is BindMustReset: the registered callback is
// invoked from whatever goroutine performs the structural change.
type Adapter[T any] interface {
	// Count returns the number of stored items.
	Count() int

	// IsReadOnly reports whether the adapter rejects mutations.
	IsReadOnly() bool

	// Contains reports whether item is present.
	Contains(item T) bool

	// CopyTo copies all items into dst starting at index at. It fails with
	// ErrArgumentOutOfRange when dst lacks capacity from at, or when at is
	// negative.
	CopyTo(dst []T, at int) error

	// Clear removes all items.
	Clear() error

	// Iterator returns the adapter's native iterator over the current
	// contents. The iterator is single-use.
	Iterator() Iterator[T]

	// BindMustReset registers the single must-reset observer, which is the
	// owning collection. The adapter calls notify whenever its internal
	// structure changed in a way the wrapper cannot incrementally describe,
	// such as a bulk load or a wholesale swap.
	BindMustReset(notify func())
}
