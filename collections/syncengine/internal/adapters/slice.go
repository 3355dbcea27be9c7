package adapters

import (
	"errors"
	"fmt"
	"slices"

	"github.com/AntonStoeckl/observable-collections-go/collections"
)

var _ collections.Adapter[int] = (*Slice[int])(nil)
var _ collections.Resettable = (*sliceIterator[int])(nil)

// Slice is the ordered, slice-backed collection adapter. Incremental
// mutations bump the version stamp; bulk operations additionally fire the
// bound must-reset signal because the wrapper cannot describe them
// incrementally.
type Slice[T comparable] struct {
	items     []T
	version   uint64
	mustReset func()
}

// NewSlice creates a slice adapter seeded with a copy of items.
func NewSlice[T comparable](items []T) *Slice[T] {
	s := &Slice[T]{items: make([]T, len(items))}
	copy(s.items, items)

	return s
}

// Count returns the number of stored items.
func (s *Slice[T]) Count() int {
	return len(s.items)
}

// IsReadOnly reports false; the slice adapter accepts mutations.
func (s *Slice[T]) IsReadOnly() bool {
	return false
}

// Contains reports whether item is present.
func (s *Slice[T]) Contains(item T) bool {
	return slices.Contains(s.items, item)
}

// CopyTo copies all items into dst starting at index at.
func (s *Slice[T]) CopyTo(dst []T, at int) error {
	if at < 0 || len(dst)-at < len(s.items) {
		return errors.Join(
			collections.ErrArgumentOutOfRange,
			fmt.Errorf("destination length %d at index %d for %d items", len(dst), at, len(s.items)),
		)
	}

	copy(dst[at:], s.items)

	return nil
}

// Clear removes all items; a bulk change, so it fires must-reset.
func (s *Slice[T]) Clear() error {
	s.items = nil
	s.version++
	s.fireMustReset()

	return nil
}

// Iterator returns a single-use iterator walking the backing slice in order.
func (s *Slice[T]) Iterator() collections.Iterator[T] {
	return &sliceIterator[T]{adapter: s, version: s.version, index: -1}
}

// BindMustReset registers the single must-reset observer.
func (s *Slice[T]) BindMustReset(notify func()) {
	s.mustReset = notify
}

// Get returns the item at index i.
func (s *Slice[T]) Get(i int) (T, error) {
	if i < 0 || i >= len(s.items) {
		var zero T
		return zero, errors.Join(
			collections.ErrArgumentOutOfRange,
			fmt.Errorf("index %d with count %d", i, len(s.items)),
		)
	}

	return s.items[i], nil
}

// Append adds item at the end; an incremental change, no must-reset.
func (s *Slice[T]) Append(item T) {
	s.items = append(s.items, item)
	s.version++
}

// RemoveAt removes the item at index i; an incremental change, no must-reset.
func (s *Slice[T]) RemoveAt(i int) error {
	if i < 0 || i >= len(s.items) {
		return errors.Join(
			collections.ErrArgumentOutOfRange,
			fmt.Errorf("index %d with count %d", i, len(s.items)),
		)
	}

	s.items = append(s.items[:i], s.items[i+1:]...)
	s.version++

	return nil
}

// Replace swaps the entire contents for a copy of items; a bulk change,
// so it fires must-reset.
func (s *Slice[T]) Replace(items []T) {
	s.items = make([]T, len(items))
	copy(s.items, items)
	s.version++
	s.fireMustReset()
}

func (s *Slice[T]) fireMustReset() {
	if s.mustReset != nil {
		s.mustReset()
	}
}

// sliceIterator walks the backing slice by index and validates the
// version stamp on every step, so structural changes between steps
// surface as a concurrent-modification failure.
type sliceIterator[T comparable] struct {
	adapter *Slice[T]
	version uint64
	index   int
	current T
	err     error
	closed  bool
}

func (it *sliceIterator[T]) Next() bool {
	if it.closed || it.err != nil {
		return false
	}

	if it.version != it.adapter.version {
		it.err = errors.Join(
			collections.ErrConcurrentModification,
			fmt.Errorf("version %d moved to %d", it.version, it.adapter.version),
		)

		return false
	}

	next := it.index + 1
	if next >= len(it.adapter.items) {
		return false
	}

	it.index = next
	it.current = it.adapter.items[next]

	return true
}

func (it *sliceIterator[T]) Value() T {
	return it.current
}

func (it *sliceIterator[T]) Err() error {
	return it.err
}

// Reset rewinds to the not-started state and re-stamps the version, so
// the next pass observes the adapter's current contents.
func (it *sliceIterator[T]) Reset() error {
	if it.closed {
		return collections.ErrDisposed
	}

	it.version = it.adapter.version
	it.index = -1
	it.err = nil

	var zero T
	it.current = zero

	return nil
}

func (it *sliceIterator[T]) Close() error {
	it.closed = true
	return nil
}
