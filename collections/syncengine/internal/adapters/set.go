package adapters

import (
	"errors"
	"fmt"

	"github.com/AntonStoeckl/observable-collections-go/collections"
)

var _ collections.Adapter[int] = (*Set[int])(nil)
var _ collections.Resettable = (*setIterator[int])(nil)

// Set is the unordered, map-backed collection adapter. Iteration and copy
// order are unspecified. Incremental mutations bump the version stamp;
// bulk operations additionally fire the bound must-reset signal.
type Set[T comparable] struct {
	items     map[T]struct{}
	version   uint64
	mustReset func()
}

// NewSet creates a set adapter seeded with the distinct values of items.
func NewSet[T comparable](items []T) *Set[T] {
	s := &Set[T]{items: make(map[T]struct{}, len(items))}

	for _, item := range items {
		s.items[item] = struct{}{}
	}

	return s
}

// Count returns the number of stored items.
func (s *Set[T]) Count() int {
	return len(s.items)
}

// IsReadOnly reports false; the set adapter accepts mutations.
func (s *Set[T]) IsReadOnly() bool {
	return false
}

// Contains reports whether item is present.
func (s *Set[T]) Contains(item T) bool {
	_, ok := s.items[item]
	return ok
}

// CopyTo copies all items into dst starting at index at, in unspecified order.
func (s *Set[T]) CopyTo(dst []T, at int) error {
	if at < 0 || len(dst)-at < len(s.items) {
		return errors.Join(
			collections.ErrArgumentOutOfRange,
			fmt.Errorf("destination length %d at index %d for %d items", len(dst), at, len(s.items)),
		)
	}

	i := at
	for item := range s.items {
		dst[i] = item
		i++
	}

	return nil
}

// Clear removes all items; a bulk change, so it fires must-reset.
func (s *Set[T]) Clear() error {
	s.items = make(map[T]struct{})
	s.version++
	s.fireMustReset()

	return nil
}

// Iterator returns a single-use iterator over a key snapshot taken now.
// The version stamp is still validated per step, so mutations after the
// snapshot surface as a concurrent-modification failure.
func (s *Set[T]) Iterator() collections.Iterator[T] {
	return &setIterator[T]{adapter: s, version: s.version, keys: s.keySnapshot(), index: -1}
}

// BindMustReset registers the single must-reset observer.
func (s *Set[T]) BindMustReset(notify func()) {
	s.mustReset = notify
}

// Add inserts item and reports whether it was absent before; an
// incremental change, no must-reset.
func (s *Set[T]) Add(item T) bool {
	if _, ok := s.items[item]; ok {
		return false
	}

	s.items[item] = struct{}{}
	s.version++

	return true
}

// Remove deletes item and reports whether it was present; an incremental
// change, no must-reset.
func (s *Set[T]) Remove(item T) bool {
	if _, ok := s.items[item]; !ok {
		return false
	}

	delete(s.items, item)
	s.version++

	return true
}

// Replace swaps the entire contents for the distinct values of items; a
// bulk change, so it fires must-reset.
func (s *Set[T]) Replace(items []T) {
	s.items = make(map[T]struct{}, len(items))
	for _, item := range items {
		s.items[item] = struct{}{}
	}

	s.version++
	s.fireMustReset()
}

func (s *Set[T]) keySnapshot() []T {
	keys := make([]T, 0, len(s.items))
	for item := range s.items {
		keys = append(keys, item)
	}

	return keys
}

func (s *Set[T]) fireMustReset() {
	if s.mustReset != nil {
		s.mustReset()
	}
}

// setIterator walks a key snapshot and validates the adapter's version
// stamp on every step.
type setIterator[T comparable] struct {
	adapter *Set[T]
	version uint64
	keys    []T
	index   int
	current T
	err     error
	closed  bool
}

func (it *setIterator[T]) Next() bool {
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
	if next >= len(it.keys) {
		return false
	}

	it.index = next
	it.current = it.keys[next]

	return true
}

func (it *setIterator[T]) Value() T {
	return it.current
}

func (it *setIterator[T]) Err() error {
	return it.err
}

// Reset re-snapshots the keys and re-stamps the version, so the next pass
// observes the adapter's current contents.
func (it *setIterator[T]) Reset() error {
	if it.closed {
		return collections.ErrDisposed
	}

	it.keys = it.adapter.keySnapshot()
	it.version = it.adapter.version
	it.index = -1
	it.err = nil

	var zero T
	it.current = zero

	return nil
}

func (it *setIterator[T]) Close() error {
	it.closed = true
	return nil
}
