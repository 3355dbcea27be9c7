package syncengine

import (
	"github.com/AntonStoeckl/observable-collections-go/collections"
	"github.com/AntonStoeckl/observable-collections-go/collections/syncengine/internal/adapters"
)

// ObservableSet is a mutable, unordered observable collection built on
// the synchronized core over the set adapter. All mutations run under the
// write lock. Incremental mutations raise a Count property-changed
// notification; bulk operations surface as one coalesced reset.
type ObservableSet[T comparable] struct {
	*Collection[T]

	backing *adapters.Set[T]
}

// NewObservableSet creates an observable set seeded with the distinct
// values of items.
func NewObservableSet[T comparable](items []T, options ...Option) (*ObservableSet[T], error) {
	backing := adapters.NewSet(items)

	core, err := NewCollection[T](backing, options...)
	if err != nil {
		return nil, err
	}

	return &ObservableSet[T]{Collection: core, backing: backing}, nil
}

// Add inserts item under the write lock and reports whether it was absent
// before. An actual insertion raises a Count property-changed
// notification after the lock is released.
func (s *ObservableSet[T]) Add(item T) (bool, error) {
	added, err := WriteLockedValue(&s.RWSync, func() (bool, error) {
		return s.backing.Add(item), nil
	})
	if err != nil {
		return false, err
	}

	if added {
		s.NotifyPropertyChanged(collections.PropertyCount)
	}

	return added, nil
}

// Remove deletes item under the write lock and reports whether it was
// present. An actual removal raises a Count property-changed notification
// after the lock is released.
func (s *ObservableSet[T]) Remove(item T) (bool, error) {
	removed, err := WriteLockedValue(&s.RWSync, func() (bool, error) {
		return s.backing.Remove(item), nil
	})
	if err != nil {
		return false, err
	}

	if removed {
		s.NotifyPropertyChanged(collections.PropertyCount)
	}

	return removed, nil
}

// ReplaceAll swaps the entire contents for the distinct values of items.
// The adapter fires one must-reset, forwarded as a single reset
// notification.
func (s *ObservableSet[T]) ReplaceAll(items []T) error {
	return s.WriteLocked(func() error {
		s.backing.Replace(items)
		return nil
	})
}

// Clear removes all elements. The adapter fires one must-reset, forwarded
// as a single reset notification.
func (s *ObservableSet[T]) Clear() error {
	return s.WriteLocked(func() error {
		return s.backing.Clear()
	})
}

// Reload clears and bulk-loads items inside a BeginBatch window: however
// many must-reset signals the two steps fire, observers see one coalesced
// notification, delivered after the write lock is released when the
// window closes.
func (s *ObservableSet[T]) Reload(items []T) error {
	end, err := s.BeginBatch()
	if err != nil {
		return err
	}
	defer end()

	return s.WriteLocked(func() error {
		if err := s.backing.Clear(); err != nil {
			return err
		}

		s.backing.Replace(items)

		return nil
	})
}
