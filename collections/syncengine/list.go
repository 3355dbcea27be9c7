package syncengine

import (
	"github.com/AntonStoeckl/observable-collections-go/collections"
	"github.com/AntonStoeckl/observable-collections-go/collections/syncengine/internal/adapters"
)

// ObservableList is a mutable, ordered observable collection built on the
// synchronized core over the slice adapter. All mutations run under the
// write lock. Incremental mutations raise a Count property-changed
// notification; bulk operations surface as one coalesced reset.
type ObservableList[T comparable] struct {
	*Collection[T]

	backing *adapters.Slice[T]
}

// NewObservableList creates an observable list seeded with a copy of items.
func NewObservableList[T comparable](items []T, options ...Option) (*ObservableList[T], error) {
	backing := adapters.NewSlice(items)

	core, err := NewCollection[T](backing, options...)
	if err != nil {
		return nil, err
	}

	return &ObservableList[T]{Collection: core, backing: backing}, nil
}

// Get returns the element at index i under a read lock. It fails with
// collections.ErrArgumentOutOfRange when i is out of bounds.
func (l *ObservableList[T]) Get(i int) (T, error) {
	return ReadLockedValue(&l.RWSync, func() (T, error) {
		return l.backing.Get(i)
	})
}

// Add appends item under the write lock and raises a Count
// property-changed notification after the lock is released.
func (l *ObservableList[T]) Add(item T) error {
	err := l.WriteLocked(func() error {
		l.backing.Append(item)
		return nil
	})
	if err != nil {
		return err
	}

	l.NotifyPropertyChanged(collections.PropertyCount)

	return nil
}

// RemoveAt removes the element at index i under the write lock and raises
// a Count property-changed notification after the lock is released.
func (l *ObservableList[T]) RemoveAt(i int) error {
	err := l.WriteLocked(func() error {
		return l.backing.RemoveAt(i)
	})
	if err != nil {
		return err
	}

	l.NotifyPropertyChanged(collections.PropertyCount)

	return nil
}

// ReplaceAll swaps the entire contents for items. The adapter fires one
// must-reset, which the core forwards as a single reset notification.
func (l *ObservableList[T]) ReplaceAll(items []T) error {
	return l.WriteLocked(func() error {
		l.backing.Replace(items)
		return nil
	})
}

// Clear removes all elements. The adapter fires one must-reset, forwarded
// as a single reset notification.
func (l *ObservableList[T]) Clear() error {
	return l.WriteLocked(func() error {
		return l.backing.Clear()
	})
}

// Reload clears and then bulk-loads items. Both steps fire an adapter
// must-reset, so the suppression counter is pre-armed with one of them:
// observers see exactly one reset notification per reload.
func (l *ObservableList[T]) Reload(items []T) error {
	if err := l.ArmMustResetSuppression(1); err != nil {
		return err
	}

	return l.WriteLocked(func() error {
		if err := l.backing.Clear(); err != nil {
			return err
		}

		l.backing.Replace(items)

		return nil
	})
}
