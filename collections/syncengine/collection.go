package syncengine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/observable-collections-go/collections"
	"github.com/AntonStoeckl/observable-collections-go/collections/syncengine/internal/adapters"
)

const (
	logMsgResetForwarded      = "must-reset forwarded to subscribers"
	logMsgResetSuppressed     = "must-reset suppressed by armed counter"
	logMsgResetAbsorbed       = "must-reset absorbed by open batch"
	logMsgBatchCoalesced      = "batch closed, forwarding coalesced reset"
	logMsgTeardownClearFailed = "clearing the adapter during disposal failed"
	logMsgDisposed            = "collection disposed"
	logAttrCollectionID       = "collection_id"
	logAttrCollectionName     = "collection_name"
	logAttrError              = "error"
	logAttrArmedRemaining     = "armed_remaining"
	metricResetsForwarded     = "collection_resets_forwarded_total"
	metricResetsSuppressed    = "collection_resets_suppressed_total"
	metricSnapshotDuration    = "collection_snapshot_duration_seconds"
	labelCollection           = "collection"
	labelOperation            = "operation"
	operationToSlice          = "to_slice"
	operationToSliceFrom      = "to_slice_from"
)

// Collection is the observable, thread-synchronized read-only core. It
// wraps exactly one collection adapter, read-locks every inspection
// operation, coalesces adapter must-reset signals, and exposes a
// consistent snapshot API.
//
// Mutable types embed Collection and drive the adapter under the write
// lock; see ObservableList and ObservableSet.
type Collection[T any] struct {
	Observable

	adapter collections.Adapter[T]

	// Coalescing state has its own mutex, deliberately distinct from the
	// reader/writer lock: a must-reset fired from inside a write-locked
	// mutation must not re-enter that lock.
	armedMu      sync.Mutex
	armed        int
	batchDepth   int
	batchPending bool

	hookMu     sync.Mutex
	afterReset func()

	id               uuid.UUID
	collectionName   string
	logger           Logger
	metricsCollector MetricsCollector
}

// NewCollection creates a synchronized observable collection around the
// supplied adapter. The collection takes exclusive ownership of the
// adapter: nothing else may mutate it afterwards, and disposal clears it
// best-effort.
func NewCollection[T any](adapter collections.Adapter[T], options ...Option) (*Collection[T], error) {
	if adapter == nil {
		return nil, collections.ErrNilAdapter
	}

	s, err := applyOptions(options)
	if err != nil {
		return nil, err
	}

	c := &Collection[T]{
		adapter:          adapter,
		id:               uuid.New(),
		collectionName:   s.collectionName,
		logger:           s.logger,
		metricsCollector: s.metricsCollector,
	}
	c.dispatcher = s.dispatcher

	adapter.BindMustReset(c.handleMustReset)

	return c, nil
}

// NewCollectionFromSlice creates a collection over the built-in ordered
// slice adapter, seeded with a copy of items.
func NewCollectionFromSlice[T comparable](items []T, options ...Option) (*Collection[T], error) {
	return NewCollection[T](adapters.NewSlice(items), options...)
}

// NewCollectionFromSet creates a collection over the built-in set
// adapter, seeded with the distinct values of items.
func NewCollectionFromSet[T comparable](items []T, options ...Option) (*Collection[T], error) {
	return NewCollection[T](adapters.NewSet(items), options...)
}

// Count returns the number of elements, read under a shared read lock.
func (c *Collection[T]) Count() (int, error) {
	return ReadLockedValue(&c.RWSync, func() (int, error) {
		return c.adapter.Count(), nil
	})
}

// IsReadOnly reports whether the underlying adapter rejects mutations.
func (c *Collection[T]) IsReadOnly() (bool, error) {
	return ReadLockedValue(&c.RWSync, func() (bool, error) {
		return c.adapter.IsReadOnly(), nil
	})
}

// Contains reports whether item is present, read under a shared read lock.
func (c *Collection[T]) Contains(item T) (bool, error) {
	return ReadLockedValue(&c.RWSync, func() (bool, error) {
		return c.adapter.Contains(item), nil
	})
}

// CopyTo copies all elements into dst starting at index at, under one
// read lock. dst must have capacity from at; otherwise the adapter fails
// with collections.ErrArgumentOutOfRange.
func (c *Collection[T]) CopyTo(dst []T, at int) error {
	return c.ReadLocked(func() error {
		return c.adapter.CopyTo(dst, at)
	})
}

// ToSlice returns an exact-size point-in-time snapshot of the contents.
// The copy executes entirely under one read lock, so no concurrent
// mutation can tear it.
func (c *Collection[T]) ToSlice() ([]T, error) {
	start := time.Now()

	snapshot, err := ReadLockedValue(&c.RWSync, func() ([]T, error) {
		return c.snapshot()
	})
	if err != nil {
		return nil, err
	}

	c.recordSnapshotDuration(operationToSlice, time.Since(start))

	return snapshot, nil
}

// ToSliceFrom returns a snapshot of the contents starting at from, which
// must satisfy 0 <= from < Count; otherwise it fails with
// collections.ErrArgumentOutOfRange. ToSliceFrom(0) equals ToSlice.
func (c *Collection[T]) ToSliceFrom(from int) ([]T, error) {
	start := time.Now()

	snapshot, err := ReadLockedValue(&c.RWSync, func() ([]T, error) {
		count := c.adapter.Count()
		if from < 0 || from >= count {
			return nil, errors.Join(
				collections.ErrArgumentOutOfRange,
				fmt.Errorf("from index %d with count %d", from, count),
			)
		}

		full, err := c.snapshot()
		if err != nil {
			return nil, err
		}

		tail := make([]T, count-from)
		copy(tail, full[from:])

		return tail, nil
	})
	if err != nil {
		return nil, err
	}

	c.recordSnapshotDuration(operationToSliceFrom, time.Since(start))

	return snapshot, nil
}

// snapshot bulk-copies the adapter contents; callers must hold the read lock.
func (c *Collection[T]) snapshot() ([]T, error) {
	dst := make([]T, c.adapter.Count())

	if err := c.adapter.CopyTo(dst, 0); err != nil {
		return nil, err
	}

	return dst, nil
}

// Iterator returns a single-use iterator over the current contents.
//
// Without a dispatcher configured this is the adapter's native iterator:
// the fast path, with no atomicity guarantee beyond what the adapter
// itself offers. With a dispatcher configured it is an atomic iterator
// bound to this collection's read-lock acquisition, taking the lock for
// exactly one step at a time.
func (c *Collection[T]) Iterator() (collections.Iterator[T], error) {
	if c.Disposed() {
		return nil, collections.ErrDisposed
	}

	if c.dispatcher == nil {
		return c.adapter.Iterator(), nil
	}

	return newAtomicIterator(c), nil
}

// ArmMustResetSuppression pre-arms the coalescing counter by n before a
// batch mutation known to trigger exactly n adapter must-reset signals,
// so observers see at most one coalesced notification instead of n.
// n must be positive. The counter never goes below zero: once it is
// drained, further must-reset signals pass through again.
func (c *Collection[T]) ArmMustResetSuppression(n int) error {
	if c.Disposed() {
		return collections.ErrDisposed
	}

	if n <= 0 {
		return errors.Join(collections.ErrArgumentOutOfRange, fmt.Errorf("suppression count %d", n))
	}

	c.armedMu.Lock()
	c.armed += n
	c.armedMu.Unlock()

	return nil
}

// BeginBatch opens a suppression window as the structural alternative to
// counting expected must-reset signals: every signal arriving while the
// window is open is absorbed, regardless of how many the adapter fires.
// The returned end closure is idempotent and forwards a single coalesced
// reset notification if at least one signal arrived. Windows nest; the
// outermost end forwards.
func (c *Collection[T]) BeginBatch() (end func(), err error) {
	if c.Disposed() {
		return nil, collections.ErrDisposed
	}

	c.armedMu.Lock()
	c.batchDepth++
	c.armedMu.Unlock()

	var once sync.Once

	return func() {
		once.Do(func() {
			c.armedMu.Lock()
			c.batchDepth--
			forward := c.batchPending && c.batchDepth == 0
			if forward {
				c.batchPending = false
			}
			c.armedMu.Unlock()

			if forward {
				c.logDebug(logMsgBatchCoalesced)
				c.forwardReset()
			}
		})
	}, nil
}

// SetAfterResetHook installs the extension hook invoked after a reset
// notification was forwarded ("contents may have changed"). The default
// is no hook. Passing nil removes the hook.
func (c *Collection[T]) SetAfterResetHook(hook func()) {
	c.hookMu.Lock()
	c.afterReset = hook
	c.hookMu.Unlock()
}

// Close disposes the collection: the disposal flag turns terminal first,
// then the adapter is cleared best-effort under the write lock, with
// failures and panics swallowed so teardown always completes. Close is
// idempotent and never fails.
func (c *Collection[T]) Close() error {
	if !c.disposed.CompareAndSwap(false, true) {
		return nil
	}

	// In-flight lock holders drain before the adapter is cleared; new
	// acquisitions already fail with ErrDisposed.
	c.mu.Lock()
	defer c.mu.Unlock()

	c.clearAdapterBestEffort()
	c.logDebug(logMsgDisposed)

	return nil
}

func (c *Collection[T]) clearAdapterBestEffort() {
	defer func() {
		if r := recover(); r != nil {
			c.logWarn(logMsgTeardownClearFailed, logAttrError, fmt.Sprintf("panic: %v", r))
		}
	}()

	if err := c.adapter.Clear(); err != nil {
		c.logWarn(logMsgTeardownClearFailed, logAttrError, err.Error())
	}
}

// handleMustReset receives the adapter's must-reset signal. It may run
// while the mutating goroutine still holds the write lock, which is why
// every decision here goes through armedMu instead.
func (c *Collection[T]) handleMustReset() {
	if c.Disposed() {
		return
	}

	c.armedMu.Lock()

	if c.batchDepth > 0 {
		c.batchPending = true
		c.armedMu.Unlock()

		c.logDebug(logMsgResetAbsorbed)
		c.incrementCounter(metricResetsSuppressed)

		return
	}

	if c.armed > 0 {
		c.armed--
		remaining := c.armed
		c.armedMu.Unlock()

		c.logDebug(logMsgResetSuppressed, logAttrArmedRemaining, remaining)
		c.incrementCounter(metricResetsSuppressed)

		return
	}

	c.armedMu.Unlock()

	c.forwardReset()
}

// forwardReset raises the externally visible notifications for one
// structural reset and invokes the after-reset hook.
func (c *Collection[T]) forwardReset() {
	c.logDebug(logMsgResetForwarded)
	c.incrementCounter(metricResetsForwarded)

	c.NotifyReset()
	c.NotifyPropertyChanged(collections.PropertyCount)

	c.hookMu.Lock()
	hook := c.afterReset
	c.hookMu.Unlock()

	if hook != nil {
		hook()
	}
}
