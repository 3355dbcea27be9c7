// Package adapterspy provides a scriptable Adapter test double.
//
// The spy backs the collection engines in tests where the real in-memory
// adapters are too well behaved: it can fail or panic on Clear, flip its
// read-only flag, and fire must-reset notifications on demand so tests can
// drive the reset plumbing from the adapter side.
package adapterspy

import (
	"sync"

	"github.com/AntonStoeckl/observable-collections-go/collections"
)

// AdapterSpy is an Adapter implementation over string items that records
// every interface call and can be scripted to misbehave.
type AdapterSpy struct {
	items      []string
	readOnly   bool
	clearErr   error
	clearPanic any
	notify     func()

	countCalls    int
	containsCalls int
	copyToCalls   int
	clearCalls    int
	iteratorCalls int

	mu sync.Mutex
}

// NewAdapterSpy creates a new AdapterSpy holding the given items.
func NewAdapterSpy(items ...string) *AdapterSpy {
	return &AdapterSpy{
		items: append([]string(nil), items...),
	}
}

// Count implements the Adapter interface for testing.
func (s *AdapterSpy) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.countCalls++

	return len(s.items)
}

// IsReadOnly implements the Adapter interface for testing.
func (s *AdapterSpy) IsReadOnly() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.readOnly
}

// Contains implements the Adapter interface for testing.
func (s *AdapterSpy) Contains(item string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.containsCalls++

	for _, candidate := range s.items {
		if candidate == item {
			return true
		}
	}

	return false
}

// CopyTo implements the Adapter interface for testing.
func (s *AdapterSpy) CopyTo(dst []string, at int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.copyToCalls++

	if at < 0 || at+len(s.items) > len(dst) {
		return collections.ErrArgumentOutOfRange
	}

	copy(dst[at:], s.items)

	return nil
}

// Clear implements the Adapter interface for testing.
// A scripted panic wins over a scripted error; on success the spy fires
// the bound must-reset notification like the real adapters do.
func (s *AdapterSpy) Clear() error {
	s.mu.Lock()
	s.clearCalls++

	if s.clearPanic != nil {
		panicValue := s.clearPanic
		s.mu.Unlock()
		panic(panicValue)
	}

	if s.clearErr != nil {
		err := s.clearErr
		s.mu.Unlock()

		return err
	}

	s.items = s.items[:0]
	notify := s.notify
	s.mu.Unlock()

	if notify != nil {
		notify()
	}

	return nil
}

// Iterator implements the Adapter interface for testing.
// The returned iterator walks a snapshot taken at creation and does not
// support Reset, so tests can exercise the unsupported-reset branch.
func (s *AdapterSpy) Iterator() collections.Iterator[string] {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.iteratorCalls++

	return &spyIterator{items: append([]string(nil), s.items...)}
}

// BindMustReset implements the Adapter interface for testing.
func (s *AdapterSpy) BindMustReset(notify func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notify = notify
}

// FireMustReset invokes the bound must-reset notification once, as if the
// underlying data had been invalidated. It is a no-op while nothing is bound.
func (s *AdapterSpy) FireMustReset() {
	s.mu.Lock()
	notify := s.notify
	s.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// ReplaceItems swaps the backing items without firing any notification.
func (s *AdapterSpy) ReplaceItems(items ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append([]string(nil), items...)
}

// Items returns a copy of the current backing items.
func (s *AdapterSpy) Items() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.items...)
}

// ScriptReadOnly sets the value IsReadOnly reports.
func (s *AdapterSpy) ScriptReadOnly(readOnly bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.readOnly = readOnly
}

// ScriptClearFailure makes every following Clear call return the given error.
func (s *AdapterSpy) ScriptClearFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearErr = err
}

// ScriptClearPanic makes every following Clear call panic with the given value.
func (s *AdapterSpy) ScriptClearPanic(value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearPanic = value
}

// CountCalls returns how often Count was called.
func (s *AdapterSpy) CountCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.countCalls
}

// ContainsCalls returns how often Contains was called.
func (s *AdapterSpy) ContainsCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.containsCalls
}

// CopyToCalls returns how often CopyTo was called.
func (s *AdapterSpy) CopyToCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.copyToCalls
}

// ClearCalls returns how often Clear was called.
func (s *AdapterSpy) ClearCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.clearCalls
}

// IteratorCalls returns how often Iterator was called.
func (s *AdapterSpy) IteratorCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.iteratorCalls
}

type spyIterator struct {
	items   []string
	index   int
	current string
	closed  bool
}

func (it *spyIterator) Next() bool {
	if it.closed || it.index >= len(it.items) {
		return false
	}

	it.current = it.items[it.index]
	it.index++

	return true
}

func (it *spyIterator) Value() string {
	return it.current
}

func (it *spyIterator) Err() error {
	return nil
}

func (it *spyIterator) Close() error {
	it.closed = true

	return nil
}

// Compile-time check to ensure AdapterSpy implements the Adapter interface.
var _ collections.Adapter[string] = (*AdapterSpy)(nil)
