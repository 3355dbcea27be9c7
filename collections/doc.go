// Package collections provides the core abstractions for observable,
// thread-synchronized collections.
//
// This package defines the fundamental contracts used across the concrete
// engine implementations: the pluggable storage adapter, the iterator
// surface, the optional notification dispatcher, and common error
// definitions.
//
// The synchronized engines built on these contracts guarantee:
//   - Read operations observe a consistent state under a shared read lock
//   - Mutations are exclusive and never produce torn reads
//   - Wholesale content changes surface as a single coalesced reset
//     notification, even when the backing adapter fires several
//
// Key types:
//   - Adapter: the minimal mutable-container contract an engine wraps
//   - Iterator: single-pass cursor over adapter contents
//   - Dispatcher: optional "run and wait" target for notification delivery
//
// Common usage pattern:
//
//	dispatcher := collections.NewSerialDispatcher()
//	defer dispatcher.Close()
//
//	list, err := syncengine.NewObservableList([]string{"a", "b"},
//		syncengine.WithDispatcher(dispatcher))
//	if err != nil {
//		// handle error
//	}
//	defer list.Close()
//
//	unsubscribe := list.SubscribeReset(func() {
//		// the entire visible content may have changed
//	})
//	defer unsubscribe()
package collections
