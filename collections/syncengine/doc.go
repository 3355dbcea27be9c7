// Package syncengine implements the observable, thread-synchronized
// collection engine on top of the contracts defined in the collections
// package.
//
// The engine is layered the way the runtime behavior composes:
//   - RWSync: scoped reader/writer lock acquisition with disposal awareness
//   - Observable: optional dispatcher marshalling plus reset and
//     property-changed subscriptions
//   - Collection: the read-only synchronized core wrapping a single
//     collection adapter, with coalescing of adapter must-reset signals
//   - ObservableList / ObservableSet: concrete mutable types built on the
//     core, driving the built-in slice and set adapters
//
// All inspection operations run under a shared read lock and observe one
// consistent state. Mutations are exclusive. Iterators come in two
// flavors: the adapter's native iterator when no dispatcher is configured,
// and an atomic iterator that re-acquires the read lock for every single
// step otherwise, so a writer only ever waits for one step, never for a
// whole enumeration pass.
package syncengine
