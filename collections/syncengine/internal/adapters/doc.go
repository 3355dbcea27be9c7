// Package adapters provides the built-in collection adapter implementations for the synchronized engine.
//
// This package implements the adapter pattern for the two bundled storage shapes:
// an ordered slice backend and an unordered set backend. Both present the same
// collections.Adapter contract, so the engine works identically with either,
// and both carry a version stamp that live iterators validate on every step to
// detect structural changes they did not mediate themselves.
//
// The adapters are not safe for concurrent use on their own; the wrapping
// collection serializes all access through its reader/writer lock.
package adapters
