package syncengine

import (
	"sync"

	"github.com/AntonStoeckl/observable-collections-go/collections"
)

// Observable extends RWSync with an optional notification dispatcher and
// subscription management for the two notification categories a
// collection raises: a structural reset ("assume the entire content
// changed") and property-changed signals for derived properties such as
// Count.
//
// Notifications are fire-and-forget with respect to subscribers: a panic
// raised by a subscriber is not recovered here and propagates on
// whichever goroutine delivered the notification.
type Observable struct {
	RWSync

	dispatcher collections.Dispatcher

	subMu        sync.Mutex
	nextSubID    uint64
	resetSubs    map[uint64]func()
	propertySubs map[uint64]func(property string)
}

// Invoke runs fn inline when no dispatcher is configured. With a
// dispatcher it marshals fn there and blocks until the callback has
// completed, so the notification has been raised by the time Invoke
// returns. A nil fn is a no-op.
func (o *Observable) Invoke(fn func()) {
	if fn == nil {
		return
	}

	if o.dispatcher == nil {
		fn()
		return
	}

	o.dispatcher.Invoke(fn)
}

// InvokeIfNotDisposed behaves like Invoke but checks the disposal flag
// first and silently does nothing when the instance is terminal. It never
// fails; it exists to protect best-effort notification paths from racing
// with teardown.
func (o *Observable) InvokeIfNotDisposed(fn func()) {
	if o.Disposed() {
		return
	}

	o.Invoke(fn)
}

// SubscribeReset registers fn for collection-reset notifications and
// returns its unsubscribe closure. A nil fn registers nothing.
func (o *Observable) SubscribeReset(fn func()) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	o.subMu.Lock()
	defer o.subMu.Unlock()

	if o.resetSubs == nil {
		o.resetSubs = make(map[uint64]func())
	}

	id := o.nextSubID
	o.nextSubID++
	o.resetSubs[id] = fn

	return func() {
		o.subMu.Lock()
		defer o.subMu.Unlock()
		delete(o.resetSubs, id)
	}
}

// SubscribePropertyChanged registers fn for property-changed
// notifications and returns its unsubscribe closure. A nil fn registers
// nothing.
func (o *Observable) SubscribePropertyChanged(fn func(property string)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	o.subMu.Lock()
	defer o.subMu.Unlock()

	if o.propertySubs == nil {
		o.propertySubs = make(map[uint64]func(property string))
	}

	id := o.nextSubID
	o.nextSubID++
	o.propertySubs[id] = fn

	return func() {
		o.subMu.Lock()
		defer o.subMu.Unlock()
		delete(o.propertySubs, id)
	}
}

// NotifyReset delivers the collection-reset notification to all current
// subscribers, inline or on the dispatcher.
func (o *Observable) NotifyReset() {
	o.InvokeIfNotDisposed(func() {
		for _, fn := range o.resetSubscribers() {
			fn()
		}
	})
}

// NotifyPropertyChanged delivers a property-changed notification carrying
// the property name to all current subscribers.
func (o *Observable) NotifyPropertyChanged(property string) {
	o.InvokeIfNotDisposed(func() {
		for _, fn := range o.propertySubscribers() {
			fn(property)
		}
	})
}

func (o *Observable) resetSubscribers() []func() {
	o.subMu.Lock()
	defer o.subMu.Unlock()

	subs := make([]func(), 0, len(o.resetSubs))
	for _, fn := range o.resetSubs {
		subs = append(subs, fn)
	}

	return subs
}

func (o *Observable) propertySubscribers() []func(property string) {
	o.subMu.Lock()
	defer o.subMu.Unlock()

	subs := make([]func(property string), 0, len(o.propertySubs))
	for _, fn := range o.propertySubs {
		subs = append(subs, fn)
	}

	return subs
}

// InvokeIfNotDisposedValue runs fn through InvokeIfNotDisposed and returns
// its result, or the zero value when the instance was already disposed.
func InvokeIfNotDisposedValue[R any](o *Observable, fn func() R) R {
	var result R

	o.InvokeIfNotDisposed(func() { result = fn() })

	return result
}
