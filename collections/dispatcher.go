package collections

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
)

// Dispatcher is the optional "run and wait" capability a collection uses
// to deliver notifications on a dedicated execution context, typically a
// UI or event-loop goroutine. Invoke returns only after fn has completed,
// so callers can rely on the notification having been raised by the time
// Invoke returns.
type Dispatcher interface {
	Invoke(fn func())
}

var _ Dispatcher = (*SerialDispatcher)(nil)

// SerialDispatcher runs all dispatched callbacks sequentially on one
// dedicated goroutine. It stands in for an environment-provided message
// loop in tests, demos, and headless services.
//
// Invoke from the dispatcher's own goroutine runs fn inline, so callbacks
// may safely dispatch again without deadlocking. Invoke after Close
// degrades to direct synchronous invocation on the calling goroutine, so
// callers are never left blocking on a stopped loop.
type SerialDispatcher struct {
	jobs      chan dispatchJob
	quit      chan struct{}
	done      chan struct{}
	loopID    atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

type dispatchJob struct {
	fn       func()
	done     chan struct{}
	panicked *any
}

// NewSerialDispatcher starts the dispatch goroutine and returns the
// ready-to-use dispatcher. Callers must Close it when done.
func NewSerialDispatcher() *SerialDispatcher {
	d := &SerialDispatcher{
		jobs: make(chan dispatchJob),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}

	started := make(chan struct{})
	go d.loop(started)
	<-started

	return d
}

// Invoke runs fn on the dispatch goroutine and blocks until it has
// completed. A panic raised by fn is rethrown on the calling goroutine.
// A nil fn is a no-op.
func (d *SerialDispatcher) Invoke(fn func()) {
	if fn == nil {
		return
	}

	if d.closed.Load() || currentGoroutineID() == d.loopID.Load() {
		fn()
		return
	}

	job := dispatchJob{fn: fn, done: make(chan struct{}), panicked: new(any)}

	select {
	case d.jobs <- job:
		<-job.done
		if r := *job.panicked; r != nil {
			panic(r)
		}
	case <-d.done:
		// The loop stopped between the closed check and the send.
		fn()
	}
}

// Close stops the dispatch goroutine after the job in flight, if any, has
// finished. It is idempotent and safe to call concurrently with Invoke.
func (d *SerialDispatcher) Close() error {
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.quit)
		<-d.done
	})

	return nil
}

func (d *SerialDispatcher) loop(started chan<- struct{}) {
	d.loopID.Store(currentGoroutineID())
	close(started)

	defer close(d.done)

	for {
		select {
		case job := <-d.jobs:
			d.run(job)
		case <-d.quit:
			return
		}
	}
}

func (d *SerialDispatcher) run(job dispatchJob) {
	defer close(job.done)
	defer func() {
		if r := recover(); r != nil {
			*job.panicked = r
		}
	}()

	job.fn()
}

// currentGoroutineID parses the numeric goroutine id from the first line
// of a stack dump ("goroutine 123 [running]:"). The runtime exposes no
// cheaper portable way to identify the calling goroutine.
func currentGoroutineID() uint64 {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)

	fields := bytes.Fields(buf[:n])
	if len(fields) < 2 {
		return 0
	}

	id, err := strconv.ParseUint(string(fields[1]), 10, 64)
	if err != nil {
		return 0
	}

	return id
}
