package sink

import (
	"errors"
	"sync"

	"github.com/rickchristie/hpolog"
)

// ErrClosed is returned by Async.Emit after Close.
var ErrClosed = errors.New("sink: closed")

// Async hands reports to another sink on a background goroutine, so Flush
// never waits on slow output such as a remote file.
//
// Reports are queued without bound and delivered in order. Errors from the
// wrapped sink cannot reach the Printer; they are collected and returned by
// Close.
//
// # Thread Safety
//
// Emit and Close are safe to call from any goroutine.
type Async struct {
	target hpolog.Sink

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []hpolog.Report
	closed  bool
	errs    []error
	drained chan struct{}
}

// NewAsync starts delivering to next. Call Close to stop.
func NewAsync(next hpolog.Sink) *Async {
	a := &Async{
		target:  next,
		queue:   make([]hpolog.Report, 0, 16),
		drained: make(chan struct{}),
	}
	a.cond = sync.NewCond(&a.mu)
	go a.deliver()
	return a
}

// Emit queues r and returns immediately. Reports emitted after Close are
// dropped with ErrClosed.
func (a *Async) Emit(r hpolog.Report) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}
	a.queue = append(a.queue, r)
	a.cond.Signal()
	return nil
}

// Pending returns the number of reports not yet handed to the wrapped sink.
func (a *Async) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.queue)
}

// Close stops accepting reports, waits until the queue is delivered, and
// returns every delivery error joined. Later calls return the same result.
func (a *Async) Close() error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		a.cond.Signal()
	}
	a.mu.Unlock()

	<-a.drained

	a.mu.Lock()
	defer a.mu.Unlock()
	return errors.Join(a.errs...)
}

func (a *Async) deliver() {
	defer close(a.drained)
	for {
		r, ok := a.pop()
		if !ok {
			return
		}
		if err := a.target.Emit(r); err != nil {
			a.mu.Lock()
			a.errs = append(a.errs, err)
			a.mu.Unlock()
		}
	}
}

// pop blocks until a report is queued or the sink is closed and empty.
func (a *Async) pop() (hpolog.Report, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for len(a.queue) == 0 && !a.closed {
		a.cond.Wait()
	}
	if len(a.queue) == 0 {
		return hpolog.Report{}, false
	}
	r := a.queue[0]
	a.queue = a.queue[1:]
	return r, true
}

var _ hpolog.Sink = (*Async)(nil)
