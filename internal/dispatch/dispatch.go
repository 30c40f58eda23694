// Package dispatch hops work from overlay-owned callback goroutines
// onto goroutines owned by the transport. Overlay callbacks must not
// run user code directly: a listener that blocks, or that calls back
// into the transport, would stall or deadlock the overlay's delivery
// loop. Callbacks therefore only enqueue; a fixed pool of workers
// drains the queue and invokes listeners.
package dispatch

import (
	"sync"

	"github.com/ehrlich-b/go-uptransport/internal/constants"
	"github.com/ehrlich-b/go-uptransport/internal/interfaces"
)

// Config configures a dispatcher.
type Config struct {
	Workers    int
	QueueBound int
	Logger     interfaces.Logger
	// OnDrop is called for every task rejected because the dispatcher
	// was already closed. May be nil.
	OnDrop func()
}

// Dispatcher owns the queue and worker pool.
type Dispatcher struct {
	ch        chan func()
	quit      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	logger    interfaces.Logger
	onDrop    func()
}

// New starts a dispatcher with the configured worker pool.
func New(config Config) *Dispatcher {
	workers := config.Workers
	if workers <= 0 {
		workers = constants.DefaultDispatchWorkers
	}
	bound := config.QueueBound
	if bound <= 0 {
		bound = constants.DefaultDispatchQueueBound
	}

	d := &Dispatcher{
		ch:     make(chan func(), bound),
		quit:   make(chan struct{}),
		logger: config.Logger,
		onDrop: config.OnDrop,
	}
	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.worker()
	}
	return d
}

// Submit enqueues a task, blocking while the queue is full. It reports
// false when the dispatcher is closed and the task was dropped.
func (d *Dispatcher) Submit(fn func()) bool {
	select {
	case <-d.quit:
	default:
		select {
		case <-d.quit:
		case d.ch <- fn:
			return true
		}
	}
	if d.onDrop != nil {
		d.onDrop()
	}
	return false
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case <-d.quit:
			return
		default:
		}
		select {
		case <-d.quit:
			return
		case fn := <-d.ch:
			d.invoke(fn)
		}
	}
}

// invoke runs one task, trapping panics so a misbehaving listener
// cannot take a worker down.
func (d *Dispatcher) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil && d.logger != nil {
			d.logger.Printf("listener panic recovered: %v", r)
		}
	}()
	fn()
}

// Close stops the workers. Tasks still queued are dropped; tasks being
// invoked run to completion.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.quit)
	})
	d.wg.Wait()
}
