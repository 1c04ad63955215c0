package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/moviekeeper/internal/logging"
	"github.com/google/uuid"
)

// Job is a remote write scheduled on a Dispatcher.
type Job func(ctx context.Context) error

type queuedJob struct {
	id   string
	name string
	ctx  context.Context
	fn   Job
}

// Dispatcher runs remote writes in the background, one at a time and in
// submission order, so the remote store sees writes in the order the local
// store did. Submit never blocks. Failures are logged and dropped; the next
// trigger mirrors the state again.
type Dispatcher struct {
	log     logging.Logger
	timeout time.Duration

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []queuedJob
	pending int
	closed  bool
	done    chan struct{}
}

// NewDispatcher starts the worker goroutine. Each job gets its own deadline
// of timeout (none when timeout is zero).
func NewDispatcher(log logging.Logger, timeout time.Duration) *Dispatcher {
	d := &Dispatcher{
		log:     log.With("module", "dispatcher"),
		timeout: timeout,
		done:    make(chan struct{}),
	}
	d.cond = sync.NewCond(&d.mu)
	go d.run()
	return d
}

// Submit enqueues fn. The job keeps the values of ctx but not its
// cancellation: a write outlives the screen that triggered it.
func (d *Dispatcher) Submit(ctx context.Context, name string, fn Job) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		d.log.Warn(ctx, "dispatcher closed, dropping job", "job", name)
		return
	}

	d.queue = append(d.queue, queuedJob{
		id:   uuid.NewString(),
		name: name,
		ctx:  context.WithoutCancel(ctx),
		fn:   fn,
	})
	d.pending++
	d.cond.Broadcast()
}

// Wait blocks until every job submitted so far has finished.
func (d *Dispatcher) Wait() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for d.pending > 0 {
		d.cond.Wait()
	}
}

// Close stops accepting jobs, runs what is already queued and stops the
// worker.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		d.cond.Broadcast()
	}
	d.mu.Unlock()
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for {
		d.mu.Lock()
		for len(d.queue) == 0 && !d.closed {
			d.cond.Wait()
		}
		if len(d.queue) == 0 {
			d.mu.Unlock()
			return
		}
		j := d.queue[0]
		d.queue[0] = queuedJob{}
		d.queue = d.queue[1:]
		d.mu.Unlock()

		d.execute(j)

		d.mu.Lock()
		d.pending--
		d.cond.Broadcast()
		d.mu.Unlock()
	}
}

func (d *Dispatcher) execute(j queuedJob) {
	ctx := j.ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	started := time.Now()
	err := safeRun(ctx, j.fn)
	if err != nil {
		d.log.Error(ctx, "remote job failed", "job", j.name, "id", j.id, "err", err)
		return
	}
	d.log.Debug(ctx, "remote job done", "job", j.name, "id", j.id, "took", time.Since(started))
}

func safeRun(ctx context.Context, fn Job) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("job panicked: %v", p)
		}
	}()
	return fn(ctx)
}
