// Package dispatch provides Queue, a fixed-size pool of worker goroutines
// draining a shared FIFO of work items.
package dispatch

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrClosed    = errors.New("dispatch: queue closed")
	ErrQueueFull = errors.New("dispatch: queue full")
)

const (
	DefaultWorkers  = 1
	DefaultCapacity = 1024
)

// Options configures a Queue. Capacity < 0 means unbounded.
type Options struct {
	Name     string
	Workers  int
	Capacity int
	Logger   *zap.Logger
}

// WorkerFault is returned by Close when a work item panicked. The worker
// that ran the item exits; the remaining workers keep draining the queue.
type WorkerFault struct {
	Queue  string
	Worker int
	Value  any
	Stack  []byte
}

func (f *WorkerFault) Error() string {
	return fmt.Sprintf("dispatch: %s worker %d: work item panicked: %v", f.Queue, f.Worker, f.Value)
}

// Stats is a point-in-time view of a Queue.
type Stats struct {
	Submitted uint64
	Executed  uint64
	Dropped   uint64
	Faults    uint64
	Pending   int
	Workers   int
}

// Queue runs submitted functions on a fixed set of worker goroutines.
// Items are taken in submission order. Work items must capture everything they
// need; the queue knows nothing about the objects they touch.
type Queue struct {
	name     string
	log      *zap.Logger
	capacity int

	mu     sync.Mutex
	cond   *sync.Cond
	items  []func()
	head   int
	closed bool
	live   int

	group errgroup.Group

	submitted atomic.Uint64
	executed  atomic.Uint64
	dropped   atomic.Uint64
	faults    atomic.Uint64
}

// New starts a queue with opts.Workers workers.
func New(opts Options) *Queue {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Capacity == 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.Name == "" {
		opts.Name = "dispatch"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	q := &Queue{
		name:     opts.Name,
		log:      opts.Logger.With(zap.String("queue", opts.Name)),
		capacity: opts.Capacity,
		live:     opts.Workers,
	}
	q.cond = sync.NewCond(&q.mu)

	for i := 0; i < opts.Workers; i++ {
		worker := i
		q.group.Go(func() error {
			return q.work(worker)
		})
	}

	q.log.Debug("dispatch queue started", zap.Int("workers", opts.Workers), zap.Int("capacity", opts.Capacity))
	return q
}

// Async enqueues fn and returns without waiting for it to run.
func (q *Queue) Async(fn func()) error {
	if fn == nil {
		panic("dispatch: nil work item")
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	if q.capacity > 0 && q.pendingLocked() >= q.capacity {
		q.mu.Unlock()
		return ErrQueueFull
	}
	q.items = append(q.items, fn)
	q.mu.Unlock()

	q.submitted.Add(1)
	q.cond.Signal()
	return nil
}

func (q *Queue) pendingLocked() int {
	return len(q.items) - q.head
}

// pop removes the front item; the caller holds q.mu.
func (q *Queue) pop() func() {
	fn := q.items[q.head]
	q.items[q.head] = nil
	q.head++

	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	} else if q.head > 64 && q.head*2 > len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	return fn
}

func (q *Queue) work(worker int) error {
	for {
		q.mu.Lock()
		for q.pendingLocked() == 0 && !q.closed {
			q.cond.Wait()
		}
		if q.closed {
			q.mu.Unlock()
			return nil
		}
		fn := q.pop()
		q.mu.Unlock()

		if err := q.run(worker, fn); err != nil {
			q.mu.Lock()
			q.live--
			q.mu.Unlock()
			return err
		}
	}
}

func (q *Queue) run(worker int, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			q.faults.Add(1)
			fault := &WorkerFault{Queue: q.name, Worker: worker, Value: r, Stack: debug.Stack()}
			q.log.Error("work item panicked, worker exiting",
				zap.Int("worker", worker),
				zap.Any("panic", r),
				zap.ByteString("stack", fault.Stack),
			)
			err = fault
		}
	}()

	fn()
	q.executed.Add(1)
	return nil
}

// Close stops the queue. Items still queued are dropped, items already
// running finish, and Close waits for every worker to exit. It returns the
// first WorkerFault raised during the queue's lifetime, if any.
func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.closed = true
	dropped := q.pendingLocked()
	clear(q.items)
	q.items = nil
	q.head = 0
	q.mu.Unlock()

	q.dropped.Add(uint64(dropped))
	q.cond.Broadcast()

	err := q.group.Wait()
	q.log.Debug("dispatch queue stopped",
		zap.Uint64("executed", q.executed.Load()),
		zap.Int("dropped", dropped),
	)
	return err
}

// Stats returns counters for the queue.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	pending, live := q.pendingLocked(), q.live
	q.mu.Unlock()

	return Stats{
		Submitted: q.submitted.Load(),
		Executed:  q.executed.Load(),
		Dropped:   q.dropped.Load(),
		Faults:    q.faults.Load(),
		Pending:   pending,
		Workers:   live,
	}
}

func (q *Queue) Name() string {
	return q.name
}
