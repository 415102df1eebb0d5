// Package workqueue provides a close-able concurrent queue of deferred work items.
package workqueue

import (
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Exported variables.
var (
	// ErrClosed is returned by Push once the queue has been closed
	ErrClosed = errors.New("push to closed queue")
)

// Task is a single deferred unit of work.
type Task func() error

// Queue is an unbounded multi-producer queue of tasks. Producers Push until
// they call Close; consumers Pop until Pop reports the queue closed and empty.
// Items pushed by a single producer are popped in push order, and every item
// is popped exactly once.
type Queue struct {
	mu     sync.Mutex
	ready  *sync.Cond
	items  []Task
	closed bool
}

// New creates an empty, open queue.
func New() *Queue {
	q := &Queue{}
	q.ready = sync.NewCond(&q.mu)

	return q
}

// Push appends a task. It fails with ErrClosed after Close has been called;
// pushing to a closed queue is a lifecycle bug in the caller, not a condition
// to retry.
func (q *Queue) Push(task Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}

	q.items = append(q.items, task)
	q.ready.Signal()

	return nil
}

// Close marks that no further pushes will occur and wakes every blocked Pop.
// Calling Close more than once is harmless.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	q.ready.Broadcast()
}

// TryPop removes and returns the oldest task without blocking. The second
// return value is false when the queue is currently empty.
func (q *Queue) TryPop() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.popLocked()
}

// Pop removes and returns the oldest task, blocking while the queue is empty
// but still open. Once the queue is closed and drained, Pop returns (nil,
// false) immediately with no residual waiting.
func (q *Queue) Pop() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.ready.Wait()
	}

	return q.popLocked()
}

// popLocked removes the head item. Callers must hold q.mu.
func (q *Queue) popLocked() (Task, bool) {
	if len(q.items) == 0 {
		return nil, false
	}

	task := q.items[0]
	q.items[0] = nil // drop the reference so executed tasks can be collected
	q.items = q.items[1:]

	return task, true
}

// TaskQueue is a Queue whose items are executed by Drain.
type TaskQueue struct {
	*Queue
}

// NewTaskQueue creates an empty, open task queue.
func NewTaskQueue() *TaskQueue {
	return &TaskQueue{Queue: New()}
}

// Drain runs the given number of workers (minimum 1), each popping and
// executing tasks until the queue is closed and empty. It returns after all
// workers have stopped, yielding the first task failure encountered. A worker
// that hits a failure stops consuming; the remaining workers keep draining,
// so a failure never strands another producer's items unexecuted behind a
// dead consumer.
func (t *TaskQueue) Drain(workers int) error {
	if workers < 1 {
		workers = 1
	}

	var group errgroup.Group

	for range workers {
		group.Go(t.drainOne)
	}

	return group.Wait() //nolint:wrapcheck // Drain reports task errors verbatim; callers add context
}

// drainOne pops and executes tasks until the queue closes or a task fails.
func (t *TaskQueue) drainOne() error {
	for {
		task, ok := t.Pop()
		if !ok {
			return nil
		}

		err := task()
		if err != nil {
			return err
		}
	}
}
