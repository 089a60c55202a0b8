package bus

import (
	"context"
	"errors"

	"bondtrading/pkg/exception"
)

var (
	ErrQueueFull   = exception.ErrQueueFull
	ErrQueueClosed = errors.New("deferred queue closed")
)

// Task is a deferred delivery posted by a listener.
type Task func() error

// Queue is a bounded FIFO of deferred deliveries. A listener that must feed a
// value back into the service it listens to posts it here; the owner drains
// the queue once the current dispatch has returned.
type Queue struct {
	tasks    []Task
	capacity int
	closed   bool
}

// NewQueue allocates a queue with the given capacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue{tasks: make([]Task, 0, capacity), capacity: capacity}
}

// TryPublish enqueues a task without running it.
func (q *Queue) TryPublish(t Task) error {
	if q.closed {
		return ErrQueueClosed
	}
	if len(q.tasks) >= q.capacity {
		return ErrQueueFull
	}
	q.tasks = append(q.tasks, t)
	return nil
}

// Len returns the number of pending tasks.
func (q *Queue) Len() int { return len(q.tasks) }

// Reset discards every pending task.
func (q *Queue) Reset() {
	clear(q.tasks)
	q.tasks = q.tasks[:0]
}

// Close stops the queue from accepting new tasks.
func (q *Queue) Close() {
	q.closed = true
}

// Drain runs pending tasks in FIFO order, including tasks posted while
// draining. On the first error the remaining tasks are discarded.
func (q *Queue) Drain(ctx context.Context) error {
	for len(q.tasks) > 0 {
		if err := ctx.Err(); err != nil {
			q.tasks = q.tasks[:0]
			return err
		}
		t := q.tasks[0]
		q.tasks[0] = nil
		q.tasks = q.tasks[1:]
		if err := t(); err != nil {
			q.tasks = q.tasks[:0]
			return err
		}
	}
	q.tasks = q.tasks[:0]
	return nil
}
