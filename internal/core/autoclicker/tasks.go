package autoclicker

import (
	"context"
	"sync"
)

// TaskQueue is a single-consumer queue of deferred calls. Producers on any
// goroutine Post; the UI loop drains it on the goroutine that owns rendering
// state.
type TaskQueue struct {
	mu     sync.Mutex
	tasks  []func()
	closed bool
	wakeCh chan struct{}
}

func NewTaskQueue() *TaskQueue {
	return &TaskQueue{wakeCh: make(chan struct{}, 1)}
}

// Post appends fn. It returns false once the queue is closed.
func (q *TaskQueue) Post(fn func()) bool {
	if fn == nil {
		return false
	}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()

	select {
	case q.wakeCh <- struct{}{}:
	default:
	}
	return true
}

func (q *TaskQueue) take() []func() {
	q.mu.Lock()
	defer q.mu.Unlock()
	tasks := q.tasks
	q.tasks = nil
	return tasks
}

// Drain runs every pending task on the calling goroutine and returns how
// many ran.
func (q *TaskQueue) Drain() int {
	tasks := q.take()
	for _, fn := range tasks {
		fn()
	}
	return len(tasks)
}

// Run hands batches of pending tasks to exec until ctx is done or the queue
// is closed and empty. exec is typically fyne.Do.
func (q *TaskQueue) Run(ctx context.Context, exec func(func())) {
	if exec == nil {
		exec = func(fn func()) { fn() }
	}
	for {
		if tasks := q.take(); len(tasks) > 0 {
			exec(func() {
				for _, fn := range tasks {
					fn()
				}
			})
			continue
		}

		q.mu.Lock()
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-q.wakeCh:
		}
	}
}

// Close rejects further posts. Pending tasks can still be drained.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	select {
	case q.wakeCh <- struct{}{}:
	default:
	}
}
