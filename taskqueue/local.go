package taskqueue

import (
	"context"
	"errors"
	"sync"
)

// Local records deferred tasks and executes them only when Run is called.
type Local struct {
	registry *Registry
	opts     options

	mu      sync.Mutex
	pending []Task
	history []Task
}

var _ Queue = (*Local)(nil)

// NewLocal creates an empty local queue.
func NewLocal(opts ...Option) *Local {
	return &Local{registry: NewRegistry(), opts: applyOptions(opts)}
}

// Register binds name to h.
func (l *Local) Register(name string, h Handler) {
	l.registry.Register(name, h)
}

// Defer records task.
func (l *Local) Defer(ctx context.Context, task Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if task.Queue == "" {
		task.Queue = DefaultQueue
	}
	l.mu.Lock()
	l.pending = append(l.pending, task)
	l.history = append(l.history, task)
	l.mu.Unlock()
	l.opts.metrics.enqueued(task)
	return nil
}

// Tasks returns every task deferred since the last Reset, optionally filtered by
// queue, in the order they were deferred.
func (l *Local) Tasks(queues ...string) []Task {
	l.mu.Lock()
	defer l.mu.Unlock()
	return filterQueues(l.history, queues)
}

// Pending returns the tasks not yet run.
func (l *Local) Pending(queues ...string) []Task {
	l.mu.Lock()
	defer l.mu.Unlock()
	return filterQueues(l.pending, queues)
}

// Run executes pending tasks until none are left, including tasks deferred by
// handlers while running. Failed tasks are retried in place while the retry
// policy allows; the errors of tasks that exhausted it are joined. A task that
// fails after ctx is done stays pending and Run returns.
func (l *Local) Run(ctx context.Context) error {
	var errs []error
	for {
		task, ok := l.pop()
		if !ok {
			return errors.Join(errs...)
		}
		for {
			result, err := execute(ctx, l.registry, l.opts, task)
			if result == outcomeRetry {
				task = task.retry()
				continue
			}
			if result == outcomeInterrupted {
				l.requeue(task)
				return errors.Join(append(errs, err)...)
			}
			if result == outcomeDead {
				errs = append(errs, err)
			}
			break
		}
	}
}

// Reset forgets every recorded task.
func (l *Local) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = nil
	l.history = nil
}

func (l *Local) pop() (Task, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.pending) == 0 {
		return Task{}, false
	}
	task := l.pending[0]
	l.pending = l.pending[1:]
	return task, true
}

func (l *Local) requeue(task Task) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = append([]Task{task}, l.pending...)
}

func filterQueues(tasks []Task, queues []string) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if len(queues) == 0 {
			out = append(out, t)
			continue
		}
		for _, q := range queues {
			if t.Queue == q {
				out = append(out, t)
				break
			}
		}
	}
	return out
}
