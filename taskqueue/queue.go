package taskqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/puzpuzpuz/xsync/v3"
)

var (
	// ErrUnknownTask is returned when no handler is registered for a task name.
	ErrUnknownTask = errors.New("taskqueue: no handler registered")
	// ErrQueueFull is returned by InProc.Defer when the buffer is full.
	ErrQueueFull = errors.New("taskqueue: queue is full")
	// ErrNotStarted is returned by InProc.Defer before Start.
	ErrNotStarted = errors.New("taskqueue: queue not started")
	// ErrStopped is returned by InProc.Defer after Stop.
	ErrStopped = errors.New("taskqueue: queue stopped")
	// ErrStopTimeout is returned by Stop when workers do not exit in time.
	ErrStopTimeout = errors.New("taskqueue: stop timed out")
)

// Handler executes a task. It may run more than once for the same task.
type Handler func(ctx context.Context, task Task) error

// Dispatcher accepts tasks for asynchronous execution.
type Dispatcher interface {
	Defer(ctx context.Context, task Task) error
}

// Queue is a Dispatcher that also owns the handlers it dispatches to.
type Queue interface {
	Dispatcher
	Register(name string, h Handler)
}

// Registry maps task names to handlers.
type Registry struct {
	handlers *xsync.MapOf[string, Handler]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: xsync.NewMapOf[string, Handler]()}
}

// Register binds name to h, replacing any previous handler.
func (r *Registry) Register(name string, h Handler) {
	if h == nil {
		panic(fmt.Sprintf("taskqueue: nil handler for %q", name))
	}
	r.handlers.Store(name, h)
}

// Handler returns the handler bound to name.
func (r *Registry) Handler(name string) (Handler, bool) {
	return r.handlers.Load(name)
}

// Names lists the registered task names.
func (r *Registry) Names() []string {
	var out []string
	r.handlers.Range(func(name string, _ Handler) bool {
		out = append(out, name)
		return true
	})
	return out
}

// Run executes task with its registered handler. An unknown name is a
// non-retryable failure.
func (r *Registry) Run(ctx context.Context, task Task) error {
	h, ok := r.Handler(task.Name)
	if !ok {
		return goerrors.WrapRetryable(ErrUnknownTask, goerrors.CategoryInternal, task.Name).WithRetryable(false)
	}
	return h(ctx, task)
}

// Option configures a backend.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	metrics    *Metrics
	policy     RetryPolicy
	visibility time.Duration
}

// DefaultVisibilityTimeout is how long a claimed Redis task may stay
// unsettled before PromoteDue hands it to another worker.
const DefaultVisibilityTimeout = 5 * time.Minute

func defaultOptions() options {
	return options{logger: slog.Default(), policy: DefaultRetryPolicy(), visibility: DefaultVisibilityTimeout}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger used for task failures.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics records task outcomes in m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithRetryPolicy overrides the retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithVisibilityTimeout sets how long a claimed task may stay unsettled before
// it is requeued. Non-positive values keep the default.
func WithVisibilityTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.visibility = d
		}
	}
}

// outcome is what a backend should do with a task after one execution.
type outcome int

const (
	outcomeDone outcome = iota
	outcomeRetry
	outcomeDead
	// outcomeInterrupted means the task failed while ctx was done; it goes
	// back on its queue without spending an attempt.
	outcomeInterrupted
)

// execute runs one attempt of task and decides what happens next.
func execute(ctx context.Context, registry *Registry, o options, task Task) (outcome, error) {
	err := registry.Run(ctx, task)
	if err == nil {
		o.metrics.succeeded(task)
		return outcomeDone, nil
	}
	attrs := []any{"task", task.Name, "queue", task.Queue, "id", task.ID, "attempt", task.Attempt, "error", err}
	if ctx.Err() != nil {
		o.logger.Info("task interrupted, releasing", attrs...)
		return outcomeInterrupted, err
	}
	o.metrics.failed(task)
	if Retryable(err) && o.policy.ShouldRetry(task.Attempt) {
		o.logger.Warn("task failed, retrying", attrs...)
		o.metrics.retried(task)
		return outcomeRetry, err
	}
	o.logger.Error("task failed permanently", attrs...)
	o.metrics.dead(task)
	return outcomeDead, err
}
