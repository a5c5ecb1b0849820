package taskqueue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// InProc executes tasks on a bounded pool of goroutines.
type InProc struct {
	registry  *Registry
	opts      options
	workers   int
	queueSize int

	work     chan Task
	inflight sync.WaitGroup
	wg       sync.WaitGroup

	lifecycleMu sync.Mutex
	started     bool
	stopped     bool

	processed atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

var _ Queue = (*InProc)(nil)

// InProcStats is a snapshot of pool counters.
type InProcStats struct {
	Workers    int   `json:"workers"`
	QueueSize  int   `json:"queue_size"`
	QueueDepth int   `json:"queue_depth"`
	Processed  int64 `json:"processed"`
	Failed     int64 `json:"failed"`
	Dropped    int64 `json:"dropped"`
}

// NewInProc creates a pool of workers reading from a buffer of queueSize tasks.
func NewInProc(workers, queueSize int, opts ...Option) *InProc {
	if workers <= 0 {
		workers = 4
	}
	if queueSize <= 0 {
		queueSize = 1000
	}
	return &InProc{
		registry:  NewRegistry(),
		opts:      applyOptions(opts),
		workers:   workers,
		queueSize: queueSize,
		work:      make(chan Task, queueSize),
	}
}

// Register binds name to h.
func (p *InProc) Register(name string, h Handler) {
	p.registry.Register(name, h)
}

// Start launches the workers. Handlers receive ctx's values but not its
// cancellation: workers drain the buffer and exit only once Stop closes it.
func (p *InProc) Start(ctx context.Context) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()
	if p.started {
		return nil
	}
	hctx := context.WithoutCancel(ctx)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(hctx)
	}
	p.started = true
	return nil
}

// Stop closes the buffer and waits up to timeout for workers to drain it. On
// timeout the workers keep draining in the background and the error reports
// how many tasks were still buffered.
func (p *InProc) Stop(timeout time.Duration) error {
	p.lifecycleMu.Lock()
	if !p.started || p.stopped {
		p.lifecycleMu.Unlock()
		return nil
	}
	p.stopped = true
	close(p.work)
	p.lifecycleMu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		depth := len(p.work)
		p.opts.logger.Warn("task pool stop timed out", "queued", depth)
		return fmt.Errorf("%w: %d tasks still queued", ErrStopTimeout, depth)
	}
}

// Defer submits task without blocking. It fails with ErrQueueFull when the
// buffer is full.
func (p *InProc) Defer(ctx context.Context, task Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if task.Queue == "" {
		task.Queue = DefaultQueue
	}
	p.inflight.Add(1)
	if err := p.submit(task); err != nil {
		p.inflight.Done()
		return err
	}
	p.opts.metrics.enqueued(task)
	return nil
}

// Wait blocks until every accepted task has finished, retries included.
func (p *InProc) Wait() {
	p.inflight.Wait()
}

// Stats returns the pool counters.
func (p *InProc) Stats() InProcStats {
	return InProcStats{
		Workers:    p.workers,
		QueueSize:  p.queueSize,
		QueueDepth: len(p.work),
		Processed:  p.processed.Load(),
		Failed:     p.failed.Load(),
		Dropped:    p.dropped.Load(),
	}
}

func (p *InProc) submit(task Task) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()
	if !p.started {
		return ErrNotStarted
	}
	if p.stopped {
		return ErrStopped
	}
	select {
	case p.work <- task:
		return nil
	default:
		p.dropped.Add(1)
		return ErrQueueFull
	}
}

func (p *InProc) worker(ctx context.Context) {
	defer p.wg.Done()
	for task := range p.work {
		p.handle(ctx, task)
	}
}

func (p *InProc) handle(ctx context.Context, task Task) {
	result, _ := execute(ctx, p.registry, p.opts, task)
	p.processed.Add(1)
	if result == outcomeDone {
		p.inflight.Done()
		return
	}
	p.failed.Add(1)
	if result == outcomeDead {
		p.inflight.Done()
		return
	}
	next := task
	if result == outcomeRetry {
		next = task.retry()
	}
	time.AfterFunc(p.opts.policy.Backoff(task.Attempt), func() {
		if err := p.submit(next); err != nil {
			p.opts.logger.Error("task retry dropped", "task", next.Name, "id", next.ID, "attempt", next.Attempt, "error", err)
			p.inflight.Done()
		}
	})
}
