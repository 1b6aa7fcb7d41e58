package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
)

var ErrStopped = errors.New("worker pool stopped")

type Job any

type ProcessFunc func(ctx context.Context, job Job) error

// WorkerPool runs submitted jobs on a fixed number of goroutines. With a
// single worker, jobs run one at a time in submission order.
type WorkerPool struct {
	numWorkers int
	jobs       chan Job
	processor  ProcessFunc
	quit       chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup

	processed atomic.Int64
	failed    atomic.Int64
}

func NewWorkerPool(numWorkers int, bufferSize int, processor ProcessFunc) *WorkerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &WorkerPool{
		numWorkers: numWorkers,
		jobs:       make(chan Job, bufferSize),
		processor:  processor,
		quit:       make(chan struct{}),
	}
}

func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 1; i <= wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-wp.quit:
			wp.drain(ctx, id)
			return
		case job := <-wp.jobs:
			wp.run(ctx, id, job)
		}
	}
}

// drain finishes jobs queued before Stop.
func (wp *WorkerPool) drain(ctx context.Context, id int) {
	for {
		select {
		case job := <-wp.jobs:
			wp.run(ctx, id, job)
		default:
			return
		}
	}
}

func (wp *WorkerPool) run(ctx context.Context, id int, job Job) {
	if err := wp.processor(ctx, job); err != nil {
		wp.failed.Add(1)
		slog.Warn("job failed", "worker", id, "error", err)
		return
	}
	wp.processed.Add(1)
}

// Submit queues job, blocking while the buffer is full. It returns
// ErrStopped once Stop has been called.
func (wp *WorkerPool) Submit(ctx context.Context, job Job) error {
	select {
	case <-wp.quit:
		return ErrStopped
	default:
	}

	select {
	case wp.jobs <- job:
		return nil
	case <-wp.quit:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop is safe to call more than once.
func (wp *WorkerPool) Stop() {
	wp.stopOnce.Do(func() {
		close(wp.quit)
	})
	wp.wg.Wait()
}

func (wp *WorkerPool) Processed() int64 {
	return wp.processed.Load()
}

func (wp *WorkerPool) Failed() int64 {
	return wp.failed.Load()
}
