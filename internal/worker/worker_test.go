package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWorkerPool_StartStop(t *testing.T) {
	var processed atomic.Int64
	processor := func(ctx context.Context, job Job) error {
		processed.Add(1)
		return nil
	}

	pool := NewWorkerPool(2, 10, processor)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	for i := 0; i < 5; i++ {
		if err := pool.Submit(ctx, i); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}

	pool.Stop()

	if processed.Load() != 5 {
		t.Errorf("expected 5 jobs processed, got %d", processed.Load())
	}
	if pool.Processed() != 5 {
		t.Errorf("expected Processed() = 5, got %d", pool.Processed())
	}
}

func TestWorkerPool_SingleWorkerPreservesOrder(t *testing.T) {
	var (
		mu    sync.Mutex
		order []int
	)
	processor := func(ctx context.Context, job Job) error {
		mu.Lock()
		order = append(order, job.(int))
		mu.Unlock()
		return nil
	}

	pool := NewWorkerPool(1, 100, processor)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	for i := 0; i < 100; i++ {
		pool.Submit(ctx, i)
	}
	pool.Stop()

	if len(order) != 100 {
		t.Fatalf("expected 100 jobs, got %d", len(order))
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("job %d ran out of order (got %d)", i, v)
		}
	}
}

func TestWorkerPool_NoOverlapWithSingleWorker(t *testing.T) {
	var running, maxRunning atomic.Int64
	processor := func(ctx context.Context, job Job) error {
		n := running.Add(1)
		for {
			m := maxRunning.Load()
			if n <= m || maxRunning.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		running.Add(-1)
		return nil
	}

	pool := NewWorkerPool(1, 10, processor)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			pool.Submit(ctx, n)
		}(i)
	}
	wg.Wait()
	pool.Stop()

	if maxRunning.Load() != 1 {
		t.Errorf("expected at most 1 concurrent job, got %d", maxRunning.Load())
	}
}

func TestWorkerPool_FailedJobsCounted(t *testing.T) {
	processor := func(ctx context.Context, job Job) error {
		if job.(int)%2 == 0 {
			return errors.New("even")
		}
		return nil
	}

	pool := NewWorkerPool(1, 10, processor)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	for i := 0; i < 6; i++ {
		pool.Submit(ctx, i)
	}
	pool.Stop()

	if pool.Failed() != 3 || pool.Processed() != 3 {
		t.Errorf("expected 3 failed / 3 processed, got %d / %d", pool.Failed(), pool.Processed())
	}
}

func TestWorkerPool_SubmitAfterStop(t *testing.T) {
	pool := NewWorkerPool(1, 1, func(ctx context.Context, job Job) error { return nil })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)
	pool.Stop()
	pool.Stop()

	if err := pool.Submit(ctx, 1); !errors.Is(err, ErrStopped) {
		t.Errorf("expected ErrStopped, got %v", err)
	}
}

func TestWorkerPool_GracefulShutdown(t *testing.T) {
	var processed atomic.Int64
	processor := func(ctx context.Context, job Job) error {
		time.Sleep(10 * time.Millisecond) // Simulate work
		processed.Add(1)
		return nil
	}

	pool := NewWorkerPool(2, 50, processor)

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	for i := 0; i < 20; i++ {
		pool.Submit(ctx, i)
	}

	// Cancel immediately
	cancel()

	done := make(chan struct{})
	go func() {
		pool.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pool.Stop() timed out")
	}

	t.Logf("processed %d jobs before shutdown", processed.Load())
}

func TestWorkerPool_SubmitRespectsContext(t *testing.T) {
	block := make(chan struct{})
	pool := NewWorkerPool(1, 0, func(ctx context.Context, job Job) error {
		<-block
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	// First job occupies the worker, second has nowhere to go.
	if err := pool.Submit(ctx, 1); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	submitCtx, submitCancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer submitCancel()
	if err := pool.Submit(submitCtx, 2); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}

	close(block)
	cancel()
	pool.Stop()
}
