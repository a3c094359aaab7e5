package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestPool_RunsJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewPool(2, zerolog.Nop())
	p.Start(ctx)

	var n int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := p.Run(ctx, func() { atomic.AddInt64(&n, 1) }); err != nil {
				t.Errorf("run: %v", err)
			}
		}()
	}
	wg.Wait()

	if n != 20 {
		t.Fatalf("expected 20 jobs run, got %d", n)
	}
}

func TestPool_BoundsConcurrency(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewPool(2, zerolog.Nop())
	p.Start(ctx)

	var running, peak int64
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.Run(ctx, func() {
				cur := atomic.AddInt64(&running, 1)
				for {
					old := atomic.LoadInt64(&peak)
					if cur <= old || atomic.CompareAndSwapInt64(&peak, old, cur) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt64(&running, -1)
			})
		}()
	}
	wg.Wait()

	if peak > 2 {
		t.Fatalf("expected at most 2 concurrent jobs, saw %d", peak)
	}
}

func TestPool_RecoversPanics(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewPool(1, zerolog.Nop())
	p.Start(ctx)

	if err := p.Run(ctx, func() { panic("boom") }); !errors.Is(err, ErrJobPanicked) {
		t.Fatalf("expected ErrJobPanicked, got %v", err)
	}
	// The worker survives the panic.
	if err := p.Run(ctx, func() {}); err != nil {
		t.Fatalf("expected worker to keep running: %v", err)
	}
}

func TestPool_CallerContextCancelled(t *testing.T) {
	poolCtx, stop := context.WithCancel(context.Background())
	defer stop()

	p := NewPool(1, zerolog.Nop())
	p.Start(poolCtx)

	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = p.Run(poolCtx, func() {
			close(started)
			<-release
		})
	}()
	defer close(release)
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := p.Run(ctx, func() {}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestPool_Stopped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := NewPool(1, zerolog.Nop())
	p.Start(ctx)
	p.Stop()

	if err := p.Run(context.Background(), func() {}); !errors.Is(err, ErrPoolStopped) {
		t.Fatalf("expected ErrPoolStopped, got %v", err)
	}
	p.Stop()
}

// awaitQueued waits until n jobs sit in the queue.
func awaitQueued(t *testing.T, p *Pool, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for len(p.jobs) < n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d queued jobs, have %d", n, len(p.jobs))
		}
		time.Sleep(time.Millisecond)
	}
}

// awaitClosed waits until the pool refuses new jobs.
func awaitClosed(t *testing.T, p *Pool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for {
		p.mu.RLock()
		closed := p.closed
		p.mu.RUnlock()
		if closed {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("pool did not close")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestPool_CancelFinishesQueuedJobs(t *testing.T) {
	for i := 0; i < 20; i++ {
		poolCtx, stop := context.WithCancel(context.Background())
		p := NewPool(1, zerolog.Nop())
		p.Start(poolCtx)

		started := make(chan struct{})
		release := make(chan struct{})
		busy := make(chan error, 1)
		go func() {
			busy <- p.Run(context.Background(), func() {
				close(started)
				<-release
			})
		}()
		<-started

		var ran int32
		queued := make(chan error, 1)
		go func() {
			queued <- p.Run(context.Background(), func() { atomic.StoreInt32(&ran, 1) })
		}()
		awaitQueued(t, p, 1)

		stop()
		awaitClosed(t, p)
		close(release)

		if err := <-busy; err != nil {
			t.Fatalf("run %d: busy job: %v", i, err)
		}
		if err := <-queued; err != nil {
			t.Fatalf("run %d: queued job: %v", i, err)
		}
		if atomic.LoadInt32(&ran) != 1 {
			t.Fatalf("run %d: queued job did not run", i)
		}
		p.Stop()
	}
}

func TestPool_StopWaitsForQueuedJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := NewPool(1, zerolog.Nop())
	p.Start(ctx)

	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = p.Run(ctx, func() {
			close(started)
			<-release
		})
	}()
	<-started

	var ran int32
	go func() {
		_ = p.Run(ctx, func() { atomic.StoreInt32(&ran, 1) })
	}()
	awaitQueued(t, p, 1)

	stopped := make(chan struct{})
	go func() {
		p.Stop()
		close(stopped)
	}()
	awaitClosed(t, p)

	select {
	case <-stopped:
		t.Fatalf("Stop returned while a job was still running")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-stopped
	if atomic.LoadInt32(&ran) != 1 {
		t.Fatalf("queued job did not run before Stop returned")
	}
}
