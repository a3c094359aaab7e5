package queue

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/moviehub/movie-service/internal/api/metrics"
)

const channelBuffer = 256

var (
	// ErrPoolStopped is returned by Run once the pool no longer accepts jobs.
	ErrPoolStopped = errors.New("worker pool stopped")
	ErrJobPanicked = errors.New("worker pool job panicked")
)

type job struct {
	fn   func()
	done chan error
}

// Pool runs CPU-bound jobs (password hashing) on a fixed set of workers so a
// burst of logins cannot occupy every request goroutine's CPU at once.
// Stopping the pool refuses new jobs but finishes every job already queued.
type Pool struct {
	jobs    chan job
	workers int

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	log zerolog.Logger
}

// NewPool creates a Pool with numWorkers workers.
// If numWorkers <= 0, runtime.NumCPU() is used.
func NewPool(numWorkers int, log zerolog.Logger) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Pool{
		jobs:    make(chan job, channelBuffer),
		workers: numWorkers,
		log:     log,
	}
}

// Start launches all worker goroutines. Cancelling ctx stops the pool the
// same way Stop does, without waiting for the queue to drain.
func (p *Pool) Start(ctx context.Context) {
	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go p.runWorker(i)
	}
	go func() {
		<-ctx.Done()
		p.close()
	}()
	p.log.Info().Int("workers", p.workers).Msg("hash pool started")
}

// Stop refuses new jobs and blocks until the workers have run every job
// queued before the call. It is safe to call more than once.
func (p *Pool) Stop() {
	p.close()
	p.wg.Wait()
}

func (p *Pool) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.jobs)
	p.log.Info().Msg("hash pool stopping")
}

// Run queues fn and waits for it to finish. If ctx is done first the call
// returns ctx.Err(); a job already queued still runs to completion but its
// result is discarded by the caller.
func (p *Pool) Run(ctx context.Context, fn func()) error {
	j := job{fn: fn, done: make(chan error, 1)}
	if err := p.submit(ctx, j); err != nil {
		return err
	}

	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// submit holds the read lock while sending so close never races a send on
// the jobs channel.
func (p *Pool) submit(ctx context.Context, j job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolStopped
	}

	metrics.HashQueueDepth.Inc()
	select {
	case p.jobs <- j:
		return nil
	case <-ctx.Done():
		metrics.HashQueueDepth.Dec()
		return ctx.Err()
	}
}

func (p *Pool) runWorker(id int) {
	defer p.wg.Done()
	for j := range p.jobs {
		metrics.HashQueueDepth.Dec()
		start := time.Now()
		p.execute(id, j)
		metrics.HashDuration.Observe(time.Since(start).Seconds())
	}
}

func (p *Pool) execute(id int, j job) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Interface("panic", r).Int("worker_id", id).Msg("hash job panicked")
			j.done <- ErrJobPanicked
		}
	}()
	j.fn()
	j.done <- nil
}
