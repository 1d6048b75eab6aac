package worker

import (
	"context"
	"sync"

	"github.com/baharkarakas/reliefshare/internal/metrics"
)

type task func()

// Pool is a fixed set of goroutines draining a bounded queue.
type Pool struct {
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
	jobs   chan task
}

func NewPool(n int) *Pool {
	if n < 1 {
		n = 1
	}
	p := &Pool{jobs: make(chan task, 1024)}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				job()
				metrics.WorkerQueueDepth.Set(float64(len(p.jobs)))
			}
		}()
	}
	return p
}

// Submit queues f. Once the pool is stopped f runs on the caller's goroutine.
func (p *Pool) Submit(f task) {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		f()
		return
	}
	p.jobs <- f
	p.mu.RUnlock()
	metrics.WorkerQueueDepth.Set(float64(len(p.jobs)))
}

// Stop drains queued jobs and waits for the workers. It is safe to call twice.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}

// Each runs fn(ctx, i) for i in [0, n) on the pool and waits for all of them.
// It returns the first non-nil error; ctx passed to fn is cancelled once any
// call fails. Jobs whose ctx is already done are skipped.
func (p *Pool) Each(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		p.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				once.Do(func() { firstErr = ctx.Err() })
				return
			}
			if err := fn(ctx, i); err != nil {
				once.Do(func() { firstErr = err; cancel() })
			}
		})
	}
	wg.Wait()
	return firstErr
}
