// Package worker validates many schedule files concurrently through a
// fixed-size worker pool.
package worker

import (
	"context"
	"sync"

	"github.com/ovachev/planproof/internal/model"
)

// Runner validates one schedule file end to end
type Runner interface {
	ValidateFile(ctx context.Context, path string) (*model.Report, error)
}

// ValidateResult is the outcome for one schedule file
type ValidateResult struct {
	Path   string
	Report *model.Report
	Err    error
}

// Pool runs file validations across a fixed number of workers
type Pool struct {
	runner     Runner
	workers    int
	jobQueue   chan string
	results    chan *ValidateResult
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once
}

// NewPool creates a pool with the specified number of workers
func NewPool(runner Runner, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		runner:     runner,
		workers:    workers,
		jobQueue:   make(chan string, workers*2), // Buffered to prevent blocking
		results:    make(chan *ValidateResult, workers*2),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start starts the worker goroutines
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// worker pulls file paths off the queue until it closes
func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case path, ok := <-p.jobQueue:
			if !ok {
				return
			}
			report, err := p.runner.ValidateFile(p.ctx, path)
			result := &ValidateResult{Path: path, Report: report, Err: err}
			select {
			case p.results <- result:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues one schedule file for validation
func (p *Pool) Submit(path string) {
	select {
	case <-p.ctx.Done():
		return
	case p.jobQueue <- path:
	}
}

// Wait waits for all queued files to finish and returns the results in
// completion order
func (p *Pool) Wait() []*ValidateResult {
	// Close job queue to signal workers to exit when done
	close(p.jobQueue)

	go func() {
		p.wg.Wait()
		p.closeResults()
	}()

	var results []*ValidateResult
	for result := range p.results {
		results = append(results, result)
	}

	return results
}

// Shutdown cancels in-flight work and waits for workers to exit
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
