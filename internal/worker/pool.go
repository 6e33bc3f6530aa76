// Package worker provides a parallel tile fetching worker pool.
package worker

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/MeKo-Tech/pointmap/internal/tile"
)

// Handler processes a single tile task.
type Handler interface {
	Handle(ctx context.Context, task Task) (Output, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, task Task) (Output, error)

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, task Task) (Output, error) {
	return f(ctx, task)
}

// Task represents a single tile to fetch.
type Task struct {
	Coords tile.Coords
	Force  bool // refetch even when a cached copy exists
}

// Output is what a handler produced for a task.
type Output struct {
	Data    []byte
	Image   image.Image // set by handlers that decode the tile
	Fetched bool        // false when served without hitting upstream
}

// Result represents the outcome of a tile task.
type Result struct {
	Task    Task
	Output  Output
	Err     error
	Elapsed time.Duration
}

// ProgressFunc is called after each task completes.
type ProgressFunc func(Counts)

// Config configures the worker pool.
type Config struct {
	Workers    int
	Handler    Handler
	OnProgress ProgressFunc
}

// Pool manages parallel tile fetching.
type Pool struct {
	workers    int
	handler    Handler
	onProgress ProgressFunc
}

// New creates a new worker pool.
func New(cfg Config) *Pool {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	return &Pool{
		workers:    workers,
		handler:    cfg.Handler,
		onProgress: cfg.OnProgress,
	}
}

// Run executes all tasks and returns results in completion order.
// Tasks are processed in parallel by the configured number of workers.
// The function blocks until all tasks complete or the context is cancelled.
func (p *Pool) Run(ctx context.Context, tasks []Task) []Result {
	if len(tasks) == 0 {
		return nil
	}

	taskCh := make(chan Task, len(tasks))
	resultCh := make(chan Result, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.worker(ctx, taskCh, resultCh)
		}()
	}

	go func() {
		defer close(taskCh)
		for _, task := range tasks {
			select {
			case taskCh <- task:
			case <-ctx.Done():
				return
			}
		}
	}()

	results := make([]Result, 0, len(tasks))
	done := make(chan struct{})

	go func() {
		counts := Counts{Total: len(tasks)}
		for result := range resultCh {
			results = append(results, result)

			counts.Done++
			switch {
			case result.Err != nil:
				counts.Failed++
			case result.Output.Fetched:
				counts.Fetched++
			}
			if p.onProgress != nil {
				p.onProgress(counts)
			}
		}
		close(done)
	}()

	wg.Wait()
	close(resultCh)
	<-done

	return results
}

func (p *Pool) worker(ctx context.Context, tasks <-chan Task, results chan<- Result) {
	for task := range tasks {
		select {
		case <-ctx.Done():
			results <- Result{
				Task: task,
				Err:  ctx.Err(),
			}
			continue
		default:
		}

		start := time.Now()
		out, err := p.handler.Handle(ctx, task)

		results <- Result{
			Task:    task,
			Output:  out,
			Err:     err,
			Elapsed: time.Since(start),
		}
	}
}
