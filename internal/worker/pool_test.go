package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MeKo-Tech/pointmap/internal/tile"
)

// mockHandler simulates tile fetching for testing
type mockHandler struct {
	delay     time.Duration
	failTiles map[string]bool // tiles that should fail
	callCount atomic.Int32
}

func (m *mockHandler) Handle(ctx context.Context, task Task) (Output, error) {
	m.callCount.Add(1)

	select {
	case <-ctx.Done():
		return Output{}, ctx.Err()
	case <-time.After(m.delay):
	}

	if m.failTiles != nil && m.failTiles[task.Coords.String()] {
		return Output{}, errors.New("simulated failure")
	}

	return Output{Data: []byte(task.Coords.String()), Fetched: task.Force}, nil
}

func TestPool_BasicExecution(t *testing.T) {
	h := &mockHandler{delay: 10 * time.Millisecond}

	pool := New(Config{
		Workers: 2,
		Handler: h,
	})

	tasks := []Task{
		{Coords: tile.NewCoords(2, 1, 1)},
		{Coords: tile.NewCoords(2, 1, 2)},
		{Coords: tile.NewCoords(2, 2, 1)},
	}

	results := pool.Run(context.Background(), tasks)

	if len(results) != len(tasks) {
		t.Errorf("Expected %d results, got %d", len(tasks), len(results))
	}

	for _, r := range results {
		if r.Err != nil {
			t.Errorf("Unexpected error for %s: %v", r.Task.Coords.String(), r.Err)
		}
		if string(r.Output.Data) != r.Task.Coords.String() {
			t.Errorf("Expected data for %s, got %q", r.Task.Coords.String(), r.Output.Data)
		}
	}

	if h.callCount.Load() != int32(len(tasks)) {
		t.Errorf("Expected %d handler calls, got %d", len(tasks), h.callCount.Load())
	}
}

func TestPool_Parallelism(t *testing.T) {
	h := &mockHandler{delay: 50 * time.Millisecond}

	pool := New(Config{
		Workers: 4,
		Handler: h,
	})

	tasks := make([]Task, 8)
	for i := range tasks {
		tasks[i] = Task{Coords: tile.NewCoords(3, uint32(i), 2)}
	}

	start := time.Now()
	results := pool.Run(context.Background(), tasks)
	elapsed := time.Since(start)

	// With 4 workers and 8 tasks at 50ms each, should take ~100ms (2 batches)
	maxExpected := 300 * time.Millisecond
	if elapsed > maxExpected {
		t.Errorf("Expected parallel execution in ~100ms, took %v", elapsed)
	}

	if len(results) != len(tasks) {
		t.Errorf("Expected %d results, got %d", len(tasks), len(results))
	}
}

func TestPool_ErrorHandling(t *testing.T) {
	failTile := "z2_x1_y2"
	h := &mockHandler{
		delay:     10 * time.Millisecond,
		failTiles: map[string]bool{failTile: true},
	}

	pool := New(Config{
		Workers: 2,
		Handler: h,
	})

	tasks := []Task{
		{Coords: tile.NewCoords(2, 1, 1)},
		{Coords: tile.NewCoords(2, 1, 2)}, // This one should fail
		{Coords: tile.NewCoords(2, 2, 1)},
	}

	results := pool.Run(context.Background(), tasks)

	if len(results) != len(tasks) {
		t.Errorf("Expected %d results, got %d", len(tasks), len(results))
	}

	var successCount, failCount int
	for _, r := range results {
		if r.Err != nil {
			failCount++
			if r.Task.Coords.String() != failTile {
				t.Errorf("Unexpected failure for %s", r.Task.Coords.String())
			}
		} else {
			successCount++
		}
	}

	if successCount != 2 {
		t.Errorf("Expected 2 successes, got %d", successCount)
	}
	if failCount != 1 {
		t.Errorf("Expected 1 failure, got %d", failCount)
	}
}

func TestPool_Cancellation(t *testing.T) {
	h := &mockHandler{delay: 100 * time.Millisecond}

	pool := New(Config{
		Workers: 2,
		Handler: h,
	})

	tasks := make([]Task, 10)
	for i := range tasks {
		tasks[i] = Task{Coords: tile.NewCoords(4, uint32(i), 3)}
	}

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	results := pool.Run(ctx, tasks)
	elapsed := time.Since(start)

	if elapsed > 300*time.Millisecond {
		t.Errorf("Expected early cancellation, took %v", elapsed)
	}

	var cancelledCount int
	for _, r := range results {
		if r.Err != nil && errors.Is(r.Err, context.Canceled) {
			cancelledCount++
		}
	}
	if cancelledCount == 0 {
		t.Error("Expected at least one cancelled result")
	}
}

func TestPool_ProgressCallback(t *testing.T) {
	failing := tile.NewCoords(2, 2, 1)
	h := &mockHandler{
		delay:     10 * time.Millisecond,
		failTiles: map[string]bool{failing.String(): true},
	}

	var progressCalls atomic.Int32
	var last Counts

	pool := New(Config{
		Workers: 2,
		Handler: h,
		OnProgress: func(c Counts) {
			progressCalls.Add(1)
			last = c
		},
	})

	tasks := []Task{
		{Coords: tile.NewCoords(2, 1, 1), Force: true}, // mock reports a download
		{Coords: tile.NewCoords(2, 1, 2)},
		{Coords: failing, Force: true},
	}

	pool.Run(context.Background(), tasks)

	if progressCalls.Load() != int32(len(tasks)) {
		t.Errorf("Expected %d progress callbacks, got %d", len(tasks), progressCalls.Load())
	}
	want := Counts{Done: 3, Total: 3, Failed: 1, Fetched: 1}
	if last != want {
		t.Errorf("last counts = %+v, want %+v", last, want)
	}
	if last.Cached() != 1 {
		t.Errorf("Cached() = %d, want 1", last.Cached())
	}
}

func TestPool_EmptyTasks(t *testing.T) {
	h := &mockHandler{}

	pool := New(Config{
		Workers: 2,
		Handler: h,
	})

	results := pool.Run(context.Background(), nil)

	if len(results) != 0 {
		t.Errorf("Expected 0 results for empty tasks, got %d", len(results))
	}

	if h.callCount.Load() != 0 {
		t.Errorf("Expected 0 handler calls for empty tasks, got %d", h.callCount.Load())
	}
}

func TestPool_HandlerFuncForce(t *testing.T) {
	var forced atomic.Int32
	pool := New(Config{
		Handler: HandlerFunc(func(_ context.Context, task Task) (Output, error) {
			if task.Force {
				forced.Add(1)
			}
			return Output{Fetched: task.Force}, nil
		}),
	})

	results := pool.Run(context.Background(), []Task{
		{Coords: tile.NewCoords(0, 0, 0), Force: true},
		{Coords: tile.NewCoords(1, 0, 0)},
	})

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if forced.Load() != 1 {
		t.Errorf("Expected 1 forced task, got %d", forced.Load())
	}
	for _, r := range results {
		if r.Output.Fetched != r.Task.Force {
			t.Errorf("Expected Fetched=%v for %s", r.Task.Force, r.Task.Coords)
		}
	}
}
