// Package benchmark measures render throughput and allocations.
package benchmark

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/MeKo-Tech/barcoded/internal/render"
)

// Timer provides simple timing utilities for benchmarking.
type Timer struct {
	start    time.Time
	name     string
	duration time.Duration
}

// NewTimer creates a new timer with the given name.
func NewTimer(name string) *Timer {
	return &Timer{name: name, start: time.Now()}
}

// Stop stops the timer and returns the elapsed duration.
func (t *Timer) Stop() time.Duration {
	t.duration = time.Since(t.start)
	return t.duration
}

// Duration returns the recorded duration (only valid after Stop()).
func (t *Timer) Duration() time.Duration {
	return t.duration
}

func (t *Timer) String() string {
	return fmt.Sprintf("%s: %v", t.name, t.duration)
}

// MemoryStats holds memory usage statistics.
type MemoryStats struct {
	AllocBytes      uint64 // Currently allocated bytes
	TotalAllocBytes uint64 // Total allocated bytes (cumulative)
	Mallocs         uint64 // Cumulative count of heap objects allocated
	NumGC           uint32
}

// GetMemoryStats returns current memory statistics.
func GetMemoryStats() MemoryStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemoryStats{
		AllocBytes:      m.Alloc,
		TotalAllocBytes: m.TotalAlloc,
		Mallocs:         m.Mallocs,
		NumGC:           m.NumGC,
	}
}

// BenchmarkResult holds the result of a benchmark run.
type BenchmarkResult struct {
	Name         string
	Duration     time.Duration
	MemoryBefore MemoryStats
	MemoryAfter  MemoryStats
	Iterations   int
	Workers      int
	OutputBytes  int // size of the last rendered document
	Error        error
}

// PerOp returns the average wall time per iteration.
func (br BenchmarkResult) PerOp() time.Duration {
	if br.Iterations == 0 {
		return 0
	}
	return br.Duration / time.Duration(br.Iterations)
}

// BytesPerOp returns the average heap bytes allocated per iteration.
func (br BenchmarkResult) BytesPerOp() uint64 {
	if br.Iterations == 0 {
		return 0
	}
	return (br.MemoryAfter.TotalAllocBytes - br.MemoryBefore.TotalAllocBytes) / uint64(br.Iterations)
}

// AllocsPerOp returns the average number of allocations per iteration.
func (br BenchmarkResult) AllocsPerOp() uint64 {
	if br.Iterations == 0 {
		return 0
	}
	return (br.MemoryAfter.Mallocs - br.MemoryBefore.Mallocs) / uint64(br.Iterations)
}

// OpsPerSec returns the throughput.
func (br BenchmarkResult) OpsPerSec() float64 {
	if br.Duration <= 0 {
		return 0
	}
	return float64(br.Iterations) / br.Duration.Seconds()
}

func (br BenchmarkResult) String() string {
	if br.Error != nil {
		return fmt.Sprintf("%s: ERROR - %v", br.Name, br.Error)
	}
	return fmt.Sprintf("%s: %d iterations, %d workers, avg: %v, %.1f ops/s, %d B/op, %d allocs/op, output: %d B",
		br.Name, br.Iterations, br.Workers, br.PerOp(), br.OpsPerSec(), br.BytesPerOp(), br.AllocsPerOp(), br.OutputBytes)
}

// Func is one benchmark iteration. It returns the size of its output.
type Func func(ctx context.Context) (int, error)

// Benchmark represents a named benchmark function.
type Benchmark struct {
	Name string
	Func Func
}

// BenchmarkSuite manages multiple benchmarks.
type BenchmarkSuite struct {
	benchmarks []Benchmark
	results    []BenchmarkResult
	workers    int
	mu         sync.Mutex
}

// NewBenchmarkSuite creates a new benchmark suite running on workers
// goroutines (at least one).
func NewBenchmarkSuite(workers int) *BenchmarkSuite {
	return &BenchmarkSuite{workers: max(workers, 1)}
}

// Add adds a benchmark to the suite.
func (bs *BenchmarkSuite) Add(name string, fn Func) {
	bs.benchmarks = append(bs.benchmarks, Benchmark{Name: name, Func: fn})
}

// AddJob adds a benchmark rendering job with r. Each iteration releases
// its result, so pooled buffers are reused as in the server.
func (bs *BenchmarkSuite) AddJob(name string, r *render.Renderer, job render.Job) {
	bs.Add(name, func(ctx context.Context) (int, error) {
		res, err := r.RenderJob(ctx, job)
		if err != nil {
			return 0, err
		}
		n := res.Len()
		res.Release()
		return n, nil
	})
}

// Run runs a single benchmark with the specified number of iterations.
func (bs *BenchmarkSuite) Run(ctx context.Context, name string, iterations int) BenchmarkResult {
	for _, b := range bs.benchmarks {
		if b.Name == name {
			return bs.runBenchmark(ctx, b, iterations)
		}
	}
	return BenchmarkResult{Name: name, Error: fmt.Errorf("benchmark '%s' not found", name)}
}

// RunAll runs all benchmarks in the suite.
func (bs *BenchmarkSuite) RunAll(ctx context.Context, iterations int) []BenchmarkResult {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	bs.results = make([]BenchmarkResult, 0, len(bs.benchmarks))
	for _, b := range bs.benchmarks {
		bs.results = append(bs.results, bs.runBenchmark(ctx, b, iterations))
	}
	return bs.results
}

// runBenchmark splits the iterations across the workers. The first error
// stops all workers.
func (bs *BenchmarkSuite) runBenchmark(ctx context.Context, b Benchmark, iterations int) BenchmarkResult {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runtime.GC()
	memBefore := GetMemoryStats()
	timer := NewTimer(b.Name)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		lastSize int
	)
	next := make(chan struct{})
	go func() {
		defer close(next)
		for range iterations {
			select {
			case next <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
	}()
	for range bs.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range next {
				n, err := b.Func(ctx)
				mu.Lock()
				if err != nil && firstErr == nil {
					firstErr = err
					cancel()
				}
				lastSize = n
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	duration := timer.Stop()
	return BenchmarkResult{
		Name:         b.Name,
		Duration:     duration,
		MemoryBefore: memBefore,
		MemoryAfter:  GetMemoryStats(),
		Iterations:   iterations,
		Workers:      bs.workers,
		OutputBytes:  lastSize,
		Error:        firstErr,
	}
}

// Results returns the last run results.
func (bs *BenchmarkSuite) Results() []BenchmarkResult {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return bs.results
}

// WriteResults prints formatted benchmark results.
func (bs *BenchmarkSuite) WriteResults(w io.Writer) {
	_, _ = fmt.Fprintln(w, "\nBenchmark Results:")
	_, _ = fmt.Fprintln(w, "==================")
	for _, result := range bs.Results() {
		_, _ = fmt.Fprintln(w, result.String())
	}
}
