// Package parallel provides the worker fan-out used by batched propagation
// and multi-worker training.
package parallel

import (
	"runtime"
	"sync"

	"github.com/klauspost/cpuid/v2"
	"golang.org/x/sync/errgroup"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns defaults based on the physical core count.
//
// Hyper-threads add little to dense float64 loops, so physical cores are
// preferred when the CPU reports them.
func DefaultConfig() Config {
	n := cpuid.CPU.PhysicalCores
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 16, // One item is a full network pass.
	}
}

// Sequential returns a Config that runs everything on the calling goroutine.
func Sequential() Config {
	return Config{Enabled: false, NumWorkers: 1, MinChunkSize: 1}
}

// Range is a half-open index interval [Start, End).
type Range struct {
	Start, End int
}

// Len returns the number of indices in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Chunks splits [0, n) into contiguous ranges, one per worker.
//
// The split depends only on n and cfg, so callers that combine per-chunk
// results in chunk order get reproducible output.
func Chunks(n int, cfg Config) []Range {
	if n <= 0 {
		return nil
	}
	if !cfg.Enabled || cfg.NumWorkers <= 1 || n < cfg.MinChunkSize {
		return []Range{{0, n}}
	}

	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize, 1)
	ranges := make([]Range, 0, (n+chunkSize-1)/chunkSize)
	for start := 0; start < n; start += chunkSize {
		ranges = append(ranges, Range{start, min(start+chunkSize, n)})
	}
	return ranges
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	ranges := Chunks(n, cfg)
	if len(ranges) <= 1 {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	for _, r := range ranges {
		wg.Add(1)
		go func(r Range) {
			defer wg.Done()
			for i := r.Start; i < r.End; i++ {
				f(i)
			}
		}(r)
	}
	wg.Wait()
}

// ForErr is For with error propagation. The first error stops the chunk that
// produced it and is returned once every chunk has finished.
func ForErr(n int, f func(i int) error, cfg Config) error {
	return ForChunks(n, func(_ int, r Range) error {
		for i := r.Start; i < r.End; i++ {
			if err := f(i); err != nil {
				return err
			}
		}
		return nil
	}, cfg)
}

// ForChunks calls f once per chunk of [0, n), passing the chunk index and its
// range. Chunks run concurrently when cfg allows it.
func ForChunks(n int, f func(chunk int, r Range) error, cfg Config) error {
	ranges := Chunks(n, cfg)
	if len(ranges) == 1 {
		return f(0, ranges[0])
	}

	var g errgroup.Group
	for c, r := range ranges {
		g.Go(func() error {
			return f(c, r)
		})
	}
	return g.Wait()
}
