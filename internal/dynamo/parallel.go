package dynamo

import (
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Workers is the number of goroutines used by the parallel loops.
var Workers = runtime.GOMAXPROCS(0)

func chunks(n, minChunk int) (workers, size int) {
	workers = Workers
	if minChunk < 1 {
		minChunk = 1
	}
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}
	return workers, (n + workers - 1) / workers
}

// ParallelFor executes a function in parallel over a range [0, n)
func ParallelFor(n, minChunk int, fn func(start, end int)) {
	if n <= minChunk || Workers <= 1 {
		fn(0, n)
		return
	}

	workers, chunkSize := chunks(n, minChunk)

	var wg sync.WaitGroup
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}

		go func(s, e int) {
			defer wg.Done()
			if s < e {
				fn(s, e)
			}
		}(start, end)
	}

	wg.Wait()
}

// ParallelForErr is ParallelFor for chunks that can fail. It returns the
// first error reported by any chunk.
func ParallelForErr(n, minChunk int, fn func(start, end int) error) error {
	if n <= minChunk || Workers <= 1 {
		return fn(0, n)
	}

	workers, chunkSize := chunks(n, minChunk)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}
		g.Go(func() error {
			return fn(start, end)
		})
	}
	return g.Wait()
}
