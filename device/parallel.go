package device

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// parallelThreshold is the minimum range length split across workers.
// Below this a single call is cheaper than the goroutine fan-out.
const parallelThreshold = 1024

// ParallelFor splits [0, n) into contiguous chunks and calls fn once per
// chunk from up to workers goroutines (GOMAXPROCS when workers <= 0). The
// first error cancels ctx for the remaining chunks and is returned.
//
// Geometry construction never calls this; it is the dispatch offered to
// solvers reading the published tables.
func ParallelFor(ctx context.Context, n, workers int, fn func(begin, end int) error) error {
	if n <= 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers == 1 || n < parallelThreshold {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(0, n)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	chunk := (n + workers - 1) / workers
	for begin := 0; begin < n; begin += chunk {
		begin := begin
		end := min(begin+chunk, n)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(begin, end)
		})
	}
	return g.Wait()
}
