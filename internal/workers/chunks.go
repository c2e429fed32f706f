// SPDX-License-Identifier: MIT

// Package workers splits index ranges across goroutines so that results can
// be merged in index order.
package workers

import (
	"context"
	"sync"
)

// CheckEvery is how many items a chunk processes between context checks.
const CheckEvery = 64

// ForChunks splits [0,n) into at most workers contiguous chunks and runs fn on
// each, one goroutine per chunk. fn receives its chunk number so that callers
// can merge per-chunk results in index order. Returns ctx.Err() if the
// context ended before every chunk finished.
func ForChunks(ctx context.Context, n, workers int, fn func(ctx context.Context, chunk, lo, hi int)) error {
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		if n > 0 {
			fn(ctx, 0, 0, n)
		}

		return ctx.Err()
	}

	size := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for c := 0; c*size < n; c++ {
		lo, hi := c*size, (c+1)*size
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(chunk, lo, hi int) {
			defer wg.Done()
			fn(ctx, chunk, lo, hi)
		}(c, lo, hi)
	}
	wg.Wait()

	return ctx.Err()
}

// NumChunks is the number of chunks ForChunks uses for n items.
func NumChunks(n, workers int) int {
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		return 1
	}
	size := (n + workers - 1) / workers

	return (n + size - 1) / size
}
