package workers_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/ubindex/internal/workers"
)

func TestForChunks_CoversRange(t *testing.T) {
	for _, tc := range []struct{ n, workers int }{
		{0, 4}, {1, 4}, {10, 1}, {10, 3}, {10, 10}, {7, 100}, {100, 8},
	} {
		seen := make([]int32, tc.n)
		chunks := make([]int32, workers.NumChunks(tc.n, tc.workers))
		err := workers.ForChunks(context.Background(), tc.n, tc.workers, func(_ context.Context, chunk, lo, hi int) {
			atomic.AddInt32(&chunks[chunk], 1)
			for i := lo; i < hi; i++ {
				atomic.AddInt32(&seen[i], 1)
			}
		})
		require.NoError(t, err)
		for i, v := range seen {
			assert.Equal(t, int32(1), v, "n=%d workers=%d item %d", tc.n, tc.workers, i)
		}
		if tc.n > 0 {
			for c, v := range chunks {
				assert.Equal(t, int32(1), v, "n=%d workers=%d chunk %d", tc.n, tc.workers, c)
			}
		}
	}
}

func TestForChunks_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := workers.ForChunks(ctx, 10, 2, func(context.Context, int, int, int) {})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNumChunks(t *testing.T) {
	assert.Equal(t, 1, workers.NumChunks(0, 4))
	assert.Equal(t, 1, workers.NumChunks(10, 0))
	assert.Equal(t, 3, workers.NumChunks(10, 3))
	assert.Equal(t, 7, workers.NumChunks(7, 100))
	// six workers get chunks of 2, so only five run.
	assert.Equal(t, 5, workers.NumChunks(10, 6))
}
