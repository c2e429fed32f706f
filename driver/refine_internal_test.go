package driver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/ubindex/geometry"
	"github.com/katalvlaran/ubindex/indexing"
)

// TestRefine_CoplanarFails seeds a run whose peaks all lie in the l = 0
// plane, so the refit is rank deficient. The run must stop in the Refine
// phase and hand back the UB it started from.
func TestRefine_CoplanarFails(t *testing.T) {
	l, err := geometry.NewLattice(5, 5, 5, 90, 90, 90)
	require.NoError(t, err)
	b, err := l.BMatrix(false)
	require.NoError(t, err)
	ub := geometry.EulerRotation(40, 30, 100).Mul(b)

	var peaks []*indexing.Peak
	for h := -2; h <= 2; h++ {
		for k := -2; k <= 2; k++ {
			if h == 0 && k == 0 {
				continue
			}
			peaks = append(peaks, indexing.NewPeak(ub.MulVec(geometry.V(float64(h), float64(k), 0)), 1))
		}
	}

	r := newRun(peaks, gatherOptions())
	require.NoError(t, r.setUB(PhaseSeed, ub))

	err = r.refine(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, indexing.ErrRankDeficient)

	var partial *PartialResult
	require.True(t, errors.As(err, &partial))
	assert.Equal(t, PhaseRefine, partial.Phase)
	require.True(t, partial.HasUB())
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.InDelta(t, ub[i][j], partial.UB[i][j], 1e-12)
		}
	}

	_, err = r.finish(context.Background())
	assert.True(t, errors.As(err, &partial), "finish must not fall through to Standardize")
}
