package ubfit_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/ubindex/geometry"
	"github.com/katalvlaran/ubindex/indexing"
	"github.com/katalvlaran/ubindex/internal/refdata"
	"github.com/katalvlaran/ubindex/ubfit"
)

// TestOptimizeUB3D_Reference fits the small noisy reference set.
func TestOptimizeUB3D_Reference(t *testing.T) {
	h := []float64{1, 0, 0, -1, 0, 0, 1, 1}
	k := []float64{.1, 1, 0, 0, -1, 0, 1, 2}
	l := []float64{-.1, 0, 1, 0, 0, -1, 1, 3}
	qx := []float64{2, 0, 0, -2, 0, 0, 2, 2}
	qy := []float64{1, 3, 0, 0, -3, 0, 3, 6}
	qz := []float64{0, 0, 4, 0, 0, -4, 4, 12}

	var hkls, qs []geometry.Vec3
	for i := range h {
		hkls = append(hkls, geometry.V(h[i], k[i], l[i]))
		qs = append(qs, geometry.V(qx[i], qy[i], qz[i]))
	}

	ub, sumSq, err := ubfit.OptimizeUB3D(hkls, qs)
	require.NoError(t, err)
	assert.InDelta(t, 0.390147, sumSq, 1e-5)

	want := geometry.Mat3{
		{2, 0, 0},
		{0.27667044, 2.95956965, -0.07214043},
		{0.1580974, -0.02310306, 3.9587769},
	}
	assert.True(t, ub.ApproxEqual(want, 1e-6), "got %v", ub)
}

// TestOptimizeUB3D_Exact recovers a UB from noiseless data.
func TestOptimizeUB3D_Exact(t *testing.T) {
	ub := refdata.NatroliteUB()
	hkls := refdata.NatroliteHKL()
	qs := make([]geometry.Vec3, len(hkls))
	for i, h := range hkls {
		qs[i] = ub.MulVec(h)
	}

	got, sumSq, err := ubfit.OptimizeUB3D(hkls, qs)
	require.NoError(t, err)
	assert.True(t, got.ApproxEqual(ub, 1e-12))
	assert.InDelta(t, 0, sumSq, 1e-20)
	assert.InDelta(t, 0, ubfit.FitError(got, hkls, qs), 1e-10)
}

// TestOptimizeUB3D_Errors separates missing data from degenerate data.
func TestOptimizeUB3D_Errors(t *testing.T) {
	two := []geometry.Vec3{{1, 0, 0}, {0, 1, 0}}
	_, _, err := ubfit.OptimizeUB3D(two, two)
	assert.ErrorIs(t, err, indexing.ErrInsufficientData)

	_, _, err = ubfit.OptimizeUB3D(
		[]geometry.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		[]geometry.Vec3{{1, 0, 0}, {0, 1, 0}},
	)
	assert.ErrorIs(t, err, indexing.ErrInsufficientData)

	colinear := []geometry.Vec3{{1, 0, 0}, {2, 0, 0}, {-3, 0, 0}, {4, 0, 0}}
	_, _, err = ubfit.OptimizeUB3D(colinear, colinear)
	assert.ErrorIs(t, err, indexing.ErrRankDeficient)
	assert.NotErrorIs(t, err, indexing.ErrInsufficientData)
}

// TestOptimizeUB4D recovers both the matrix and the shift.
func TestOptimizeUB4D(t *testing.T) {
	ub := refdata.NatroliteUB()
	shift := geometry.V(0.03, -0.01, 0.02)
	hkls := refdata.NatroliteHKL()
	qs := make([]geometry.Vec3, len(hkls))
	for i, h := range hkls {
		qs[i] = ub.MulVec(h).Add(shift)
	}

	got, sumSq, err := ubfit.OptimizeUB4D(hkls, qs)
	require.NoError(t, err)
	assert.True(t, got.M.ApproxEqual(ub, 1e-10))
	assert.True(t, got.Shift.ApproxEqual(shift, 1e-10))
	assert.InDelta(t, 0, sumSq, 1e-18)
}

// TestOptimizeDirection3D_Natrolite uses the 1-D indices of the a edge.
func TestOptimizeDirection3D_Natrolite(t *testing.T) {
	indices := []int{1, 4, 2, 0, 1, 3, 0, -1, 0, -1, -2, -3}
	dir, sumSq, err := ubfit.OptimizeDirection3D(indices, refdata.Natrolite())
	require.NoError(t, err)
	assert.True(t, dir.ApproxEqual(geometry.V(-2.5822236, 3.9734532, -4.5514466), 1e-5), "got %v", dir)
	assert.InDelta(t, 0.00218606, sumSq, 1e-6)

	_, _, err = ubfit.OptimizeDirection3D(indices[:2], refdata.Natrolite()[:2])
	assert.ErrorIs(t, err, indexing.ErrInsufficientData)

	zeros := make([]int, 12)
	_, _, err = ubfit.OptimizeDirection3D(zeros, refdata.Natrolite())
	assert.ErrorIs(t, err, indexing.ErrRankDeficient)
}

// TestOptimizeDirection4D places Q-vectors on shifted planes exactly.
func TestOptimizeDirection4D(t *testing.T) {
	dir := geometry.V(1, -2, 3)
	shift := 0.25
	unit := dir.Normalize()
	base := []geometry.Vec3{{0.1, 0.2, 0.3}, {-0.4, 0.1, 0.2}, {0.3, -0.3, 0.1}, {0.2, 0.5, -0.2}, {-0.1, -0.2, 0.4}}
	indices := []int{1, -1, 2, 0, 3}

	qs := make([]geometry.Vec3, len(base))
	for i, r := range base {
		// move r along dir so that dir·q + shift hits the index
		delta := (float64(indices[i]) - shift - dir.Dot(r)) / dir.Norm()
		qs[i] = r.Add(unit.Scale(delta))
	}

	got, gotShift, sumSq, err := ubfit.OptimizeDirection4D(indices, qs)
	require.NoError(t, err)
	assert.True(t, got.ApproxEqual(dir, 1e-9), "got %v", got)
	assert.InDelta(t, shift, gotShift, 1e-9)
	assert.InDelta(t, 0, sumSq, 1e-18)
}

// TestFitError is the normalized RMS of the Q residuals.
func TestFitError(t *testing.T) {
	hkls := []geometry.Vec3{{1, 0, 0}, {0, 1, 0}}
	qs := []geometry.Vec3{{1, 0, 0.3}, {0, 1, 0.4}}
	assert.InDelta(t, math.Sqrt(0.25/2), ubfit.FitError(geometry.Identity(), hkls, qs), 1e-12)
	assert.Zero(t, ubfit.FitError(geometry.Identity(), nil, nil))
	assert.True(t, math.IsInf(ubfit.FitError(geometry.Identity(), hkls, qs[:1]), 1))
}

// cubicPeaks returns Q-vectors of a cubic crystal in a known orientation.
func cubicPeaks(t *testing.T) (geometry.Lattice, []geometry.Vec3) {
	t.Helper()
	l, err := geometry.NewLattice(5, 5, 5, 90, 90, 90)
	require.NoError(t, err)
	b, err := l.BMatrix(false)
	require.NoError(t, err)
	ub := geometry.EulerRotation(40, 30, 100).Mul(b)

	hkls := []geometry.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {1, 1, 0}, {0, 1, 1}, {1, 0, 1}}
	qs := make([]geometry.Vec3, len(hkls))
	for i, h := range hkls {
		qs[i] = ub.MulVec(h)
	}

	return l, qs
}

// TestFitOrientation_Cubic finds an orientation indexing every peak.
func TestFitOrientation_Cubic(t *testing.T) {
	l, qs := cubicPeaks(t)
	opts := ubfit.DefaultOrientationOptions()
	opts.Starts = 60
	opts.Rand = ubfit.NewSource(1)

	fit, err := ubfit.FitOrientation(context.Background(), l, qs, opts)
	require.NoError(t, err)
	assert.Less(t, fit.ChiSquare, 1e-6)

	n, err := indexing.NumberIndexed(fit.UB, qs, 0.01)
	require.NoError(t, err)
	assert.Equal(t, len(qs), n)
	assert.InDelta(t, 1.0/125, math.Abs(fit.UB.Det()), 1e-9, "rotation keeps the cell volume")
}

// TestFitOrientation_WorkersDeterministic checks the reduction ignores scheduling.
func TestFitOrientation_WorkersDeterministic(t *testing.T) {
	l, qs := cubicPeaks(t)
	opts := ubfit.DefaultOrientationOptions()
	opts.Starts = 24

	opts.Rand = ubfit.NewSource(42)
	serial, err := ubfit.FitOrientation(context.Background(), l, qs, opts)
	require.NoError(t, err)

	opts.Rand = ubfit.NewSource(42)
	opts.Workers = 4
	parallel, err := ubfit.FitOrientation(context.Background(), l, qs, opts)
	require.NoError(t, err)

	assert.Equal(t, serial, parallel)
}

// TestFitOrientation_Errors covers argument validation and cancellation.
func TestFitOrientation_Errors(t *testing.T) {
	l, qs := cubicPeaks(t)

	_, err := ubfit.FitOrientation(context.Background(), l, nil, ubfit.DefaultOrientationOptions())
	assert.ErrorIs(t, err, indexing.ErrInsufficientData)

	opts := ubfit.DefaultOrientationOptions()
	opts.Starts = 0
	_, err = ubfit.FitOrientation(context.Background(), l, qs, opts)
	assert.ErrorIs(t, err, indexing.ErrBadParameter)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ubfit.FitOrientation(ctx, l, qs, ubfit.DefaultOrientationOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

// TestFitOrientation_MultiStart checks that extra starts never do worse
// than the first one: the same seed draws the same first start, and the
// best of N includes it.
func TestFitOrientation_MultiStart(t *testing.T) {
	l, qs := cubicPeaks(t)
	opts := ubfit.DefaultOrientationOptions()

	opts.Starts = 1
	opts.Rand = ubfit.NewSource(1)
	single, singleErr := ubfit.FitOrientation(context.Background(), l, qs, opts)

	opts.Starts = 60
	opts.Rand = ubfit.NewSource(1)
	multi, err := ubfit.FitOrientation(context.Background(), l, qs, opts)
	require.NoError(t, err)
	assert.Less(t, multi.ChiSquare, 1e-6)

	if singleErr == nil {
		assert.LessOrEqual(t, multi.ChiSquare, single.ChiSquare)
		if multi.Start == 0 {
			assert.Equal(t, single.Angles, multi.Angles)
		}
	}
}

// TestFitOrientation_Cancelled stops before any start runs, serial or pooled.
func TestFitOrientation_Cancelled(t *testing.T) {
	l, qs := cubicPeaks(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		opts := ubfit.DefaultOrientationOptions()
		opts.Starts = 16
		opts.Workers = workers
		fit, err := ubfit.FitOrientation(ctx, l, qs, opts)
		require.Error(t, err, "workers=%d", workers)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, ubfit.Orientation{}, fit)
	}
}

// TestDeriveSource gives distinct but reproducible streams.
func TestDeriveSource(t *testing.T) {
	a := ubfit.DeriveSource(ubfit.NewSource(7), 1)
	b := ubfit.DeriveSource(ubfit.NewSource(7), 1)
	c := ubfit.DeriveSource(ubfit.NewSource(7), 2)

	x := a.Int63()
	assert.Equal(t, x, b.Int63())
	assert.NotEqual(t, x, c.Int63())
	assert.Equal(t, ubfit.NewSource(0).Int63(), ubfit.NewSource(1).Int63(), "zero seed maps to the default")
}
