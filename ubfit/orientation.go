// SPDX-License-Identifier: MIT

package ubfit

import (
	"context"
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/optimize"

	"github.com/katalvlaran/ubindex/geometry"
	"github.com/katalvlaran/ubindex/indexing"
)

// Defaults for FitOrientation.
const (
	DefaultStarts        = 200
	DefaultMaxIterations = 400
	DefaultSimplexSize   = 10.0 // degrees
	DefaultWorkers       = 1
)

// OrientationOptions configures FitOrientation.
type OrientationOptions struct {
	// Starts is the number of random starting orientations.
	Starts int

	// MaxIterations bounds the Nelder–Mead iterations of one start.
	MaxIterations int

	// SimplexSize is the edge of the initial simplex, in degrees.
	SimplexSize float64

	// Workers > 1 runs starts concurrently. Results do not depend on it.
	Workers int

	// Rand draws the starting angles. nil means NewSource(0).
	Rand Source
}

// DefaultOrientationOptions returns the options used by the indexing driver.
func DefaultOrientationOptions() OrientationOptions {
	return OrientationOptions{
		Starts:        DefaultStarts,
		MaxIterations: DefaultMaxIterations,
		SimplexSize:   DefaultSimplexSize,
		Workers:       DefaultWorkers,
	}
}

// Orientation is the outcome of FitOrientation.
type Orientation struct {
	// UB = EulerRotation(Angles)·B in the |Q| = 1/d convention.
	UB geometry.Mat3

	// Angles are phi, chi, omega in degrees.
	Angles [3]float64

	// ChiSquare is Σ over peaks and axes of (h − round(h))².
	ChiSquare float64

	// Start is the index of the winning start.
	Start int
}

// FitOrientation finds the rotation U for which UB = U·B, B taken from
// lattice, brings UB⁻¹·Q closest to integers for every Q in qs.
//
// Each start draws phi ∈ [0,360), chi ∈ [0,90), omega ∈ [0,360) from
// opts.Rand and runs Nelder–Mead on a smooth periodic surrogate of the
// squared distance to the nearest integers. The start with the lowest
// ChiSquare wins; ties go to the lower start index. There is no guarantee
// of a global optimum: more starts make a miss less likely.
//
// Starting angles are drawn up front in start order, so the result is the
// same for any Workers value. ctx is checked between starts.
func FitOrientation(ctx context.Context, lattice geometry.Lattice, qs []geometry.Vec3, opts OrientationOptions) (Orientation, error) {
	const op = "FitOrientation"
	if len(qs) == 0 {
		return Orientation{}, fmt.Errorf("%s: no Q-vectors: %w", op, indexing.ErrInsufficientData)
	}
	if opts.Starts < 1 || opts.MaxIterations < 1 || !(opts.SimplexSize > 0) {
		return Orientation{}, fmt.Errorf("%s: starts=%d iterations=%d simplex=%g: %w",
			op, opts.Starts, opts.MaxIterations, opts.SimplexSize, indexing.ErrBadParameter)
	}
	b, err := lattice.BMatrix(false)
	if err != nil {
		return Orientation{}, fmt.Errorf("%s: %w", op, err)
	}
	bInv, err := b.Inverse()
	if err != nil {
		return Orientation{}, fmt.Errorf("%s: %v: %w", op, err, indexing.ErrInvalidUB)
	}
	rng := opts.Rand
	if rng == nil {
		rng = NewSource(0)
	}

	// Stage 1: starting points, in start order.
	starts := make([][3]float64, opts.Starts)
	for i := range starts {
		starts[i] = [3]float64{360 * rng.Float64(), 90 * rng.Float64(), 360 * rng.Float64()}
	}

	// Stage 2: local searches.
	results := make([]Orientation, opts.Starts)
	for i := range results {
		results[i].ChiSquare = math.Inf(1)
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > opts.Starts {
		workers = opts.Starts
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = fitFrom(starts[i], b, bInv, qs, opts)
				results[i].Start = i
			}
		}()
	}
	var cancelled error
	for i := range starts {
		if err := ctx.Err(); err != nil {
			cancelled = err
			break
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	if cancelled != nil {
		return Orientation{}, fmt.Errorf("%s: %w", op, cancelled)
	}

	// Stage 3: deterministic reduction.
	best := results[0]
	for _, r := range results[1:] {
		if r.ChiSquare < best.ChiSquare {
			best = r
		}
	}
	if math.IsInf(best.ChiSquare, 1) || math.IsNaN(best.ChiSquare) {
		return Orientation{}, fmt.Errorf("%s: no start converged: %w", op, indexing.ErrConvergence)
	}

	return best, nil
}

// OrientationChiSquare returns Σ(h − round(h))² over qs for UB = U(angles)·B.
func OrientationChiSquare(angles [3]float64, bInv geometry.Mat3, qs []geometry.Vec3) float64 {
	uInv := geometry.EulerRotation(angles[0], angles[1], angles[2]).Transpose()
	m := bInv.Mul(uInv)
	var sum float64
	for _, q := range qs {
		h := m.MulVec(q)
		d := h.Sub(h.Round())
		sum += d.Dot(d)
	}

	return sum
}

// surrogate is Σ(1 − cos 2πh)/(2π²): equal to Σ(h − round(h))² to second
// order near integers and smooth everywhere else.
func surrogate(angles []float64, bInv geometry.Mat3, qs []geometry.Vec3) float64 {
	uInv := geometry.EulerRotation(angles[0], angles[1], angles[2]).Transpose()
	m := bInv.Mul(uInv)
	var sum float64
	for _, q := range qs {
		h := m.MulVec(q)
		for _, x := range h {
			sum += 1 - math.Cos(2*math.Pi*x)
		}
	}

	return sum / (2 * math.Pi * math.Pi)
}

func fitFrom(start [3]float64, b, bInv geometry.Mat3, qs []geometry.Vec3, opts OrientationOptions) Orientation {
	failed := Orientation{ChiSquare: math.Inf(1)}

	problem := optimize.Problem{
		Func: func(x []float64) float64 { return surrogate(x, bInv, qs) },
	}
	settings := &optimize.Settings{
		MajorIterations: opts.MaxIterations,
		Converger:       &optimize.FunctionConverge{Absolute: 1e-14, Iterations: 30},
	}
	method := &optimize.NelderMead{SimplexSize: opts.SimplexSize}

	res, err := optimize.Minimize(problem, start[:], settings, method)
	if err != nil || res == nil {
		return failed
	}
	angles := [3]float64{res.X[0], res.X[1], res.X[2]}
	chi := OrientationChiSquare(angles, bInv, qs)
	if math.IsNaN(chi) {
		return failed
	}

	return Orientation{
		UB:        geometry.EulerRotation(angles[0], angles[1], angles[2]).Mul(b),
		Angles:    angles,
		ChiSquare: chi,
	}
}
