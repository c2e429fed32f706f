// SPDX-License-Identifier: MIT

package finder

import (
	"context"
	"fmt"
	"math"

	"github.com/katalvlaran/ubindex/direction"
	"github.com/katalvlaran/ubindex/geometry"
	"github.com/katalvlaran/ubindex/indexing"
	"github.com/katalvlaran/ubindex/internal/workers"
)

// orientation is one trial placement of the cell: its three edge vectors.
type orientation struct {
	a, b, c geometry.Vec3
}

// trialGrid enumerates orientations of a lattice: a runs over the hemisphere
// with round(90/degreesPerStep) steps, b over the cone at gamma about a with
// round(4·sin γ·steps) steps, and c follows from a and b.
type trialGrid struct {
	lattice geometry.Lattice
	aDirs   []geometry.Vec3
	bSteps  int
}

func newTrialGrid(lattice geometry.Lattice, degreesPerStep float64) (trialGrid, error) {
	aSteps := int(geometry.RoundHalfUp(90 / degreesPerStep))
	bSteps := int(geometry.RoundHalfUp(4 * math.Sin(lattice.Gamma*math.Pi/180) * float64(aSteps)))
	aDirs, err := direction.MakeHemisphereDirections(aSteps)
	if err != nil {
		return trialGrid{}, err
	}

	return trialGrid{lattice: lattice, aDirs: aDirs, bSteps: bSteps}, nil
}

// each calls fn for every orientation whose a-direction index is in [lo, hi).
func (g trialGrid) each(ctx context.Context, lo, hi int, fn func(orientation)) {
	l := g.lattice
	for i := lo; i < hi; i++ {
		if (i-lo)%workers.CheckEvery == 0 && ctx.Err() != nil {
			return
		}
		a := g.aDirs[i].Scale(l.A)
		bDirs, err := direction.MakeCircleDirections(g.bSteps, a, l.Gamma)
		if err != nil {
			continue
		}
		for _, bDir := range bDirs {
			b := bDir.Scale(l.B)
			fn(orientation{a: a, b: b, c: direction.MakeCDir(a, b, l.C, l.Alpha, l.Beta, l.Gamma)})
		}
	}
}

// sumSquares is Σ over qs and the three edges of (e·Q − round(e·Q))².
func (o orientation) sumSquares(qs []geometry.Vec3) float64 {
	var sum float64
	for _, q := range qs {
		for _, e := range [3]geometry.Vec3{o.a, o.b, o.c} {
			p := e.Dot(q)
			d := p - geometry.RoundHalfUp(p)
			sum += d * d
		}
	}

	return sum
}

// count is the number of Q-vectors whose three projections all lie within
// tol of an integer.
func (o orientation) count(qs []geometry.Vec3, tol float64) int {
	var n int
	for _, q := range qs {
		if within(o.a.Dot(q), tol) && within(o.b.Dot(q), tol) && within(o.c.Dot(q), tol) {
			n++
		}
	}

	return n
}

func within(p, tol float64) bool { return math.Abs(p-geometry.RoundHalfUp(p)) <= tol }

func (o orientation) ub() (geometry.Mat3, error) { return geometry.UBFromABC(o.a, o.b, o.c) }

// ScanForUB places the cell of lattice in every orientation of a grid with
// opts.DegreesPerStep resolution and returns the UB of the best one, with
// its sum of squared index errors over qs.
//
// The scan is two-pass: the orientations indexing the most Q-vectors within
// opts.Tolerance on all three axes are kept, and among them the one with the
// smallest sum of squared errors wins (the first on ties). The grid is split
// across opts.Scan.Workers goroutines without changing the result.
func ScanForUB(ctx context.Context, qs []geometry.Vec3, lattice geometry.Lattice, opts Options) (geometry.Mat3, float64, error) {
	const op = "ScanForUB"
	grid, err := scanSetup(op, qs, lattice, opts)
	if err != nil {
		return geometry.Mat3{}, 0, err
	}

	// Stage 1: per chunk, every orientation reaching the chunk maximum.
	type chunkResult struct {
		max  int
		best []orientation
	}
	chunks := make([]chunkResult, workers.NumChunks(len(grid.aDirs), opts.Scan.Workers))
	err = workers.ForChunks(ctx, len(grid.aDirs), opts.Scan.Workers, func(ctx context.Context, chunk, lo, hi int) {
		res := &chunks[chunk]
		grid.each(ctx, lo, hi, func(o orientation) {
			n := o.count(qs, opts.Tolerance)
			if n > res.max {
				res.max = n
				res.best = res.best[:0]
			}
			if n >= res.max {
				res.best = append(res.best, o)
			}
		})
	})
	if err != nil {
		return geometry.Mat3{}, 0, fmt.Errorf("%s: %w", op, err)
	}

	var maxIndexed, candidates int
	for _, c := range chunks {
		maxIndexed = max(maxIndexed, c.max)
	}
	for _, c := range chunks {
		if c.max == maxIndexed {
			candidates += len(c.best)
		}
	}

	// Stage 2: least squared error among the best, in grid order.
	var (
		best  orientation
		found bool
		least = math.Inf(1)
	)
	for _, c := range chunks {
		if c.max != maxIndexed {
			continue
		}
		for _, o := range c.best {
			if s := o.sumSquares(qs); s < least {
				least, best, found = s, o, true
			}
		}
	}
	if !found {
		return geometry.Mat3{}, 0, fmt.Errorf("%s: empty orientation grid: %w", op, indexing.ErrInsufficientData)
	}
	opts.logger().Debug("orientation scan", "indexed", maxIndexed, "candidates", candidates, "error", least)

	ub, err := best.ub()
	if err != nil {
		return geometry.Mat3{}, 0, fmt.Errorf("%s: %v: %w", op, err, indexing.ErrInvalidUB)
	}

	return ub, least, nil
}

// ScanForUBMinError is the one-pass ScanForUB: the orientation with the
// smallest sum of squared index errors wins, whatever the count.
func ScanForUBMinError(ctx context.Context, qs []geometry.Vec3, lattice geometry.Lattice, opts Options) (geometry.Mat3, float64, error) {
	const op = "ScanForUBMinError"
	grid, err := scanSetup(op, qs, lattice, opts)
	if err != nil {
		return geometry.Mat3{}, 0, err
	}

	type chunkResult struct {
		best  orientation
		least float64
		found bool
	}
	chunks := make([]chunkResult, workers.NumChunks(len(grid.aDirs), opts.Scan.Workers))
	err = workers.ForChunks(ctx, len(grid.aDirs), opts.Scan.Workers, func(ctx context.Context, chunk, lo, hi int) {
		res := &chunks[chunk]
		res.least = math.Inf(1)
		grid.each(ctx, lo, hi, func(o orientation) {
			if s := o.sumSquares(qs); s < res.least {
				res.least, res.best, res.found = s, o, true
			}
		})
	})
	if err != nil {
		return geometry.Mat3{}, 0, fmt.Errorf("%s: %w", op, err)
	}

	best := chunkResult{least: math.Inf(1)}
	for _, c := range chunks {
		if c.found && c.least < best.least {
			best = c
		}
	}
	if !best.found {
		return geometry.Mat3{}, 0, fmt.Errorf("%s: empty orientation grid: %w", op, indexing.ErrInsufficientData)
	}

	ub, err := best.best.ub()
	if err != nil {
		return geometry.Mat3{}, 0, fmt.Errorf("%s: %v: %w", op, err, indexing.ErrInvalidUB)
	}

	return ub, best.least, nil
}

func scanSetup(op string, qs []geometry.Vec3, lattice geometry.Lattice, opts Options) (trialGrid, error) {
	if len(qs) == 0 {
		return trialGrid{}, fmt.Errorf("%s: no Q-vectors: %w", op, indexing.ErrInsufficientData)
	}
	if err := lattice.Validate(); err != nil {
		return trialGrid{}, fmt.Errorf("%s: %v: %w", op, err, indexing.ErrBadParameter)
	}
	if !(opts.Tolerance > 0) || !(opts.DegreesPerStep > 0) {
		return trialGrid{}, fmt.Errorf("%s: tolerance %g, step %g: %w",
			op, opts.Tolerance, opts.DegreesPerStep, indexing.ErrBadParameter)
	}
	grid, err := newTrialGrid(lattice, opts.DegreesPerStep)
	if err != nil {
		return trialGrid{}, fmt.Errorf("%s: %w", op, err)
	}

	return grid, nil
}
