// SPDX-License-Identifier: MIT

package finder

import (
	"context"
	"fmt"

	"github.com/katalvlaran/ubindex/geometry"
	"github.com/katalvlaran/ubindex/indexing"
	"github.com/katalvlaran/ubindex/ubfit"
)

// Result is the outcome of a UB search.
type Result struct {
	// UB maps Miller indices to Q: Q = UB·hkl.
	UB geometry.Mat3

	// FitError is the sum over the indexed peaks of the squared distances
	// of UB⁻¹·Q from the nearest integers.
	FitError float64

	// NumIndexed is the number of input Q-vectors UB indexes.
	NumIndexed int
}

// newResult indexes qs with ub to fill in FitError and NumIndexed.
func newResult(op string, ub geometry.Mat3, qs []geometry.Vec3, tol float64) (Result, error) {
	set, err := indexing.GetIndexedPeaks(ub, qs, tol)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	return Result{UB: ub, FitError: set.FitError, NumIndexed: set.Count()}, nil
}

// FindUBWithLattice finds the UB of a crystal with known cell parameters.
//
// With more than five Q-vectors, one of them (opts.BaseIndex, or the one a
// third of the way up the |Q| ordering) is subtracted from the others so
// the search does not depend on a zero offset in Q. ScanForUB then orients
// the cell on the opts.NumInitial lowest-|Q| vectors, and the UB is refit
// while the set grows by about half at each step. A final refit uses every
// input Q-vector when there are at least five.
//
// At least two Q-vectors are required.
func FindUBWithLattice(ctx context.Context, qs []geometry.Vec3, lattice geometry.Lattice, opts Options) (Result, error) {
	const op = "FindUBWithLattice"
	if len(qs) < 2 {
		return Result{}, fmt.Errorf("%s: need 2 Q-vectors, have %d: %w", op, len(qs), indexing.ErrInsufficientData)
	}
	if err := checkOptions(op, opts); err != nil {
		return Result{}, err
	}
	log := opts.logger().With("op", op)

	// Stage 1: recenter on a base peak.
	work := centerOnBase(qs, opts.BaseIndex)
	work = indexing.SortQsByMagnitude(work)
	numInitial := min(opts.NumInitial, len(work))

	// Stage 2: orientation scan on the low-|Q| peaks.
	ub, scanErr, err := ScanForUB(ctx, work[:numInitial], lattice, opts)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}
	log.Debug("initial orientation", "peaks", numInitial, "error", scanErr)
	model := geometry.Affine{M: ub}

	// Stage 3: grow the set and refit.
	for numInitial < len(work) {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("%s: %w", op, err)
		}
		numInitial = min(int(geometry.RoundHalfUp(1.5*float64(numInitial)+3)), len(work))
		if next, ok := refit(model, work[:numInitial], opts.Tolerance, opts.FitShift); ok {
			model = next
		}
		log.Debug("grown", "peaks", numInitial)
	}

	// Stage 4: all original peaks.
	if len(qs) >= 5 {
		if next, ok := refit(model, qs, opts.Tolerance, opts.FitShift); ok {
			model = next
		}
	}

	return newResult(op, model.M, qs, opts.Tolerance)
}

// refit indexes qs with model and refits it on the indexed peaks, with a
// constant shift when shift is set. ok is false when too few peaks index or
// the fit fails.
func refit(model geometry.Affine, qs []geometry.Vec3, tol float64, shift bool) (geometry.Affine, bool) {
	set, err := indexing.GetIndexedPeaksAffine(model, qs, tol)
	if err != nil || set.Count() < ubfit.MinPairs {
		return model, false
	}
	if shift {
		next, _, err := ubfit.OptimizeUB4D(set.HKLs, set.Qs)
		if err != nil {
			return model, false
		}

		return next, true
	}
	m, _, err := ubfit.OptimizeUB3D(set.HKLs, set.Qs)
	if err != nil {
		return model, false
	}

	return geometry.Affine{M: m}, true
}

// centerOnBase returns qs minus the base peak, without the base peak.
// Inputs of five vectors or fewer are returned as a copy.
func centerOnBase(qs []geometry.Vec3, baseIndex int) []geometry.Vec3 {
	if len(qs) <= 5 {
		return append([]geometry.Vec3(nil), qs...)
	}
	src, base := qs, baseIndex
	if base < 0 || base >= len(qs) {
		src = indexing.SortQsByMagnitude(qs)
		base = len(qs) / 3
	}
	origin := src[base]
	out := make([]geometry.Vec3, 0, len(src)-1)
	for i, q := range src {
		if i != base {
			out = append(out, q.Sub(origin))
		}
	}

	return out
}
