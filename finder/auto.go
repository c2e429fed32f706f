// SPDX-License-Identifier: MIT

package finder

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/ubindex/direction"
	"github.com/katalvlaran/ubindex/geometry"
	"github.com/katalvlaran/ubindex/indexing"
	"github.com/katalvlaran/ubindex/niggli"
	"github.com/katalvlaran/ubindex/ubfit"
)

// minEdgeAngle is the smallest angle, in degrees, between two edges
// FormUBFromABCVectors accepts.
const minEdgeAngle = 40

// fftRefineRounds is the number of index-and-refit passes after the FFT
// triple is chosen.
const fftRefineRounds = 4

// FindUBAuto finds a UB when only a range [minD, maxD] of real-space cell
// edge lengths is known.
//
// Candidate edges come from direction.ScanForDirections on the
// opts.NumInitial lowest-|Q| vectors. Each edge in turn, in increasing
// length, starts a cell built by direction.FormUBFromABCVectors, which
// ExpandSetOfIndexedPeaks grows over all Q-vectors. A cell must index more
// than a quarter of the peaks the shortest edge indexes on its own; the one
// with the smallest average squared error wins. The winner is refit on all
// peaks and reduced to its Niggli cell.
//
// At least three Q-vectors spanning three dimensions are required; fewer,
// or fewer than three candidate edges, give indexing.ErrInsufficientData.
func FindUBAuto(ctx context.Context, qs []geometry.Vec3, minD, maxD float64, opts Options) (Result, error) {
	const op = "FindUBAuto"
	if len(qs) < 3 {
		return Result{}, fmt.Errorf("%s: need 3 Q-vectors, have %d: %w", op, len(qs), indexing.ErrInsufficientData)
	}
	if err := checkOptions(op, opts); err != nil {
		return Result{}, err
	}
	if err := checkRange(op, minD, maxD); err != nil {
		return Result{}, err
	}
	if err := checkSpan(op, qs); err != nil {
		return Result{}, err
	}
	log := opts.logger().With("op", op)

	// Stage 1: candidate edges from the low-|Q| peaks.
	sorted := indexing.SortQsByMagnitude(qs)
	numInitial := min(opts.NumInitial, len(sorted))
	dirs, maxIndexed, err := direction.ScanForDirections(ctx, sorted[:numInitial], minD, maxD,
		opts.Tolerance, opts.DegreesPerStep, opts.Scan)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}
	if maxIndexed == 0 || len(dirs) < 3 {
		return Result{}, fmt.Errorf("%s: %d edges indexing %d peaks: %w", op, len(dirs), maxIndexed, indexing.ErrInsufficientData)
	}
	dirs = direction.SortByLength(dirs)
	log.Debug("edges", "count", len(dirs), "indexed", maxIndexed)

	// Stage 2: grow a cell from each edge.
	required := 0.25 * float64(indexing.NumberIndexed1D(dirs[0], sorted, opts.Tolerance))
	var (
		best    geometry.Mat3
		found   bool
		minMean = math.Inf(1)
	)
	for i := 0; i < len(dirs)-2; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("%s: %w", op, err)
		}
		ub, err := direction.FormUBFromABCVectors(dirs, i, minEdgeAngle)
		if err != nil {
			continue
		}
		grown, n, mean, err := ExpandSetOfIndexedPeaks(ub, sorted, opts.Tolerance, numInitial)
		if err != nil {
			log.Debug("cell rejected", "edge", i, "err", err)
			continue
		}
		log.Debug("cell", "edge", i, "indexed", n, "mean", mean)
		if float64(n) > required && mean < minMean {
			best, found, minMean = grown, true, mean
		}
	}
	if !found {
		return Result{}, fmt.Errorf("%s: no cell indexes enough peaks: %w", op, indexing.ErrNoMatch)
	}

	// Stage 3: refit on every peak.
	if len(qs) >= 5 {
		if next, ok := refit(geometry.Affine{M: best}, qs, opts.Tolerance, false); ok {
			best = next.M
		}
	}

	return finish(op, best, qs, opts)
}

// FindUB runs FindUBFFT and falls back to FindUBAuto when it fails. When
// both fail the two errors are joined.
func FindUB(ctx context.Context, qs []geometry.Vec3, minD, maxD float64, opts Options) (Result, error) {
	res, err := FindUBFFT(ctx, qs, minD, maxD, opts)
	if err == nil {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{}, fmt.Errorf("FindUB: %w", ctxErr)
	}
	opts.logger().Debug("FFT search failed, trying direct search", "err", err)
	res, autoErr := FindUBAuto(ctx, qs, minD, maxD, opts)
	if autoErr != nil {
		return Result{}, errors.Join(err, autoErr)
	}

	return res, nil
}

// FindUBFFT is FindUBAuto with edges from direction.FFTScanForDirections.
// The scan uses three quarters of opts.Tolerance. The triple of edges
// indexing the most peaks, among those spanning a volume above minD³/4, is
// refit in four passes over all Q-vectors and reduced to its Niggli cell.
//
// At least four Q-vectors spanning three dimensions are required.
func FindUBFFT(ctx context.Context, qs []geometry.Vec3, minD, maxD float64, opts Options) (Result, error) {
	const op = "FindUBFFT"
	if len(qs) < 4 {
		return Result{}, fmt.Errorf("%s: need 4 Q-vectors, have %d: %w", op, len(qs), indexing.ErrInsufficientData)
	}
	if err := checkOptions(op, opts); err != nil {
		return Result{}, err
	}
	if err := checkRange(op, minD, maxD); err != nil {
		return Result{}, err
	}
	if err := checkSpan(op, qs); err != nil {
		return Result{}, err
	}
	log := opts.logger().With("op", op)

	// Stage 1: candidate edges.
	dirs, maxIndexed, err := direction.FFTScanForDirections(ctx, qs, minD, maxD,
		0.75*opts.Tolerance, opts.DegreesPerStep, opts.Scan)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}
	if maxIndexed == 0 || len(dirs) < 3 {
		return Result{}, fmt.Errorf("%s: %d edges indexing %d peaks: %w", op, len(dirs), maxIndexed, indexing.ErrInsufficientData)
	}
	dirs = direction.SortByLength(dirs)
	log.Debug("edges", "count", len(dirs), "indexed", maxIndexed)

	// Stage 2: best triple.
	ub, err := direction.FormUBFromBestTriple(dirs, qs, opts.Tolerance, minD*minD*minD/4)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %v: %w", op, err, indexing.ErrNoMatch)
	}

	// Stage 3: refine.
	if len(qs) >= 5 {
		model := geometry.Affine{M: ub}
		for i := 0; i < fftRefineRounds; i++ {
			if next, ok := refit(model, qs, opts.Tolerance, false); ok {
				model = next
			}
		}
		ub = model.M
	}
	if !indexing.CheckUB(ub) {
		return Result{}, fmt.Errorf("%s: %w", op, indexing.ErrInvalidUB)
	}

	return finish(op, ub, qs, opts)
}

// finish reduces ub to its Niggli cell unless opts.SkipNiggli is set and
// scores it on qs.
func finish(op string, ub geometry.Mat3, qs []geometry.Vec3, opts Options) (Result, error) {
	if !opts.SkipNiggli {
		reduced, changed, err := niggli.MakeNiggliUB(ub)
		if err != nil {
			return Result{}, fmt.Errorf("%s: %w", op, err)
		}
		opts.logger().Debug("niggli reduction", "op", op, "changed", changed)
		ub = reduced
	}

	return newResult(op, ub, qs, opts.Tolerance)
}

// ExpandSetOfIndexedPeaks refits ub on a growing prefix of qs, which should
// be sorted by increasing |Q|. The prefix starts at numInitial vectors (at
// least three) and grows by about half per pass. Once the prefix would run
// past the end of qs, four final passes are made over all of qs. It returns
// the refit UB, the number of Q-vectors it indexes and their average squared
// index error.
//
// A refit with too few indexed peaks returns an error wrapping
// indexing.ErrInsufficientData or indexing.ErrRankDeficient.
func ExpandSetOfIndexedPeaks(ub geometry.Mat3, qs []geometry.Vec3, tol float64, numInitial int) (geometry.Mat3, int, float64, error) {
	const op = "ExpandSetOfIndexedPeaks"
	if len(qs) < 3 {
		return geometry.Mat3{}, 0, 0, fmt.Errorf("%s: need 3 Q-vectors, have %d: %w", op, len(qs), indexing.ErrInsufficientData)
	}
	if !(tol > 0) {
		return geometry.Mat3{}, 0, 0, fmt.Errorf("%s: tolerance %g: %w", op, tol, indexing.ErrBadParameter)
	}

	n := max(numInitial, 3)
	repeats := 0
	for done := false; !done; {
		if n > len(qs) {
			n = len(qs)
			repeats++
			done = repeats > 3
		}
		set, err := indexing.GetIndexedPeaks(ub, qs[:n], tol)
		if err != nil {
			return geometry.Mat3{}, 0, 0, fmt.Errorf("%s: %w", op, err)
		}
		ub, _, err = ubfit.OptimizeUB3D(set.HKLs, set.Qs)
		if err != nil {
			return geometry.Mat3{}, 0, 0, fmt.Errorf("%s: %w", op, err)
		}
		n = int(geometry.RoundHalfUp(1.5*float64(n) + 2))
	}

	set, err := indexing.GetIndexedPeaks(ub, qs, tol)
	if err != nil {
		return geometry.Mat3{}, 0, 0, fmt.Errorf("%s: %w", op, err)
	}
	if set.Count() == 0 {
		return ub, 0, math.Inf(1), nil
	}

	return ub, set.Count(), set.FitError / float64(set.Count()), nil
}
