// SPDX-License-Identifier: MIT

package direction

import (
	"context"
	"fmt"
	"math"

	"github.com/katalvlaran/ubindex/geometry"
	"github.com/katalvlaran/ubindex/indexing"
	"github.com/katalvlaran/ubindex/internal/workers"
	"github.com/katalvlaran/ubindex/ubfit"
)

// duplicateDistance is how close two refined edges, or an edge and the
// negative of another, must be to count as one edge (Å).
const duplicateDistance = 0.001

// ScanForDirections returns real-space vectors d for which d·Q is within tol
// of an integer for as many Q-vectors as possible, and that maximum count.
//
// Trial vectors are every hemisphere direction (MakeHemisphereDirections with
// round(90/degreesPerStep) steps) scaled to every length minD, minD+step, …
// up to about maxD. All trials reaching the maximum count are refined by a
// 1-D least-squares fit of their integer projections; refined vectors outside
// [minD, maxD], or within 0.001 Å of a kept vector or its negative, are
// dropped.
func ScanForDirections(ctx context.Context, qs []geometry.Vec3, minD, maxD, tol, degreesPerStep float64, opts ScanOptions) ([]geometry.Vec3, int, error) {
	const op = "ScanForDirections"
	if err := checkScanArgs(op, qs, minD, maxD, tol, degreesPerStep); err != nil {
		return nil, 0, err
	}
	if !(opts.LengthStep > 0) {
		return nil, 0, fmt.Errorf("%s: length step %g: %w", op, opts.LengthStep, indexing.ErrBadParameter)
	}

	hemisphere, err := MakeHemisphereDirections(int(geometry.RoundHalfUp(90 / degreesPerStep)))
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	nSteps := int(geometry.RoundHalfUp(1 + (maxD-minD)/opts.LengthStep))

	// Stage 1: every trial reaching the running maximum, per chunk.
	type chunkResult struct {
		max      int
		selected []geometry.Vec3
	}
	chunks := make([]chunkResult, workers.NumChunks(len(hemisphere), opts.Workers))
	err = workers.ForChunks(ctx, len(hemisphere), opts.Workers, func(ctx context.Context, chunk, lo, hi int) {
		res := &chunks[chunk]
		for i := lo; i < hi; i++ {
			if (i-lo)%workers.CheckEvery == 0 && ctx.Err() != nil {
				return
			}
			for step := 0; step <= nSteps; step++ {
				trial := hemisphere[i].Scale(minD + float64(step)*opts.LengthStep)
				n := countWithin(trial, qs, tol)
				if n > res.max {
					res.max = n
					res.selected = res.selected[:0]
				}
				if n >= res.max {
					res.selected = append(res.selected, trial)
				}
			}
		}
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	// Stage 2: merge in direction order. A chunk's list holds exactly its
	// trials with the chunk maximum, so concatenating the chunks that reach
	// the global maximum gives the serial result.
	var (
		maxIndexed int
		selected   []geometry.Vec3
	)
	for _, c := range chunks {
		if c.max > maxIndexed {
			maxIndexed = c.max
		}
	}
	for _, c := range chunks {
		if c.max == maxIndexed {
			selected = append(selected, c.selected...)
		}
	}

	// Stage 3: refine, filter on length and drop duplicates.
	var dirs []geometry.Vec3
	for _, dir := range selected {
		indices, indexedQs, _ := indexing.GetIndexedPeaks1D(dir, qs, tol)
		if refined, _, err := ubfit.OptimizeDirection3D(indices, indexedQs); err == nil {
			dir = refined
		}
		if length := dir.Norm(); length < minD || length > maxD {
			continue
		}
		if !containsEdge(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}

	return dirs, maxIndexed, nil
}

// DiscardDuplicates removes vectors that repeat an earlier edge. dirs must be
// sorted by increasing length.
//
// Starting from each remaining vector, the following vectors whose length
// differs by less than lenTol (relative) and whose direction is within angTol
// degrees of it, or of its negative, form a group; the scan of a group stops
// at the first vector with a larger length difference. Only the group member
// indexing the most Q-vectors within tol is kept, and a group indexing none is
// dropped. dirs itself is not modified.
func DiscardDuplicates(dirs, qs []geometry.Vec3, tol, lenTol, angTol float64) []geometry.Vec3 {
	work := make([]geometry.Vec3, len(dirs))
	copy(work, dirs)

	var out []geometry.Vec3
	for i, current := range work {
		length := current.Norm()
		if length == 0 {
			continue
		}
		group := []geometry.Vec3{current}
		for j := i + 1; j < len(work); j++ {
			next := work[j]
			nextLength := next.Norm()
			if nextLength == 0 {
				continue
			}
			if math.Abs(nextLength-length)/length >= lenTol {
				break
			}
			if angle := geometry.Angle(current, next); angle < angTol || angle > 180-angTol {
				group = append(group, next)
				work[j] = geometry.Vec3{}
			}
		}

		best, bestCount := -1, 0
		for k, v := range group {
			if n := indexing.NumberIndexed1D(v, qs, tol); n > bestCount {
				best, bestCount = k, n
			}
		}
		if bestCount > 0 {
			out = append(out, group[best])
		}
	}

	return out
}

// countWithin counts Q-vectors whose projection on dir is within tol
// (inclusive) of the nearest integer.
func countWithin(dir geometry.Vec3, qs []geometry.Vec3, tol float64) int {
	var n int
	for _, q := range qs {
		p := dir.Dot(q)
		if math.Abs(p-geometry.RoundHalfUp(p)) <= tol {
			n++
		}
	}

	return n
}

func containsEdge(dirs []geometry.Vec3, v geometry.Vec3) bool {
	for _, d := range dirs {
		if v.Sub(d).Norm() < duplicateDistance || v.Add(d).Norm() < duplicateDistance {
			return true
		}
	}

	return false
}

func checkScanArgs(op string, qs []geometry.Vec3, minD, maxD, tol, degreesPerStep float64) error {
	if len(qs) == 0 {
		return fmt.Errorf("%s: no Q-vectors: %w", op, indexing.ErrInsufficientData)
	}
	if !(minD > 0) || !(maxD > minD) {
		return fmt.Errorf("%s: d range [%g, %g]: %w", op, minD, maxD, indexing.ErrBadParameter)
	}
	if !(tol > 0) || !(degreesPerStep > 0) {
		return fmt.Errorf("%s: tol=%g step=%g: %w", op, tol, degreesPerStep, indexing.ErrBadParameter)
	}

	return nil
}
