// SPDX-License-Identifier: MIT

package finder

import (
	"fmt"

	"github.com/katalvlaran/ubindex/geometry"
	"github.com/katalvlaran/ubindex/indexing"
	"github.com/katalvlaran/ubindex/ubfit"
)

// optimizeRounds is the number of index-and-refit passes of OptimizeUB and
// OptimizeUBByGrowingShells.
const optimizeRounds = 5

// minShellPeaks is the fewest indexed peaks OptimizeUBByGrowingShells fits.
const minShellPeaks = 5

// OptimizeUB refines ub by indexing qs within tol and refitting on the
// indexed peaks, five times. It returns the refined UB and the sum of
// squared Q residuals of the last fit.
func OptimizeUB(ub geometry.Mat3, qs []geometry.Vec3, tol float64) (geometry.Mat3, float64, error) {
	const op = "OptimizeUB"
	var sumSq float64
	for i := 0; i < optimizeRounds; i++ {
		set, err := indexing.GetIndexedPeaks(ub, qs, tol)
		if err != nil {
			return geometry.Mat3{}, 0, fmt.Errorf("%s: %w", op, err)
		}
		ub, sumSq, err = ubfit.OptimizeUB3D(set.HKLs, set.Qs)
		if err != nil {
			return geometry.Mat3{}, 0, fmt.Errorf("%s: round %d: %w", op, i, err)
		}
	}

	return ub, sumSq, nil
}

// OptimizeUBByGrowingShells is OptimizeUB restricted to the innermost
// indexed peaks: each pass fits the lowest-|Q| quarter of them, and never
// fewer than five. Fewer than five indexed peaks is ErrInsufficientData.
func OptimizeUBByGrowingShells(ub geometry.Mat3, qs []geometry.Vec3, tol float64) (geometry.Mat3, float64, error) {
	const op = "OptimizeUBByGrowingShells"
	sorted := indexing.SortQsByMagnitude(qs)

	var sumSq float64
	for i := 0; i < optimizeRounds; i++ {
		set, err := indexing.GetIndexedPeaks(ub, sorted, tol)
		if err != nil {
			return geometry.Mat3{}, 0, fmt.Errorf("%s: %w", op, err)
		}
		if set.Count() < minShellPeaks {
			return geometry.Mat3{}, 0, fmt.Errorf("%s: %d peaks indexed: %w", op, set.Count(), indexing.ErrInsufficientData)
		}
		n := max(set.Count()/4, minShellPeaks)
		ub, sumSq, err = ubfit.OptimizeUB3D(set.HKLs[:n], set.Qs[:n])
		if err != nil {
			return geometry.Mat3{}, 0, fmt.Errorf("%s: round %d: %w", op, i, err)
		}
	}

	return ub, sumSq, nil
}
