// SPDX-License-Identifier: MIT

package indexing

import (
	"fmt"
	"math"

	"github.com/katalvlaran/ubindex/geometry"
)

// Plausible range of |det(UB)| for an orientation matrix in 1/Å units.
const (
	MinUBDeterminant = 1e-12
	MaxUBDeterminant = 10.0
)

// IndexedSet holds the peaks a UB (or set of directions) indexes: the rounded
// Miller indices, the matching Q-vectors and the sum of squared distances of
// the fractional indices from those integers.
type IndexedSet struct {
	HKLs     []geometry.Vec3
	Qs       []geometry.Vec3
	FitError float64
}

// Count returns the number of indexed peaks.
func (s IndexedSet) Count() int { return len(s.Qs) }

// CheckUB reports whether ub could be an orientation matrix: all entries
// finite and MinUBDeterminant ≤ |det| ≤ MaxUBDeterminant.
func CheckUB(ub geometry.Mat3) bool {
	if !ub.IsFinite() {
		return false
	}
	det := math.Abs(ub.Det())

	return det >= MinUBDeterminant && det <= MaxUBDeterminant
}

func checkedInverse(op string, ub geometry.Mat3) (geometry.Mat3, error) {
	if !CheckUB(ub) {
		return geometry.Mat3{}, fmt.Errorf("%s: %w", op, ErrInvalidUB)
	}
	inv, err := ub.Inverse()
	if err != nil {
		return geometry.Mat3{}, fmt.Errorf("%s: %v: %w", op, err, ErrInvalidUB)
	}

	return inv, nil
}

// NumberIndexed counts the Q-vectors whose UB⁻¹·Q passes ValidIndex.
// Returns ErrInvalidUB when ub fails CheckUB.
func NumberIndexed(ub geometry.Mat3, qs []geometry.Vec3, tol float64) (int, error) {
	inv, err := checkedInverse("NumberIndexed", ub)
	if err != nil {
		return 0, err
	}
	var n int
	for _, q := range qs {
		if ValidIndex(inv.MulVec(q), tol) {
			n++
		}
	}

	return n, nil
}

// NumberIndexed1D counts the Q-vectors whose projection on dir lies strictly
// within tol of an integer. A zero direction indexes nothing.
func NumberIndexed1D(dir geometry.Vec3, qs []geometry.Vec3, tol float64) int {
	if dir.IsZero() {
		return 0
	}
	var (
		n    int
		proj float64
	)
	for _, q := range qs {
		proj = dir.Dot(q)
		if math.Abs(proj-geometry.RoundHalfUp(proj)) < tol {
			n++
		}
	}

	return n
}

// NumberIndexed3D counts the Q-vectors indexed simultaneously by the three
// edge vectors a, b, c (ValidIndex on the three projections) and returns the
// average squared error of those peaks, +Inf when none index.
func NumberIndexed3D(a, b, c geometry.Vec3, qs []geometry.Vec3, tol float64) (int, float64) {
	if a.IsZero() || b.IsZero() || c.IsZero() {
		return 0, math.Inf(1)
	}
	var (
		n   int
		sum float64
		hkl geometry.Vec3
	)
	for _, q := range qs {
		hkl = geometry.V(a.Dot(q), b.Dot(q), c.Dot(q))
		if ValidIndex(hkl, tol) {
			n++
			sum += residual2(hkl)
		}
	}
	if n == 0 {
		return 0, math.Inf(1)
	}

	return n, sum / float64(n)
}

// IndexingStdDev returns sqrt(Σerr²/(3·n)) over the n peaks ub indexes,
// or 0 when none index.
func IndexingStdDev(ub geometry.Mat3, qs []geometry.Vec3, tol float64) (float64, error) {
	inv, err := checkedInverse("IndexingStdDev", ub)
	if err != nil {
		return 0, err
	}
	var (
		n   int
		sum float64
		hkl geometry.Vec3
	)
	for _, q := range qs {
		hkl = inv.MulVec(q)
		if ValidIndex(hkl, tol) {
			n++
			sum += residual2(hkl)
		}
	}
	if n == 0 {
		return 0, nil
	}

	return math.Sqrt(sum / float64(3*n)), nil
}

// GetIndexedPeaks1D returns the peaks whose projection on dir lies strictly
// within tol of an integer, with those integers and the sum of squared
// projection errors. A zero direction indexes nothing.
func GetIndexedPeaks1D(dir geometry.Vec3, qs []geometry.Vec3, tol float64) (indices []int, indexedQs []geometry.Vec3, fitError float64) {
	if dir.IsZero() {
		return nil, nil, 0
	}
	var proj, nearest, e float64
	for _, q := range qs {
		proj = dir.Dot(q)
		nearest = geometry.RoundHalfUp(proj)
		e = math.Abs(proj - nearest)
		if e < tol {
			fitError += e * e
			indexedQs = append(indexedQs, q)
			indices = append(indices, int(nearest))
		}
	}

	return indices, indexedQs, fitError
}

// GetIndexedPeaks3D returns the peaks indexed by three plane-normal
// directions whose lengths are the reciprocal plane spacings.
func GetIndexedPeaks3D(d1, d2, d3 geometry.Vec3, qs []geometry.Vec3, tol float64) IndexedSet {
	var (
		set IndexedSet
		hkl geometry.Vec3
	)
	for _, q := range qs {
		hkl = geometry.V(d1.Dot(q), d2.Dot(q), d3.Dot(q))
		if ValidIndex(hkl, tol) {
			set.FitError += residual2(hkl)
			set.Qs = append(set.Qs, q)
			set.HKLs = append(set.HKLs, hkl.Round())
		}
	}

	return set
}

// GetIndexedPeaks returns the peaks indexed by ub within tol.
func GetIndexedPeaks(ub geometry.Mat3, qs []geometry.Vec3, tol float64) (IndexedSet, error) {
	return GetIndexedPeaksAffine(geometry.Affine{M: ub}, qs, tol)
}

// GetIndexedPeaksAffine is GetIndexedPeaks for a shifted map Q = M·hkl + Shift:
// the fractional indices are M⁻¹·(Q - Shift).
func GetIndexedPeaksAffine(ub geometry.Affine, qs []geometry.Vec3, tol float64) (IndexedSet, error) {
	inv, err := ub.Inverse()
	if err != nil {
		return IndexedSet{}, fmt.Errorf("GetIndexedPeaks: %v: %w", err, ErrInvalidUB)
	}
	var (
		set IndexedSet
		hkl geometry.Vec3
	)
	for _, q := range qs {
		hkl = inv.Apply(q)
		if ValidIndex(hkl, tol) {
			set.FitError += residual2(hkl)
			set.Qs = append(set.Qs, q)
			set.HKLs = append(set.HKLs, hkl.Round())
		}
	}

	return set, nil
}
