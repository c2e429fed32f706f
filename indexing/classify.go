// SPDX-License-Identifier: MIT

package indexing

import (
	"math"

	"github.com/katalvlaran/ubindex/geometry"
)

// DistanceToInts returns the largest distance from a component of hkl to its
// nearest integer. Each per-axis distance lies in [0, 0.5]; 0.5 stays 0.5.
func DistanceToInts(hkl geometry.Vec3) float64 {
	var dist, diff float64
	for _, x := range hkl {
		diff = x - math.Floor(x)
		if diff > 0.5 {
			diff = 1 - diff
		}
		if diff > dist {
			dist = diff
		}
	}

	return dist
}

// Index assigns hkl = round(ubInverse·Q) to every peak whose DistanceToInts is
// below tol and (0,0,0) to every other peak. Earlier assignments are
// overwritten. Returns the number of peaks indexed.
func Index(peaks []*Peak, ubInverse geometry.Mat3, tol float64) int {
	var (
		n   int
		hkl geometry.Vec3
	)
	for _, p := range peaks {
		hkl = ubInverse.MulVec(p.Q)
		if DistanceToInts(hkl) < tol {
			p.HKL = hkl.Round()
			n++
		} else {
			p.HKL = geometry.Vec3{}
		}
	}

	return n
}

// NumIndexed counts the peaks Index would index, without touching them.
func NumIndexed(peaks []*Peak, ubInverse geometry.Mat3, tol float64) int {
	var n int
	for _, p := range peaks {
		if DistanceToInts(ubInverse.MulVec(p.Q)) < tol {
			n++
		}
	}

	return n
}

// ValidIndex reports whether hkl rounds to a triple other than (0,0,0) and
// every component lies within tol of its rounded value.
func ValidIndex(hkl geometry.Vec3, tol float64) bool {
	r := hkl.Round()
	if r.IsZero() {
		return false
	}

	return math.Abs(hkl[0]-r[0]) <= tol &&
		math.Abs(hkl[1]-r[1]) <= tol &&
		math.Abs(hkl[2]-r[2]) <= tol
}

// IndexedFromPeaks collects the rounded hkl and Q of peaks whose current
// assignment passes ValidIndex.
func IndexedFromPeaks(peaks []*Peak, tol float64) IndexedSet {
	var set IndexedSet
	for _, p := range peaks {
		if ValidIndex(p.HKL, tol) {
			set.HKLs = append(set.HKLs, p.HKL.Round())
			set.Qs = append(set.Qs, p.Q)
		}
	}

	return set
}

// residual2 returns Σ(xᵢ - round(xᵢ))².
func residual2(hkl geometry.Vec3) float64 {
	r := hkl.Round()
	d := hkl.Sub(r)

	return d.Dot(d)
}
