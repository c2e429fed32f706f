// SPDX-License-Identifier: MIT

package indexing

import (
	"cmp"
	"math"
	"slices"

	"github.com/katalvlaran/ubindex/geometry"
)

// Peak is one measured reflection. HKL of (0,0,0) means "not indexed".
// Meta carries instrument data this package never reads.
type Peak struct {
	Q         geometry.Vec3
	Intensity float64
	HKL       geometry.Vec3
	Meta      map[string]any
}

// NewPeak returns an unindexed peak at q.
func NewPeak(q geometry.Vec3, intensity float64) *Peak {
	return &Peak{Q: q, Intensity: intensity}
}

// Indexed reports whether the peak carries a non-zero hkl.
func (p *Peak) Indexed() bool { return !p.HKL.IsZero() }

// Qs returns the Q-vectors of peaks, in order.
func Qs(peaks []*Peak) []geometry.Vec3 {
	qs := make([]geometry.Vec3, len(peaks))
	for i, p := range peaks {
		qs[i] = p.Q
	}

	return qs
}

// ClearHKL marks every peak as unindexed.
func ClearHKL(peaks []*Peak) {
	for _, p := range peaks {
		p.HKL = geometry.Vec3{}
	}
}

// SortByIntensity orders peaks strongest first. The sort is stable.
func SortByIntensity(peaks []*Peak) {
	slices.SortStableFunc(peaks, func(a, b *Peak) int {
		return cmp.Compare(b.Intensity, a.Intensity)
	})
}

// SortByQ orders peaks by |Q|, ascending or descending. The sort is stable.
func SortByQ(peaks []*Peak, ascending bool) {
	slices.SortStableFunc(peaks, func(a, b *Peak) int {
		if ascending {
			return cmp.Compare(a.Q.Norm2(), b.Q.Norm2())
		}

		return cmp.Compare(b.Q.Norm2(), a.Q.Norm2())
	})
}

// SortByDistanceTo orders peaks by increasing |Q - ref.Q|. The sort is stable.
func SortByDistanceTo(peaks []*Peak, ref *Peak) {
	slices.SortStableFunc(peaks, func(a, b *Peak) int {
		return cmp.Compare(a.Q.Distance(ref.Q), b.Q.Distance(ref.Q))
	})
}

// SortByDistanceToPair orders peaks by increasing distance to the nearer of
// two reference peaks. The sort is stable.
func SortByDistanceToPair(peaks []*Peak, ref1, ref2 *Peak) {
	dist := func(p *Peak) float64 {
		return math.Min(p.Q.Distance(ref1.Q), p.Q.Distance(ref2.Q))
	}
	slices.SortStableFunc(peaks, func(a, b *Peak) int {
		return cmp.Compare(dist(a), dist(b))
	})
}

// SortQsByMagnitude returns a copy of qs ordered by increasing |Q|.
func SortQsByMagnitude(qs []geometry.Vec3) []geometry.Vec3 {
	out := slices.Clone(qs)
	slices.SortStableFunc(out, func(a, b geometry.Vec3) int {
		return cmp.Compare(a.Norm2(), b.Norm2())
	})

	return out
}
