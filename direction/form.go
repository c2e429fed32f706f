// SPDX-License-Identifier: MIT

package direction

import (
	"fmt"

	"github.com/katalvlaran/ubindex/geometry"
	"github.com/katalvlaran/ubindex/indexing"
)

// rightAngleSlack is the tolerance, in degrees, on angles meant to be on one
// side of 90.
const rightAngleSlack = 5.0

// FormUBFromABCVectors builds a UB from dirs, which must be sorted by
// increasing length, using dirs[aIndex] as a.
//
// b is the first later vector making an angle of at least minDeg with a and
// with −a, negated when that angle exceeds 95° so the cell leans towards
// angles ≤ 90. c is the first vector after b which, taken as is or negated,
// lies within 85° of a×b and makes at least minDeg with ±a and ±b. Returns
// ErrInsufficientData when no such b or c exists.
func FormUBFromABCVectors(dirs []geometry.Vec3, aIndex int, minDeg float64) (geometry.Mat3, error) {
	const op = "FormUBFromABCVectors"
	if aIndex < 0 || aIndex >= len(dirs) {
		return geometry.Mat3{}, fmt.Errorf("%s: index %d of %d: %w", op, aIndex, len(dirs), indexing.ErrBadParameter)
	}

	a := dirs[aIndex]
	index := aIndex + 1

	var (
		b      geometry.Vec3
		bFound bool
	)
	for ; index < len(dirs) && !bFound; index++ {
		gamma := geometry.Angle(a, dirs[index])
		if gamma >= minDeg && 180-gamma >= minDeg {
			b = dirs[index]
			if gamma > 90+rightAngleSlack {
				b = b.Neg()
			}
			bFound = true
		}
	}
	if !bFound {
		return geometry.Mat3{}, fmt.Errorf("%s: no b edge after %d: %w", op, aIndex, indexing.ErrInsufficientData)
	}

	perp := a.Cross(b).Normalize()
	inRange := func(deg float64) bool { return deg >= minDeg && 180-deg >= minDeg }

	var (
		c      geometry.Vec3
		cFound bool
	)
	for ; index < len(dirs) && !cFound; index++ {
		for _, sign := range [2]float64{1, -1} {
			candidate := dirs[index].Scale(sign)
			if geometry.Angle(perp, candidate) < 90-rightAngleSlack &&
				inRange(geometry.Angle(b, candidate)) && inRange(geometry.Angle(a, candidate)) {
				c, cFound = candidate, true
				break
			}
		}
	}
	if !cFound {
		return geometry.Mat3{}, fmt.Errorf("%s: no c edge after %d: %w", op, aIndex, indexing.ErrInsufficientData)
	}

	ub, err := geometry.UBFromABC(a, b, c)
	if err != nil {
		return geometry.Mat3{}, fmt.Errorf("%s: %v: %w", op, err, indexing.ErrRankDeficient)
	}

	return ub, nil
}

// FormUBFromBestTriple builds a UB from the triple of dirs that indexes the
// most Q-vectors within tol, among triples spanning a volume above minVol.
// A later triple replaces the current best only if it indexes more than 20%
// more peaks, which favors small cells. c is negated when needed to make the
// cell right-handed.
func FormUBFromBestTriple(dirs, qs []geometry.Vec3, tol, minVol float64) (geometry.Mat3, error) {
	const op = "FormUBFromBestTriple"
	if len(dirs) < 3 {
		return geometry.Mat3{}, fmt.Errorf("%s: %d directions: %w", op, len(dirs), indexing.ErrInsufficientData)
	}

	var (
		maxIndexed int
		a, b, c    geometry.Vec3
		found      bool
	)
	for i := 0; i < len(dirs)-2; i++ {
		for j := i + 1; j < len(dirs)-1; j++ {
			ab := dirs[i].Cross(dirs[j])
			for k := j + 1; k < len(dirs); k++ {
				if vol := ab.Dot(dirs[k]); vol <= minVol && -vol <= minVol {
					continue
				}
				n, _ := indexing.NumberIndexed3D(dirs[i], dirs[j], dirs[k], qs, tol)
				if float64(n) > 1.2*float64(maxIndexed) {
					maxIndexed = n
					a, b, c = dirs[i], dirs[j], dirs[k]
					found = true
				}
			}
		}
	}
	if !found {
		return geometry.Mat3{}, fmt.Errorf("%s: no triple above volume %g: %w", op, minVol, indexing.ErrInsufficientData)
	}

	if a.Cross(b).Dot(c) < 0 {
		c = c.Neg()
	}
	ub, err := geometry.UBFromABC(a, b, c)
	if err != nil {
		return geometry.Mat3{}, fmt.Errorf("%s: %v: %w", op, err, indexing.ErrRankDeficient)
	}

	return ub, nil
}
