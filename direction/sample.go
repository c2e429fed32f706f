// SPDX-License-Identifier: MIT

package direction

import (
	"fmt"
	"math"

	"github.com/katalvlaran/ubindex/geometry"
	"github.com/katalvlaran/ubindex/indexing"
)

// MakeHemisphereDirections returns unit vectors covering the half sphere
// y ≥ 0 with an angular step of π/(2n).
//
// Vectors come in rows of constant polar angle φ, measured from +y. Each row
// holds about 2π·sin φ/step vectors spaced evenly in azimuth; the row on the
// equator covers only half a circle, so that no vector appears together
// with its negative. n = 5 gives 64 directions.
func MakeHemisphereDirections(n int) ([]geometry.Vec3, error) {
	if n <= 0 {
		return nil, fmt.Errorf("MakeHemisphereDirections: n=%d: %w", n, indexing.ErrBadParameter)
	}

	var (
		dirs      []geometry.Vec3
		angleStep = math.Pi / (2 * float64(n))
	)
	for phi := 0.0; phi <= 1.0001*(math.Pi/2); phi += angleStep {
		r := math.Sin(phi)
		nTheta := int(2*math.Pi*r/angleStep + 0.5)

		thetaStep := 2*math.Pi + 1 // a single vector at the pole
		if nTheta != 0 {
			thetaStep = 2 * math.Pi / float64(nTheta)
		}

		// stop half a step early so the circle does not close on itself
		last := 2*math.Pi - thetaStep/2
		if math.Abs(phi-math.Pi/2) < angleStep/2 {
			last = math.Pi - thetaStep/2
		}

		y := math.Cos(phi)
		for theta := 0.0; theta < last; theta += thetaStep {
			dirs = append(dirs, geometry.V(r*math.Cos(theta), y, r*math.Sin(theta)))
		}
	}

	return dirs, nil
}

// MakeCircleDirections returns n unit vectors at angleDeg from axis, spaced
// evenly by 360/n degrees of rotation about it.
func MakeCircleDirections(n int, axis geometry.Vec3, angleDeg float64) ([]geometry.Vec3, error) {
	const op = "MakeCircleDirections"
	if n <= 0 {
		return nil, fmt.Errorf("%s: n=%d: %w", op, n, indexing.ErrBadParameter)
	}
	if axis.IsZero() {
		return nil, fmt.Errorf("%s: %w", op, geometry.ErrZeroVector)
	}

	// any vector not parallel to axis: the unit vector on its smallest component
	var second geometry.Vec3
	switch ax, ay, az := math.Abs(axis[0]), math.Abs(axis[1]), math.Abs(axis[2]); {
	case ax <= ay && ax <= az:
		second = geometry.V(1, 0, 0)
	case ay <= ax && ay <= az:
		second = geometry.V(0, 1, 0)
	default:
		second = geometry.V(0, 0, 1)
	}

	unitAxis := axis.Normalize()
	perp := second.Cross(unitAxis).Normalize()
	tilted, err := geometry.Rotate(unitAxis, perp, angleDeg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	vec := tilted.Normalize()

	step, err := geometry.Rotation(unitAxis, 360/float64(n))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	dirs := make([]geometry.Vec3, n)
	for i := range dirs {
		dirs[i] = vec
		vec = step.MulVec(vec)
	}

	return dirs, nil
}

// MakeCDir returns the c edge of length c making angle alpha with bDir and
// beta with aDir, on the a×b side of the a,b plane. gamma is the angle
// between aDir and bDir.
func MakeCDir(aDir, bDir geometry.Vec3, c, alpha, beta, gamma float64) geometry.Vec3 {
	return geometry.CellEdgeC(aDir, bDir, c, alpha, beta, gamma)
}

// SelectDirection returns the unit vector from dirs whose scaled projections
// q·d/planeSpacing lie closest to integers, summed in squares over qs, and
// the number of Q-vectors that best direction indexes within tol. Of equal
// sums the later direction wins.
func SelectDirection(qs, dirs []geometry.Vec3, planeSpacing, tol float64) (geometry.Vec3, int, error) {
	const op = "SelectDirection"
	if len(qs) == 0 || len(dirs) == 0 {
		return geometry.Vec3{}, 0, fmt.Errorf("%s: %d Q-vectors, %d directions: %w",
			op, len(qs), len(dirs), indexing.ErrInsufficientData)
	}
	if !(planeSpacing > 0) {
		return geometry.Vec3{}, 0, fmt.Errorf("%s: spacing %g: %w", op, planeSpacing, indexing.ErrBadParameter)
	}

	var (
		best   geometry.Vec3
		minSum = math.Inf(1)
	)
	for _, dir := range dirs {
		scaled := dir.Scale(1 / planeSpacing)
		var sum float64
		for _, q := range qs {
			p := scaled.Dot(q)
			e := math.Abs(p - geometry.RoundHalfUp(p))
			sum += e * e
		}
		if sum <= minSum {
			minSum = sum
			best = scaled
		}
	}

	count := indexing.NumberIndexed1D(best, qs, tol)

	return best.Normalize(), count, nil
}
