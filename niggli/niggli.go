// SPDX-License-Identifier: MIT

package niggli

import (
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/ubindex/geometry"
	"github.com/katalvlaran/ubindex/indexing"
)

const (
	// maxCoefficient bounds |i|, |j|, |k| in the combinations i·a + j·b + k·c.
	maxCoefficient = 5

	// wantCandidates is how many reduced cells the search tries to collect
	// before it stops widening the pool of short vectors.
	wantCandidates = 25

	// initialPool is half the first number of shortest vectors combined.
	initialPool = 5

	// minVolume rejects nearly flat cells (Å³).
	minVolume = 0.1

	// angleSlack (degrees) lets cells with angles a hair past 90 qualify.
	angleSlack = 0.01

	// sideSumTol is the relative edge-sum window around the shortest cell.
	sideSumTol = 0.001
)

// HasNiggliAngles reports whether the cell a, b, c has all three angles below
// 90° or all at or above 90°, with a 0.01° slack.
func HasNiggliAngles(a, b, c geometry.Vec3) bool {
	alpha := geometry.Angle(b, c)
	beta := geometry.Angle(c, a)
	gamma := geometry.Angle(a, b)

	if alpha < 90+angleSlack && beta < 90+angleSlack && gamma < 90+angleSlack {
		return true
	}

	return alpha >= 90-angleSlack && beta >= 90-angleSlack && gamma >= 90-angleSlack
}

// DiffFrom90Sum returns |α−90| + |β−90| + |γ−90| for the real-space cell of ub.
func DiffFrom90Sum(ub geometry.Mat3) (float64, error) {
	a, b, c, err := geometry.ABCFromUB(ub)
	if err != nil {
		return 0, fmt.Errorf("DiffFrom90Sum: %v: %w", err, indexing.ErrInvalidUB)
	}

	return diffFrom90(a, b, c), nil
}

// SideSum returns |a| + |b| + |c| for the real-space cell of ub.
func SideSum(ub geometry.Mat3) (float64, error) {
	a, b, c, err := geometry.ABCFromUB(ub)
	if err != nil {
		return 0, fmt.Errorf("SideSum: %v: %w", err, indexing.ErrInvalidUB)
	}

	return a.Norm() + b.Norm() + c.Norm(), nil
}

// MakeNiggliUB returns a UB for the same lattice as ub whose cell has the
// smallest edge sum and Niggli angles, preferring angles far from 90°.
// changed is false, and ub is returned as given, when no such cell was found.
// Returns ErrInvalidUB when ub cannot be inverted.
func MakeNiggliUB(ub geometry.Mat3) (niggliUB geometry.Mat3, changed bool, err error) {
	a, b, c, err := geometry.ABCFromUB(ub)
	if err != nil {
		return ub, false, fmt.Errorf("MakeNiggliUB: %v: %w", err, indexing.ErrInvalidUB)
	}

	// Stage 1: short lattice vectors, shortest first.
	dirs := combinations(a, b, c)

	// Stage 2: reduced cells from a growing pool of them.
	var cells []cell
	for pool := initialPool; len(cells) < wantCandidates && pool < len(dirs); {
		pool *= 2
		cells = reducedCells(dirs[:min(pool, len(dirs))])
	}
	if len(cells) == 0 {
		return ub, false, nil
	}

	// Stage 3: shortest edge sum, then angles furthest from 90.
	sort.SliceStable(cells, func(i, j int) bool { return cells[i].sideSum < cells[j].sideSum })
	shortest := cells[0].sideSum
	n := 1
	for n < len(cells) && math.Abs(cells[n].sideSum-shortest)/shortest < sideSumTol {
		n++
	}
	short := cells[:n]
	sort.SliceStable(short, func(i, j int) bool { return short[i].diff90 > short[j].diff90 })

	best := short[0]
	out, err := geometry.UBFromABC(best.a, best.b, best.c)
	if err != nil {
		return ub, false, nil
	}

	return out, true, nil
}

type cell struct {
	a, b, c geometry.Vec3
	sideSum float64
	diff90  float64
}

func combinations(a, b, c geometry.Vec3) []geometry.Vec3 {
	dirs := make([]geometry.Vec3, 0, (2*maxCoefficient+1)*(2*maxCoefficient+1)*(2*maxCoefficient+1)-1)
	for i := -maxCoefficient; i <= maxCoefficient; i++ {
		for j := -maxCoefficient; j <= maxCoefficient; j++ {
			for k := -maxCoefficient; k <= maxCoefficient; k++ {
				if i == 0 && j == 0 && k == 0 {
					continue
				}
				v := a.Scale(float64(i)).Add(b.Scale(float64(j))).Add(c.Scale(float64(k)))
				dirs = append(dirs, v)
			}
		}
	}
	sort.SliceStable(dirs, func(i, j int) bool { return dirs[i].Norm() < dirs[j].Norm() })

	return dirs
}

// reducedCells lists the right-handed cells with Niggli angles and a volume
// above minVolume, taking edges from dirs in order.
func reducedCells(dirs []geometry.Vec3) []cell {
	var cells []cell
	for i := 0; i < len(dirs)-2; i++ {
		for j := i + 1; j < len(dirs)-1; j++ {
			ab := dirs[i].Cross(dirs[j])
			for k := j + 1; k < len(dirs); k++ {
				a, b, c := dirs[i], dirs[j], dirs[k]
				if ab.Dot(c) <= minVolume || !HasNiggliAngles(a, b, c) {
					continue
				}
				cells = append(cells, cell{
					a: a, b: b, c: c,
					sideSum: a.Norm() + b.Norm() + c.Norm(),
					diff90:  diffFrom90(a, b, c),
				})
			}
		}
	}

	return cells
}

func diffFrom90(a, b, c geometry.Vec3) float64 {
	return math.Abs(geometry.Angle(b, c)-90) + math.Abs(geometry.Angle(c, a)-90) + math.Abs(geometry.Angle(a, b)-90)
}
