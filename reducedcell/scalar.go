// SPDX-License-Identifier: MIT

package reducedcell

import (
	"fmt"
	"math"

	"github.com/katalvlaran/ubindex/geometry"
	"github.com/katalvlaran/ubindex/indexing"
)

// SignRelatedUBs returns ub followed by the UBs obtained by negating two of
// its real-space edges, for each angle those two edges do not change that
// lies within tol degrees of 90°. Such an angle may sit on the wrong side of
// 90° through measurement error, which moves the cell between the all-acute
// and all-obtuse halves of the table.
func SignRelatedUBs(ub geometry.Mat3, tol float64) ([]geometry.Mat3, error) {
	a, b, c, err := geometry.ABCFromUB(ub)
	if err != nil {
		return nil, fmt.Errorf("SignRelatedUBs: %v: %w", err, indexing.ErrInvalidUB)
	}

	reflections := [3][3]geometry.Vec3{
		{a.Neg(), b.Neg(), c},
		{a.Neg(), b, c.Neg()},
		{a, b.Neg(), c.Neg()},
	}
	fixed := [3]float64{geometry.Angle(a, b), geometry.Angle(c, a), geometry.Angle(b, c)}

	out := make([]geometry.Mat3, 1, len(reflections)+1)
	out[0] = ub
	for i, r := range reflections {
		if !(math.Abs(fixed[i]-90) < tol) {
			continue
		}
		related, err := geometry.UBFromABC(r[0], r[1], r[2])
		if err != nil {
			return nil, fmt.Errorf("SignRelatedUBs: %v: %w", err, indexing.ErrInvalidUB)
		}
		out = append(out, related)
	}

	return out, nil
}

// GetCells returns, per form matching the filters (see BestMatch), the
// ConventionalCellInfo with the lowest error over the sign-related UBs of
// ub. Forms appear in the order first seen.
func GetCells(ub geometry.Mat3, cellType, centering string, opts ...Option) ([]ConventionalCellInfo, error) {
	o := gatherOptions(opts...)
	related, err := SignRelatedUBs(ub, o.angleTolerance)
	if err != nil {
		return nil, fmt.Errorf("GetCells: %w", err)
	}

	var out []ConventionalCellInfo
	for _, r := range related {
		cells, err := cellsForUB(r, cellType, centering)
		if err != nil {
			return nil, fmt.Errorf("GetCells: %w", err)
		}
		for _, info := range cells {
			out = addIfBest(out, info)
		}
	}

	return out, nil
}

// GetCellsAll runs GetCells for each Bravais lattice, the triclinic one only
// when allowTriclinic is set. With bestOnly each lattice contributes just its
// lowest-error form.
func GetCellsAll(ub geometry.Mat3, bestOnly, allowTriclinic bool, opts ...Option) ([]ConventionalCellInfo, error) {
	lattices := bravais[:]
	if !allowTriclinic {
		lattices = lattices[:len(lattices)-1]
	}

	var out []ConventionalCellInfo
	for _, bl := range lattices {
		cells, err := GetCells(ub, string(bl.cellType), string(bl.centering), opts...)
		if err != nil {
			return nil, err
		}
		if bestOnly {
			best, ok := CellBestError(cells, true)
			if !ok {
				continue
			}
			cells = []ConventionalCellInfo{best}
		}
		for _, info := range cells {
			out = addIfBest(out, info)
		}
	}

	return out, nil
}

// CellForForm returns form applied to whichever sign-related UB of ub fits it
// best.
func CellForForm(ub geometry.Mat3, form int, opts ...Option) (ConventionalCellInfo, error) {
	const op = "CellForForm"
	if form < 1 || form > NumForms {
		return ConventionalCellInfo{}, fmt.Errorf("%s: form %d outside [1,%d]: %w", op, form, NumForms, indexing.ErrBadParameter)
	}
	o := gatherOptions(opts...)
	related, err := SignRelatedUBs(ub, o.angleTolerance)
	if err != nil {
		return ConventionalCellInfo{}, fmt.Errorf("%s: %w", op, err)
	}

	var (
		best  ConventionalCellInfo
		found bool
	)
	for _, r := range related {
		info, err := NewConventionalCellInfo(r, form)
		if err != nil {
			return ConventionalCellInfo{}, fmt.Errorf("%s: %w", op, err)
		}
		if !found || info.Error < best.Error {
			best, found = info, true
		}
	}

	return best, nil
}

// CellBestError returns the cell with the lowest error; triclinic cells count
// only with useTriclinic. Ties keep the earlier cell.
func CellBestError(cells []ConventionalCellInfo, useTriclinic bool) (ConventionalCellInfo, bool) {
	best, found := ConventionalCellInfo{}, false
	for _, c := range cells {
		if !useTriclinic && c.CellType == Triclinic {
			continue
		}
		if !found || c.Error < best.Error {
			best, found = c, true
		}
	}

	return best, found
}

// CellHighestSymmetry returns the lowest-error cell of the most symmetric
// lattice system present, in the order cubic, hexagonal, rhombohedral,
// tetragonal, orthorhombic, monoclinic, triclinic.
func CellHighestSymmetry(cells []ConventionalCellInfo) (ConventionalCellInfo, bool) {
	for _, t := range symmetryOrder {
		best, found := ConventionalCellInfo{}, false
		for _, c := range cells {
			if c.CellType == t && (!found || c.Error < best.Error) {
				best, found = c, true
			}
		}
		if found {
			return best, true
		}
	}

	return ConventionalCellInfo{}, false
}

// CellShortestSides returns the cell with the smallest a + b + c.
func CellShortestSides(cells []ConventionalCellInfo) (ConventionalCellInfo, bool) {
	if len(cells) == 0 {
		return ConventionalCellInfo{}, false
	}
	best := cells[0]
	for _, c := range cells[1:] {
		if c.SumOfSides() < best.SumOfSides() {
			best = c
		}
	}

	return best, true
}

// RemoveBadForms keeps the cells whose error is at most factor times the
// lowest error of a non-triclinic cell. Without non-triclinic cells nothing
// is removed.
func RemoveBadForms(cells []ConventionalCellInfo, factor float64) []ConventionalCellInfo {
	lowest := math.Inf(1)
	for _, c := range cells {
		if c.CellType != Triclinic && c.Error < lowest {
			lowest = c.Error
		}
	}
	if math.IsInf(lowest, 1) {
		return cells
	}

	return RemoveHighErrorForms(cells, factor*lowest)
}

// RemoveHighErrorForms keeps the cells with error at most level.
func RemoveHighErrorForms(cells []ConventionalCellInfo, level float64) []ConventionalCellInfo {
	out := cells[:0:0]
	for _, c := range cells {
		if c.Error <= level {
			out = append(out, c)
		}
	}

	return out
}

// cellsForUB builds one ConventionalCellInfo for every form of the table
// for ub's lattice that passes the cellType and centering filters ("" passes
// all). Form 0 is the unused table slot and is skipped.
func cellsForUB(ub geometry.Mat3, cellType, centering string) ([]ConventionalCellInfo, error) {
	l, err := geometry.LatticeFromUB(ub)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, indexing.ErrInvalidUB)
	}
	table, err := Table(l)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, indexing.ErrInvalidUB)
	}

	var out []ConventionalCellInfo
	for n := 1; n < len(table); n++ {
		if !table[n].matches(cellType, centering) {
			continue
		}
		info, err := NewConventionalCellInfo(ub, n)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}

	return out, nil
}

// addIfBest keeps at most one entry per form number: it replaces the entry
// with the same form when info has a lower error, or appends info when its
// form is new. cells is modified in place.
func addIfBest(cells []ConventionalCellInfo, info ConventionalCellInfo) []ConventionalCellInfo {
	for i, c := range cells {
		if c.Form == info.Form {
			if c.Error > info.Error {
				cells[i] = info
			}
			return cells
		}
	}

	return append(cells, info)
}
