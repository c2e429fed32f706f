// SPDX-License-Identifier: MIT

package reducedcell

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/ubindex/geometry"
	"github.com/katalvlaran/ubindex/indexing"
)

// ConventionalCellInfo is a UB together with one reduced form applied to it.
type ConventionalCellInfo struct {
	// Form is the table row, 1..NumForms.
	Form      int
	CellType  CellType
	Centering Centering

	// Error is the weighted distance between the cell of ReducedUB and the
	// form's template, in Å.
	Error float64

	// ReducedUB is the UB the form was evaluated on.
	ReducedUB geometry.Mat3

	// Transform maps the reduced edges to the conventional ones: the rows of
	// Transform·ReducedUB⁻¹ are the conventional a, b, c.
	Transform geometry.Mat3

	// UB = ReducedUB·Transform⁻¹ is the conventional UB.
	UB geometry.Mat3

	// Lattice holds the parameters of UB.
	Lattice geometry.Lattice
}

// NewConventionalCellInfo applies form to ub. Orthorhombic cells are
// relabelled so that a ≤ b ≤ c, keeping the cell right handed.
func NewConventionalCellInfo(ub geometry.Mat3, form int) (ConventionalCellInfo, error) {
	const op = "NewConventionalCellInfo"
	if form < 1 || form > NumForms {
		return ConventionalCellInfo{}, fmt.Errorf("%s: form %d outside [1,%d]: %w", op, form, NumForms, indexing.ErrBadParameter)
	}
	reduced, err := geometry.LatticeFromUB(ub)
	if err != nil {
		return ConventionalCellInfo{}, fmt.Errorf("%s: %v: %w", op, err, indexing.ErrInvalidUB)
	}
	if err := reduced.Validate(); err != nil {
		return ConventionalCellInfo{}, fmt.Errorf("%s: %v: %w", op, err, indexing.ErrInvalidUB)
	}

	observed := newCell(0, reduced)
	template := newCell(form, reduced)
	info := ConventionalCellInfo{
		Form:      form,
		CellType:  template.cellType,
		Centering: template.centering,
		Error:     observed.WeightedDistance(template),
		ReducedUB: ub,
		Transform: template.transform,
	}
	if info.CellType == Orthorhombic {
		info.Transform = sidesIncreasing(info.Transform, reduced)
	}

	inv, err := info.Transform.Inverse()
	if err != nil {
		return ConventionalCellInfo{}, fmt.Errorf("%s: transform of form %d: %w", op, form, err)
	}
	info.UB = ub.Mul(inv)
	if info.Lattice, err = geometry.LatticeFromUB(info.UB); err != nil {
		return ConventionalCellInfo{}, fmt.Errorf("%s: %v: %w", op, err, indexing.ErrInvalidUB)
	}

	return info, nil
}

// SumOfSides returns a + b + c of the conventional cell.
func (c ConventionalCellInfo) SumOfSides() float64 {
	return c.Lattice.A + c.Lattice.B + c.Lattice.C
}

// String prints form, error, type, centering and the conventional lattice.
func (c ConventionalCellInfo) String() string {
	return fmt.Sprintf("Form #%2d  Error: %7.4f  %-12s %-12s %8.4f %8.4f %8.4f  %8.3f %8.3f %8.3f  %9.2f",
		c.Form, c.Error, c.CellType, c.Centering,
		c.Lattice.A, c.Lattice.B, c.Lattice.C, c.Lattice.Alpha, c.Lattice.Beta, c.Lattice.Gamma,
		c.Lattice.Volume)
}

// sidesIncreasing premultiplies t by the permutation ordering the edges of
// t·(a, b, c) by length. An odd permutation also flips the last edge.
func sidesIncreasing(t geometry.Mat3, l geometry.Lattice) geometry.Mat3 {
	g := t.Mul(l.Metric()).Mul(t.Transpose())
	order := []int{0, 1, 2}
	sort.SliceStable(order, func(i, j int) bool { return g[order[i]][order[i]] < g[order[j]][order[j]] })

	var p geometry.Mat3
	for row, col := range order {
		p[row][col] = 1
	}
	if p.Det() < 0 {
		p[2] = geometry.Vec3(p[2]).Neg()
	}

	return p.Mul(t)
}
