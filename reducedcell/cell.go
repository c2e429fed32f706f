// SPDX-License-Identifier: MIT

package reducedcell

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/katalvlaran/ubindex/geometry"
	"github.com/katalvlaran/ubindex/indexing"
)

// matchTieTolerance (Å) is the weighted-distance difference below which two
// rows count as equally good; the lower form number wins.
const matchTieTolerance = 1e-9

// Cell is one row of the reduced-form table evaluated for a concrete cell.
type Cell struct {
	form      int
	scalars   [6]float64
	transform geometry.Mat3
	cellType  CellType
	centering Centering
}

// NewCell evaluates row form (0..NumForms) for the cell a, b, c, α, β, γ
// (Å, degrees). Row 0 holds the scalars of the cell itself.
func NewCell(form int, a, b, c, alpha, beta, gamma float64) (*Cell, error) {
	const op = "NewCell"
	if form < 0 || form > NumForms {
		return nil, fmt.Errorf("%s: form %d outside [0,%d]: %w", op, form, NumForms, indexing.ErrBadParameter)
	}
	l, err := geometry.NewLattice(a, b, c, alpha, beta, gamma)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return newCell(form, l), nil
}

// NewCellFromUB evaluates row form for the real-space cell of ub.
func NewCellFromUB(form int, ub geometry.Mat3) (*Cell, error) {
	l, err := geometry.LatticeFromUB(ub)
	if err != nil {
		return nil, fmt.Errorf("NewCellFromUB: %v: %w", err, indexing.ErrInvalidUB)
	}

	return NewCell(form, l.A, l.B, l.C, l.Alpha, l.Beta, l.Gamma)
}

// newCell expects a validated lattice and a form in range.
func newCell(n int, l geometry.Lattice) *Cell {
	g := l.Metric()
	s := scalars{
		aa: g[0][0], bb: g[1][1], cc: g[2][2],
		bc: g[1][2], ac: g[0][2], ab: g[0][1],
	}
	if n > 0 {
		s.bc, s.ac, s.ab = math.Abs(s.bc), math.Abs(s.ac), math.Abs(s.ab)
	}

	row := forms[n]
	lengths := templateLengths(n, s)
	products := row.products(s)
	cell := &Cell{
		form:      n,
		scalars:   [6]float64{lengths[0], lengths[1], lengths[2], products[0], products[1], products[2]},
		transform: row.transform,
		cellType:  row.cellType,
		centering: row.centering,
	}
	if m, centering, ok := row.footnote.apply(s); ok {
		cell.transform = m.Mul(row.transform)
		cell.centering = centering
	}

	return cell
}

// Table evaluates all rows 0..NumForms for l.
func Table(l geometry.Lattice) ([]*Cell, error) {
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("Table: %w", err)
	}
	table := make([]*Cell, NumForms+1)
	for n := range table {
		table[n] = newCell(n, l)
	}

	return table, nil
}

// Form returns the row number, 0 for the observed cell.
func (c *Cell) Form() int { return c.form }

// Scalars returns a², b², c², b·c, a·c, a·b as this row prescribes them.
func (c *Cell) Scalars() [6]float64 { return c.scalars }

// Transform maps the reduced cell edges to the conventional ones.
func (c *Cell) Transform() geometry.Mat3 { return c.transform }

// CellType returns the lattice system of the row.
func (c *Cell) CellType() CellType { return c.cellType }

// Centering returns the centering of the conventional cell.
func (c *Cell) Centering() Centering { return c.centering }

// String formats the row the way the comparison report prints it.
func (c *Cell) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d  %6.3f %6.3f %6.3f %6.3f %6.3f %6.3f  %s %s",
		c.form, c.scalars[0], c.scalars[1], c.scalars[2], c.scalars[3], c.scalars[4], c.scalars[5],
		c.cellType, c.centering)
	for i, row := range c.transform {
		fmt.Fprintf(&sb, "%2.0f%2.0f%2.0f", row[0], row[1], row[2])
		if i < 2 {
			sb.WriteString(" | ")
		}
	}

	return sb.String()
}

// Distance is the largest absolute difference between the six scalars.
func (c *Cell) Distance(other *Cell) float64 {
	var worst float64
	for i := range c.scalars {
		if d := math.Abs(c.scalars[i] - other.scalars[i]); d > worst {
			worst = d
		}
	}

	return worst
}

// WeightedDistance is the largest absolute difference between the edge
// lengths and the face-diagonal lengths |b−c|, |a−c|, |a−b| the two rows
// imply. A row whose scalars imply no real diagonal is at +Inf.
func (c *Cell) WeightedDistance(other *Cell) float64 {
	u, v := c.lengthScale(), other.lengthScale()
	var worst float64
	for i := range u {
		d := math.Abs(u[i] - v[i])
		if math.IsNaN(d) {
			return math.Inf(1)
		}
		if d > worst {
			worst = d
		}
	}

	return worst
}

// lengthScale converts the scalars to edge and face-diagonal lengths (law of
// cosines). Impossible diagonals come back as NaN.
func (c *Cell) lengthScale() [6]float64 {
	s := c.scalars

	return [6]float64{
		math.Sqrt(s[0]),
		math.Sqrt(s[1]),
		math.Sqrt(s[2]),
		math.Sqrt(s[1] + s[2] - 2*s[3]),
		math.Sqrt(s[0] + s[2] - 2*s[4]),
		math.Sqrt(s[0] + s[1] - 2*s[5]),
	}
}

// matches reports whether the row passes the type and centering filters.
// An empty filter accepts anything; cellType compares case-insensitively and
// centering is a prefix of "F Centered", "P Centered", ...
func (c *Cell) matches(cellType, centering string) bool {
	if cellType != "" && !strings.EqualFold(string(c.cellType), cellType) {
		return false
	}

	return centering == "" || strings.HasPrefix(c.centering.String(), centering)
}

// BestMatch returns the row in 1..NumForms of table closest to row 0 by
// WeightedDistance. An empty cellType or centering accepts any row;
// otherwise cellType must match case-insensitively and centering must be a
// prefix of the row's centering ("F", "F Centered"). Rows within 1e-9 Å of
// each other tie and the lower form wins. It returns -1, false when no row
// passes the filters.
func BestMatch(table []*Cell, cellType, centering string) (int, bool) {
	if len(table) == 0 {
		return -1, false
	}
	best, bestErr := -1, math.Inf(1)
	for n := 1; n < len(table); n++ {
		if !table[n].matches(cellType, centering) {
			continue
		}
		d := table[n].WeightedDistance(table[0])
		if d < bestErr-matchTieTolerance {
			best, bestErr = n, d
		}
	}

	return best, best >= 0
}

// ModifyLatticeParameters returns the parameters of the cell whose edges are
// the rows of t·(a, b, c): G' = t·G·tᵀ.
func ModifyLatticeParameters(l geometry.Lattice, t geometry.Mat3) (geometry.Lattice, error) {
	g := t.Mul(l.Metric()).Mul(t.Transpose())
	out, err := geometry.LatticeFromMetric(g)
	if err != nil {
		return geometry.Lattice{}, fmt.Errorf("ModifyLatticeParameters: %w", err)
	}

	return out, nil
}

// WriteComparison writes, for every row within cutoff of row 0, its weighted
// and plain distance, type, centering and transformed lattice parameters.
func WriteComparison(w io.Writer, table []*Cell, l geometry.Lattice, cutoff float64) error {
	headers := map[int]string{
		1:  "a = b = c",
		9:  "a = b",
		18: "b = c",
		26: "a <= b <= c",
	}
	if _, err := fmt.Fprintln(w, "Weighted Distances for entries 1 to 44"); err != nil {
		return err
	}
	for n := 1; n < len(table); n++ {
		if h, ok := headers[n]; ok {
			if _, err := fmt.Fprintf(w, "%-14s........................\n", h); err != nil {
				return err
			}
		}
		wd := table[n].WeightedDistance(table[0])
		if !(wd < cutoff) {
			continue
		}
		lp, err := ModifyLatticeParameters(l, table[n].transform)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%2d  %9.6f  %9.6f  %-14s  %-14s  %6.3f  %6.3f  %6.3f   %8.2f  %8.2f  %8.2f\n",
			n, wd, table[n].Distance(table[0]), table[n].cellType, table[n].centering,
			lp.A, lp.B, lp.C, lp.Alpha, lp.Beta, lp.Gamma)
		if err != nil {
			return err
		}
	}

	return nil
}
