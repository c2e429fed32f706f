package reducedcell_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/ubindex/geometry"
	"github.com/katalvlaran/ubindex/indexing"
	"github.com/katalvlaran/ubindex/reducedcell"
)

// natrolite is the Niggli cell of natrolite, a face-centred orthorhombic
// crystal with conventional cell 6.57 × 18.29 × 18.69 Å.
func natrolite(t testing.TB) geometry.Lattice {
	t.Helper()
	l, err := geometry.NewLattice(6.571133, 9.717818, 9.879704, 83.64516, 71.04537, 70.25170)
	require.NoError(t, err)

	return l
}

// fccPrimitiveUB is the 60° rhombohedral cell of a 5 Å face-centred cubic lattice.
func fccPrimitiveUB(t testing.TB) geometry.Mat3 {
	t.Helper()
	ub, err := geometry.UBFromABC(
		geometry.V(0, 2.5, 2.5),
		geometry.V(2.5, 0, 2.5),
		geometry.V(2.5, 2.5, 0),
	)
	require.NoError(t, err)

	return ub
}

// cubicUB is a 5 Å primitive cubic cell in a general orientation.
func cubicUB(t testing.TB) geometry.Mat3 {
	t.Helper()
	l, err := geometry.NewLattice(5, 5, 5, 90, 90, 90)
	require.NoError(t, err)
	b, err := l.BMatrix(false)
	require.NoError(t, err)

	return geometry.EulerRotation(40, 30, 100).Mul(b)
}

func table(t *testing.T, a, b, c, alpha, beta, gamma float64) []*reducedcell.Cell {
	t.Helper()
	l, err := geometry.NewLattice(a, b, c, alpha, beta, gamma)
	require.NoError(t, err)
	tb, err := reducedcell.Table(l)
	require.NoError(t, err)
	require.Len(t, tb, reducedcell.NumForms+1)

	return tb
}

// TestBestMatch_FaceCentredCubic matches the 60° cell to form 1 exactly.
func TestBestMatch_FaceCentredCubic(t *testing.T) {
	a := 5 / math.Sqrt2
	tb := table(t, a, a, a, 60, 60, 60)

	form, ok := reducedcell.BestMatch(tb, "", "")
	require.True(t, ok)
	assert.Equal(t, 1, form)
	assert.InDelta(t, 0, tb[form].WeightedDistance(tb[0]), 1e-12)
	assert.Equal(t, reducedcell.Cubic, tb[form].CellType())
	assert.Equal(t, reducedcell.FCentered, tb[form].Centering())
}

// TestBestMatch_Filters restricts the rows by type and centering.
func TestBestMatch_Filters(t *testing.T) {
	tb := table(t, 5, 5, 5, 90, 90, 90)

	form, ok := reducedcell.BestMatch(tb, "cubic", "P")
	require.True(t, ok)
	assert.Equal(t, 3, form)
	assert.InDelta(t, 0, tb[form].WeightedDistance(tb[0]), 1e-12)

	form, ok = reducedcell.BestMatch(tb, "Cubic", "I Centered")
	require.True(t, ok)
	assert.Equal(t, 5, form)

	form, ok = reducedcell.BestMatch(tb, "Hexagonal", "F")
	assert.False(t, ok)
	assert.Equal(t, -1, form)

	form, ok = reducedcell.BestMatch(nil, "", "")
	assert.False(t, ok)
	assert.Equal(t, -1, form)
}

// TestBestMatch_Natrolite finds the Bravais forms of a real reduced cell.
func TestBestMatch_Natrolite(t *testing.T) {
	tb, err := reducedcell.Table(natrolite(t))
	require.NoError(t, err)

	cases := []struct {
		cellType, centering string
		form                int
		distance            float64
	}{
		{"", "", 31, 0},
		{"Orthorhombic", "F", 26, 0.0507162},
		{"Monoclinic", "C", 29, 0.0063541},
		{"Monoclinic", "I", 27, 0.0507162},
		{"Tetragonal", "", 18, 0.2126022},
		{"Cubic", "", 5, 3.3085710},
	}
	for _, tc := range cases {
		form, ok := reducedcell.BestMatch(tb, tc.cellType, tc.centering)
		require.True(t, ok, "%s %s", tc.cellType, tc.centering)
		assert.Equal(t, tc.form, form, "%s %s", tc.cellType, tc.centering)
		assert.InDelta(t, tc.distance, tb[form].WeightedDistance(tb[0]), 1e-6)
	}
}

// TestDistance_Symmetric compares every pair of rows both ways.
func TestDistance_Symmetric(t *testing.T) {
	tb, err := reducedcell.Table(natrolite(t))
	require.NoError(t, err)

	for i := range tb {
		assert.Zero(t, tb[i].Distance(tb[i]))
		for j := range tb {
			assert.Equal(t, tb[i].WeightedDistance(tb[j]), tb[j].WeightedDistance(tb[i]), "%d %d", i, j)
			assert.Equal(t, tb[i].Distance(tb[j]), tb[j].Distance(tb[i]), "%d %d", i, j)
		}
	}
	assert.InDelta(t, 43.152883, tb[44].Distance(tb[0]), 1e-5)
}

// TestFootnotes switches the centering and transform of form 10.
func TestFootnotes(t *testing.T) {
	// c·c < 4|b·c|
	cell, err := reducedcell.NewCell(10, 5, 5, 6, 70, 70, 80)
	require.NoError(t, err)
	assert.Equal(t, reducedcell.ICentered, cell.Centering())
	assert.Equal(t, geometry.Mat3{{0, 0, 1}, {1, -1, 0}, {1, 1, -1}}, cell.Transform())

	cell, err = reducedcell.NewCell(10, 5, 5, 6, 85, 85, 80)
	require.NoError(t, err)
	assert.Equal(t, reducedcell.CCentered, cell.Centering())
	assert.Equal(t, geometry.Mat3{{1, 1, 0}, {1, -1, 0}, {0, 0, -1}}, cell.Transform())
	assert.Equal(t, reducedcell.Monoclinic, cell.CellType())
	assert.Equal(t, 10, cell.Form())
}

// TestNewCell_Errors rejects bad forms, bad cells and singular UBs.
func TestNewCell_Errors(t *testing.T) {
	_, err := reducedcell.NewCell(45, 5, 5, 5, 90, 90, 90)
	assert.ErrorIs(t, err, indexing.ErrBadParameter)

	_, err = reducedcell.NewCell(-1, 5, 5, 5, 90, 90, 90)
	assert.ErrorIs(t, err, indexing.ErrBadParameter)

	_, err = reducedcell.NewCell(1, -5, 5, 5, 90, 90, 90)
	assert.ErrorIs(t, err, geometry.ErrBadLattice)

	_, err = reducedcell.NewCell(1, 5, 5, 5, 90, 180, 90)
	assert.ErrorIs(t, err, geometry.ErrBadLattice)

	_, err = reducedcell.NewCellFromUB(1, geometry.Mat3{})
	assert.ErrorIs(t, err, indexing.ErrInvalidUB)

	_, err = reducedcell.Table(geometry.Lattice{A: 1})
	assert.ErrorIs(t, err, geometry.ErrBadLattice)
}

// TestNewCellFromUB reads the observed scalars off a UB.
func TestNewCellFromUB(t *testing.T) {
	cell, err := reducedcell.NewCellFromUB(0, fccPrimitiveUB(t))
	require.NoError(t, err)

	s := cell.Scalars()
	for i, want := range [6]float64{12.5, 12.5, 12.5, 6.25, 6.25, 6.25} {
		assert.InDelta(t, want, s[i], 1e-9, "scalar %d", i)
	}
	assert.Equal(t, reducedcell.NoType, cell.CellType())
	assert.Equal(t, "None", cell.Centering().String())
	assert.Contains(t, cell.String(), "12.500")
}

// TestModifyLatticeParameters turns the primitive fcc cell into the cube.
func TestModifyLatticeParameters(t *testing.T) {
	a := 5 / math.Sqrt2
	l, err := geometry.NewLattice(a, a, a, 60, 60, 60)
	require.NoError(t, err)
	cell, err := reducedcell.NewCell(1, a, a, a, 60, 60, 60)
	require.NoError(t, err)

	got, err := reducedcell.ModifyLatticeParameters(l, cell.Transform())
	require.NoError(t, err)
	for i, want := range []float64{5, 5, 5, 90, 90, 90, 125} {
		assert.InDelta(t, want, got.Slice()[i], 1e-9, "parameter %d", i)
	}

	_, err = reducedcell.ModifyLatticeParameters(l, geometry.Mat3{})
	assert.ErrorIs(t, err, geometry.ErrBadLattice)
}

// TestSignRelatedUBs adds reflections only for angles near 90°.
func TestSignRelatedUBs(t *testing.T) {
	related, err := reducedcell.SignRelatedUBs(cubicUB(t), 2)
	require.NoError(t, err)
	require.Len(t, related, 4)
	assert.Equal(t, cubicUB(t), related[0])
	for _, ub := range related {
		assert.Greater(t, ub.Det(), 0.0, "reflections keep the handedness")
	}

	related, err = reducedcell.SignRelatedUBs(cubicUB(t), 0)
	require.NoError(t, err)
	assert.Len(t, related, 1)

	related, err = reducedcell.SignRelatedUBs(fccPrimitiveUB(t), 2)
	require.NoError(t, err)
	assert.Len(t, related, 1)

	_, err = reducedcell.SignRelatedUBs(geometry.Mat3{}, 2)
	assert.ErrorIs(t, err, indexing.ErrInvalidUB)
}

// TestGetCells_FaceCentredCubic recovers the cube from the primitive cell.
func TestGetCells_FaceCentredCubic(t *testing.T) {
	ub := fccPrimitiveUB(t)
	cells, err := reducedcell.GetCells(ub, "Cubic", "F")
	require.NoError(t, err)
	require.Len(t, cells, 1)

	info := cells[0]
	assert.Equal(t, 1, info.Form)
	assert.Equal(t, reducedcell.Cubic, info.CellType)
	assert.Equal(t, reducedcell.FCentered, info.Centering)
	assert.InDelta(t, 0, info.Error, 1e-9)
	assert.Equal(t, ub, info.ReducedUB)
	for i, want := range []float64{5, 5, 5, 90, 90, 90, 125} {
		assert.InDelta(t, want, info.Lattice.Slice()[i], 1e-9, "parameter %d", i)
	}
	assert.InDelta(t, 15, info.SumOfSides(), 1e-9)
	assert.True(t, info.UB.Mul(info.Transform).ApproxEqual(ub, 1e-12))
	assert.Contains(t, info.String(), "Form # 1")
}

// TestGetCells_Natrolite relabels the orthorhombic cell with increasing sides.
func TestGetCells_Natrolite(t *testing.T) {
	ub, err := natrolite(t).BMatrix(false)
	require.NoError(t, err)

	cells, err := reducedcell.GetCells(ub, "orthorhombic", "")
	require.NoError(t, err)
	require.NotEmpty(t, cells)
	for _, c := range cells {
		assert.Equal(t, reducedcell.Orthorhombic, c.CellType)
		assert.LessOrEqual(t, c.Lattice.A, c.Lattice.B)
		assert.LessOrEqual(t, c.Lattice.B, c.Lattice.C)
		assert.Greater(t, c.Lattice.Volume, 0.0)
	}

	best, ok := reducedcell.CellBestError(cells, false)
	require.True(t, ok)
	assert.Equal(t, 26, best.Form)
	assert.InDelta(t, 0.0507162, best.Error, 1e-6)
	assert.InDelta(t, 6.571133, best.Lattice.A, 1e-5)
	assert.InDelta(t, 18.292550, best.Lattice.B, 1e-5)
	assert.InDelta(t, 18.688601, best.Lattice.C, 1e-5)
	assert.InDelta(t, 89.939857, best.Lattice.Alpha, 1e-4)
	assert.InDelta(t, 90.468753, best.Lattice.Beta, 1e-4)
	assert.InDelta(t, 90.012684, best.Lattice.Gamma, 1e-4)

	info, err := reducedcell.CellForForm(ub, 26)
	require.NoError(t, err)
	assert.Equal(t, best, info)

	_, err = reducedcell.CellForForm(ub, 0)
	assert.ErrorIs(t, err, indexing.ErrBadParameter)
}

// TestGetCellsAll keeps one best form per Bravais lattice.
func TestGetCellsAll(t *testing.T) {
	ub := cubicUB(t)

	cells, err := reducedcell.GetCellsAll(ub, true, false)
	require.NoError(t, err)
	assert.Len(t, cells, 14)
	for _, c := range cells {
		assert.NotEqual(t, reducedcell.Triclinic, c.CellType)
	}

	withTriclinic, err := reducedcell.GetCellsAll(ub, true, true)
	require.NoError(t, err)
	assert.Len(t, withTriclinic, 15)

	top, ok := reducedcell.CellHighestSymmetry(cells)
	require.True(t, ok)
	assert.Equal(t, 3, top.Form)
	assert.InDelta(t, 0, top.Error, 1e-9)

	all, err := reducedcell.GetCellsAll(ub, false, true)
	require.NoError(t, err)
	assert.Greater(t, len(all), len(withTriclinic))
	seen := map[int]bool{}
	for _, c := range all {
		assert.False(t, seen[c.Form], "form %d listed twice", c.Form)
		seen[c.Form] = true
	}
}

// TestSelectors runs the list helpers on a hand-made candidate list.
func TestSelectors(t *testing.T) {
	cells := []reducedcell.ConventionalCellInfo{
		{Form: 31, CellType: reducedcell.Triclinic, Error: 0, Lattice: geometry.Lattice{A: 6.6, B: 9.7, C: 9.9}},
		{Form: 29, CellType: reducedcell.Monoclinic, Error: 0.0064, Lattice: geometry.Lattice{A: 6.6, B: 18.3, C: 9.9}},
		{Form: 26, CellType: reducedcell.Orthorhombic, Error: 0.05, Lattice: geometry.Lattice{A: 6.6, B: 18.3, C: 18.7}},
		{Form: 5, CellType: reducedcell.Cubic, Error: 3.3, Lattice: geometry.Lattice{A: 11, B: 11, C: 11}},
	}

	best, ok := reducedcell.CellBestError(cells, true)
	require.True(t, ok)
	assert.Equal(t, 31, best.Form)

	best, ok = reducedcell.CellBestError(cells, false)
	require.True(t, ok)
	assert.Equal(t, 29, best.Form)

	top, ok := reducedcell.CellHighestSymmetry(cells)
	require.True(t, ok)
	assert.Equal(t, 5, top.Form)

	short, ok := reducedcell.CellShortestSides(cells)
	require.True(t, ok)
	assert.Equal(t, 31, short.Form)

	kept := reducedcell.RemoveBadForms(cells, 10)
	assert.Equal(t, []int{31, 29, 26}, forms(kept))
	assert.Len(t, cells, 4, "input is not modified")

	kept = reducedcell.RemoveHighErrorForms(cells, 0.01)
	assert.Equal(t, []int{31, 29}, forms(kept))

	triclinicOnly := cells[:1]
	assert.Equal(t, triclinicOnly, reducedcell.RemoveBadForms(triclinicOnly, 2))

	_, ok = reducedcell.CellBestError(nil, true)
	assert.False(t, ok)
	_, ok = reducedcell.CellHighestSymmetry(nil)
	assert.False(t, ok)
	_, ok = reducedcell.CellShortestSides(nil)
	assert.False(t, ok)
}

// TestWriteComparison lists the rows within the cutoff.
func TestWriteComparison(t *testing.T) {
	l := natrolite(t)
	tb, err := reducedcell.Table(l)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, reducedcell.WriteComparison(&buf, tb, l, 0.1))
	out := buf.String()
	assert.Contains(t, out, "Weighted Distances for entries 1 to 44")
	assert.Contains(t, out, "a <= b <= c")
	assert.Contains(t, out, "26   0.050716")
	assert.Contains(t, out, "F Centered")
	assert.NotContains(t, out, "Cubic")
}

// TestWithAngleTolerance_Panics guards the option range.
func TestWithAngleTolerance_Panics(t *testing.T) {
	assert.Panics(t, func() { reducedcell.WithAngleTolerance(-1) })
	assert.Panics(t, func() { reducedcell.WithAngleTolerance(90) })
	assert.NotPanics(t, func() { reducedcell.WithAngleTolerance(0) })

	cells, err := reducedcell.GetCells(cubicUB(t), "Cubic", "P", reducedcell.WithAngleTolerance(0))
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Equal(t, 3, cells[0].Form)
}

func forms(cells []reducedcell.ConventionalCellInfo) []int {
	out := make([]int, len(cells))
	for i, c := range cells {
		out[i] = c.Form
	}

	return out
}
