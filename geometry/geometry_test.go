package geometry_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/ubindex/geometry"
)

// TestVec3_Basics covers the arithmetic used by every scan.
func TestVec3_Basics(t *testing.T) {
	a := geometry.V(1, 2, 3)
	b := geometry.V(-3, 2, 1)

	assert.Equal(t, geometry.V(-2, 4, 4), a.Add(b))
	assert.Equal(t, geometry.V(4, 0, 2), a.Sub(b))
	assert.Equal(t, 4.0, a.Dot(b))
	assert.Equal(t, geometry.V(-4, -10, 8), a.Cross(b))
	assert.InDelta(t, math.Sqrt(14), a.Norm(), 1e-12)
	assert.InDelta(t, 1.0, a.Normalize().Norm(), 1e-12)
	assert.True(t, geometry.Vec3{}.IsZero())
	assert.Equal(t, geometry.Vec3{}, geometry.Vec3{}.Normalize(), "zero stays zero")
}

// TestRoundHalfUp checks ties go toward +Inf.
func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, 3.0, geometry.RoundHalfUp(2.5))
	assert.Equal(t, -2.0, geometry.RoundHalfUp(-2.5))
	assert.Equal(t, -3.0, geometry.RoundHalfUp(-2.51))
	assert.Equal(t, geometry.V(2, -3, -3), geometry.V(2.09, -3.09, -2.91).Round())
}

// TestAngle checks degrees, clamping and the zero-vector policy.
func TestAngle(t *testing.T) {
	assert.InDelta(t, 90.0, geometry.Angle(geometry.V(1, 0, 0), geometry.V(0, 5, 0)), 1e-12)
	assert.InDelta(t, 0.0, geometry.Angle(geometry.V(1, 1, 1), geometry.V(2, 2, 2)), 1e-6)
	assert.InDelta(t, 180.0, geometry.Angle(geometry.V(1, 1, 1), geometry.V(-2, -2, -2)), 1e-6)
	assert.True(t, math.IsNaN(geometry.Angle(geometry.Vec3{}, geometry.V(1, 0, 0))))
}

// TestMat3_Inverse checks a round trip and the singular sentinel.
func TestMat3_Inverse(t *testing.T) {
	m := geometry.Mat3{{2, 1, 0}, {0, 3, 1}, {1, 0, 4}}
	inv, err := m.Inverse()
	require.NoError(t, err)
	assert.True(t, m.Mul(inv).ApproxEqual(geometry.Identity(), 1e-12))
	assert.InDelta(t, 25.0, m.Det(), 1e-12)

	_, err = geometry.Mat3{{1, 2, 3}, {2, 4, 6}, {0, 0, 1}}.Inverse()
	assert.ErrorIs(t, err, geometry.ErrSingular)

	_, err = geometry.Mat3{{math.NaN(), 0, 0}, {0, 1, 0}, {0, 0, 1}}.Inverse()
	assert.ErrorIs(t, err, geometry.ErrSingular)
}

// TestAffine_Inverse checks that the inverse map undoes the shift.
func TestAffine_Inverse(t *testing.T) {
	a := geometry.Affine{M: geometry.Mat3{{1, 0, 0}, {0, 2, 0}, {0, 0, 4}}, Shift: geometry.V(0.1, -0.2, 0.3)}
	inv, err := a.Inverse()
	require.NoError(t, err)
	hkl := geometry.V(1, -2, 3)
	assert.True(t, inv.Apply(a.Apply(hkl)).ApproxEqual(hkl, 1e-12))
}

// TestRotation checks the right-hand rule and the zero-axis error.
func TestRotation(t *testing.T) {
	v, err := geometry.Rotate(geometry.V(1, 0, 0), geometry.V(0, 0, 1), 90)
	require.NoError(t, err)
	assert.True(t, v.ApproxEqual(geometry.V(0, 1, 0), 1e-12))

	_, err = geometry.Rotation(geometry.Vec3{}, 10)
	assert.ErrorIs(t, err, geometry.ErrZeroVector)

	u := geometry.EulerRotation(30, 40, 50)
	assert.True(t, u.Mul(u.Transpose()).ApproxEqual(geometry.Identity(), 1e-12), "rotation is orthogonal")
	assert.InDelta(t, 1.0, u.Det(), 1e-12)
}

// TestCellEdgeC reproduces a c edge at prescribed angles to a and b.
func TestCellEdgeC(t *testing.T) {
	a := geometry.V(1, 2, 3)
	b := geometry.V(-3, 2, 1)
	gamma := geometry.Angle(a, b)

	c := geometry.CellEdgeC(a, b, 10, 123, 74, gamma)
	assert.InDelta(t, 10.0, c.Norm(), 1e-3)
	assert.InDelta(t, 123.0, geometry.Angle(c, b), 1e-3)
	assert.InDelta(t, 74.0, geometry.Angle(c, a), 1e-3)
}

// TestLattice_RoundTrip builds B from parameters and reads them back from UB.
func TestLattice_RoundTrip(t *testing.T) {
	l, err := geometry.NewLattice(6.6, 9.7, 9.9, 84, 71, 70)
	require.NoError(t, err)

	ub, err := l.BMatrix(false)
	require.NoError(t, err)
	got, err := geometry.LatticeFromUB(ub)
	require.NoError(t, err)

	assert.InDelta(t, 6.6, got.A, 1e-9)
	assert.InDelta(t, 9.7, got.B, 1e-9)
	assert.InDelta(t, 9.9, got.C, 1e-9)
	assert.InDelta(t, 84.0, got.Alpha, 1e-9)
	assert.InDelta(t, 71.0, got.Beta, 1e-9)
	assert.InDelta(t, 70.0, got.Gamma, 1e-9)
	assert.InDelta(t, l.Volume, got.Volume, 1e-6)
	assert.True(t, geometry.IsRightHanded(ub))

	fromG, err := geometry.LatticeFromMetric(l.Metric())
	require.NoError(t, err)
	assert.InDelta(t, 84.0, fromG.Alpha, 1e-9)
	assert.InDelta(t, l.Volume, fromG.Volume, 1e-6)

	ub2pi, err := l.BMatrix(true)
	require.NoError(t, err)
	assert.True(t, ub2pi.ApproxEqual(ub.Scale(2*math.Pi), 1e-12))
}

// TestLattice_Validate rejects degenerate parameters.
func TestLattice_Validate(t *testing.T) {
	_, err := geometry.NewLattice(0, 1, 1, 90, 90, 90)
	assert.ErrorIs(t, err, geometry.ErrBadLattice)
	_, err = geometry.NewLattice(1, 1, 1, 90, 180, 90)
	assert.ErrorIs(t, err, geometry.ErrBadLattice)
}

// TestUBFromABC checks the rows-of-inverse convention.
func TestUBFromABC(t *testing.T) {
	a, b, c := geometry.V(5, 0, 0), geometry.V(0, 6, 0), geometry.V(0, 0, 7)
	ub, err := geometry.UBFromABC(a, b, c)
	require.NoError(t, err)
	assert.True(t, ub.ApproxEqual(geometry.Mat3{{0.2, 0, 0}, {0, 1.0 / 6, 0}, {0, 0, 1.0 / 7}}, 1e-12))

	ra, rb, rc, err := geometry.ABCFromUB(ub)
	require.NoError(t, err)
	assert.True(t, ra.ApproxEqual(a, 1e-12))
	assert.True(t, rb.ApproxEqual(b, 1e-12))
	assert.True(t, rc.ApproxEqual(c, 1e-12))
}

// TestRank separates collinear, coplanar and spanning sets.
func TestRank(t *testing.T) {
	var line, plane []geometry.Vec3
	for i := 1; i <= 6; i++ {
		line = append(line, geometry.V(0.1*float64(i), 0, 0))
		plane = append(plane, geometry.V(0.1*float64(i), 0.05*float64(i%3), 0))
	}
	assert.Equal(t, 0, geometry.Rank(nil, 1e-6))
	assert.Equal(t, 0, geometry.Rank([]geometry.Vec3{{}, {}}, 1e-6))
	assert.Equal(t, 1, geometry.Rank(line, 1e-6))
	assert.Equal(t, 2, geometry.Rank(plane, 1e-6))
	assert.Equal(t, 3, geometry.Rank(append(plane, geometry.V(0, 0, 0.2)), 1e-6))
	assert.Equal(t, 2, geometry.Rank([]geometry.Vec3{{1, 0, 0}, {0, 1, 0}}, 1e-6))
}
