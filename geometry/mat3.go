// SPDX-License-Identifier: MIT

package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Mat3 is a row-major 3×3 matrix value.
type Mat3 [3][3]float64

// Identity returns the 3×3 identity.
func Identity() Mat3 { return Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} }

// FromRows builds a matrix whose rows are r0, r1, r2.
func FromRows(r0, r1, r2 Vec3) Mat3 {
	return Mat3{r0, r1, r2}
}

// FromCols builds a matrix whose columns are c0, c1, c2.
func FromCols(c0, c1, c2 Vec3) Mat3 {
	return FromRows(c0, c1, c2).Transpose()
}

// Row returns row i.
func (m Mat3) Row(i int) Vec3 { return Vec3(m[i]) }

// Col returns column j.
func (m Mat3) Col(j int) Vec3 { return Vec3{m[0][j], m[1][j], m[2][j]} }

// Transpose returns mᵀ.
func (m Mat3) Transpose() Mat3 {
	var t Mat3
	var i, j int
	for i = 0; i < 3; i++ {
		for j = 0; j < 3; j++ {
			t[j][i] = m[i][j]
		}
	}

	return t
}

// Mul returns the product m·n.
func (m Mat3) Mul(n Mat3) Mat3 {
	var (
		p       Mat3
		i, j, k int
		sum     float64
	)
	for i = 0; i < 3; i++ {
		for j = 0; j < 3; j++ {
			sum = 0
			for k = 0; k < 3; k++ {
				sum += m[i][k] * n[k][j]
			}
			p[i][j] = sum
		}
	}

	return p
}

// MulVec returns m·v.
func (m Mat3) MulVec(v Vec3) Vec3 {
	return Vec3{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

// Scale returns s·m.
func (m Mat3) Scale(s float64) Mat3 {
	var i, j int
	for i = 0; i < 3; i++ {
		for j = 0; j < 3; j++ {
			m[i][j] *= s
		}
	}

	return m
}

// IsFinite reports whether every entry is finite.
func (m Mat3) IsFinite() bool {
	return m.Row(0).IsFinite() && m.Row(1).IsFinite() && m.Row(2).IsFinite()
}

// ApproxEqual reports whether every entry of m and n differs by at most eps.
func (m Mat3) ApproxEqual(n Mat3, eps float64) bool {
	var i, j int
	for i = 0; i < 3; i++ {
		for j = 0; j < 3; j++ {
			if math.Abs(m[i][j]-n[i][j]) > eps {
				return false
			}
		}
	}

	return true
}

// Dense copies m into a new gonum Dense matrix.
func (m Mat3) Dense() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		m[0][0], m[0][1], m[0][2],
		m[1][0], m[1][1], m[1][2],
		m[2][0], m[2][1], m[2][2],
	})
}

// Mat3FromDense copies the leading 3×3 block of d.
func Mat3FromDense(d mat.Matrix) Mat3 {
	var (
		m    Mat3
		i, j int
	)
	for i = 0; i < 3; i++ {
		for j = 0; j < 3; j++ {
			m[i][j] = d.At(i, j)
		}
	}

	return m
}

// Det returns the determinant of m.
func (m Mat3) Det() float64 { return mat.Det(m.Dense()) }

// Inverse returns m⁻¹.
// Stage 1: reject non-finite input and an exactly zero determinant.
// Stage 2: invert with gonum; a condition error means the result cannot be trusted.
// Stage 3: reject a non-finite result.
func (m Mat3) Inverse() (Mat3, error) {
	if !m.IsFinite() {
		return Mat3{}, fmt.Errorf("Inverse: non-finite entries: %w", ErrSingular)
	}
	if m.Det() == 0 {
		return Mat3{}, fmt.Errorf("Inverse: zero determinant: %w", ErrSingular)
	}

	var inv mat.Dense
	if err := inv.Inverse(m.Dense()); err != nil {
		return Mat3{}, fmt.Errorf("Inverse: %v: %w", err, ErrSingular)
	}

	out := Mat3FromDense(&inv)
	if !out.IsFinite() {
		return Mat3{}, fmt.Errorf("Inverse: non-finite result: %w", ErrSingular)
	}

	return out, nil
}

// Rank returns the dimension of the space spanned by vs: the number of
// singular values of the stacked vectors above relTol times the largest.
// It is 0 for no vectors or only zero vectors.
func Rank(vs []Vec3, relTol float64) int {
	if len(vs) == 0 {
		return 0
	}
	data := make([]float64, 0, 3*len(vs))
	for _, v := range vs {
		data = append(data, v[0], v[1], v[2])
	}

	var svd mat.SVD
	if !svd.Factorize(mat.NewDense(len(vs), 3, data), mat.SVDNone) {
		return 0
	}
	values := svd.Values(nil)
	if len(values) == 0 || !(values[0] > 0) {
		return 0
	}
	rank := 0
	for _, s := range values {
		if s > relTol*values[0] {
			rank++
		}
	}

	return rank
}

// String formats m one row per line.
func (m Mat3) String() string {
	return fmt.Sprintf("%v\n%v\n%v", m.Row(0), m.Row(1), m.Row(2))
}

// Affine is a linear map plus a shift, Q = M·hkl + Shift.
type Affine struct {
	M     Mat3
	Shift Vec3
}

// Apply returns M·v + Shift.
func (a Affine) Apply(v Vec3) Vec3 { return a.M.MulVec(v).Add(a.Shift) }

// Inverse returns the affine map taking Q back to hkl: M⁻¹·(Q - Shift).
func (a Affine) Inverse() (Affine, error) {
	inv, err := a.M.Inverse()
	if err != nil {
		return Affine{}, err
	}

	return Affine{M: inv, Shift: inv.MulVec(a.Shift).Neg()}, nil
}
