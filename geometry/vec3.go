// SPDX-License-Identifier: MIT

package geometry

import (
	"fmt"
	"math"
)

// Vec3 is an immutable triple: a Q-vector, an hkl triple or a real-space direction.
type Vec3 [3]float64

// V constructs a Vec3 from its components.
func V(x, y, z float64) Vec3 { return Vec3{x, y, z} }

// Add returns v+w.
func (v Vec3) Add(w Vec3) Vec3 { return Vec3{v[0] + w[0], v[1] + w[1], v[2] + w[2]} }

// Sub returns v-w.
func (v Vec3) Sub(w Vec3) Vec3 { return Vec3{v[0] - w[0], v[1] - w[1], v[2] - w[2]} }

// Scale returns s·v.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{s * v[0], s * v[1], s * v[2]} }

// Neg returns -v.
func (v Vec3) Neg() Vec3 { return Vec3{-v[0], -v[1], -v[2]} }

// Dot returns the scalar product v·w.
func (v Vec3) Dot(w Vec3) float64 { return v[0]*w[0] + v[1]*w[1] + v[2]*w[2] }

// Cross returns the right-handed vector product v×w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		v[1]*w[2] - v[2]*w[1],
		v[2]*w[0] - v[0]*w[2],
		v[0]*w[1] - v[1]*w[0],
	}
}

// Norm returns |v|.
func (v Vec3) Norm() float64 { return math.Sqrt(v.Dot(v)) }

// Norm2 returns |v|².
func (v Vec3) Norm2() float64 { return v.Dot(v) }

// IsZero reports whether all components are exactly zero.
func (v Vec3) IsZero() bool { return v[0] == 0 && v[1] == 0 && v[2] == 0 }

// IsFinite reports whether no component is NaN or ±Inf.
func (v Vec3) IsFinite() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}

	return true
}

// Normalize returns v/|v|. The zero vector is returned unchanged.
func (v Vec3) Normalize() Vec3 {
	n := v.Norm()
	if n == 0 {
		return v
	}

	return v.Scale(1 / n)
}

// Round rounds every component half-up, the rounding used for Miller indices.
func (v Vec3) Round() Vec3 {
	return Vec3{RoundHalfUp(v[0]), RoundHalfUp(v[1]), RoundHalfUp(v[2])}
}

// Distance returns |v-w|.
func (v Vec3) Distance(w Vec3) float64 { return v.Sub(w).Norm() }

// ApproxEqual reports whether every component of v and w differs by at most eps.
func (v Vec3) ApproxEqual(w Vec3, eps float64) bool {
	return math.Abs(v[0]-w[0]) <= eps && math.Abs(v[1]-w[1]) <= eps && math.Abs(v[2]-w[2]) <= eps
}

// String formats v as "(x, y, z)".
func (v Vec3) String() string { return fmt.Sprintf("(%.6g, %.6g, %.6g)", v[0], v[1], v[2]) }

// Angle returns the angle between v and w in degrees.
// The cosine is clamped so rounding noise never yields NaN; a zero vector
// yields NaN, which fails every angular comparison downstream.
func Angle(v, w Vec3) float64 {
	if v.IsZero() || w.IsZero() {
		return math.NaN()
	}

	cos := v.Normalize().Dot(w.Normalize())
	if cos > 1 {
		return 0
	}
	if cos < -1 {
		return 180
	}

	return math.Acos(cos) * 180 / math.Pi
}

// RoundHalfUp rounds x to the nearest integer with ties toward +Inf,
// so RoundHalfUp(-2.5) == -2.
func RoundHalfUp(x float64) float64 { return math.Floor(x + 0.5) }
