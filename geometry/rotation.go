// SPDX-License-Identifier: MIT

package geometry

import "math"

// Rotation returns the right-handed rotation by angleDeg about axis
// (Rodrigues' formula). The axis need not be normalized.
// Returns ErrZeroVector for a zero axis.
func Rotation(axis Vec3, angleDeg float64) (Mat3, error) {
	if axis.IsZero() {
		return Mat3{}, ErrZeroVector
	}

	u := axis.Normalize()
	s, c := math.Sincos(angleDeg * math.Pi / 180)
	t := 1 - c
	x, y, z := u[0], u[1], u[2]

	rotation := Mat3{
		{t*x*x + c, t*x*y - s*z, t*x*z + s*y},
		{t*x*y + s*z, t*y*y + c, t*y*z - s*x},
		{t*x*z - s*y, t*y*z + s*x, t*z*z + c},
	}

	return rotation, nil
}

// Rotate returns v rotated by angleDeg about axis.
func Rotate(v, axis Vec3, angleDeg float64) (Vec3, error) {
	r, err := Rotation(axis, angleDeg)
	if err != nil {
		return Vec3{}, err
	}

	return r.MulVec(v), nil
}

// EulerRotation returns the orientation Rz(phi)·Rx(chi)·Rz(omega), angles in degrees.
// Every orientation has such a triple.
func EulerRotation(phi, chi, omega float64) Mat3 {
	return rotZ(phi).Mul(rotX(chi)).Mul(rotZ(omega))
}

func rotZ(deg float64) Mat3 {
	s, c := math.Sincos(deg * math.Pi / 180)
	return Mat3{{c, -s, 0}, {s, c, 0}, {0, 0, 1}}
}

func rotX(deg float64) Mat3 {
	s, c := math.Sincos(deg * math.Pi / 180)
	return Mat3{{1, 0, 0}, {0, c, -s}, {0, s, c}}
}
