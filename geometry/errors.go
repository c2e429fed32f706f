// SPDX-License-Identifier: MIT
// Package geometry: sentinel errors. Callers match with errors.Is.

package geometry

import "errors"

var (
	// ErrSingular is returned when a matrix has no usable inverse.
	ErrSingular = errors.New("geometry: singular matrix")

	// ErrZeroVector is returned when a direction or axis of zero length is supplied.
	ErrZeroVector = errors.New("geometry: zero vector")

	// ErrBadLattice is returned for non-positive lengths or angles outside (0,180).
	ErrBadLattice = errors.New("geometry: invalid lattice parameters")
)
