// SPDX-License-Identifier: MIT

// Package geometry provides the small, fixed-size linear algebra used by every
// indexing stage: 3-vectors, 3×3 matrices, rotations and lattice parameters.
//
// Conventions:
//   - Vec3 and Mat3 are value types; every operation returns a new value.
//   - A UB matrix maps Miller indices to reciprocal-space vectors,
//     Q = UB·hkl, with |Q| = 1/d unless a caller states the 2π convention.
//   - The rows of UB⁻¹ are the real-space cell edges a, b, c (UBFromABC and
//     ABCFromUB convert between the two views).
//   - Angles exposed to callers are in degrees.
//
// Inversion and determinants delegate to gonum.org/v1/gonum/mat so singular
// input is reported as ErrSingular instead of producing Inf/NaN entries.
//
// Complexity: every operation is O(1); Inverse allocates one gonum Dense.
package geometry
