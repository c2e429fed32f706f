// SPDX-License-Identifier: MIT

// Package indexing assigns Miller indices to peaks and measures how well a
// candidate UB matrix, or a set of candidate cell-edge directions, indexes a
// list of Q-vectors.
//
// Two acceptance rules coexist, kept distinct on purpose by name:
//
//   - DistanceToInts / Index / NumIndexed work with the maximum wrapped
//     distance to an integer and a strict "< tol" test. The iterative driver
//     uses these on *Peak lists.
//   - ValidIndex and the NumberIndexed* / GetIndexedPeaks* family round each
//     component, reject (0,0,0) and accept "≤ tol" per component. The UB
//     finders use these on raw Q-vector lists.
//
// The package also owns the error taxonomy shared by every higher stage
// (ErrInsufficientData, ErrRankDeficient, ErrConvergence, ErrNoMatch, ...).
//
// All functions are pure except Index, which overwrites Peak.HKL in place.
package indexing
