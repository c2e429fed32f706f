// Package ubfit computes orientation (UB) matrices from indexed peaks.
//
// Two modes are provided:
//
//   - Linear: OptimizeUB3D / OptimizeUB4D solve Q = UB·hkl (+ shift) in the
//     least-squares sense with a QR factorization from gonum/mat, and
//     OptimizeDirection3D / OptimizeDirection4D fit a single real-space
//     direction d with d·Q ≈ index. Rank-deficient inputs are reported with
//     indexing.ErrRankDeficient, too few pairs with indexing.ErrInsufficientData.
//
//   - Nonlinear: FitOrientation searches the three Euler angles of U for a
//     known lattice (UB = U·B), restarting Nelder–Mead (gonum/optimize) from
//     many random starting orientations and keeping the best. The random
//     source is injectable; restarts may run on several goroutines and the
//     reduction is independent of scheduling.
//
// All Q-vectors follow the |Q| = 1/d convention unless a caller scales them.
package ubfit
