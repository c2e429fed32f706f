// SPDX-License-Identifier: MIT

package ubfit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/ubindex/geometry"
	"github.com/katalvlaran/ubindex/indexing"
)

// MinPairs is the smallest number of correspondences any linear fit accepts.
const MinPairs = 3

// rankCond is the relative singular-value cutoff below which a design matrix
// is treated as rank deficient.
const rankCond = 1e-10

// OptimizeUB3D returns the UB minimizing Σ|UB·hkl − Q|² over the pairs, and
// that sum of squared residuals (not normalized). Each row of UB is an
// independent least-squares problem sharing one QR factorization of the
// N×3 matrix of Miller indices.
func OptimizeUB3D(hkls, qs []geometry.Vec3) (geometry.Mat3, float64, error) {
	const op = "OptimizeUB3D"
	if err := checkPairs(op, len(hkls), len(qs)); err != nil {
		return geometry.Mat3{}, 0, err
	}

	h := mat.NewDense(len(hkls), 3, nil)
	for i, v := range hkls {
		h.SetRow(i, v[:])
	}
	x, sumSq, err := solveLeastSquares(op, h, qMatrix(qs))
	if err != nil {
		return geometry.Mat3{}, 0, err
	}

	// x is 3×3 with x[col][row] = UB[row][col].
	var ub geometry.Mat3
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			ub[row][col] = x.At(col, row)
		}
	}

	return ub, sumSq, nil
}

// OptimizeUB4D is OptimizeUB3D with a constant shift: Q ≈ UB·hkl + Shift.
// The shift absorbs a common offset of the Q-vectors, for example when they
// were measured relative to a peak that is not at the origin.
func OptimizeUB4D(hkls, qs []geometry.Vec3) (geometry.Affine, float64, error) {
	const op = "OptimizeUB4D"
	if err := checkPairs(op, len(hkls), len(qs)); err != nil {
		return geometry.Affine{}, 0, err
	}

	h := mat.NewDense(len(hkls), 4, nil)
	for i, v := range hkls {
		h.SetRow(i, []float64{v[0], v[1], v[2], 1})
	}
	x, sumSq, err := solveLeastSquares(op, h, qMatrix(qs))
	if err != nil {
		return geometry.Affine{}, 0, err
	}

	var out geometry.Affine
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			out.M[row][col] = x.At(col, row)
		}
		out.Shift[row] = x.At(3, row)
	}

	return out, sumSq, nil
}

// OptimizeDirection3D returns the real-space vector d minimizing
// Σ(d·Q − index)² and that sum. Its direction is the plane normal of the
// family of planes the indices label, its length the cell edge in Å.
// A solution that is exactly zero is reported as ErrRankDeficient.
func OptimizeDirection3D(indices []int, qs []geometry.Vec3) (geometry.Vec3, float64, error) {
	const op = "OptimizeDirection3D"
	if err := checkPairs(op, len(indices), len(qs)); err != nil {
		return geometry.Vec3{}, 0, err
	}

	x, sumSq, err := solveLeastSquares(op, qMatrix(qs), indexColumn(indices))
	if err != nil {
		return geometry.Vec3{}, 0, err
	}
	dir := geometry.V(x.At(0, 0), x.At(1, 0), x.At(2, 0))
	if dir.IsZero() {
		return geometry.Vec3{}, 0, fmt.Errorf("%s: zero direction: %w", op, indexing.ErrRankDeficient)
	}

	return dir, sumSq, nil
}

// OptimizeDirection4D fits d·Q + shift ≈ index and returns d, the fitted
// shift and the sum of squared residuals.
func OptimizeDirection4D(indices []int, qs []geometry.Vec3) (geometry.Vec3, float64, float64, error) {
	const op = "OptimizeDirection4D"
	if err := checkPairs(op, len(indices), len(qs)); err != nil {
		return geometry.Vec3{}, 0, 0, err
	}

	a := mat.NewDense(len(qs), 4, nil)
	for i, q := range qs {
		a.SetRow(i, []float64{q[0], q[1], q[2], 1})
	}
	x, sumSq, err := solveLeastSquares(op, a, indexColumn(indices))
	if err != nil {
		return geometry.Vec3{}, 0, 0, err
	}
	dir := geometry.V(x.At(0, 0), x.At(1, 0), x.At(2, 0))
	if dir.IsZero() {
		return geometry.Vec3{}, 0, 0, fmt.Errorf("%s: zero direction: %w", op, indexing.ErrRankDeficient)
	}

	return dir, x.At(3, 0), sumSq, nil
}

// FitError is the normalized root-sum-of-squares sqrt(Σ|UB·hkl − Q|²/N).
// It returns 0 for no pairs and +Inf when the lengths differ.
func FitError(ub geometry.Mat3, hkls, qs []geometry.Vec3) float64 {
	if len(hkls) != len(qs) {
		return math.Inf(1)
	}
	if len(hkls) == 0 {
		return 0
	}
	var sum float64
	for i, h := range hkls {
		sum += ub.MulVec(h).Sub(qs[i]).Norm2()
	}

	return math.Sqrt(sum / float64(len(hkls)))
}

// checkPairs requires n == m and at least MinPairs pairs.
func checkPairs(op string, n, m int) error {
	if n != m {
		return fmt.Errorf("%s: %d indices vs %d Q-vectors: %w", op, n, m, indexing.ErrInsufficientData)
	}
	if n < MinPairs {
		return fmt.Errorf("%s: need %d pairs, have %d: %w", op, MinPairs, n, indexing.ErrInsufficientData)
	}

	return nil
}

// qMatrix stacks qs as the rows of an N×3 matrix.
func qMatrix(qs []geometry.Vec3) *mat.Dense {
	m := mat.NewDense(len(qs), 3, nil)
	for i, q := range qs {
		m.SetRow(i, q[:])
	}

	return m
}

// indexColumn returns indices as an N×1 column.
func indexColumn(indices []int) *mat.Dense {
	b := mat.NewDense(len(indices), 1, nil)
	for i, v := range indices {
		b.Set(i, 0, float64(v))
	}

	return b
}

// solveLeastSquares returns x minimizing ‖a·x − b‖ column by column, and the
// total squared residual. A rank-deficient a (singular values below rankCond
// relative to the largest) is ErrRankDeficient.
func solveLeastSquares(op string, a, b *mat.Dense) (*mat.Dense, float64, error) {
	_, cols := a.Dims()

	// Stage 1: rank check. QR alone only notices exact singularity.
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDNone) {
		return nil, 0, fmt.Errorf("%s: SVD failed: %w", op, indexing.ErrRankDeficient)
	}
	if rank := svd.Rank(rankCond); rank < cols {
		return nil, 0, fmt.Errorf("%s: rank %d < %d: %w", op, rank, cols, indexing.ErrRankDeficient)
	}

	// Stage 2: QR solve.
	var qr mat.QR
	qr.Factorize(a)
	var x mat.Dense
	if err := qr.SolveTo(&x, false, b); err != nil {
		return nil, 0, fmt.Errorf("%s: %v: %w", op, err, indexing.ErrRankDeficient)
	}

	// Stage 3: residual.
	var r mat.Dense
	r.Mul(a, &x)
	r.Sub(&r, b)
	rows, rc := r.Dims()
	var sum float64
	for i := 0; i < rows; i++ {
		for j := 0; j < rc; j++ {
			v := r.At(i, j)
			sum += v * v
		}
	}
	if math.IsNaN(sum) || math.IsInf(sum, 0) {
		return nil, 0, fmt.Errorf("%s: non-finite residual: %w", op, indexing.ErrRankDeficient)
	}

	return &x, sum, nil
}
