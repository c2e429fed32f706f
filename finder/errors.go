// SPDX-License-Identifier: MIT

package finder

import (
	"fmt"

	"github.com/katalvlaran/ubindex/geometry"
	"github.com/katalvlaran/ubindex/indexing"
)

func checkOptions(op string, o Options) error {
	if !(o.Tolerance > 0) {
		return fmt.Errorf("%s: tolerance %g: %w", op, o.Tolerance, indexing.ErrBadParameter)
	}
	if !(o.DegreesPerStep > 0) {
		return fmt.Errorf("%s: degrees per step %g: %w", op, o.DegreesPerStep, indexing.ErrBadParameter)
	}
	if o.NumInitial < 1 {
		return fmt.Errorf("%s: initial peaks %d: %w", op, o.NumInitial, indexing.ErrBadParameter)
	}

	return nil
}

func checkRange(op string, minD, maxD float64) error {
	if !(minD > 0) || !(maxD > minD) {
		return fmt.Errorf("%s: need 0 < minD < maxD, have %g, %g: %w", op, minD, maxD, indexing.ErrBadParameter)
	}

	return nil
}

// spanTolerance is the smallest ratio of the third to the first singular
// value of the stacked Q-vectors for them to count as spanning 3-D.
const spanTolerance = 1e-4

// checkSpan rejects Q-vectors lying on a line or a plane: no three edges can
// be recovered from them, however many peaks there are.
func checkSpan(op string, qs []geometry.Vec3) error {
	if r := geometry.Rank(qs, spanTolerance); r < 3 {
		return fmt.Errorf("%s: Q-vectors span %d dimensions: %w", op, r, indexing.ErrInsufficientData)
	}

	return nil
}
