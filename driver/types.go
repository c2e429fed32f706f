// SPDX-License-Identifier: MIT

package driver

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/katalvlaran/ubindex/geometry"
)

// Phase names a stage of an indexing run.
type Phase int

// Phases in execution order.
const (
	PhaseSeed Phase = iota
	PhaseGrow
	PhaseRefine
	PhaseStandardize
)

func (p Phase) String() string {
	switch p {
	case PhaseSeed:
		return "seed"
	case PhaseGrow:
		return "grow"
	case PhaseRefine:
		return "refine"
	case PhaseStandardize:
		return "standardize"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Result is the outcome of a successful run.
type Result struct {
	// UB maps Miller indices to Q in the |Q| = 1/d convention.
	UB geometry.Mat3

	// UBInverse is (2π·UB)⁻¹: hkl = UBInverse·(2π·Q).
	UBInverse geometry.Mat3

	// FitError is ubfit.FitError over the indexed peaks.
	FitError float64

	// NumIndexed is the number of peaks given a non-zero hkl.
	NumIndexed int

	// Tolerance is the working tolerance the run ended with.
	Tolerance float64

	// Phase is the last phase completed.
	Phase Phase

	// RunID tags the run's log records.
	RunID uuid.UUID
}

// PartialResult is returned when a phase fails. UB is the last good
// orientation in the |Q| = 1/d convention, zero when none was found.
type PartialResult struct {
	Phase Phase
	UB    geometry.Mat3
	RunID uuid.UUID
	Err   error
}

func (e *PartialResult) Error() string {
	return fmt.Sprintf("driver: %s phase failed: %v", e.Phase, e.Err)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *PartialResult) Unwrap() error { return e.Err }

// HasUB reports whether the failure kept a usable orientation.
func (e *PartialResult) HasUB() bool { return e.UB != geometry.Mat3{} }
