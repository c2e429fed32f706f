// SPDX-License-Identifier: MIT

package direction

import "runtime"

// Defaults for ScanOptions.
const (
	// DefaultLengthStep is the spacing of trial edge lengths, in Å.
	DefaultLengthStep = 0.1

	// DefaultFFTBins is the size of the projection histogram transformed by
	// FFTScanForDirections. Must be a power of two.
	DefaultFFTBins = 512

	// DefaultFFTCandidates bounds how many of the strongest directions set
	// the FFT threshold.
	DefaultFFTCandidates = 500

	// DefaultFFTRefineRounds is the number of 1-D refinements per FFT direction.
	DefaultFFTRefineRounds = 5

	// DefaultLengthTolerance and DefaultAngleTolerance (degrees) decide when
	// two FFT directions are the same edge.
	DefaultLengthTolerance = 0.17
	DefaultAngleTolerance  = 10.0
)

// ScanOptions configures ScanForDirections and FFTScanForDirections.
type ScanOptions struct {
	// LengthStep is the step of trial edge lengths in ScanForDirections (Å).
	LengthStep float64

	// FFTBins is the histogram size for FFTScanForDirections.
	FFTBins int

	// FFTCandidates bounds the directions used to set the FFT threshold.
	FFTCandidates int

	// FFTRefineRounds is the number of refinements per FFT direction.
	FFTRefineRounds int

	// LengthTolerance and AngleTolerance drive DiscardDuplicates after an FFT scan.
	LengthTolerance float64
	AngleTolerance  float64

	// Workers > 1 splits the direction sampling across goroutines.
	// Results do not depend on it.
	Workers int
}

// DefaultOptions returns the standard scan settings, using
// one worker per CPU.
func DefaultOptions() ScanOptions {
	return ScanOptions{
		LengthStep:      DefaultLengthStep,
		FFTBins:         DefaultFFTBins,
		FFTCandidates:   DefaultFFTCandidates,
		FFTRefineRounds: DefaultFFTRefineRounds,
		LengthTolerance: DefaultLengthTolerance,
		AngleTolerance:  DefaultAngleTolerance,
		Workers:         runtime.GOMAXPROCS(0),
	}
}
