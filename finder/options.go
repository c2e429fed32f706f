// SPDX-License-Identifier: MIT

package finder

import (
	"io"
	"log/slog"

	"github.com/katalvlaran/ubindex/direction"
)

// Defaults for Options.
const (
	DefaultTolerance      = 0.12
	DefaultBaseIndex      = -1
	DefaultNumInitial     = 35
	DefaultDegreesPerStep = 1.5
)

// Options configures the UB searches.
type Options struct {
	// Tolerance is the largest distance of a Miller index from an integer
	// for a peak to count as indexed.
	Tolerance float64

	// BaseIndex picks the peak subtracted from all others before the
	// lattice search. Out of range means the peak a third of the way up the
	// |Q| ordering. Ignored with five peaks or fewer.
	BaseIndex int

	// NumInitial is the number of lowest-|Q| peaks used for the first scan.
	NumInitial int

	// DegreesPerStep is the angular resolution of the orientation and
	// direction scans.
	DegreesPerStep float64

	// FitShift refits with a constant Q offset (ubfit.OptimizeUB4D) while
	// FindUBWithLattice grows the peak set. The offset is dropped at the end.
	FitShift bool

	// SkipNiggli returns the UB of FindUBAuto and FindUBFFT as found,
	// without reduction.
	SkipNiggli bool

	// Scan configures the direction scans and their worker count.
	Scan direction.ScanOptions

	// Logger receives progress records. nil discards them.
	Logger *slog.Logger
}

// DefaultOptions returns the settings used when none are given.
func DefaultOptions() Options {
	return Options{
		Tolerance:      DefaultTolerance,
		BaseIndex:      DefaultBaseIndex,
		NumInitial:     DefaultNumInitial,
		DegreesPerStep: DefaultDegreesPerStep,
		Scan:           direction.DefaultOptions(),
	}
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}

	return discard
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))
