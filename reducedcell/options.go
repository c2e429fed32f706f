// SPDX-License-Identifier: MIT

package reducedcell

// DefaultAngleTolerance (degrees): a cell angle closer than this to 90° is
// tried with both signs of the adjacent edges.
const DefaultAngleTolerance = 2.0

const panicAngleTolerance = "reducedcell: WithAngleTolerance: tolerance must be in [0, 90)"

// Options configures the cell searches. Construct with Option values.
type Options struct {
	angleTolerance float64
}

// Option customizes Options.
type Option func(*Options)

// WithAngleTolerance sets the 90° window of SignRelatedUBs. Zero tries the
// given UB only.
func WithAngleTolerance(deg float64) Option {
	if !(deg >= 0 && deg < 90) {
		panic(panicAngleTolerance)
	}

	return func(o *Options) { o.angleTolerance = deg }
}

func gatherOptions(user ...Option) Options {
	o := Options{angleTolerance: DefaultAngleTolerance}
	for _, set := range user {
		set(&o)
	}

	return o
}
